// Package schedule agrupa las reglas de fechas de vacunación: edad de la mascota,
// fecha de próxima dosis y clasificación (vencida / por vencer / al día).
//
// Todas las funciones son puras: "hoy" siempre llega como parámetro.
package schedule

import "time"

// DueSoonWindowDays es la ventana (inclusive) para considerar una dosis "por vencer".
const DueSoonWindowDays = 30

// Status clasifica una fecha de próxima dosis respecto de hoy.
type Status string

const (
	StatusNoSchedule Status = "no_schedule"
	StatusOverdue    Status = "overdue"
	StatusDueSoon    Status = "due_soon"
	StatusScheduled  Status = "scheduled"
)

// Day devuelve la fecha calendario de t (en su propia zona) como medianoche UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today es Day(now). Se usa con el reloj inyectado de cada service.
func Today(now time.Time) time.Time {
	return Day(now)
}

// AgeYears cuenta años completos; resta uno si el cumpleaños aún no llegó este año.
func AgeYears(birth, today time.Time) int {
	birth, today = Day(birth), Day(today)

	years := today.Year() - birth.Year()
	if today.Month() < birth.Month() ||
		(today.Month() == birth.Month() && today.Day() < birth.Day()) {
		years--
	}
	return years
}

// AgeMonths cuenta meses completos, nunca negativo.
func AgeMonths(birth, today time.Time) int {
	birth, today = Day(birth), Day(today)

	months := (today.Year()-birth.Year())*12 + int(today.Month()) - int(birth.Month())
	if today.Day() < birth.Day() {
		months--
	}
	return max(0, months)
}

// AddMonths suma meses de calendario. Si el día no existe en el mes destino
// se usa el último día de ese mes (31 ene + 1 mes = 28/29 feb).
func AddMonths(d time.Time, months int) time.Time {
	d = Day(d)

	// Primer día del mes destino; time.Date normaliza el overflow de meses.
	first := time.Date(d.Year(), d.Month()+time.Month(months), 1, 0, 0, 0, 0, time.UTC)
	last := daysIn(first.Year(), first.Month())

	day := d.Day()
	if day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
}

// NextDoseDate = administered + durationMonths. Sin duración (<= 0) no hay próxima dosis.
func NextDoseDate(administered time.Time, durationMonths int) *time.Time {
	if durationMonths <= 0 {
		return nil
	}
	next := AddMonths(administered, durationMonths)
	return &next
}

// DaysBetween devuelve los días (con signo) de from a to, sólo por fecha calendario.
func DaysBetween(from, to time.Time) int {
	return int(Day(to).Sub(Day(from)).Hours() / 24)
}

// DaysUntilDue es nil cuando no hay próxima dosis.
func DaysUntilDue(next *time.Time, today time.Time) *int {
	if next == nil {
		return nil
	}
	n := DaysBetween(today, *next)
	return &n
}

// Classify ubica la próxima dosis:
//   - sin fecha        -> no_schedule
//   - antes de hoy     -> overdue
//   - hoy .. hoy+30    -> due_soon
//   - más adelante     -> scheduled
func Classify(next *time.Time, today time.Time) Status {
	if next == nil {
		return StatusNoSchedule
	}
	days := DaysBetween(today, *next)
	switch {
	case days < 0:
		return StatusOverdue
	case days <= DueSoonWindowDays:
		return StatusDueSoon
	default:
		return StatusScheduled
	}
}

func daysIn(year int, month time.Month) int {
	// día 0 del mes siguiente = último día del mes
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
