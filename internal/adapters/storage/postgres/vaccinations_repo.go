package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"pet-vaccination-schedule/internal/domain/schedule"
	"pet-vaccination-schedule/internal/domain/vaccinations"
	"pet-vaccination-schedule/internal/domain/vaccines"
)

const eventColumns = `e.id, e.pet_id, e.vaccine_id, e.administered_date, e.veterinarian_name, e.clinic_name, e.batch_number, e.next_dose_date, e.notes, e.created_at, e.updated_at`

// Evento + mascota + dueño + vacuna en un solo read.
const selectEvents = `SELECT ` + eventColumns + `, ` + petColumns + `, ` + ownerColumns + `, ` + vaccineColumns + `
	FROM vaccination_events e
	JOIN pets p ON p.id = e.pet_id
	JOIN owners o ON o.id = p.owner_id
	JOIN vaccines v ON v.id = e.vaccine_id`

type VaccinationsRepo struct {
	db *sql.DB
}

func NewVaccinationsRepo(db *sql.DB) *VaccinationsRepo {
	return &VaccinationsRepo{db: db}
}

func (r *VaccinationsRepo) Create(ctx context.Context, e vaccinations.Event) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO vaccination_events (
			id, pet_id, vaccine_id,
			administered_date, veterinarian_name, clinic_name, batch_number,
			next_dose_date, notes,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`,
		e.ID,
		e.PetID,
		e.VaccineID,
		e.AdministeredDate,
		e.VeterinarianName,
		e.ClinicName,
		e.BatchNumber,
		toNullDate(e.NextDoseDate),
		e.Notes,
		e.CreatedAt,
		e.UpdatedAt,
	)
	return mapWriteErr(err)
}

func (r *VaccinationsRepo) Update(ctx context.Context, e vaccinations.Event) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE vaccination_events
		SET
			vaccine_id = $2,
			administered_date = $3,
			veterinarian_name = $4,
			clinic_name = $5,
			batch_number = $6,
			next_dose_date = $7,
			notes = $8,
			updated_at = $9
		WHERE id = $1
	`,
		e.ID,
		e.VaccineID,
		e.AdministeredDate,
		e.VeterinarianName,
		e.ClinicName,
		e.BatchNumber,
		toNullDate(e.NextDoseDate),
		e.Notes,
		e.UpdatedAt,
	)
	if err != nil {
		return mapWriteErr(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return vaccinations.ErrNotFound
	}
	return nil
}

func (r *VaccinationsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM vaccination_events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return vaccinations.ErrNotFound
	}
	return nil
}

func (r *VaccinationsRepo) GetByID(ctx context.Context, id string) (vaccinations.Event, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return vaccinations.Event{}, vaccinations.ErrNotFound
	}

	e, err := scanEvent(r.db.QueryRowContext(ctx, selectEvents+` WHERE e.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return vaccinations.Event{}, vaccinations.ErrNotFound
	}
	return e, err
}

func (r *VaccinationsRepo) List(ctx context.Context, f vaccinations.ListFilter) ([]vaccinations.Event, error) {
	q := &query{}
	q.sb.WriteString(selectEvents)

	if f.OwnerID != "" {
		q.and("p.owner_id = " + q.arg(f.OwnerID))
	}
	if f.OwnerUserID != "" {
		q.and("o.user_id = " + q.arg(f.OwnerUserID))
	}
	if f.PetID != "" {
		q.and("e.pet_id = " + q.arg(f.PetID))
	}
	if f.VaccineID != "" {
		q.and("e.vaccine_id = " + q.arg(f.VaccineID))
	}

	// from/to sobre administered_date (inclusivos)
	if f.From != nil {
		q.and("e.administered_date >= " + q.arg(*f.From))
	}
	if f.To != nil {
		q.and("e.administered_date <= " + q.arg(*f.To))
	}

	// next_dose_date NULL nunca entra en un rango
	if f.NextDoseFrom != nil {
		q.and("e.next_dose_date >= " + q.arg(*f.NextDoseFrom))
	}
	if f.NextDoseTo != nil {
		q.and("e.next_dose_date <= " + q.arg(*f.NextDoseTo))
	}

	if strings.TrimSpace(f.Query) != "" {
		p := q.like(f.Query)
		q.and("(p.name ILIKE " + p + " OR v.name ILIKE " + p +
			" OR e.veterinarian_name ILIKE " + p + " OR e.clinic_name ILIKE " + p + ")")
	}

	stmt := q.String()
	switch f.Order {
	case vaccinations.OrderNextDoseAsc:
		stmt += " ORDER BY e.next_dose_date ASC NULLS LAST, e.id"
	default:
		stmt += " ORDER BY e.administered_date DESC, e.created_at DESC"
	}
	if f.Limit > 0 {
		stmt += " LIMIT " + q.arg(f.Limit)
	}

	rows, err := r.db.QueryContext(ctx, stmt, q.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]vaccinations.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *VaccinationsRepo) FindDoses(ctx context.Context, petID, vaccineID string) ([]vaccinations.Dose, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, pet_id, vaccine_id, administered_date
		FROM vaccination_events
		WHERE pet_id = $1 AND vaccine_id = $2
	`, petID, vaccineID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]vaccinations.Dose, 0)
	for rows.Next() {
		var d vaccinations.Dose
		if err := rows.Scan(&d.EventID, &d.PetID, &d.VaccineID, &d.AdministeredDate); err != nil {
			return nil, err
		}
		d.AdministeredDate = schedule.Day(d.AdministeredDate)
		out = append(out, d)
	}
	return out, rows.Err()
}

func scanEvent(s scanner) (vaccinations.Event, error) {
	var (
		e    vaccinations.Event
		next sql.NullTime
		ps   petScan
		v    vaccines.Vaccine
	)

	dest := []any{
		&e.ID,
		&e.PetID,
		&e.VaccineID,
		&e.AdministeredDate,
		&e.VeterinarianName,
		&e.ClinicName,
		&e.BatchNumber,
		&next,
		&e.Notes,
		&e.CreatedAt,
		&e.UpdatedAt,
	}
	dest = append(dest, ps.dest()...)
	dest = append(dest, vaccineDest(&v)...)

	if err := s.Scan(dest...); err != nil {
		return vaccinations.Event{}, err
	}

	e.AdministeredDate = schedule.Day(e.AdministeredDate)
	e.NextDoseDate = fromNullDate(next)
	pet := ps.pet()
	e.Pet = &pet
	e.Vaccine = &v
	return e, nil
}
