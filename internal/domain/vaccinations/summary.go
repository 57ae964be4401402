package vaccinations

import (
	"context"
	"sort"
	"time"

	"pet-vaccination-schedule/internal/domain/owners"
	"pet-vaccination-schedule/internal/domain/pets"
	"pet-vaccination-schedule/internal/domain/schedule"
	"pet-vaccination-schedule/internal/domain/vaccines"
)

// Summary es el resumen de vacunación de todas las mascotas de un dueño.
type Summary struct {
	OwnerID           string
	TotalPets         int
	TotalVaccinations int
	DueSoon           int
	Overdue           int
	Pets              []PetSummary
}

type PetSummary struct {
	PetID             string
	Name              string
	Species           pets.Species
	TotalVaccinations int
	DueSoon           []DueDose
	Overdue           []DueDose
}

// DueDose: Days son días hasta la dosis (por vencer) o días de atraso (vencida), siempre >= 0.
type DueDose struct {
	EventID      string
	VaccineName  string
	NextDoseDate time.Time
	Days         int
}

// Summary recorre mascotas y eventos del dueño (ya autorizado por el caller).
func (s *Service) Summary(ctx context.Context, owner owners.Owner) (Summary, error) {
	petList, err := s.pets.List(ctx, pets.ListFilter{OwnerID: owner.ID})
	if err != nil {
		return Summary{}, err
	}
	events, err := s.List(ctx, ListFilter{OwnerID: owner.ID, Order: OrderNextDoseAsc})
	if err != nil {
		return Summary{}, err
	}

	byPet := make(map[string][]Event, len(petList))
	for _, e := range events {
		byPet[e.PetID] = append(byPet[e.PetID], e)
	}

	today := s.Today()
	out := Summary{
		OwnerID:   owner.ID,
		TotalPets: len(petList),
		Pets:      make([]PetSummary, 0, len(petList)),
	}

	for _, p := range petList {
		ps := PetSummary{
			PetID:   p.ID,
			Name:    p.Name,
			Species: p.Species,
			DueSoon: []DueDose{},
			Overdue: []DueDose{},
		}

		for _, e := range byPet[p.ID] {
			ps.TotalVaccinations++

			d := Derive(e, today)
			if d.DaysUntilDue == nil {
				continue
			}
			dose := DueDose{EventID: e.ID, NextDoseDate: *e.NextDoseDate}
			if e.Vaccine != nil {
				dose.VaccineName = e.Vaccine.Name
			}

			switch {
			case d.DueSoon:
				dose.Days = *d.DaysUntilDue
				ps.DueSoon = append(ps.DueSoon, dose)
			case d.Overdue:
				dose.Days = -*d.DaysUntilDue
				ps.Overdue = append(ps.Overdue, dose)
			}
		}

		out.TotalVaccinations += ps.TotalVaccinations
		out.DueSoon += len(ps.DueSoon)
		out.Overdue += len(ps.Overdue)
		out.Pets = append(out.Pets, ps)
	}

	return out, nil
}

// VaccineStats son las estadísticas de uso de una vacuna del catálogo.
type VaccineStats struct {
	VaccineID             string
	Name                  string
	DurationMonths        int
	Mandatory             bool
	TotalAdministrations  int
	RecentAdministrations int // últimos 30 días
	BySpecies             []SpeciesCount
}

type SpeciesCount struct {
	Species pets.Species
	Count   int
}

func (s *Service) VaccineStatistics(ctx context.Context, v vaccines.Vaccine) (VaccineStats, error) {
	events, err := s.List(ctx, ListFilter{VaccineID: v.ID})
	if err != nil {
		return VaccineStats{}, err
	}

	since := s.Today().AddDate(0, 0, -RecentWindowDays)
	counts := map[pets.Species]int{}

	out := VaccineStats{
		VaccineID:            v.ID,
		Name:                 v.Name,
		DurationMonths:       v.DurationMonths,
		Mandatory:            v.Mandatory,
		TotalAdministrations: len(events),
		BySpecies:            []SpeciesCount{},
	}
	for _, e := range events {
		if !schedule.Day(e.AdministeredDate).Before(since) {
			out.RecentAdministrations++
		}
		if e.Pet != nil {
			counts[e.Pet.Species]++
		}
	}

	for sp, n := range counts {
		out.BySpecies = append(out.BySpecies, SpeciesCount{Species: sp, Count: n})
	}
	sort.Slice(out.BySpecies, func(i, j int) bool {
		if out.BySpecies[i].Count != out.BySpecies[j].Count {
			return out.BySpecies[i].Count > out.BySpecies[j].Count
		}
		return out.BySpecies[i].Species < out.BySpecies[j].Species
	})

	return out, nil
}
