package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"pet-vaccination-schedule/internal/domain/owners"
	"pet-vaccination-schedule/internal/domain/pets"
	"pet-vaccination-schedule/internal/domain/schedule"
)

const petColumns = `p.id, p.owner_id, p.name, p.species, p.breed, p.color, p.birth_date, p.weight, p.notes, p.created_at, p.updated_at`

// Las mascotas siempre se leen con su Owner en el mismo query.
const selectPets = `SELECT ` + petColumns + `, ` + ownerColumns + `
	FROM pets p
	JOIN owners o ON o.id = p.owner_id`

type PetsRepo struct {
	db *sql.DB
}

func NewPetsRepo(db *sql.DB) *PetsRepo {
	return &PetsRepo{db: db}
}

func (r *PetsRepo) Create(ctx context.Context, p pets.Pet) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pets (
			id, owner_id,
			name, species, breed, color,
			birth_date, weight, notes,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`,
		p.ID,
		p.OwnerID,
		p.Name,
		string(p.Species),
		p.Breed,
		p.Color,
		p.BirthDate,
		toNullFloat(p.Weight),
		p.Notes,
		p.CreatedAt,
		p.UpdatedAt,
	)
	return mapWriteErr(err)
}

func (r *PetsRepo) Update(ctx context.Context, p pets.Pet) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE pets
		SET
			name = $2,
			species = $3,
			breed = $4,
			color = $5,
			birth_date = $6,
			weight = $7,
			notes = $8,
			updated_at = $9
		WHERE id = $1
	`,
		p.ID,
		p.Name,
		string(p.Species),
		p.Breed,
		p.Color,
		p.BirthDate,
		toNullFloat(p.Weight),
		p.Notes,
		p.UpdatedAt,
	)
	if err != nil {
		return mapWriteErr(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return pets.ErrNotFound
	}
	return nil
}

// Delete: las vacunaciones caen por ON DELETE CASCADE.
func (r *PetsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM pets WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return pets.ErrNotFound
	}
	return nil
}

func (r *PetsRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return pets.Pet{}, pets.ErrNotFound
	}

	p, err := scanPet(r.db.QueryRowContext(ctx, selectPets+` WHERE p.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return pets.Pet{}, pets.ErrNotFound
	}
	return p, err
}

func (r *PetsRepo) List(ctx context.Context, f pets.ListFilter) ([]pets.Pet, error) {
	q := &query{}
	q.sb.WriteString(selectPets)

	if f.OwnerID != "" {
		q.and("p.owner_id = " + q.arg(f.OwnerID))
	}
	if f.OwnerUserID != "" {
		q.and("o.user_id = " + q.arg(f.OwnerUserID))
	}
	if f.Species != "" {
		q.and("p.species = " + q.arg(string(f.Species)))
	}
	if strings.TrimSpace(f.Query) != "" {
		p := q.like(f.Query)
		q.and("(p.name ILIKE " + p + " OR p.breed ILIKE " + p + ")")
	}

	rows, err := r.db.QueryContext(ctx, q.String()+` ORDER BY p.name, p.created_at`, q.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]pets.Pet, 0)
	for rows.Next() {
		p, err := scanPet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// petScan junta los destinos de una fila de selectPets.
type petScan struct {
	p       pets.Pet
	o       owners.Owner
	species string
	weight  sql.NullFloat64
}

func (ps *petScan) dest() []any {
	d := []any{
		&ps.p.ID,
		&ps.p.OwnerID,
		&ps.p.Name,
		&ps.species,
		&ps.p.Breed,
		&ps.p.Color,
		&ps.p.BirthDate,
		&ps.weight,
		&ps.p.Notes,
		&ps.p.CreatedAt,
		&ps.p.UpdatedAt,
	}
	return append(d, ownerDest(&ps.o)...)
}

func (ps *petScan) pet() pets.Pet {
	p := ps.p
	p.Species = pets.Species(ps.species)
	p.BirthDate = schedule.Day(p.BirthDate)
	if ps.weight.Valid {
		w := ps.weight.Float64
		p.Weight = &w
	}
	o := ps.o
	p.Owner = &o
	return p
}

func scanPet(s scanner) (pets.Pet, error) {
	var ps petScan
	if err := s.Scan(ps.dest()...); err != nil {
		return pets.Pet{}, err
	}
	return ps.pet(), nil
}

func toNullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{Valid: false}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
