package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"pet-vaccination-schedule/internal/domain/vaccines"
)

const vaccineColumns = `v.id, v.name, v.manufacturer, v.description, v.species_target, v.duration_months, v.is_mandatory, v.created_at, v.updated_at`

type VaccinesRepo struct {
	db *sql.DB
}

func NewVaccinesRepo(db *sql.DB) *VaccinesRepo {
	return &VaccinesRepo{db: db}
}

func (r *VaccinesRepo) Create(ctx context.Context, v vaccines.Vaccine) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO vaccines (
			id, name, manufacturer, description,
			species_target, duration_months, is_mandatory,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		v.ID,
		v.Name,
		v.Manufacturer,
		v.Description,
		v.SpeciesTarget,
		v.DurationMonths,
		v.Mandatory,
		v.CreatedAt,
		v.UpdatedAt,
	)
	return mapWriteErr(err)
}

func (r *VaccinesRepo) Update(ctx context.Context, v vaccines.Vaccine) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE vaccines
		SET
			name = $2,
			manufacturer = $3,
			description = $4,
			species_target = $5,
			duration_months = $6,
			is_mandatory = $7,
			updated_at = $8
		WHERE id = $1
	`,
		v.ID,
		v.Name,
		v.Manufacturer,
		v.Description,
		v.SpeciesTarget,
		v.DurationMonths,
		v.Mandatory,
		v.UpdatedAt,
	)
	if err != nil {
		return mapWriteErr(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return vaccines.ErrNotFound
	}
	return nil
}

// Delete: ON DELETE RESTRICT la protege mientras haya vacunaciones.
func (r *VaccinesRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM vaccines WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return vaccines.ErrInUse
		}
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return vaccines.ErrNotFound
	}
	return nil
}

func (r *VaccinesRepo) GetByID(ctx context.Context, id string) (vaccines.Vaccine, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return vaccines.Vaccine{}, vaccines.ErrNotFound
	}

	var v vaccines.Vaccine
	err := r.db.QueryRowContext(ctx, `SELECT `+vaccineColumns+` FROM vaccines v WHERE v.id = $1`, id).
		Scan(vaccineDest(&v)...)
	if errors.Is(err, sql.ErrNoRows) {
		return vaccines.Vaccine{}, vaccines.ErrNotFound
	}
	return v, err
}

func (r *VaccinesRepo) List(ctx context.Context, f vaccines.ListFilter) ([]vaccines.Vaccine, error) {
	q := &query{}
	q.sb.WriteString(`SELECT ` + vaccineColumns + ` FROM vaccines v`)

	if strings.TrimSpace(f.Species) != "" {
		q.and("v.species_target ILIKE " + q.like(f.Species))
	}
	if f.Mandatory != nil {
		q.and("v.is_mandatory = " + q.arg(*f.Mandatory))
	}
	if strings.TrimSpace(f.Query) != "" {
		p := q.like(f.Query)
		q.and("(v.name ILIKE " + p + " OR v.manufacturer ILIKE " + p + ")")
	}

	rows, err := r.db.QueryContext(ctx, q.String()+` ORDER BY v.name`, q.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]vaccines.Vaccine, 0)
	for rows.Next() {
		var v vaccines.Vaccine
		if err := rows.Scan(vaccineDest(&v)...); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func vaccineDest(v *vaccines.Vaccine) []any {
	return []any{
		&v.ID,
		&v.Name,
		&v.Manufacturer,
		&v.Description,
		&v.SpeciesTarget,
		&v.DurationMonths,
		&v.Mandatory,
		&v.CreatedAt,
		&v.UpdatedAt,
	}
}
