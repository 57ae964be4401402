package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"pet-vaccination-schedule/internal/domain/owners"
)

const ownerColumns = `o.id, o.user_id, o.name, o.email, o.phone, o.address, o.created_at, o.updated_at`

type OwnersRepo struct {
	db *sql.DB
}

func NewOwnersRepo(db *sql.DB) *OwnersRepo {
	return &OwnersRepo{db: db}
}

func (r *OwnersRepo) Create(ctx context.Context, o owners.Owner) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO owners (
			id, user_id,
			name, email, phone, address,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		o.ID,
		o.UserID,
		o.Name,
		o.Email,
		o.Phone,
		o.Address,
		o.CreatedAt,
		o.UpdatedAt,
	)
	return mapWriteErr(err)
}

func (r *OwnersRepo) Update(ctx context.Context, o owners.Owner) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE owners
		SET
			name = $2,
			email = $3,
			phone = $4,
			address = $5,
			updated_at = $6
		WHERE id = $1
	`,
		o.ID,
		o.Name,
		o.Email,
		o.Phone,
		o.Address,
		o.UpdatedAt,
	)
	if err != nil {
		return mapWriteErr(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return owners.ErrNotFound
	}
	return nil
}

// Delete: mascotas y vacunaciones caen por ON DELETE CASCADE.
func (r *OwnersRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM owners WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return owners.ErrNotFound
	}
	return nil
}

func (r *OwnersRepo) GetByID(ctx context.Context, id string) (owners.Owner, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return owners.Owner{}, owners.ErrNotFound
	}
	row := r.db.QueryRowContext(ctx, `SELECT `+ownerColumns+` FROM owners o WHERE o.id = $1`, id)
	return scanOwnerRow(row)
}

func (r *OwnersRepo) GetByUserID(ctx context.Context, userID string) (owners.Owner, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return owners.Owner{}, owners.ErrNotFound
	}
	row := r.db.QueryRowContext(ctx, `SELECT `+ownerColumns+` FROM owners o WHERE o.user_id = $1`, userID)
	return scanOwnerRow(row)
}

func (r *OwnersRepo) List(ctx context.Context, f owners.ListFilter) ([]owners.Owner, error) {
	q := &query{}
	q.sb.WriteString(`SELECT ` + ownerColumns + ` FROM owners o`)

	if f.UserID != "" {
		q.and("o.user_id = " + q.arg(f.UserID))
	}
	if strings.TrimSpace(f.Query) != "" {
		p := q.like(f.Query)
		q.and("(o.name ILIKE " + p + " OR o.email ILIKE " + p + ")")
	}

	rows, err := r.db.QueryContext(ctx, q.String()+` ORDER BY o.name, o.id`, q.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]owners.Owner, 0)
	for rows.Next() {
		o, err := scanOwner(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// ownerDest son los destinos de Scan en el orden de ownerColumns.
func ownerDest(o *owners.Owner) []any {
	return []any{
		&o.ID,
		&o.UserID,
		&o.Name,
		&o.Email,
		&o.Phone,
		&o.Address,
		&o.CreatedAt,
		&o.UpdatedAt,
	}
}

func scanOwner(s scanner) (owners.Owner, error) {
	var o owners.Owner
	err := s.Scan(ownerDest(&o)...)
	return o, err
}

func scanOwnerRow(row *sql.Row) (owners.Owner, error) {
	o, err := scanOwner(row)
	if errors.Is(err, sql.ErrNoRows) {
		return owners.Owner{}, owners.ErrNotFound
	}
	return o, err
}
