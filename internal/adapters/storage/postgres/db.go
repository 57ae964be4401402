package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"pet-vaccination-schedule/internal/domain/owners"
	"pet-vaccination-schedule/internal/domain/pets"
	"pet-vaccination-schedule/internal/domain/schedule"
	"pet-vaccination-schedule/internal/domain/vaccinations"
	"pet-vaccination-schedule/internal/domain/vaccines"
)

//go:embed schema.sql
var schema string

// Códigos SQLSTATE que se traducen a errores de dominio.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// Open abre una conexión pool a Postgres usando pgx (database/sql).
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	// defaults razonables (ajustable luego)
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// Migrate aplica el esquema embebido. Es idempotente.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// mapWriteErr traduce violaciones de constraints al error de dominio equivalente,
// así la carrera check-then-write devuelve el mismo error que el validador.
func mapWriteErr(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case codeUniqueViolation:
		switch pgErr.ConstraintName {
		case "owners_user_id_key":
			return owners.ErrAlreadyExists
		case "owners_email_key":
			return owners.ErrEmailTaken
		case "vaccines_name_key":
			return vaccines.ErrNameTaken
		case "vaccination_events_dose_key":
			return vaccinations.ErrDuplicateDose
		}
	case codeForeignKeyViolation:
		switch pgErr.ConstraintName {
		case "pets_owner_id_fkey":
			return owners.ErrNotFound
		case "vaccination_events_pet_id_fkey":
			return pets.ErrNotFound
		case "vaccination_events_vaccine_id_fkey":
			return vaccines.ErrNotFound
		}
	}
	return err
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeForeignKeyViolation
}

// scanner es *sql.Row o *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// query arma WHERE dinámicos con placeholders numerados.
type query struct {
	sb    strings.Builder
	args  []any
	where []string
}

func (q *query) arg(v any) string {
	q.args = append(q.args, v)
	return fmt.Sprintf("$%d", len(q.args))
}

func (q *query) and(cond string) {
	q.where = append(q.where, cond)
}

// likeEscaper: '\' es el escape por defecto de LIKE/ILIKE en Postgres.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// like busca v literal; % y _ del usuario no son comodines.
func (q *query) like(v string) string {
	return q.arg("%" + likeEscaper.Replace(strings.TrimSpace(v)) + "%")
}

func (q *query) String() string {
	out := q.sb.String()
	if len(q.where) > 0 {
		out += " WHERE " + strings.Join(q.where, " AND ")
	}
	return out
}

// toNullDate: columnas DATE opcionales.
func toNullDate(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{Valid: false}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func fromNullDate(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := schedule.Day(nt.Time)
	return &t
}
