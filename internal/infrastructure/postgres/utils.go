package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/Buceo-api/internal/domain"
)

// Querier operaciones comunes a *pgxpool.Pool y pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// pgxScanner abstrae pgx.Row y pgx.Rows.
type pgxScanner interface {
	Scan(dest ...any) error
}

// Nombres de restricciones únicas del esquema (migrations/0001_init.sql).
const (
	conActiveCrewDate   = "crew_assignments_active_crew_date_key"
	conActiveImmersion  = "crew_assignments_active_immersion_key"
	conCrewMember       = "crew_members_crew_person_key"
	conPlanningKind     = "planning_documents_operation_kind_key"
	conSupervisorLogImm = "supervisor_logs_immersion_key"
	conDiverLogImmDiver = "diver_logs_immersion_diver_key"
	uniqueViolationCode = "23505"
	readRetryDelay      = 150 * time.Millisecond
	readAttempts        = 2
)

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolationCode
	}
	return false
}

func constraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}

// translate convierte una falla de escritura en el error de dominio equivalente.
// Las violaciones de unicidad conocidas son reglas de negocio; el resto es infraestructura.
// La de (equipo, fecha) se traduce aparte porque necesita la inmersión en conflicto.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := domain.AsDenied(err); ok {
		return err
	}
	if isUniqueViolation(err) {
		switch constraintName(err) {
		case conCrewMember:
			return domain.ErrDuplicateMember
		case conPlanningKind, conSupervisorLogImm, conDiverLogImmDiver, conActiveImmersion:
			return domain.ErrDuplicate
		case conActiveCrewDate:
			return domain.ErrScheduleConflict
		}
	}
	return domain.Infra(op, err)
}

// retryable: solo fallas de transporte. Si el servidor respondió, repetir no cambia el resultado.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || isNoRows(err) {
		return false
	}
	var pgErr *pgconn.PgError
	return !errors.As(err, &pgErr)
}

// read ejecuta una lectura con un único reintento transparente ante fallas transitorias.
// Las escrituras nunca pasan por aquí.
func read[T any](ctx context.Context, op string, fn func() (T, error)) (T, error) {
	v, err := backoff.Retry(ctx, func() (T, error) {
		v, err := fn()
		if err != nil && !retryable(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	},
		backoff.WithBackOff(backoff.NewConstantBackOff(readRetryDelay)),
		backoff.WithMaxTries(readAttempts),
	)
	if err != nil {
		var zero T
		return zero, domain.Infra(op, err)
	}
	return v, nil
}

// getOne lee una fila; (nil, nil) si no existe.
func getOne[T any](ctx context.Context, op string, fn func() (*T, error)) (*T, error) {
	return read(ctx, op, func() (*T, error) {
		v, err := fn()
		if isNoRows(err) {
			return nil, nil
		}
		return v, err
	})
}

func nullable(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
