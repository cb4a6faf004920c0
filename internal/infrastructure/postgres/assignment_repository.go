package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Buceo-api/internal/domain"
	"github.com/jhoicas/Buceo-api/internal/domain/entity"
	"github.com/jhoicas/Buceo-api/internal/domain/repository"
)

var _ repository.AssignmentRepository = (*AssignmentRepo)(nil)

const assignmentColumns = `id, crew_id, immersion_id, assignment_date, status, created_at, cancelled_at`

// AssignmentRepo agenda de equipos. La unicidad (equipo, día) la garantiza el índice parcial
// crew_assignments_active_crew_date_key; el adaptador solo traduce la violación.
type AssignmentRepo struct {
	pool *pgxpool.Pool
	tx   *TxRunner
}

// NewAssignmentRepository construye el adaptador.
func NewAssignmentRepository(pool *pgxpool.Pool) *AssignmentRepo {
	return &AssignmentRepo{pool: pool, tx: NewTxRunner(pool)}
}

func scanAssignment(s pgxScanner) (*entity.CrewAssignment, error) {
	var a entity.CrewAssignment
	if err := s.Scan(&a.ID, &a.CrewID, &a.ImmersionID, &a.Date, &a.Status, &a.CreatedAt, &a.CancelledAt); err != nil {
		return nil, err
	}
	a.Date = entity.DateOnly(a.Date)
	return &a, nil
}

// ListActiveByCrewDate asignaciones activas del equipo en el día. Más de una es un dato anómalo.
func (r *AssignmentRepo) ListActiveByCrewDate(ctx context.Context, crewID string, date time.Time) ([]*entity.CrewAssignment, error) {
	query := `SELECT ` + assignmentColumns + `
		  FROM crew_assignments
		 WHERE crew_id = $1 AND assignment_date = $2 AND status = 'active'
		 ORDER BY created_at, id`
	return read(ctx, "list crew assignments", func() ([]*entity.CrewAssignment, error) {
		rows, err := r.pool.Query(ctx, query, crewID, entity.DateOnly(date))
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		var list []*entity.CrewAssignment
		for rows.Next() {
			a, err := scanAssignment(rows)
			if err != nil {
				return nil, err
			}
			list = append(list, a)
		}
		return list, rows.Err()
	})
}

// GetActiveByImmersion asignación activa de la inmersión; nil si no tiene.
func (r *AssignmentRepo) GetActiveByImmersion(ctx context.Context, immersionID string) (*entity.CrewAssignment, error) {
	query := `SELECT ` + assignmentColumns + `
		  FROM crew_assignments
		 WHERE immersion_id = $1 AND status = 'active'`
	return getOne(ctx, "get immersion assignment", func() (*entity.CrewAssignment, error) {
		return scanAssignment(r.pool.QueryRow(ctx, query, immersionID))
	})
}

// Assign escribe la asignación en una transacción:
//   - mismo equipo ya activo en la inmersión: solo cambia la fecha;
//   - otro equipo activo en la inmersión: se cancela y se inserta la nueva;
//   - immersions.crew_id queda apuntando al equipo asignado.
//
// Si el índice (equipo, día) rechaza la escritura, devuelve domain.ScheduleConflict con la inmersión que ocupa el día.
func (r *AssignmentRepo) Assign(ctx context.Context, a *entity.CrewAssignment) error {
	date := entity.DateOnly(a.Date)
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	err := r.tx.Run(ctx, func(tx pgx.Tx) error {
		current, err := scanAssignment(tx.QueryRow(ctx, `SELECT `+assignmentColumns+`
			  FROM crew_assignments
			 WHERE immersion_id = $1 AND status = 'active'
			 FOR UPDATE`, a.ImmersionID))
		if err != nil && !isNoRows(err) {
			return err
		}

		switch {
		case current != nil && current.CrewID == a.CrewID:
			if _, err := tx.Exec(ctx, `UPDATE crew_assignments SET assignment_date = $2 WHERE id = $1`, current.ID, date); err != nil {
				return err
			}
			a.ID, a.CreatedAt = current.ID, current.CreatedAt
		default:
			if current != nil {
				if _, err := tx.Exec(ctx, `
					UPDATE crew_assignments SET status = 'cancelled', cancelled_at = $2 WHERE id = $1`,
					current.ID, a.CreatedAt); err != nil {
					return err
				}
			}
			if _, err := tx.Exec(ctx, `
				INSERT INTO crew_assignments (id, crew_id, immersion_id, assignment_date, status, created_at)
				VALUES ($1, $2, $3, $4, 'active', $5)`,
				a.ID, a.CrewID, a.ImmersionID, date, a.CreatedAt); err != nil {
				return err
			}
		}
		_, err = tx.Exec(ctx, `UPDATE immersions SET crew_id = $2, updated_at = $3 WHERE id = $1`, a.ImmersionID, a.CrewID, a.CreatedAt)
		return err
	})
	if err == nil {
		a.Date, a.Status, a.CancelledAt = date, entity.AssignmentActive, nil
		return nil
	}
	if isUniqueViolation(err) && constraintName(err) == conActiveCrewDate {
		return r.conflict(ctx, a.CrewID, date)
	}
	return translate("assign crew", err)
}

// conflict arma el rechazo con la inmersión que ya ocupa el día; se consulta fuera de la transacción abortada.
func (r *AssignmentRepo) conflict(ctx context.Context, crewID string, date time.Time) error {
	list, err := r.ListActiveByCrewDate(ctx, crewID, date)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		return domain.ScheduleConflict("")
	}
	return domain.ScheduleConflict(list[0].ImmersionID)
}

// Cancel cancela la asignación activa del par y libera la inmersión.
func (r *AssignmentRepo) Cancel(ctx context.Context, crewID, immersionID string, at time.Time) (bool, error) {
	var cancelled bool
	err := r.tx.Run(ctx, func(tx pgx.Tx) error {
		cmd, err := tx.Exec(ctx, `
			UPDATE crew_assignments SET status = 'cancelled', cancelled_at = $3
			 WHERE crew_id = $1 AND immersion_id = $2 AND status = 'active'`,
			crewID, immersionID, at)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return nil
		}
		cancelled = true
		_, err = tx.Exec(ctx, `
			UPDATE immersions SET crew_id = NULL, updated_at = $3
			 WHERE id = $1 AND crew_id = $2`, immersionID, crewID, at)
		return err
	})
	if err != nil {
		return false, translate("cancel crew assignment", err)
	}
	return cancelled, nil
}
