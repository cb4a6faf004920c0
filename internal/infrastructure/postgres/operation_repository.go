package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Buceo-api/internal/domain"
	"github.com/jhoicas/Buceo-api/internal/domain/entity"
	"github.com/jhoicas/Buceo-api/internal/domain/repository"
)

var (
	_ repository.OperationRepository = (*OperationRepo)(nil)
	_ repository.ImmersionRepository = (*ImmersionRepo)(nil)
)

// OperationRepo faenas.
type OperationRepo struct {
	pool *pgxpool.Pool
}

// NewOperationRepository construye el adaptador.
func NewOperationRepository(pool *pgxpool.Pool) *OperationRepo {
	return &OperationRepo{pool: pool}
}

// Create persiste una faena.
func (r *OperationRepo) Create(ctx context.Context, op *entity.Operation) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO operations (id, company_id, name, crew_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		op.ID, op.CompanyID, op.Name, op.CrewID, op.CreatedAt, op.UpdatedAt)
	return translate("insert operation", err)
}

// GetByID obtiene la faena; nil si no existe.
func (r *OperationRepo) GetByID(ctx context.Context, id string) (*entity.Operation, error) {
	return getOne(ctx, "get operation", func() (*entity.Operation, error) {
		var op entity.Operation
		err := r.pool.QueryRow(ctx, `
			SELECT id, company_id, name, crew_id, created_at, updated_at
			  FROM operations WHERE id = $1`, id).
			Scan(&op.ID, &op.CompanyID, &op.Name, &op.CrewID, &op.CreatedAt, &op.UpdatedAt)
		if err != nil {
			return nil, err
		}
		return &op, nil
	})
}

// SetCrew asigna (o libera con nil) el equipo de la faena.
func (r *OperationRepo) SetCrew(ctx context.Context, operationID string, crewID *string) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE operations SET crew_id = $2, updated_at = $3 WHERE id = $1`,
		operationID, crewID, time.Now())
	if err != nil {
		return translate("set operation crew", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ImmersionRepo inmersiones. dive_date es DATE y depth_meters NUMERIC (decimal vía pgx-shopspring-decimal).
type ImmersionRepo struct {
	pool *pgxpool.Pool
}

// NewImmersionRepository construye el adaptador.
func NewImmersionRepository(pool *pgxpool.Pool) *ImmersionRepo {
	return &ImmersionRepo{pool: pool}
}

const immersionColumns = `id, company_id, operation_id, code, dive_date, depth_meters, crew_id, created_at, updated_at`

func scanImmersion(s pgxScanner) (*entity.Immersion, error) {
	var im entity.Immersion
	err := s.Scan(&im.ID, &im.CompanyID, &im.OperationID, &im.Code, &im.Date, &im.DepthMeters, &im.CrewID, &im.CreatedAt, &im.UpdatedAt)
	if err != nil {
		return nil, err
	}
	im.Date = entity.DateOnly(im.Date)
	return &im, nil
}

// Create persiste una inmersión.
func (r *ImmersionRepo) Create(ctx context.Context, im *entity.Immersion) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO immersions (`+immersionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		im.ID, im.CompanyID, im.OperationID, im.Code, entity.DateOnly(im.Date), im.DepthMeters,
		im.CrewID, im.CreatedAt, im.UpdatedAt)
	return translate("insert immersion", err)
}

// GetByID obtiene la inmersión; nil si no existe.
func (r *ImmersionRepo) GetByID(ctx context.Context, id string) (*entity.Immersion, error) {
	return getOne(ctx, "get immersion", func() (*entity.Immersion, error) {
		return scanImmersion(r.pool.QueryRow(ctx, `SELECT `+immersionColumns+` FROM immersions WHERE id = $1`, id))
	})
}

// ListByOperation inmersiones de la faena ordenadas por fecha.
func (r *ImmersionRepo) ListByOperation(ctx context.Context, operationID string) ([]*entity.Immersion, error) {
	return read(ctx, "list immersions", func() ([]*entity.Immersion, error) {
		rows, err := r.pool.Query(ctx, `
			SELECT `+immersionColumns+`
			  FROM immersions
			 WHERE operation_id = $1
			 ORDER BY dive_date, code`, operationID)
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		var list []*entity.Immersion
		for rows.Next() {
			im, err := scanImmersion(rows)
			if err != nil {
				return nil, err
			}
			list = append(list, im)
		}
		return list, rows.Err()
	})
}
