package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Buceo-api/internal/domain"
	"github.com/jhoicas/Buceo-api/internal/domain/entity"
	"github.com/jhoicas/Buceo-api/internal/domain/repository"
)

var (
	_ repository.CompanyRepository = (*CompanyRepo)(nil)
	_ repository.ModuleRepository  = (*ModuleRepo)(nil)
)

// CompanyRepo implementación del puerto CompanyRepository sobre PostgreSQL.
type CompanyRepo struct {
	q Querier
}

// NewCompanyRepository construye el adaptador de persistencia para empresas.
func NewCompanyRepository(q Querier) *CompanyRepo {
	return &CompanyRepo{q: q}
}

// Create persiste una nueva empresa.
func (r *CompanyRepo) Create(ctx context.Context, company *entity.Company) error {
	query := `
		INSERT INTO companies (id, name, type, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query,
		company.ID, company.Name, company.Type, company.Status,
		company.CreatedAt, company.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return domain.ErrDuplicate
	}
	return translate("insert company", err)
}

// GetByID obtiene una empresa por ID.
func (r *CompanyRepo) GetByID(ctx context.Context, id string) (*entity.Company, error) {
	query := `
		SELECT id, name, type, status, created_at, updated_at
		FROM companies WHERE id = $1`
	return getOne(ctx, "get company", func() (*entity.Company, error) {
		var c entity.Company
		err := r.q.QueryRow(ctx, query, id).Scan(&c.ID, &c.Name, &c.Type, &c.Status, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return nil, err
		}
		return &c, nil
	})
}

// ModuleRepo agregado de activaciones de módulos y su bitácora.
type ModuleRepo struct {
	pool *pgxpool.Pool
	tx   *TxRunner
}

// NewModuleRepository construye el adaptador.
func NewModuleRepository(pool *pgxpool.Pool) *ModuleRepo {
	return &ModuleRepo{pool: pool, tx: NewTxRunner(pool)}
}

// GetActivation carga todas las filas de company_modules de la empresa.
func (r *ModuleRepo) GetActivation(ctx context.Context, companyID string) (*entity.CompanyModules, error) {
	const query = `
		SELECT company_id, module_name, is_active, activated_at, expires_at, updated_at
		  FROM company_modules
		 WHERE company_id = $1`
	return read(ctx, "get company modules", func() (*entity.CompanyModules, error) {
		rows, err := r.pool.Query(ctx, query, companyID)
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		rec := &entity.CompanyModules{CompanyID: companyID, Records: map[string]entity.CompanyModule{}}
		for rows.Next() {
			var m entity.CompanyModule
			if err := rows.Scan(&m.CompanyID, &m.ModuleName, &m.IsActive, &m.ActivatedAt, &m.ExpiresAt, &m.UpdatedAt); err != nil {
				return nil, err
			}
			rec.Records[m.ModuleName] = m
		}
		return rec, rows.Err()
	})
}

// SaveActivation hace upsert de la fila y agrega la entrada de bitácora en la misma transacción.
func (r *ModuleRepo) SaveActivation(ctx context.Context, rec entity.CompanyModule, entry *entity.ModuleActivationLog) error {
	err := r.tx.Run(ctx, func(tx pgx.Tx) error {
		activatedAt := rec.ActivatedAt
		if activatedAt.IsZero() {
			activatedAt = rec.UpdatedAt
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO company_modules (company_id, module_name, is_active, activated_at, expires_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (company_id, module_name) DO UPDATE
			   SET is_active = EXCLUDED.is_active,
			       activated_at = EXCLUDED.activated_at,
			       expires_at = EXCLUDED.expires_at,
			       updated_at = EXCLUDED.updated_at`,
			rec.CompanyID, rec.ModuleName, rec.IsActive, activatedAt, rec.ExpiresAt, rec.UpdatedAt)
		if err != nil {
			return err
		}
		if entry == nil {
			return nil
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO module_activation_log (id, company_id, module_name, action, actor_id, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			entry.ID, entry.CompanyID, entry.ModuleName, entry.Action, entry.ActorID, entry.CreatedAt)
		return err
	})
	return translate("save company module", err)
}

// ListActivationLog bitácora de activación, más reciente primero.
func (r *ModuleRepo) ListActivationLog(ctx context.Context, companyID string, limit, offset int) ([]*entity.ModuleActivationLog, error) {
	const query = `
		SELECT id, company_id, module_name, action, actor_id, created_at
		  FROM module_activation_log
		 WHERE company_id = $1
		 ORDER BY created_at DESC, id
		 LIMIT $2 OFFSET $3`
	if limit <= 0 {
		limit = 50
	}
	return read(ctx, "list module log", func() ([]*entity.ModuleActivationLog, error) {
		rows, err := r.pool.Query(ctx, query, companyID, limit, offset)
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		var list []*entity.ModuleActivationLog
		for rows.Next() {
			var e entity.ModuleActivationLog
			if err := rows.Scan(&e.ID, &e.CompanyID, &e.ModuleName, &e.Action, &e.ActorID, &e.CreatedAt); err != nil {
				return nil, err
			}
			list = append(list, &e)
		}
		return list, rows.Err()
	})
}
