package postgres

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Buceo-api/internal/domain"
	"github.com/jhoicas/Buceo-api/internal/domain/entity"
	"github.com/jhoicas/Buceo-api/internal/domain/repository"
)

var _ repository.CrewRepository = (*CrewRepo)(nil)

// CrewRepo equipos y sus integrantes (tabla crew_members, orden por position).
type CrewRepo struct {
	pool *pgxpool.Pool
	tx   *TxRunner
}

// NewCrewRepository construye el adaptador.
func NewCrewRepository(pool *pgxpool.Pool) *CrewRepo {
	return &CrewRepo{pool: pool, tx: NewTxRunner(pool)}
}

// Create inserta el equipo y sus integrantes en una transacción.
func (r *CrewRepo) Create(ctx context.Context, c *entity.Crew) error {
	err := r.tx.Run(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO crews (id, company_id, name, active, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			c.ID, c.CompanyID, c.Name, c.Active, c.CreatedAt, c.UpdatedAt)
		if err != nil {
			return err
		}
		for i, m := range c.Members {
			if err := insertMember(ctx, tx, c.ID, m, i); err != nil {
				return err
			}
		}
		return nil
	})
	return translate("insert crew", err)
}

func insertMember(ctx context.Context, q Querier, crewID string, m entity.CrewMember, position int) error {
	_, err := q.Exec(ctx, `
		INSERT INTO crew_members (crew_id, person_id, name, role, position)
		VALUES ($1, $2, $3, $4, $5)`,
		crewID, m.PersonID, m.Name, string(m.Role), position)
	return err
}

// GetByID obtiene el equipo con sus integrantes; nil si no existe.
func (r *CrewRepo) GetByID(ctx context.Context, id string) (*entity.Crew, error) {
	c, err := getOne(ctx, "get crew", func() (*entity.Crew, error) {
		var c entity.Crew
		err := r.pool.QueryRow(ctx, `
			SELECT id, company_id, name, active, created_at, updated_at
			  FROM crews WHERE id = $1`, id).
			Scan(&c.ID, &c.CompanyID, &c.Name, &c.Active, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return nil, err
		}
		return &c, nil
	})
	if err != nil || c == nil {
		return nil, err
	}
	if err := r.loadMembers(ctx, []*entity.Crew{c}); err != nil {
		return nil, err
	}
	return c, nil
}

// List equipos de la empresa ordenados por nombre. La habilitación y la paginación las aplica el caso de uso.
func (r *CrewRepo) List(ctx context.Context, companyID string, f entity.CrewFilter) ([]*entity.Crew, error) {
	var (
		sb   strings.Builder
		args = []any{companyID}
	)
	sb.WriteString(`SELECT c.id, c.company_id, c.name, c.active, c.created_at, c.updated_at FROM crews c WHERE c.company_id = $1`)
	if f.ActiveOnly {
		sb.WriteString(` AND c.active = true`)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		args = append(args, "%"+s+"%")
		sb.WriteString(` AND c.name ILIKE $2`)
	}
	if f.Role != "" {
		args = append(args, string(f.Role))
		sb.WriteString(` AND EXISTS (SELECT 1 FROM crew_members m WHERE m.crew_id = c.id AND m.role = $` + strconv.Itoa(len(args)) + `)`)
	}
	sb.WriteString(` ORDER BY c.name, c.id`)

	list, err := read(ctx, "list crews", func() ([]*entity.Crew, error) {
		rows, err := r.pool.Query(ctx, sb.String(), args...)
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		var list []*entity.Crew
		for rows.Next() {
			var c entity.Crew
			if err := rows.Scan(&c.ID, &c.CompanyID, &c.Name, &c.Active, &c.CreatedAt, &c.UpdatedAt); err != nil {
				return nil, err
			}
			list = append(list, &c)
		}
		return list, rows.Err()
	})
	if err != nil {
		return nil, err
	}
	if err := r.loadMembers(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *CrewRepo) loadMembers(ctx context.Context, crews []*entity.Crew) error {
	if len(crews) == 0 {
		return nil
	}
	byID := make(map[string]*entity.Crew, len(crews))
	ids := make([]string, 0, len(crews))
	for _, c := range crews {
		byID[c.ID] = c
		ids = append(ids, c.ID)
	}
	_, err := read(ctx, "list crew members", func() (struct{}, error) {
		for _, c := range crews {
			c.Members = nil
		}
		rows, err := r.pool.Query(ctx, `
			SELECT crew_id, person_id, name, role
			  FROM crew_members
			 WHERE crew_id = ANY($1)
			 ORDER BY crew_id, position`, ids)
		if err != nil {
			return struct{}{}, err
		}
		defer rows.Close()
		for rows.Next() {
			var crewID, role string
			var m entity.CrewMember
			if err := rows.Scan(&crewID, &m.PersonID, &m.Name, &role); err != nil {
				return struct{}{}, err
			}
			m.Role = entity.CrewRole(role)
			byID[crewID].Members = append(byID[crewID].Members, m)
		}
		return struct{}{}, rows.Err()
	})
	return err
}

// AddMember agrega al final; la restricción crew_members_crew_person_key produce ErrDuplicateMember.
func (r *CrewRepo) AddMember(ctx context.Context, crewID string, m entity.CrewMember) error {
	err := r.tx.Run(ctx, func(tx pgx.Tx) error {
		var next int
		err := tx.QueryRow(ctx, `
			SELECT COALESCE(MAX(position) + 1, 0) FROM crew_members WHERE crew_id = $1`, crewID).Scan(&next)
		if err != nil {
			return err
		}
		if err := insertMember(ctx, tx, crewID, m, next); err != nil {
			return err
		}
		return touchCrew(ctx, tx, crewID)
	})
	return translate("add crew member", err)
}

// RemoveMember quita a la persona; ErrNotFound si no estaba.
func (r *CrewRepo) RemoveMember(ctx context.Context, crewID, personID string) error {
	err := r.tx.Run(ctx, func(tx pgx.Tx) error {
		cmd, err := tx.Exec(ctx, `DELETE FROM crew_members WHERE crew_id = $1 AND person_id = $2`, crewID, personID)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return domain.ErrNotFound
		}
		return touchCrew(ctx, tx, crewID)
	})
	if err == domain.ErrNotFound {
		return err
	}
	return translate("remove crew member", err)
}

// SetActive activa o desactiva el equipo.
func (r *CrewRepo) SetActive(ctx context.Context, crewID string, active bool) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE crews SET active = $2, updated_at = $3 WHERE id = $1`, crewID, active, time.Now())
	if err != nil {
		return translate("set crew active", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func touchCrew(ctx context.Context, q Querier, crewID string) error {
	cmd, err := q.Exec(ctx, `UPDATE crews SET updated_at = $2 WHERE id = $1`, crewID, time.Now())
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
