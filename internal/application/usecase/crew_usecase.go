package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Buceo-api/internal/application/dto"
	"github.com/jhoicas/Buceo-api/internal/domain"
	"github.com/jhoicas/Buceo-api/internal/domain/crew"
	"github.com/jhoicas/Buceo-api/internal/domain/entity"
	"github.com/jhoicas/Buceo-api/internal/domain/repository"
)

// CrewUseCase directorio de equipos de buceo: registro, integrantes y composición.
// No impone la habilitación; solo la informa.
type CrewUseCase struct {
	repo repository.CrewRepository
}

// NewCrewUseCase construye el caso de uso.
func NewCrewUseCase(repo repository.CrewRepository) *CrewUseCase {
	return &CrewUseCase{repo: repo}
}

// Create registra un equipo. Los roles se normalizan al conjunto canónico.
func (uc *CrewUseCase) Create(ctx context.Context, companyID string, in dto.CreateCrewRequest) (*dto.CrewResponse, error) {
	if companyID == "" || strings.TrimSpace(in.Name) == "" {
		return nil, domain.ErrInvalidInput
	}
	members := make([]entity.CrewMember, 0, len(in.Members))
	for _, m := range in.Members {
		member, err := toMember(m)
		if err != nil {
			return nil, err
		}
		members = append(members, member)
	}
	now := time.Now()
	c := &entity.Crew{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		Name:      strings.TrimSpace(in.Name),
		Members:   members,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return toCrewResponse(c), nil
}

// GetByID obtiene un equipo de la empresa; nil si no existe o es de otra empresa.
func (uc *CrewUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.CrewResponse, error) {
	c, err := uc.load(ctx, companyID, id)
	if err != nil || c == nil {
		return nil, err
	}
	return toCrewResponse(c), nil
}

// List lista los equipos de la empresa con filtros y paginación.
func (uc *CrewUseCase) List(ctx context.Context, companyID string, f dto.CrewListFilter) (*dto.CrewListResponse, error) {
	f.DefaultPage()
	filter := entity.CrewFilter{
		ActiveOnly:   f.ActiveOnly,
		EligibleOnly: f.EligibleOnly,
		Search:       strings.TrimSpace(f.Search),
		Limit:        f.Limit,
		Offset:       f.Offset,
	}
	if f.Role != "" {
		role, err := crew.ParseRole(f.Role)
		if err != nil {
			return nil, err
		}
		filter.Role = role
	}
	list, err := uc.ListCrews(ctx, companyID, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.CrewResponse, 0, len(list))
	for _, c := range list {
		items = append(items, *toCrewResponse(c))
	}
	return &dto.CrewListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: f.Limit, Offset: f.Offset},
	}, nil
}

// ListCrews aplica los filtros del directorio; EligibleOnly y la paginación se resuelven aquí.
func (uc *CrewUseCase) ListCrews(ctx context.Context, companyID string, f entity.CrewFilter) ([]*entity.Crew, error) {
	if companyID == "" {
		return nil, domain.ErrInvalidInput
	}
	list, err := uc.repo.List(ctx, companyID, f)
	if err != nil {
		return nil, err
	}
	if f.EligibleOnly {
		filtered := list[:0]
		for _, c := range list {
			if crew.IsEligible(c.Members) {
				filtered = append(filtered, c)
			}
		}
		list = filtered
	}
	if f.Offset > 0 {
		if f.Offset >= len(list) {
			return []*entity.Crew{}, nil
		}
		list = list[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(list) {
		list = list[:f.Limit]
	}
	return list, nil
}

// AddMember agrega un integrante; DuplicateMember si la persona ya está en el equipo.
func (uc *CrewUseCase) AddMember(ctx context.Context, companyID, crewID string, in dto.CrewMemberRequest) (*dto.CrewResponse, error) {
	member, err := toMember(in)
	if err != nil {
		return nil, err
	}
	c, err := uc.load(ctx, companyID, crewID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	if err := uc.repo.AddMember(ctx, crewID, member); err != nil {
		return nil, err
	}
	return uc.GetByID(ctx, companyID, crewID)
}

// RemoveMember quita un integrante del equipo.
func (uc *CrewUseCase) RemoveMember(ctx context.Context, companyID, crewID, personID string) (*dto.CrewResponse, error) {
	c, err := uc.load(ctx, companyID, crewID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	if err := uc.repo.RemoveMember(ctx, crewID, personID); err != nil {
		return nil, err
	}
	return uc.GetByID(ctx, companyID, crewID)
}

// SetActive activa o da de baja un equipo.
func (uc *CrewUseCase) SetActive(ctx context.Context, companyID, crewID string, active bool) (*dto.CrewResponse, error) {
	c, err := uc.load(ctx, companyID, crewID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	if err := uc.repo.SetActive(ctx, crewID, active); err != nil {
		return nil, err
	}
	return uc.GetByID(ctx, companyID, crewID)
}

// IsEligible informa si el equipo tiene supervisor y buzo principal.
func (uc *CrewUseCase) IsEligible(ctx context.Context, crewID string) (bool, error) {
	c, err := uc.repo.GetByID(ctx, crewID)
	if err != nil {
		return false, err
	}
	if c == nil {
		return false, domain.ErrNotFound
	}
	return crew.IsEligible(c.Members), nil
}

func (uc *CrewUseCase) load(ctx context.Context, companyID, id string) (*entity.Crew, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil || (companyID != "" && c.CompanyID != companyID) {
		return nil, nil
	}
	return c, nil
}

func toMember(in dto.CrewMemberRequest) (entity.CrewMember, error) {
	if strings.TrimSpace(in.PersonID) == "" {
		return entity.CrewMember{}, domain.ErrInvalidInput
	}
	role, err := crew.ParseRole(in.Role)
	if err != nil {
		return entity.CrewMember{}, err
	}
	return entity.CrewMember{PersonID: strings.TrimSpace(in.PersonID), Name: in.Name, Role: role}, nil
}

// ToMemberResponses convierte integrantes a su salida HTTP.
func ToMemberResponses(members []entity.CrewMember) []dto.CrewMemberResponse {
	out := make([]dto.CrewMemberResponse, 0, len(members))
	for _, m := range members {
		out = append(out, dto.CrewMemberResponse{PersonID: m.PersonID, Name: m.Name, Role: string(m.Role)})
	}
	return out
}

func toCrewResponse(c *entity.Crew) *dto.CrewResponse {
	if c == nil {
		return nil
	}
	return &dto.CrewResponse{
		ID:        c.ID,
		CompanyID: c.CompanyID,
		Name:      c.Name,
		Members:   ToMemberResponses(c.Members),
		Active:    c.Active,
		Eligible:  crew.IsEligible(c.Members),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
