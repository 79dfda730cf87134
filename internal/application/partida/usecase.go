// Package partida implementa el caso de uso del catálogo de partidas:
// alta y edición con reglas de unicidad y jerarquía, y listado jerárquico.
package partida

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/presupuesto-api/internal/application/dto"
	"github.com/jhoicas/presupuesto-api/internal/domain"
	"github.com/jhoicas/presupuesto-api/internal/domain/entity"
	"github.com/jhoicas/presupuesto-api/internal/domain/partida"
	"github.com/jhoicas/presupuesto-api/internal/domain/repository"
	"github.com/jhoicas/presupuesto-api/pkg/logger"
)

// UseCase casos de uso del catálogo de partidas.
type UseCase struct {
	repo repository.PartidaRepository
	log  *logger.Logger
	now  func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(repo repository.PartidaRepository, log *logger.Logger) *UseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &UseCase{repo: repo, log: log.Component("partidas"), now: time.Now}
}

// Create da de alta una partida en el catálogo de la empresa.
func (uc *UseCase) Create(ctx context.Context, companyID int, req dto.PartidaRequest) (*dto.PartidaResponse, error) {
	flow, err := checkRequest(companyID, req)
	if err != nil {
		return nil, err
	}
	catalog, err := uc.repo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("listar partidas: %w", err)
	}
	if err := checkUniqueness(req, flow, catalog, false, 0, ""); err != nil {
		return nil, err
	}
	if err := checkParent(req, flow, catalog); err != nil {
		return nil, err
	}

	now := uc.now()
	p := &entity.Partida{
		ID:                uuid.New().String(),
		CompanyID:         companyID,
		FlowType:          flow,
		NumericCode:       req.NumericCode,
		AlphaCode:         partida.NormalizeAlphaCode(req.AlphaCode),
		Name:              strings.TrimSpace(req.Name),
		Level:             req.Level,
		ParentNumericCode: req.ParentNumericCode,
		Active:            req.Active == nil || *req.Active,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := uc.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	uc.log.Info().Int("company_id", companyID).Str("flow", string(flow)).Int("code", p.NumericCode).Msg("partida creada")
	return enrich(*p, append(catalog, *p)), nil
}

// Update modifica una partida. El tipo de flujo no se puede cambiar; si la
// partida tiene hijas tampoco su código, su nivel ni su padre.
func (uc *UseCase) Update(ctx context.Context, companyID int, id string, req dto.PartidaRequest) (*dto.PartidaResponse, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	flow, err := checkRequest(companyID, req)
	if err != nil {
		return nil, err
	}
	current, err := uc.repo.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, fmt.Errorf("obtener partida: %w", err)
	}
	if current == nil {
		return nil, domain.ErrNotFound
	}
	if current.FlowType != flow {
		return nil, fmt.Errorf("%w: no se puede cambiar el tipo de flujo de una partida", domain.ErrInvalidInput)
	}
	catalog, err := uc.repo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("listar partidas: %w", err)
	}
	if err := checkUniqueness(req, flow, catalog, true, current.NumericCode, current.AlphaCode); err != nil {
		return nil, err
	}
	if err := checkParent(req, flow, catalog); err != nil {
		return nil, err
	}
	moved := req.NumericCode != current.NumericCode ||
		req.Level != current.Level ||
		req.ParentNumericCode != current.ParentNumericCode
	if moved && hasChildren(*current, catalog) {
		return nil, fmt.Errorf("%w: la partida %d tiene partidas hijas", domain.ErrConflict, current.NumericCode)
	}

	updated := *current
	updated.NumericCode = req.NumericCode
	updated.AlphaCode = partida.NormalizeAlphaCode(req.AlphaCode)
	updated.Name = strings.TrimSpace(req.Name)
	updated.Level = req.Level
	updated.ParentNumericCode = req.ParentNumericCode
	if req.Active != nil {
		updated.Active = *req.Active
	}
	updated.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, &updated); err != nil {
		return nil, err
	}
	uc.log.Info().Int("company_id", companyID).Str("id", id).Int("code", updated.NumericCode).Msg("partida actualizada")

	for i := range catalog {
		if catalog[i].ID == updated.ID {
			catalog[i] = updated
		}
	}
	return enrich(updated, catalog), nil
}

// Hierarchy lista el catálogo en orden jerárquico. flow vacío trae ambos tipos;
// los nombres de los padres se resuelven siempre contra el catálogo completo.
func (uc *UseCase) Hierarchy(ctx context.Context, companyID int, flow string, onlyActive bool) ([]dto.PartidaResponse, error) {
	if companyID == 0 {
		return nil, domain.ErrInvalidInput
	}
	var want entity.FlowType
	if flow != "" {
		want = entity.FlowType(strings.ToUpper(flow))
		if !want.Valid() {
			return nil, fmt.Errorf("%w: tipo de flujo %q", domain.ErrInvalidInput, flow)
		}
	}
	catalog, err := uc.repo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("listar partidas: %w", err)
	}
	items := make([]entity.Partida, 0, len(catalog))
	for _, p := range catalog {
		if want != "" && p.FlowType != want {
			continue
		}
		if onlyActive && !p.Active {
			continue
		}
		items = append(items, p)
	}
	enriched := partida.BuildPartidaHierarchy(items, catalog)
	out := make([]dto.PartidaResponse, 0, len(enriched))
	for _, ep := range enriched {
		out = append(out, toResponse(ep))
	}
	return out, nil
}

// ValidateCode aplica las reglas de unicidad sin guardar nada.
func (uc *UseCase) ValidateCode(ctx context.Context, companyID int, req dto.ValidateCodeRequest) (*dto.ValidateCodeResponse, error) {
	flow := entity.FlowType(strings.ToUpper(req.FlowType))
	if companyID == 0 || !flow.Valid() {
		return nil, domain.ErrInvalidInput
	}
	catalog, err := uc.repo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("listar partidas: %w", err)
	}
	num := partida.ValidateNumericCodeUnique(req.NumericCode, flow, catalog, req.IsEditing, req.OriginalNumericCode)
	alpha := partida.ValidateAlphaCodeUnique(req.AlphaCode, flow, catalog, req.IsEditing, req.OriginalAlphaCode)
	return &dto.ValidateCodeResponse{
		OK:      num.OK && alpha.OK,
		Numeric: dto.CodeValidation{OK: num.OK, Error: num.Error},
		Alpha:   dto.CodeValidation{OK: alpha.OK, Error: alpha.Error},
	}, nil
}

// Catalog catálogo completo de la empresa.
func (uc *UseCase) Catalog(ctx context.Context, companyID int) ([]entity.Partida, error) {
	catalog, err := uc.repo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("listar partidas: %w", err)
	}
	return catalog, nil
}

func checkRequest(companyID int, req dto.PartidaRequest) (entity.FlowType, error) {
	flow := entity.FlowType(strings.ToUpper(req.FlowType))
	switch {
	case companyID == 0:
		return "", domain.ErrInvalidInput
	case !flow.Valid():
		return "", fmt.Errorf("%w: tipo de flujo %q", domain.ErrInvalidInput, req.FlowType)
	case req.NumericCode <= 0:
		return "", fmt.Errorf("%w: el código numérico debe ser mayor que 0", domain.ErrInvalidInput)
	case strings.TrimSpace(req.Name) == "":
		return "", fmt.Errorf("%w: el nombre es obligatorio", domain.ErrInvalidInput)
	case req.Level < 1 || req.Level > entity.MaxPartidaLevel:
		return "", fmt.Errorf("%w: el nivel debe estar entre 1 y %d", domain.ErrInvalidInput, entity.MaxPartidaLevel)
	}
	return flow, nil
}

func checkUniqueness(req dto.PartidaRequest, flow entity.FlowType, catalog []entity.Partida, editing bool, origCode int, origAlpha string) error {
	if r := partida.ValidateNumericCodeUnique(req.NumericCode, flow, catalog, editing, origCode); !r.OK {
		return fmt.Errorf("%w: %s", domain.ErrDuplicate, r.Error)
	}
	if r := partida.ValidateAlphaCodeUnique(req.AlphaCode, flow, catalog, editing, origAlpha); !r.OK {
		return fmt.Errorf("%w: %s", domain.ErrDuplicate, r.Error)
	}
	return nil
}

// checkParent exige que el padre exista en el mismo flujo y que el nivel sea
// el del padre + 1. Sin padre, el nivel debe ser 1.
func checkParent(req dto.PartidaRequest, flow entity.FlowType, catalog []entity.Partida) error {
	if req.ParentNumericCode == 0 {
		if req.Level != 1 {
			return fmt.Errorf("%w: una partida sin padre debe ser de nivel 1", domain.ErrInvalidInput)
		}
		return nil
	}
	if req.ParentNumericCode == req.NumericCode {
		return fmt.Errorf("%w: una partida no puede ser su propio padre", domain.ErrInvalidInput)
	}
	parent, ok := partida.NewIndex(catalog).Lookup(flow, req.ParentNumericCode)
	if !ok {
		return fmt.Errorf("%w: no existe la partida padre %d de %s", domain.ErrInvalidInput, req.ParentNumericCode, flow.Label())
	}
	if req.Level != parent.Level+1 {
		return fmt.Errorf("%w: el nivel debe ser %d (padre de nivel %d)", domain.ErrInvalidInput, parent.Level+1, parent.Level)
	}
	return nil
}

func hasChildren(p entity.Partida, catalog []entity.Partida) bool {
	for _, c := range catalog {
		if c.FlowType == p.FlowType && c.ParentNumericCode == p.NumericCode && c.ID != p.ID {
			return true
		}
	}
	return false
}

func enrich(p entity.Partida, lookup []entity.Partida) *dto.PartidaResponse {
	enriched := partida.BuildPartidaHierarchy([]entity.Partida{p}, lookup)
	r := toResponse(enriched[0])
	return &r
}

func toResponse(ep entity.EnrichedPartida) dto.PartidaResponse {
	return dto.PartidaResponse{
		ID:                ep.ID,
		CompanyID:         ep.CompanyID,
		FlowType:          string(ep.FlowType),
		FlowLabel:         ep.FlowType.Label(),
		NumericCode:       ep.NumericCode,
		AlphaCode:         ep.AlphaCode,
		Name:              ep.Name,
		Level:             ep.Level,
		ParentNumericCode: ep.ParentNumericCode,
		ParentName:        ep.ParentName,
		ParentAlphaCode:   ep.ParentAlphaCode,
		FullPath:          ep.FullPath,
		Active:            ep.Active,
	}
}
