package partida_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/presupuesto-api/internal/application/dto"
	apppartida "github.com/jhoicas/presupuesto-api/internal/application/partida"
	"github.com/jhoicas/presupuesto-api/internal/domain"
	"github.com/jhoicas/presupuesto-api/internal/domain/entity"
	"github.com/jhoicas/presupuesto-api/pkg/logger"
)

type memPartidaRepo struct {
	items []entity.Partida
}

func (m *memPartidaRepo) Create(_ context.Context, p *entity.Partida) error {
	m.items = append(m.items, *p)
	return nil
}

func (m *memPartidaRepo) Update(_ context.Context, p *entity.Partida) error {
	for i := range m.items {
		if m.items[i].ID == p.ID {
			m.items[i] = *p
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *memPartidaRepo) GetByID(_ context.Context, companyID int, id string) (*entity.Partida, error) {
	for _, p := range m.items {
		if p.ID == id && p.CompanyID == companyID {
			cp := p
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memPartidaRepo) ListByCompany(_ context.Context, companyID int) ([]entity.Partida, error) {
	var out []entity.Partida
	for _, p := range m.items {
		if p.CompanyID == companyID {
			out = append(out, p)
		}
	}
	return out, nil
}

func seededRepo() *memPartidaRepo {
	return &memPartidaRepo{items: []entity.Partida{
		{ID: "e1", CompanyID: 1, FlowType: entity.FlowExpense, NumericCode: 1, AlphaCode: "MAT", Name: "Materiales", Level: 1, Active: true},
		{ID: "e10", CompanyID: 1, FlowType: entity.FlowExpense, NumericCode: 10, AlphaCode: "CEM", Name: "Cemento", Level: 2, ParentNumericCode: 1, Active: true},
		{ID: "i1", CompanyID: 1, FlowType: entity.FlowIncome, NumericCode: 1, Name: "Ventas", Level: 1, Active: true},
		{ID: "x1", CompanyID: 2, FlowType: entity.FlowExpense, NumericCode: 50, Name: "Otra empresa", Level: 1, Active: true},
	}}
}

func TestCreate_HijaConRuta(t *testing.T) {
	repo := seededRepo()
	uc := apppartida.NewUseCase(repo, logger.Nop())

	got, err := uc.Create(context.Background(), 1, dto.PartidaRequest{
		FlowType: "e", NumericCode: 11, AlphaCode: " ace ", Name: "Acero", Level: 2, ParentNumericCode: 1,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, "E", got.FlowType)
	assert.Equal(t, "ACE", got.AlphaCode)
	assert.Equal(t, "Materiales", got.ParentName)
	assert.Equal(t, "MAT", got.ParentAlphaCode)
	assert.Equal(t, "1 - Materiales > 11 - Acero", got.FullPath)
	assert.True(t, got.Active)
	assert.Len(t, repo.items, 5)
}

func TestCreate_Rechazos(t *testing.T) {
	inactive := false
	tests := []struct {
		name string
		req  dto.PartidaRequest
		want error
	}{
		{"código numérico repetido en el mismo flujo", dto.PartidaRequest{FlowType: "E", NumericCode: 10, Name: "X", Level: 1}, domain.ErrDuplicate},
		{"código alfa repetido sin distinguir mayúsculas", dto.PartidaRequest{FlowType: "E", NumericCode: 2, AlphaCode: "cem", Name: "X", Level: 1}, domain.ErrDuplicate},
		{"flujo inválido", dto.PartidaRequest{FlowType: "Z", NumericCode: 2, Name: "X", Level: 1}, domain.ErrInvalidInput},
		{"sin nombre", dto.PartidaRequest{FlowType: "E", NumericCode: 2, Name: " ", Level: 1}, domain.ErrInvalidInput},
		{"nivel fuera de rango", dto.PartidaRequest{FlowType: "E", NumericCode: 2, Name: "X", Level: 4}, domain.ErrInvalidInput},
		{"raíz con nivel 2", dto.PartidaRequest{FlowType: "E", NumericCode: 2, Name: "X", Level: 2}, domain.ErrInvalidInput},
		{"padre inexistente", dto.PartidaRequest{FlowType: "E", NumericCode: 2, Name: "X", Level: 2, ParentNumericCode: 99}, domain.ErrInvalidInput},
		{"padre de otro flujo", dto.PartidaRequest{FlowType: "I", NumericCode: 2, Name: "X", Level: 3, ParentNumericCode: 10}, domain.ErrInvalidInput},
		{"nivel que no sigue al padre", dto.PartidaRequest{FlowType: "E", NumericCode: 2, Name: "X", Level: 3, ParentNumericCode: 1, Active: &inactive}, domain.ErrInvalidInput},
		{"autorreferencia", dto.PartidaRequest{FlowType: "E", NumericCode: 2, Name: "X", Level: 2, ParentNumericCode: 2}, domain.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := apppartida.NewUseCase(seededRepo(), nil)
			_, err := uc.Create(context.Background(), 1, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCreate_MismoCodigoEnOtroFlujo(t *testing.T) {
	uc := apppartida.NewUseCase(seededRepo(), nil)
	_, err := uc.Create(context.Background(), 1, dto.PartidaRequest{FlowType: "I", NumericCode: 10, AlphaCode: "CEM", Name: "Alquileres", Level: 1})
	assert.NoError(t, err)
}

func TestUpdate(t *testing.T) {
	t.Run("conservar el propio código es válido", func(t *testing.T) {
		repo := seededRepo()
		uc := apppartida.NewUseCase(repo, nil)
		got, err := uc.Update(context.Background(), 1, "e10", dto.PartidaRequest{
			FlowType: "E", NumericCode: 10, AlphaCode: "cem", Name: "Cemento Portland", Level: 2, ParentNumericCode: 1,
		})
		require.NoError(t, err)
		assert.Equal(t, "Cemento Portland", got.Name)
		assert.Equal(t, "1 - Materiales > 10 - Cemento Portland", got.FullPath)
		assert.Equal(t, "Cemento Portland", repo.items[1].Name)
	})

	t.Run("no existe", func(t *testing.T) {
		uc := apppartida.NewUseCase(seededRepo(), nil)
		_, err := uc.Update(context.Background(), 1, "x1", dto.PartidaRequest{FlowType: "E", NumericCode: 50, Name: "X", Level: 1})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("no cambia de flujo", func(t *testing.T) {
		uc := apppartida.NewUseCase(seededRepo(), nil)
		_, err := uc.Update(context.Background(), 1, "e10", dto.PartidaRequest{FlowType: "I", NumericCode: 10, Name: "X", Level: 1})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("código ocupado por otra partida", func(t *testing.T) {
		uc := apppartida.NewUseCase(seededRepo(), nil)
		_, err := uc.Update(context.Background(), 1, "e10", dto.PartidaRequest{FlowType: "E", NumericCode: 1, Name: "X", Level: 2, ParentNumericCode: 1})
		assert.ErrorIs(t, err, domain.ErrDuplicate)
	})

	t.Run("padre con hijas no cambia de código", func(t *testing.T) {
		uc := apppartida.NewUseCase(seededRepo(), nil)
		_, err := uc.Update(context.Background(), 1, "e1", dto.PartidaRequest{FlowType: "E", NumericCode: 2, Name: "Materiales", Level: 1})
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("padre con hijas no se mueve bajo su hija", func(t *testing.T) {
		repo := seededRepo()
		uc := apppartida.NewUseCase(repo, nil)
		_, err := uc.Update(context.Background(), 1, "e1", dto.PartidaRequest{
			FlowType: "E", NumericCode: 1, AlphaCode: "MAT", Name: "Materiales", Level: 3, ParentNumericCode: 10,
		})
		assert.ErrorIs(t, err, domain.ErrConflict)
		assert.Equal(t, 1, repo.items[0].Level)
		assert.Zero(t, repo.items[0].ParentNumericCode)
	})

	t.Run("padre con hijas no cambia de nivel", func(t *testing.T) {
		repo := seededRepo()
		repo.items = append(repo.items, entity.Partida{
			ID: "e2", CompanyID: 1, FlowType: entity.FlowExpense, NumericCode: 2, Name: "Obras", Level: 1, Active: true,
		})
		uc := apppartida.NewUseCase(repo, nil)
		_, err := uc.Update(context.Background(), 1, "e1", dto.PartidaRequest{
			FlowType: "E", NumericCode: 1, AlphaCode: "MAT", Name: "Materiales", Level: 2, ParentNumericCode: 2,
		})
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("hoja sin hijas puede cambiar de padre", func(t *testing.T) {
		repo := seededRepo()
		repo.items = append(repo.items, entity.Partida{
			ID: "e2", CompanyID: 1, FlowType: entity.FlowExpense, NumericCode: 2, Name: "Obras", Level: 1, Active: true,
		})
		uc := apppartida.NewUseCase(repo, nil)
		got, err := uc.Update(context.Background(), 1, "e10", dto.PartidaRequest{
			FlowType: "E", NumericCode: 10, AlphaCode: "CEM", Name: "Cemento", Level: 2, ParentNumericCode: 2,
		})
		require.NoError(t, err)
		assert.Equal(t, "2 - Obras > 10 - Cemento", got.FullPath)
	})
}

func TestHierarchy(t *testing.T) {
	repo := seededRepo()
	repo.items = append(repo.items, entity.Partida{
		ID: "e2", CompanyID: 1, FlowType: entity.FlowExpense, NumericCode: 2, Name: "Mano de obra", Level: 1, Active: false,
	})
	uc := apppartida.NewUseCase(repo, nil)

	all, err := uc.Hierarchy(context.Background(), 1, "", false)
	require.NoError(t, err)
	codes := make([]string, 0, len(all))
	for _, p := range all {
		codes = append(codes, p.FlowType+":"+p.FullPath)
	}
	assert.Equal(t, []string{
		"E:1 - Materiales",
		"E:1 - Materiales > 10 - Cemento",
		"E:2 - Mano de obra",
		"I:1 - Ventas",
	}, codes)

	active, err := uc.Hierarchy(context.Background(), 1, "e", true)
	require.NoError(t, err)
	assert.Len(t, active, 2)

	_, err = uc.Hierarchy(context.Background(), 1, "X", false)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestHierarchy_HijaActivaConPadreInactivoConservaRuta(t *testing.T) {
	repo := seededRepo()
	repo.items[0].Active = false
	uc := apppartida.NewUseCase(repo, nil)

	got, err := uc.Hierarchy(context.Background(), 1, "E", true)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Materiales", got[0].ParentName)
	assert.Equal(t, "1 - Materiales > 10 - Cemento", got[0].FullPath)
}

func TestValidateCode(t *testing.T) {
	uc := apppartida.NewUseCase(seededRepo(), nil)

	res, err := uc.ValidateCode(context.Background(), 1, dto.ValidateCodeRequest{FlowType: "E", NumericCode: 10, AlphaCode: "nuevo"})
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.False(t, res.Numeric.OK)
	assert.Contains(t, res.Numeric.Error, "10")
	assert.True(t, res.Alpha.OK)

	res, err = uc.ValidateCode(context.Background(), 1, dto.ValidateCodeRequest{
		FlowType: "E", NumericCode: 10, AlphaCode: "CEM", IsEditing: true, OriginalNumericCode: 10, OriginalAlphaCode: "cem",
	})
	require.NoError(t, err)
	assert.True(t, res.OK)

	_, err = uc.ValidateCode(context.Background(), 1, dto.ValidateCodeRequest{FlowType: ""})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
