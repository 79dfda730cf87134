package repository

import (
	"context"

	"github.com/jhoicas/presupuesto-api/internal/domain/entity"
)

// PartidaRepository define el puerto de persistencia del catálogo de partidas.
type PartidaRepository interface {
	Create(ctx context.Context, p *entity.Partida) error
	Update(ctx context.Context, p *entity.Partida) error
	// GetByID devuelve (nil, nil) si la partida no existe en la empresa.
	GetByID(ctx context.Context, companyID int, id string) (*entity.Partida, error)
	// ListByCompany devuelve el catálogo completo de la empresa (ambos flujos).
	ListByCompany(ctx context.Context, companyID int) ([]entity.Partida, error)
}
