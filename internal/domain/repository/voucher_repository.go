package repository

import (
	"context"
	"time"

	"github.com/jhoicas/presupuesto-api/internal/domain/entity"
)

// VoucherRepository define el puerto de persistencia de comprobantes y sus líneas.
type VoucherRepository interface {
	// Create guarda cabecera y líneas. Debe ejecutarse dentro de una transacción.
	Create(ctx context.Context, v *entity.Voucher) error
	// GetByID devuelve (nil, nil) si el comprobante no existe en la empresa.
	GetByID(ctx context.Context, companyID int, id string) (*entity.Voucher, error)
	ListByCompany(ctx context.Context, companyID int) ([]entity.Voucher, error)
	UpdateStatus(ctx context.Context, companyID int, id, status string, at time.Time) error
}
