package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/presupuesto-api/internal/domain"
	"github.com/jhoicas/presupuesto-api/internal/domain/entity"
	"github.com/jhoicas/presupuesto-api/internal/domain/repository"
)

var _ repository.VoucherRepository = (*VoucherRepo)(nil)

// VoucherRepo implementación del puerto VoucherRepository sobre PostgreSQL.
type VoucherRepo struct {
	q Querier
}

// NewVoucherRepository construye el adaptador. Pasar pool o tx (Querier).
func NewVoucherRepository(q Querier) *VoucherRepo {
	return &VoucherRepo{q: q}
}

const voucherColumns = `id, company_id, kind, document_type, document_number, project_id,
	COALESCE(provider_id, 0), COALESCE(client_id, 0), COALESCE(employee_id, 0), date, currency,
	exchange_rate, manual_tax_percent, net_total, tax_total, grand_total, status, created_at, updated_at`

// Create inserta cabecera y líneas. Los rechazos de los triggers (partida que
// no es hoja, partida duplicada, total negativo) se devuelven con su mensaje.
func (r *VoucherRepo) Create(ctx context.Context, v *entity.Voucher) error {
	header := `
		INSERT INTO vouchers (id, company_id, kind, document_type, document_number, project_id, provider_id, client_id,
			employee_id, date, currency, exchange_rate, manual_tax_percent, net_total, tax_total, grand_total, status,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, 0), NULLIF($8, 0), NULLIF($9, 0), $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`
	_, err := r.q.Exec(ctx, header,
		v.ID, v.CompanyID, string(v.Kind), v.DocumentType, v.DocumentNumber, v.ProjectID,
		v.ProviderID, v.ClientID, v.EmployeeID, v.Date, v.Currency, v.ExchangeRate, v.ManualTaxPercent,
		v.NetTotal, v.TaxTotal, v.GrandTotal, v.Status, v.CreatedAt, v.UpdatedAt,
	)
	if err != nil {
		return saveError("insert voucher", err)
	}

	line := `
		INSERT INTO voucher_lines (id, voucher_id, sequence, partida_code, partida_name, net_amount, tax_amount,
			total_amount, available_amount, execution_percent, alert_level)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NULLIF($11, ''))`
	for _, l := range v.Lines {
		_, err := r.q.Exec(ctx, line,
			l.ID, v.ID, l.Sequence, l.PartidaCode, l.PartidaName, l.NetAmount, l.TaxAmount, l.TotalAmount,
			l.AvailableAmount, l.ExecutionPercent, string(l.AlertLevel),
		)
		if err != nil {
			return saveError("insert voucher line", err)
		}
	}
	return nil
}

// GetByID obtiene el comprobante con sus líneas.
func (r *VoucherRepo) GetByID(ctx context.Context, companyID int, id string) (*entity.Voucher, error) {
	query := `SELECT ` + voucherColumns + ` FROM vouchers WHERE id = $1 AND company_id = $2`
	v, err := scanVoucher(r.q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get voucher: %w", err)
	}
	lines, err := r.linesByVoucher(ctx, []string{v.ID})
	if err != nil {
		return nil, err
	}
	v.Lines = lines[v.ID]
	return &v, nil
}

// ListByCompany lista los comprobantes de la empresa (más recientes primero) con sus líneas.
func (r *VoucherRepo) ListByCompany(ctx context.Context, companyID int) ([]entity.Voucher, error) {
	query := `SELECT ` + voucherColumns + ` FROM vouchers WHERE company_id = $1 ORDER BY date DESC, created_at DESC`
	rows, err := r.q.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("list vouchers: %w", err)
	}
	var list []entity.Voucher
	for rows.Next() {
		v, err := scanVoucher(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan voucher: %w", err)
		}
		list = append(list, v)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list vouchers: %w", err)
	}
	if len(list) == 0 {
		return list, nil
	}

	ids := make([]string, len(list))
	for i, v := range list {
		ids[i] = v.ID
	}
	lines, err := r.linesByVoucher(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range list {
		list[i].Lines = lines[list[i].ID]
	}
	return list, nil
}

// UpdateStatus cambia el estado del comprobante.
func (r *VoucherRepo) UpdateStatus(ctx context.Context, companyID int, id, status string, at time.Time) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE vouchers SET status = $3, updated_at = $4 WHERE id = $1 AND company_id = $2`,
		id, companyID, status, at,
	)
	if err != nil {
		return fmt.Errorf("update voucher status: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *VoucherRepo) linesByVoucher(ctx context.Context, ids []string) (map[string][]entity.VoucherLine, error) {
	query := `
		SELECT id, voucher_id, sequence, partida_code, partida_name, net_amount, tax_amount, total_amount,
			available_amount, execution_percent, COALESCE(alert_level, '')
		FROM voucher_lines WHERE voucher_id = ANY($1) ORDER BY voucher_id, sequence`
	rows, err := r.q.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("list voucher lines: %w", err)
	}
	defer rows.Close()
	out := make(map[string][]entity.VoucherLine, len(ids))
	for rows.Next() {
		var l entity.VoucherLine
		var level string
		if err := rows.Scan(&l.ID, &l.VoucherID, &l.Sequence, &l.PartidaCode, &l.PartidaName, &l.NetAmount,
			&l.TaxAmount, &l.TotalAmount, &l.AvailableAmount, &l.ExecutionPercent, &level); err != nil {
			return nil, fmt.Errorf("scan voucher line: %w", err)
		}
		l.AlertLevel = entity.AlertLevel(level)
		out[l.VoucherID] = append(out[l.VoucherID], l)
	}
	return out, rows.Err()
}

func scanVoucher(row pgx.Row) (entity.Voucher, error) {
	var v entity.Voucher
	var kind string
	var manual decimal.NullDecimal
	err := row.Scan(&v.ID, &v.CompanyID, &kind, &v.DocumentType, &v.DocumentNumber, &v.ProjectID,
		&v.ProviderID, &v.ClientID, &v.EmployeeID, &v.Date, &v.Currency, &v.ExchangeRate, &manual,
		&v.NetTotal, &v.TaxTotal, &v.GrandTotal, &v.Status, &v.CreatedAt, &v.UpdatedAt)
	v.Kind = entity.VoucherKind(kind)
	v.ManualTaxPercent = manual
	return v, err
}

// saveError traduce los errores de inserción; los RAISE de los triggers
// conservan su texto para que el caso de uso los reetiquete.
func saveError(op string, err error) error {
	if msg, ok := raisedMessage(err); ok {
		return fmt.Errorf("%s: %s", op, msg)
	}
	if isUniqueViolation(err) {
		return fmt.Errorf("%s: %w", op, domain.ErrDuplicate)
	}
	return fmt.Errorf("%s: %w", op, err)
}
