package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/presupuesto-api/internal/domain"
	"github.com/jhoicas/presupuesto-api/internal/domain/entity"
	"github.com/jhoicas/presupuesto-api/internal/domain/repository"
)

var _ repository.PartidaRepository = (*PartidaRepo)(nil)

// PartidaRepo implementación del puerto PartidaRepository sobre PostgreSQL.
type PartidaRepo struct {
	q Querier
}

// NewPartidaRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPartidaRepository(q Querier) *PartidaRepo {
	return &PartidaRepo{q: q}
}

const partidaColumns = `id, company_id, flow_type, numeric_code, COALESCE(alpha_code, ''), name, level,
	COALESCE(parent_numeric_code, 0), active, created_at, updated_at`

// Create persiste una partida. Los códigos repetidos devuelven domain.ErrDuplicate.
func (r *PartidaRepo) Create(ctx context.Context, p *entity.Partida) error {
	query := `
		INSERT INTO partidas (id, company_id, flow_type, numeric_code, alpha_code, name, level, parent_numeric_code, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, NULLIF($8, 0), $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.CompanyID, string(p.FlowType), p.NumericCode, p.AlphaCode, p.Name, p.Level,
		p.ParentNumericCode, p.Active, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert partida: %w", err)
	}
	return nil
}

// Update actualiza códigos, nombre, nivel, padre y estado. El tipo de flujo no cambia.
func (r *PartidaRepo) Update(ctx context.Context, p *entity.Partida) error {
	query := `
		UPDATE partidas SET numeric_code = $3, alpha_code = NULLIF($4, ''), name = $5, level = $6,
			parent_numeric_code = NULLIF($7, 0), active = $8, updated_at = $9
		WHERE id = $1 AND company_id = $2`
	cmd, err := r.q.Exec(ctx, query,
		p.ID, p.CompanyID, p.NumericCode, p.AlphaCode, p.Name, p.Level, p.ParentNumericCode, p.Active, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update partida: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID obtiene una partida de la empresa por ID.
func (r *PartidaRepo) GetByID(ctx context.Context, companyID int, id string) (*entity.Partida, error) {
	query := `SELECT ` + partidaColumns + ` FROM partidas WHERE id = $1 AND company_id = $2`
	p, err := scanPartida(r.q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get partida: %w", err)
	}
	return &p, nil
}

// ListByCompany lista el catálogo de la empresa ordenado por flujo y código.
func (r *PartidaRepo) ListByCompany(ctx context.Context, companyID int) ([]entity.Partida, error) {
	query := `SELECT ` + partidaColumns + ` FROM partidas WHERE company_id = $1 ORDER BY flow_type, numeric_code`
	rows, err := r.q.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("list partidas: %w", err)
	}
	defer rows.Close()
	var list []entity.Partida
	for rows.Next() {
		p, err := scanPartida(rows)
		if err != nil {
			return nil, fmt.Errorf("scan partida: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func scanPartida(row pgx.Row) (entity.Partida, error) {
	var p entity.Partida
	var flow string
	err := row.Scan(&p.ID, &p.CompanyID, &flow, &p.NumericCode, &p.AlphaCode, &p.Name, &p.Level,
		&p.ParentNumericCode, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	p.FlowType = entity.FlowType(flow)
	return p, err
}
