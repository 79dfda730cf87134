package budget

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/presupuesto-api/internal/domain"
	domainbudget "github.com/jhoicas/presupuesto-api/internal/domain/budget"
	"github.com/jhoicas/presupuesto-api/internal/domain/entity"
	"github.com/jhoicas/presupuesto-api/internal/domain/partida"
	"github.com/jhoicas/presupuesto-api/internal/domain/repository"
)

// ReportUseCase arma el reporte de ejecución presupuestal de un proyecto.
type ReportUseCase struct {
	partidaRepo repository.PartidaRepository
	budgetRepo  repository.BudgetRepository
	generator   ExecutionReportGenerator
	now         func() time.Time
}

// NewReportUseCase construye el caso de uso.
func NewReportUseCase(
	partidaRepo repository.PartidaRepository,
	budgetRepo repository.BudgetRepository,
	generator ExecutionReportGenerator,
) *ReportUseCase {
	return &ReportUseCase{
		partidaRepo: partidaRepo,
		budgetRepo:  budgetRepo,
		generator:   generator,
		now:         time.Now,
	}
}

// Build devuelve las filas del reporte: las partidas de egreso en orden
// jerárquico, cada una con su ejecución y semáforo si tiene asignación.
func (uc *ReportUseCase) Build(ctx context.Context, companyID, projectID int) (*ExecutionReport, error) {
	if companyID == 0 || projectID == 0 {
		return nil, domain.ErrInvalidInput
	}
	catalog, err := uc.partidaRepo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("reporte: listar partidas: %w", err)
	}
	execs, err := uc.budgetRepo.ListByProject(ctx, companyID, projectID)
	if err != nil {
		return nil, fmt.Errorf("reporte: ejecución del proyecto: %w", err)
	}
	byCode := make(map[int]entity.BudgetExecution, len(execs))
	for _, e := range execs {
		byCode[e.PartidaCode] = e
	}

	var expense []entity.Partida
	for _, p := range catalog {
		if p.FlowType == entity.FlowExpense {
			expense = append(expense, p)
		}
	}
	report := &ExecutionReport{CompanyID: companyID, ProjectID: projectID, GeneratedAt: uc.now()}
	for _, ep := range partida.BuildPartidaHierarchy(expense, catalog) {
		row := ReportRow{Partida: ep}
		if e, ok := byCode[ep.NumericCode]; ok {
			row.Execution = e
			row.HasExecution = true
			row.Level = domainbudget.ClassifyExecution(e.ExecutionPercent)
		}
		report.Rows = append(report.Rows, row)
	}
	return report, nil
}

// ExecutionReport genera el PDF del reporte y el nombre sugerido del archivo.
func (uc *ReportUseCase) ExecutionReport(ctx context.Context, companyID, projectID int) ([]byte, string, error) {
	report, err := uc.Build(ctx, companyID, projectID)
	if err != nil {
		return nil, "", err
	}
	pdf, err := uc.generator.GenerateExecutionReport(ctx, *report)
	if err != nil {
		return nil, "", fmt.Errorf("reporte: generar PDF: %w", err)
	}
	filename := fmt.Sprintf("ejecucion_proyecto_%d_%s.pdf", projectID, report.GeneratedAt.Format("20060102"))
	return pdf, filename, nil
}

// Execution ejecución actual de una partida en un proyecto.
func (uc *ReportUseCase) Execution(ctx context.Context, companyID, projectID, partidaCode int) (entity.BudgetExecution, error) {
	if companyID == 0 || projectID == 0 || partidaCode == 0 {
		return entity.BudgetExecution{}, domain.ErrInvalidInput
	}
	return uc.budgetRepo.GetAvailableBudget(ctx, companyID, projectID, partidaCode)
}
