package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/presupuesto-api/internal/application/budget"
	"github.com/jhoicas/presupuesto-api/internal/application/partida"
	"github.com/jhoicas/presupuesto-api/internal/application/voucher"
	"github.com/jhoicas/presupuesto-api/internal/domain/tax"
	"github.com/jhoicas/presupuesto-api/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	PartidaUC      *partida.UseCase
	VoucherUC      *voucher.UseCase
	ExpenseChecker *budget.ExpenseChecker
	ReportUC       *budget.ReportUseCase
	TaxCalculator  tax.Calculator
	JWTSecret      string
}

// Router registra las rutas de la API. Todas requieren Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))
	editors := RequireRole(jwt.RoleAdmin, jwt.RoleContador)

	// Partidas
	partidas := api.Group("/partidas")
	partidaHandler := NewPartidaHandler(deps.PartidaUC)
	partidas.Get("/hierarchy", partidaHandler.Hierarchy)
	partidas.Post("/validate-code", partidaHandler.ValidateCode)
	partidas.Post("/", editors, partidaHandler.Create)
	partidas.Put("/:id", editors, partidaHandler.Update)

	// Comprobantes
	vouchers := api.Group("/vouchers")
	voucherHandler := NewVoucherHandler(deps.VoucherUC)
	vouchers.Post("/", voucherHandler.Create)
	vouchers.Get("/", voucherHandler.List)
	vouchers.Get("/:id", voucherHandler.GetByID)
	vouchers.Post("/:id/void", RequireRole(jwt.RoleAdmin), voucherHandler.Void)

	// Presupuesto
	budgetGroup := api.Group("/budget")
	budgetHandler := NewBudgetHandler(deps.ExpenseChecker, deps.ReportUC)
	budgetGroup.Post("/check", budgetHandler.Check)
	budgetGroup.Get("/execution", budgetHandler.Execution)
	budgetGroup.Get("/report", budgetHandler.Report)

	// Impuestos
	taxHandler := NewTaxHandler(deps.TaxCalculator)
	api.Post("/tax/compute", taxHandler.Compute)
}
