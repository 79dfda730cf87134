package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/presupuesto-api/internal/application/budget"
	"github.com/jhoicas/presupuesto-api/internal/application/dto"
	"github.com/jhoicas/presupuesto-api/internal/application/partida"
	"github.com/jhoicas/presupuesto-api/internal/application/voucher"
	"github.com/jhoicas/presupuesto-api/internal/domain/tax"
	infrapdf "github.com/jhoicas/presupuesto-api/internal/infrastructure/pdf"
	"github.com/jhoicas/presupuesto-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/presupuesto-api/internal/interfaces/http"
	"github.com/jhoicas/presupuesto-api/pkg/config"
	"github.com/jhoicas/presupuesto-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("igv", cfg.Budget.IGVRate.String()).
		Str("currency", cfg.Budget.BaseCurrency).
		Msg("iniciando aplicación")
	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es obligatorio")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	partidaRepo := postgres.NewPartidaRepository(pool)
	voucherRepo := postgres.NewVoucherRepository(pool)
	budgetRepo := postgres.NewBudgetRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	calc := tax.NewCalculator(cfg.Budget.IGVRate)
	checker := budget.NewExpenseChecker(budgetRepo, cfg.Budget.LookupConcurrency, log)
	reportUC := budget.NewReportUseCase(partidaRepo, budgetRepo, infrapdf.NewMarotoReportGenerator())
	partidaUC := partida.NewUseCase(partidaRepo, log)
	voucherUC := voucher.NewUseCase(
		txRunner, voucherRepo, partidaRepo, checker, calc,
		voucher.NewValidator(cfg.Budget.BaseCurrency, cfg.Budget.MaxLineAmount),
		log,
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Presupuesto API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(dto.HealthResponse{Status: "ok", App: cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		PartidaUC:      partidaUC,
		VoucherUC:      voucherUC,
		ExpenseChecker: checker,
		ReportUC:       reportUC,
		TaxCalculator:  calc,
		JWTSecret:      cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
