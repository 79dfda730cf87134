// seed_partidas genera el script SQL que carga el catálogo de partidas de una
// empresa a partir de la exportación XML del sistema anterior.
//
// Uso: go run ./cmd/seed_partidas [ruta/partidas.xml] [company_id]
// Por defecto lee partidas.xml del directorio actual para la empresa 1.
// Escribe: internal/infrastructure/postgres/migrations/100_seed_partidas.sql
package main

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/jhoicas/presupuesto-api/pkg/logger"
)

func main() {
	log := logger.New(logger.Config{Env: "development", Level: "info", Service: "seed_partidas"})

	xmlPath := "partidas.xml"
	if len(os.Args) > 1 {
		xmlPath = os.Args[1]
	}
	companyID := 1
	if len(os.Args) > 2 {
		n, err := strconv.Atoi(os.Args[2])
		if err != nil || n <= 0 {
			log.Fatal().Str("company_id", os.Args[2]).Msg("company_id debe ser un entero positivo")
		}
		companyID = n
	}

	f, err := os.Open(xmlPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", xmlPath).Msg("abrir XML")
	}
	defer f.Close()

	rows, err := decodeCatalog(f)
	if err != nil {
		log.Fatal().Err(err).Msg("decodificar XML")
	}
	items := buildCatalog(rows, companyID, log)

	outPath := filepath.Join(findModuleRoot(), "internal", "infrastructure", "postgres", "migrations", "100_seed_partidas.sql")
	out, err := os.Create(outPath)
	if err != nil {
		log.Fatal().Err(err).Msg("crear archivo")
	}
	defer out.Close()

	if err := writeSQL(out, xmlPath, items); err != nil {
		log.Fatal().Err(err).Msg("escribir SQL")
	}
	log.Info().Str("path", outPath).Int("leidas", len(rows)).Int("generadas", len(items)).Msg("script generado")
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
