package main

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/presupuesto-api/internal/domain/entity"
	"github.com/jhoicas/presupuesto-api/internal/domain/partida"
	"github.com/jhoicas/presupuesto-api/pkg/logger"
)

// partidasXML raíz de la exportación: <partidas><partida .../></partidas>.
type partidasXML struct {
	Partidas []partidaXML `xml:"partida"`
}

type partidaXML struct {
	Codigo string `xml:"codigo,attr"`
	Alfa   string `xml:"alfa,attr"`
	Nombre string `xml:"nombre,attr"`
	Nivel  string `xml:"nivel,attr"`
	Padre  string `xml:"padre,attr"`
	Tipo   string `xml:"tipo,attr"`
}

// decodeCatalog lee el XML; las exportaciones antiguas vienen en ISO-8859-1.
func decodeCatalog(r io.Reader) ([]partidaXML, error) {
	var p partidasXML
	dec := xml.NewDecoder(r)
	dec.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		switch strings.ToUpper(charset) {
		case "ISO-8859-1", "ISO8859-1", "LATIN1":
			return transform.NewReader(input, charmap.ISO8859_1.NewDecoder()), nil
		case "WINDOWS-1252":
			return transform.NewReader(input, charmap.Windows1252.NewDecoder()), nil
		}
		return input, nil
	}
	if err := dec.Decode(&p); err != nil {
		return nil, err
	}
	return p.Partidas, nil
}

// buildCatalog convierte las filas en partidas. Las filas incompletas y los
// códigos repetidos dentro del mismo tipo se omiten con un aviso.
func buildCatalog(rows []partidaXML, companyID int, log *logger.Logger) []entity.Partida {
	out := make([]entity.Partida, 0, len(rows))
	for i, r := range rows {
		p, err := toPartida(r, companyID)
		if err != nil {
			log.Warn().Int("fila", i+1).Err(err).Msg("partida omitida")
			continue
		}
		if res := partida.ValidateNumericCodeUnique(p.NumericCode, p.FlowType, out, false, 0); !res.OK {
			log.Warn().Int("fila", i+1).Str("motivo", res.Error).Msg("partida duplicada omitida")
			continue
		}
		if res := partida.ValidateAlphaCodeUnique(p.AlphaCode, p.FlowType, out, false, ""); !res.OK {
			log.Warn().Int("fila", i+1).Str("motivo", res.Error).Msg("partida duplicada omitida")
			continue
		}
		out = append(out, p)
	}
	return out
}

func toPartida(r partidaXML, companyID int) (entity.Partida, error) {
	code, err := strconv.Atoi(strings.TrimSpace(r.Codigo))
	if err != nil || code <= 0 {
		return entity.Partida{}, fmt.Errorf("código inválido %q", r.Codigo)
	}
	flow := entity.FlowType(strings.ToUpper(strings.TrimSpace(r.Tipo)))
	if !flow.Valid() {
		return entity.Partida{}, fmt.Errorf("tipo inválido %q en la partida %d", r.Tipo, code)
	}
	name := strings.TrimSpace(r.Nombre)
	if name == "" {
		return entity.Partida{}, fmt.Errorf("la partida %d no tiene nombre", code)
	}
	level, err := strconv.Atoi(strings.TrimSpace(r.Nivel))
	if err != nil || level < 1 || level > 3 {
		return entity.Partida{}, fmt.Errorf("nivel inválido %q en la partida %d", r.Nivel, code)
	}
	parent := 0
	if s := strings.TrimSpace(r.Padre); s != "" {
		if parent, err = strconv.Atoi(s); err != nil {
			return entity.Partida{}, fmt.Errorf("padre inválido %q en la partida %d", r.Padre, code)
		}
	}
	return entity.Partida{
		ID:                seedID(companyID, flow, code).String(),
		CompanyID:         companyID,
		FlowType:          flow,
		NumericCode:       code,
		AlphaCode:         partida.NormalizeAlphaCode(r.Alfa),
		Name:              name,
		Level:             level,
		ParentNumericCode: parent,
		Active:            true,
	}, nil
}

// seedID id estable por (empresa, tipo, código) para que regenerar el script no cambie los ids.
func seedID(companyID int, flow entity.FlowType, code int) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("partida/%d/%s/%d", companyID, flow, code)))
}

// writeSQL escribe los INSERT en orden jerárquico (padres antes que hijos).
func writeSQL(w io.Writer, source string, items []entity.Partida) error {
	var b strings.Builder
	b.WriteString("-- Catálogo de partidas presupuestales\n")
	fmt.Fprintf(&b, "-- Generado desde %s\n\n", source)
	for _, p := range partida.SortHierarchically(items) {
		b.WriteString("INSERT INTO partidas (id, company_id, flow_type, numeric_code, alpha_code, name, level, parent_numeric_code, active)\n")
		fmt.Fprintf(&b, "VALUES ('%s', %d, '%s', %d, %s, '%s', %d, %s, TRUE)\n",
			p.ID, p.CompanyID, p.FlowType, p.NumericCode, nullableText(p.AlphaCode), escapeSQL(p.Name), p.Level, nullableInt(p.ParentNumericCode))
		b.WriteString("ON CONFLICT (company_id, flow_type, numeric_code) DO UPDATE SET name = EXCLUDED.name, level = EXCLUDED.level, parent_numeric_code = EXCLUDED.parent_numeric_code;\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func nullableText(s string) string {
	if s == "" {
		return "NULL"
	}
	return "'" + escapeSQL(s) + "'"
}

func nullableInt(n int) string {
	if n == 0 {
		return "NULL"
	}
	return strconv.Itoa(n)
}
