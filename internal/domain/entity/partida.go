package entity

import "time"

// FlowType distingue partidas de Ingreso y de Egreso. Particiona todas las reglas
// de unicidad y de jerarquía.
type FlowType string

const (
	FlowIncome  FlowType = "I"
	FlowExpense FlowType = "E"
)

// Label devuelve el nombre legible del tipo de flujo.
func (f FlowType) Label() string {
	switch f {
	case FlowIncome:
		return "Ingreso"
	case FlowExpense:
		return "Egreso"
	default:
		return string(f)
	}
}

// Valid indica si el tipo de flujo es uno de los conocidos.
func (f FlowType) Valid() bool {
	return f == FlowIncome || f == FlowExpense
}

// MaxPartidaLevel es la profundidad máxima del árbol de partidas.
const MaxPartidaLevel = 3

// Partida representa una partida presupuestal del catálogo de la empresa.
// La jerarquía se expresa solo con ParentNumericCode (0 = sin padre).
type Partida struct {
	ID                string
	CompanyID         int
	FlowType          FlowType
	NumericCode       int    // único por (CompanyID, FlowType)
	AlphaCode         string // opcional; único por (CompanyID, FlowType) sin distinguir mayúsculas
	Name              string
	Level             int // 1 = raíz
	ParentNumericCode int
	Active            bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// SelfReferenced indica que la partida apunta a sí misma como padre.
func (p Partida) SelfReferenced() bool {
	return p.ParentNumericCode != 0 && p.ParentNumericCode == p.NumericCode
}

// HasParent es falso si no hay código de padre o si es una autorreferencia.
func (p Partida) HasParent() bool {
	return p.ParentNumericCode != 0 && !p.SelfReferenced()
}

// EnrichedPartida es una partida con los datos de su padre y la ruta completa
// desde la raíz ("1 - Obra > 10 - Materiales").
type EnrichedPartida struct {
	Partida
	ParentName      string
	ParentAlphaCode string
	FullPath        string
}
