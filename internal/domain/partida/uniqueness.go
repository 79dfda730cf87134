package partida

import (
	"fmt"
	"strings"

	"github.com/jhoicas/presupuesto-api/internal/domain/entity"
)

// ValidationResult resultado de una regla de unicidad. Error solo viene
// informado cuando OK es falso.
type ValidationResult struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

func valid() ValidationResult { return ValidationResult{OK: true} }

func invalid(format string, args ...any) ValidationResult {
	return ValidationResult{OK: false, Error: fmt.Sprintf(format, args...)}
}

// ValidateNumericCodeUnique comprueba que code no exista ya en existing dentro
// del mismo tipo de flujo. Al editar, conservar el código original siempre es válido.
func ValidateNumericCodeUnique(code int, flow entity.FlowType, existing []entity.Partida, isEditing bool, originalCode int) ValidationResult {
	if isEditing && code == originalCode {
		return valid()
	}
	for _, p := range existing {
		if p.NumericCode == code && p.FlowType == flow {
			return invalid("ya existe una partida de %s con el código numérico %d", flow.Label(), code)
		}
	}
	return valid()
}

// NormalizeAlphaCode forma canónica de comparación del código alfanumérico.
func NormalizeAlphaCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidateAlphaCodeUnique igual que ValidateNumericCodeUnique para el código
// alfanumérico, sin distinguir mayúsculas ni espacios en los extremos.
// El código es opcional: vacío siempre es válido.
func ValidateAlphaCodeUnique(code string, flow entity.FlowType, existing []entity.Partida, isEditing bool, originalCode string) ValidationResult {
	normalized := NormalizeAlphaCode(code)
	if normalized == "" {
		return valid()
	}
	if isEditing && normalized == NormalizeAlphaCode(originalCode) {
		return valid()
	}
	for _, p := range existing {
		if p.FlowType == flow && NormalizeAlphaCode(p.AlphaCode) == normalized {
			return invalid("ya existe una partida de %s con el código alfanumérico %q", flow.Label(), normalized)
		}
	}
	return valid()
}
