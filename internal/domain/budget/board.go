package budget

import "github.com/jhoicas/presupuesto-api/internal/domain/entity"

// AlertBoard lista ordenada de alertas visibles de una sesión de formulario.
// No es segura para uso concurrente.
type AlertBoard struct {
	alerts []entity.Alert
}

// Add agrega alertas al final.
func (b *AlertBoard) Add(alerts ...entity.Alert) {
	b.alerts = append(b.alerts, alerts...)
}

// Replace sustituye todas las alertas.
func (b *AlertBoard) Replace(alerts []entity.Alert) {
	b.alerts = append([]entity.Alert(nil), alerts...)
}

// Dismiss descarta la alerta con ese id. Devuelve false si no existía.
func (b *AlertBoard) Dismiss(id string) bool {
	for i, a := range b.alerts {
		if a.ID == id {
			b.alerts = append(b.alerts[:i], b.alerts[i+1:]...)
			return true
		}
	}
	return false
}

// List copia de las alertas visibles.
func (b *AlertBoard) List() []entity.Alert {
	return append([]entity.Alert(nil), b.alerts...)
}

// HasBlocking indica si alguna alerta es de tipo error (presupuesto excedido).
func (b *AlertBoard) HasBlocking() bool {
	for _, a := range b.alerts {
		if a.Kind == entity.AlertError {
			return true
		}
	}
	return false
}
