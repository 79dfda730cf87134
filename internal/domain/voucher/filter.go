// Package voucher contiene filtros puros sobre colecciones de comprobantes ya
// armadas, usados por los listados.
package voucher

import (
	"strconv"
	"strings"

	"github.com/jhoicas/presupuesto-api/internal/domain/entity"
)

// FilterAll valor centinela que desactiva un filtro.
const FilterAll = "all"

// FilterByProject conserva los comprobantes del proyecto indicado. "all", vacío
// o un valor no numérico devuelven una copia de la entrada sin filtrar.
func FilterByProject(vouchers []entity.Voucher, projectIDOrAll string) []entity.Voucher {
	id, ok := parseFilter(projectIDOrAll)
	if !ok {
		return clone(vouchers)
	}
	return keep(vouchers, func(v entity.Voucher) bool { return v.ProjectID == id })
}

// FilterByCounterparty conserva los comprobantes de la contraparte indicada:
// el empleado en egresos a empleados, el proveedor/cliente en los demás.
func FilterByCounterparty(vouchers []entity.Voucher, idOrAll string) []entity.Voucher {
	id, ok := parseFilter(idOrAll)
	if !ok {
		return clone(vouchers)
	}
	return keep(vouchers, func(v entity.Voucher) bool { return v.CounterpartyID() == id })
}

func parseFilter(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, FilterAll) {
		return 0, false
	}
	id, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return id, true
}

func keep(vouchers []entity.Voucher, pred func(entity.Voucher) bool) []entity.Voucher {
	out := make([]entity.Voucher, 0, len(vouchers))
	for _, v := range vouchers {
		if pred(v) {
			out = append(out, v)
		}
	}
	return out
}

func clone(vouchers []entity.Voucher) []entity.Voucher {
	return append(make([]entity.Voucher, 0, len(vouchers)), vouchers...)
}
