// Package partida contiene la lógica pura sobre el catálogo de partidas:
// construcción de la jerarquía (orden padre→hijos y ruta completa) y las
// reglas de unicidad de códigos. No hace I/O.
//
// La jerarquía nunca se materializa como árbol de punteros: todo recorrido es
// una búsqueda en un índice (tipo de flujo, código numérico) → partida.
package partida

import (
	"sort"
	"strconv"
	"strings"

	"github.com/jhoicas/presupuesto-api/internal/domain/entity"
)

// PathSeparator separa los segmentos de la ruta completa.
const PathSeparator = " > "

// flowOrder orden fijo de procesamiento de particiones: Egreso antes que Ingreso.
var flowOrder = []entity.FlowType{entity.FlowExpense, entity.FlowIncome}

type key struct {
	flow entity.FlowType
	code int
}

// Index resuelve partidas por (tipo de flujo, código numérico).
// Si el código se repite, gana la primera aparición.
type Index struct {
	byKey map[key]entity.Partida
}

// NewIndex construye el índice sobre items.
func NewIndex(items []entity.Partida) Index {
	idx := Index{byKey: make(map[key]entity.Partida, len(items))}
	for _, p := range items {
		k := key{p.FlowType, p.NumericCode}
		if _, ok := idx.byKey[k]; !ok {
			idx.byKey[k] = p
		}
	}
	return idx
}

// Lookup busca la partida con ese código en el tipo de flujo dado.
func (ix Index) Lookup(flow entity.FlowType, code int) (entity.Partida, bool) {
	p, ok := ix.byKey[key{flow, code}]
	return p, ok
}

// Parent devuelve el padre resoluble de p. Sin código de padre, autorreferencia
// o padre ausente equivalen a "sin padre".
func (ix Index) Parent(p entity.Partida) (entity.Partida, bool) {
	if !p.HasParent() {
		return entity.Partida{}, false
	}
	return ix.Lookup(p.FlowType, p.ParentNumericCode)
}

// Segment formato de un segmento de ruta: "<código> - <nombre>".
func Segment(p entity.Partida) string {
	return strconv.Itoa(p.NumericCode) + " - " + p.Name
}

// BuildFullPath recorre desde item hasta la raíz anteponiendo cada segmento.
// Termina aunque existan ciclos: un código ya visitado corta el recorrido.
func BuildFullPath(item entity.Partida, idx Index) string {
	segments := []string{Segment(item)}
	visited := map[int]bool{item.NumericCode: true}
	current := item
	for {
		parent, ok := idx.Parent(current)
		if !ok || visited[parent.NumericCode] {
			break
		}
		visited[parent.NumericCode] = true
		segments = append(segments, Segment(parent))
		current = parent
	}
	for i, j := 0, len(segments)-1; i < j; i, j = i+1, j-1 {
		segments[i], segments[j] = segments[j], segments[i]
	}
	return strings.Join(segments, PathSeparator)
}

// SortHierarchically devuelve una permutación de items en la que cada hijo
// aparece inmediatamente bajo su padre (recorrido en profundidad), con hermanos
// ordenados por código numérico ascendente.
//
// Por partición (Egreso, luego Ingreso, luego cualquier otro tipo):
//  1. raíces declaradas (nivel 1 sin padre resoluble, o autorreferenciadas);
//  2. huérfanas cuyo padre no está en la lista, como pseudo-raíces;
//  3. lo que quede (solo ocurre con ciclos), también como pseudo-raíces.
//
// Nunca pierde ni duplica elementos: se marca lo emitido por posición.
func SortHierarchically(items []entity.Partida) []entity.Partida {
	out := make([]entity.Partida, 0, len(items))
	emitted := make([]bool, len(items))

	partitions := make(map[entity.FlowType][]int)
	for i, p := range items {
		partitions[p.FlowType] = append(partitions[p.FlowType], i)
	}

	for _, flow := range partitionOrder(partitions) {
		members := partitions[flow]
		sortByCode(items, members)

		present := make(map[int]bool, len(members))
		children := make(map[int][]int)
		for _, i := range members {
			present[items[i].NumericCode] = true
		}
		for _, i := range members {
			p := items[i]
			if p.HasParent() {
				children[p.ParentNumericCode] = append(children[p.ParentNumericCode], i)
			}
		}

		var emit func(i int)
		emit = func(i int) {
			if emitted[i] {
				return
			}
			emitted[i] = true
			out = append(out, items[i])
			for _, c := range children[items[i].NumericCode] {
				emit(c)
			}
		}

		resolvable := func(p entity.Partida) bool {
			return p.HasParent() && present[p.ParentNumericCode]
		}
		for _, i := range members {
			p := items[i]
			if (p.Level == 1 && !resolvable(p)) || p.SelfReferenced() {
				emit(i)
			}
		}
		for _, i := range members {
			if !resolvable(items[i]) {
				emit(i)
			}
		}
		for _, i := range members {
			emit(i)
		}
	}
	return out
}

// BuildPartidaHierarchy ordena items jerárquicamente y los enriquece con el
// nombre y código alfanumérico del padre y la ruta completa. Los padres se
// resuelven contra lookup; si es nil, contra items.
func BuildPartidaHierarchy(items, lookup []entity.Partida) []entity.EnrichedPartida {
	if lookup == nil {
		lookup = items
	}
	idx := NewIndex(lookup)
	sorted := SortHierarchically(items)
	out := make([]entity.EnrichedPartida, 0, len(sorted))
	for _, p := range sorted {
		e := entity.EnrichedPartida{Partida: p, FullPath: BuildFullPath(p, idx)}
		if parent, ok := idx.Parent(p); ok {
			e.ParentName = parent.Name
			e.ParentAlphaCode = parent.AlphaCode
		}
		out = append(out, e)
	}
	return out
}

// LeafCodes devuelve los códigos de items que no tienen hijos en su mismo tipo
// de flujo (nivel más profundo de su rama).
func LeafCodes(items []entity.Partida, flow entity.FlowType) map[int]bool {
	hasChild := make(map[int]bool)
	for _, p := range items {
		if p.FlowType == flow && p.HasParent() {
			hasChild[p.ParentNumericCode] = true
		}
	}
	leaves := make(map[int]bool)
	for _, p := range items {
		if p.FlowType == flow && !hasChild[p.NumericCode] {
			leaves[p.NumericCode] = true
		}
	}
	return leaves
}

func partitionOrder(partitions map[entity.FlowType][]int) []entity.FlowType {
	order := make([]entity.FlowType, 0, len(partitions))
	known := make(map[entity.FlowType]bool, len(flowOrder))
	for _, f := range flowOrder {
		known[f] = true
		if _, ok := partitions[f]; ok {
			order = append(order, f)
		}
	}
	var rest []entity.FlowType
	for f := range partitions {
		if !known[f] {
			rest = append(rest, f)
		}
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i] < rest[j] })
	return append(order, rest...)
}

// sortByCode ordena índices por código numérico; empates por posición original.
func sortByCode(items []entity.Partida, idx []int) {
	sort.SliceStable(idx, func(a, b int) bool {
		return items[idx[a]].NumericCode < items[idx[b]].NumericCode
	})
}
