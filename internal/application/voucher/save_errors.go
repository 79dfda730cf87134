package voucher

import (
	"errors"
	"fmt"
	"strings"
)

// Rechazos de negocio devueltos al guardar un comprobante.
var (
	ErrPartidaNotLeaf       = errors.New("la partida solo es válida en el último nivel de la jerarquía")
	ErrPartidaDuplicated    = errors.New("el comprobante repite una partida")
	ErrNegativeReceiptTotal = errors.New("el total de un recibo por honorarios no puede ser negativo")
)

// saveErrorPatterns textos con los que la persistencia informa esos rechazos
// cuando no llegan tipados.
var saveErrorPatterns = []struct {
	fragment string
	err      error
}{
	{"nivel", ErrPartidaNotLeaf},
	{"duplicada", ErrPartidaDuplicated},
	{"negativo", ErrNegativeReceiptTotal},
}

// RelabelSaveError traduce un error de guardado a uno de los rechazos
// conocidos conservando el error original en la cadena. Si el error ya es uno
// de ellos o no coincide con ningún patrón, se devuelve sin cambios.
func RelabelSaveError(err error) error {
	if err == nil {
		return nil
	}
	for _, known := range []error{ErrPartidaNotLeaf, ErrPartidaDuplicated, ErrNegativeReceiptTotal} {
		if errors.Is(err, known) {
			return err
		}
	}
	msg := strings.ToLower(err.Error())
	for _, p := range saveErrorPatterns {
		if strings.Contains(msg, p.fragment) {
			return fmt.Errorf("%w: %w", p.err, err)
		}
	}
	return err
}
