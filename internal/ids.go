package internal

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// label produces a short, stable identifier for a node that was not given
// an explicit id. It mirrors the pack's convention of hashing a symbolic
// name into a stable integer (see pkg/flimsy's SYMBOL_ERRORS) rather than
// leaking a raw pointer value into error messages and diagnostics dumps.
func label(kind Kind, seq uint64) string {
	sum := xxhash.Sum64String(fmt.Sprintf("%d:%d", kind, seq))
	return fmt.Sprintf("%s-%06x", kind.String(), sum&0xffffff)
}
