package geodist

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownFormula is matched by errors.Is for any unknown formula
	// name, regardless of the concrete *UnknownFormulaError.
	ErrUnknownFormula = errors.New("unknown formula")

	// ErrNoArgSets is returned by ComputeBatch when no argument sets are
	// provided.
	ErrNoArgSets = errors.New("no argument sets provided")
)

// UnknownFormulaError indicates a formula name that is not in the
// dispatch table. The message lists the supported keys so the caller can
// surface a usable diagnostic without extra lookups.
type UnknownFormulaError struct {
	Name string
}

func (e *UnknownFormulaError) Error() string {
	return fmt.Sprintf("unknown formula %q (supported: %s)",
		e.Name, strings.Join(Formulas(), ", "))
}

func (e *UnknownFormulaError) Unwrap() error { return ErrUnknownFormula }
