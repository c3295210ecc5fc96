package querymodel

import (
	"errors"
	"fmt"

	tok "github.com/shibukawa/sqltrack/tokenizer"
)

// ErrStructural is wrapped by every StructuralError.
var ErrStructural = errors.New("structural error")

// StructuralError reports an operation on a node shape that cannot support
// it. The model is left unchanged.
type StructuralError struct {
	Node     string
	Position tok.Position
	Reason   string
}

func (e *StructuralError) Error() string {
	if e.Position.Line == 0 {
		return fmt.Sprintf("%s: %s: %s", ErrStructural, e.Node, e.Reason)
	}
	return fmt.Sprintf("%s at %s: %s: %s", ErrStructural, e.Position.String(), e.Node, e.Reason)
}

func (e *StructuralError) Unwrap() error {
	return ErrStructural
}

func structuralError(n *QueryNode, reason string) error {
	if n == nil {
		return &StructuralError{Node: "select item", Reason: reason}
	}
	return &StructuralError{Node: n.describe(), Position: n.span.Position(), Reason: reason}
}
