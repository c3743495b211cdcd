package runtime

import (
	"github.com/deicod/htmldsl/nodes"
)

// looseEqual compares numerically when both sides are numeric and by text
// otherwise.
func looseEqual(a, b AssignedValue) bool {
	af, aerr := a.Float()
	bf, berr := b.Float()
	if aerr == nil && berr == nil {
		return af == bf
	}
	return a.Text() == b.Text()
}

func compareFloats(a, b float64, op nodes.Operator) bool {
	switch op {
	case nodes.OpEqual:
		return a == b
	case nodes.OpNotEqual:
		return a != b
	case nodes.OpLess:
		return a < b
	case nodes.OpLessEqual:
		return a <= b
	case nodes.OpGreater:
		return a > b
	case nodes.OpGreaterEqual:
		return a >= b
	}
	return false
}
