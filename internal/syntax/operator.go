package syntax

// Operator is the source text of a binary operator token.
type Operator string

const (
	LogicalAnd Operator = "&&"
	LogicalOr  Operator = "||"
	Nullish    Operator = "??"

	StrictEql Operator = "==="
	Eql       Operator = "=="
	StrictNeq Operator = "!=="
	Neq       Operator = "!="
	Lss       Operator = "<"
	Leq       Operator = "<="
	Gtr       Operator = ">"
	Geq       Operator = ">="
)

// IsComparison reports whether op is a relational or equality operator.
func (op Operator) IsComparison() bool {
	switch op {
	case StrictEql, Eql, StrictNeq, Neq, Lss, Leq, Gtr, Geq:
		return true
	}
	return false
}

// IsLogical reports whether op is `&&` or `||`.
func (op Operator) IsLogical() bool {
	return op == LogicalAnd || op == LogicalOr
}
