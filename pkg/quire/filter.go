package quire

// Operator names a comparison applied to a single field.
type Operator string

const (
	OpEq        Operator = "eq"
	OpNeq       Operator = "neq"
	OpIsNull    Operator = "isNull"
	OpIsNotNull Operator = "isNotNull"

	// NUMBER
	OpGt  Operator = "gt"
	OpGte Operator = "gte"
	OpLt  Operator = "lt"
	OpLte Operator = "lte"

	// STRING
	OpContains   Operator = "contains"
	OpStartsWith Operator = "startsWith"
	OpEndsWith   Operator = "endsWith"
	OpLike       Operator = "like"

	// DATETIME
	OpBefore Operator = "before"
	OpAfter  Operator = "after"
)

// Filter is a node of a filter tree: And, Or or *Cond.
type Filter interface {
	isFilter()
}

// And matches when every child matches.
type And []Filter

// Or matches when any child matches.
type Or []Filter

// Op is one operator applied with its operand. Value is ignored for
// OpIsNull and OpIsNotNull.
type Op struct {
	Operator Operator
	Value    any
}

// Cond applies a list of operators to one field. All operators must hold.
type Cond struct {
	Field string
	Ops   []Op
}

func (And) isFilter() {}
func (Or) isFilter() {}
func (*Cond) isFilter() {}

// Where starts a condition on the named field.
//
//	quire.Where("age").Gte(18).Lt(65)
func Where(field string) *Cond {
	return &Cond{Field: field}
}

func (c *Cond) with(op Operator, v any) *Cond {
	c.Ops = append(c.Ops, Op{Operator: op, Value: v})
	return c
}

func (c *Cond) Eq(v any) *Cond { return c.with(OpEq, v) }
func (c *Cond) Neq(v any) *Cond { return c.with(OpNeq, v) }
func (c *Cond) IsNull() *Cond { return c.with(OpIsNull, nil) }
func (c *Cond) IsNotNull() *Cond { return c.with(OpIsNotNull, nil) }
func (c *Cond) Gt(v any) *Cond { return c.with(OpGt, v) }
func (c *Cond) Gte(v any) *Cond { return c.with(OpGte, v) }
func (c *Cond) Lt(v any) *Cond { return c.with(OpLt, v) }
func (c *Cond) Lte(v any) *Cond { return c.with(OpLte, v) }
func (c *Cond) Contains(s string) *Cond { return c.with(OpContains, s) }
func (c *Cond) StartsWith(s string) *Cond { return c.with(OpStartsWith, s) }
func (c *Cond) EndsWith(s string) *Cond { return c.with(OpEndsWith, s) }
func (c *Cond) Like(s string) *Cond { return c.with(OpLike, s) }
func (c *Cond) Before(v any) *Cond { return c.with(OpBefore, v) }
func (c *Cond) After(v any) *Cond { return c.with(OpAfter, v) }

// References reports whether any condition in f applies at least one
// operator to the named field.
func References(f Filter, field string) bool {
	switch n := f.(type) {
	case And:
		for _, child := range n {
			if References(child, field) {
				return true
			}
		}
	case Or:
		for _, child := range n {
			if References(child, field) {
				return true
			}
		}
	case *Cond:
		return n != nil && n.Field == field && len(n.Ops) > 0
	}
	return false
}

// Query describes a FindMany call.
type Query struct {
	Filter Filter
	// Select lists field names to return; empty selects every column.
	Select []string
	Limit  int
	Offset int
	// IncludeDeleted disables the implicit deletedAt is null condition.
	IncludeDeleted bool
}
