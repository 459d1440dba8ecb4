package quire

import (
	"fmt"
	"strconv"
	"strings"
)

// Compile translates a filter tree into the condition of a Google
// Visualization query where clause, referencing fields by column letter.
// A nil or empty filter compiles to the empty string.
func Compile(f Filter, s *Schema) (string, error) {
	switch n := f.(type) {
	case nil:
		return "", nil
	case And:
		return compileGroup(n, " and ", s)
	case Or:
		return compileGroup(n, " or ", s)
	case *Cond:
		if n == nil {
			return "", nil
		}
		return compileCond(n, s)
	}
	return "", fmt.Errorf("unsupported filter node %T", f)
}

func compileGroup(children []Filter, sep string, s *Schema) (string, error) {
	parts := make([]string, 0, len(children))
	for _, child := range children {
		part, err := Compile(child, s)
		if err != nil {
			return "", err
		}
		parts = append(parts, part)
	}
	return joinClauses(parts, sep), nil
}

func compileCond(c *Cond, s *Schema) (string, error) {
	f, ok := s.Field(c.Field)
	if !ok || f.Deleted {
		return "", &UnknownFieldError{Field: c.Field}
	}
	codec, ok := lookupKind(f.Kind)
	if !ok {
		return "", &UnknownKindError{Field: f.Name, Kind: f.Kind}
	}

	clauses := make([]string, 0, len(c.Ops))
	for _, op := range c.Ops {
		tok, ok := codec.operators[op.Operator]
		if !ok {
			return "", &UnsupportedOperatorError{Field: f.Name, Kind: f.Kind, Operator: op.Operator}
		}
		if op.Operator == OpIsNull || op.Operator == OpIsNotNull {
			clauses = append(clauses, f.Column+" "+tok)
			continue
		}
		v, err := codec.validate(op.Value)
		if err != nil {
			return "", &FieldValidationError{Field: f.Name, Reason: fmt.Sprintf("%s: %v", op.Operator, err)}
		}
		lit, err := codec.literal(v)
		if err != nil {
			return "", &FieldValidationError{Field: f.Name, Reason: fmt.Sprintf("%s: %v", op.Operator, err)}
		}
		clauses = append(clauses, f.Column+" "+tok+" "+lit)
	}
	return joinClauses(clauses, " and "), nil
}

// joinClauses drops empty clauses and parenthesizes the rest when more
// than one remains.
func joinClauses(clauses []string, sep string) string {
	kept := clauses[:0:0]
	for _, c := range clauses {
		if c != "" {
			kept = append(kept, c)
		}
	}
	switch len(kept) {
	case 0:
		return ""
	case 1:
		return kept[0]
	}
	for i, c := range kept {
		kept[i] = "(" + c + ")"
	}
	return strings.Join(kept, sep)
}

// BuildQuery assembles the full query text for q:
//
//	select <columns|*>
//	where <filter>
//	limit <n>
//	offset <n>
//
// Each line is terminated by a newline; where, limit and offset are
// omitted when empty.
func BuildQuery(q Query, s *Schema) (string, error) {
	var b strings.Builder

	b.WriteString("select ")
	if len(q.Select) > 0 {
		fields, err := selectedFields(q, s)
		if err != nil {
			return "", err
		}
		cols := make([]string, len(fields))
		for i, f := range fields {
			cols[i] = f.Column
		}
		b.WriteString(strings.Join(cols, ", "))
	} else {
		b.WriteString("*")
	}
	b.WriteString("\n")

	where, err := Compile(q.Filter, s)
	if err != nil {
		return "", err
	}
	if where != "" {
		b.WriteString("where " + where + "\n")
	}
	if q.Limit > 0 {
		b.WriteString("limit " + strconv.Itoa(q.Limit) + "\n")
	}
	if q.Offset > 0 {
		b.WriteString("offset " + strconv.Itoa(q.Offset) + "\n")
	}
	return b.String(), nil
}

// selectedFields returns the fields in the order the query returns them.
func selectedFields(q Query, s *Schema) ([]Field, error) {
	if len(q.Select) == 0 {
		return s.Fields(), nil
	}
	fields := make([]Field, 0, len(q.Select))
	for _, name := range q.Select {
		f, ok := s.Field(name)
		if !ok || f.Deleted {
			return nil, &UnknownFieldError{Field: name}
		}
		fields = append(fields, f)
	}
	return fields, nil
}
