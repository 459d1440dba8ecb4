package quire

import (
	"fmt"
)

// MaxColumns is the number of columns a schema may occupy, A through Z.
const MaxColumns = 26

// System field names. They always occupy columns A, B and C.
const (
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"
	FieldDeletedAt = "deletedAt"
)

// Field describes one column of the sheet.
type Field struct {
	Name     string
	Kind     Kind
	Column   string
	Optional bool
	// Deleted marks a retired field. Its column is kept in place but it is
	// neither written nor returned.
	Deleted bool

	validate func(v any) (any, error)
}

var systemFields = []Field{
	{Name: FieldCreatedAt, Kind: KindDatetime, Column: "A"},
	{Name: FieldUpdatedAt, Kind: KindDatetime, Column: "B", Optional: true},
	{Name: FieldDeletedAt, Kind: KindDatetime, Column: "C", Optional: true},
}

// IsSystemField reports whether name is one of createdAt, updatedAt or deletedAt.
func IsSystemField(name string) bool {
	for _, f := range systemFields {
		if f.Name == name {
			return true
		}
	}
	return false
}

// Schema is the validated, ordered list of fields bound to a sheet. The
// system fields come first; field i always lives in column ColumnLetter(i).
// A Schema is immutable and safe for concurrent use.
type Schema struct {
	fields []Field
	index  map[string]int
}

// NewSchema validates the declared fields and prepends the system fields.
// Fields must be declared in the exact left-to-right order of their
// columns, starting at D.
func NewSchema(fields ...Field) (*Schema, error) {
	all := make([]Field, 0, len(systemFields)+len(fields))
	all = append(all, systemFields...)
	all = append(all, fields...)

	if len(all) > MaxColumns {
		return nil, &SchemaError{
			Reason: fmt.Sprintf("sheet columns should not exceed %d declared fields", MaxColumns-len(systemFields)),
		}
	}

	s := &Schema{
		fields: make([]Field, len(all)),
		index:  make(map[string]int, len(all)),
	}
	for i, f := range all {
		if f.Name == "" {
			return nil, &SchemaError{Reason: fmt.Sprintf("field at column %s has no name", ColumnLetter(i))}
		}
		if _, dup := s.index[f.Name]; dup {
			return nil, &SchemaError{Field: f.Name, Reason: "name can't be used for more than one field"}
		}
		if want := ColumnLetter(i); f.Column != want {
			return nil, &SchemaError{
				Field:  f.Name,
				Reason: fmt.Sprintf("invalid mapping: column %q, expected %q", f.Column, want),
			}
		}
		codec, ok := lookupKind(f.Kind)
		if !ok {
			return nil, &SchemaError{Field: f.Name, Reason: fmt.Sprintf("unknown kind %q", f.Kind)}
		}
		f.validate = codec.validate
		s.fields[i] = f
		s.index[f.Name] = i
	}
	return s, nil
}

// Fields returns a copy of all fields, system fields first.
func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Field looks up a field by name.
func (s *Schema) Field(name string) (Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

// Len returns the number of columns the schema occupies.
func (s *Schema) Len() int {
	return len(s.fields)
}

// LastColumn returns the letter of the rightmost column.
func (s *Schema) LastColumn() string {
	return ColumnLetter(len(s.fields) - 1)
}

// Validate checks v against the field's kind and returns the normalized
// value. A nil value is accepted only for optional fields.
func (f Field) Validate(v any) (any, error) {
	if v == nil {
		if f.Optional {
			return nil, nil
		}
		return nil, &FieldValidationError{Field: f.Name, Reason: "required"}
	}
	validate := f.validate
	if validate == nil {
		codec, ok := lookupKind(f.Kind)
		if !ok {
			return nil, &UnknownKindError{Field: f.Name, Kind: f.Kind}
		}
		validate = codec.validate
	}
	nv, err := validate(v)
	if err != nil {
		return nil, &FieldValidationError{Field: f.Name, Reason: err.Error()}
	}
	return nv, nil
}

// serialize validates v and returns the value to send for the cell: nil
// for an empty optional value, cell text otherwise.
func (f Field) serialize(v any) (any, error) {
	nv, err := f.Validate(v)
	if err != nil || nv == nil {
		return nil, err
	}
	codec, _ := lookupKind(f.Kind)
	return codec.serialize(nv), nil
}

// ColumnLetter converts a 0-based column index to its A1 letter.
func ColumnLetter(index int) string {
	if index < 0 {
		return "A"
	}
	result := ""
	for index >= 0 {
		result = string(rune('A'+index%26)) + result
		index = index/26 - 1
	}
	return result
}
