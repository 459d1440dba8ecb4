package quire

import (
	"fmt"
	"reflect"
)

// Record is one decoded row. Values holds the logical value of every
// non-deleted field; a cell that is empty or could not be decoded is nil.
type Record struct {
	ID     string
	Values map[string]any
}

// Get returns the value of the named field.
func (r *Record) Get(name string) any {
	return r.Values[name]
}

// Deleted reports whether the record is soft-deleted.
func (r *Record) Deleted() bool {
	return r.Values[FieldDeletedAt] != nil
}

// Scan copies the record's values into the struct pointed to by dest.
// Struct fields are matched by their `quire` tag, or by field name when
// untagged; `quire:"-"` skips a field. Nil values leave the field untouched.
func (r *Record) Scan(dest interface{}) error {
	v := reflect.ValueOf(dest)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return fmt.Errorf("dest must be a pointer to a struct")
	}
	return scanRecord(r, v.Elem())
}

// ScanAll scans records into dest, which must point to a slice of structs
// or of struct pointers.
func ScanAll(records []*Record, dest interface{}) error {
	destVal := reflect.ValueOf(dest)
	if destVal.Kind() != reflect.Ptr || destVal.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("dest must be a pointer to a slice")
	}

	sliceVal := destVal.Elem()
	elemType := sliceVal.Type().Elem()

	for _, rec := range records {
		var elem reflect.Value
		if elemType.Kind() == reflect.Ptr {
			elem = reflect.New(elemType.Elem())
			if err := scanRecord(rec, elem.Elem()); err != nil {
				return err
			}
		} else {
			elem = reflect.New(elemType).Elem()
			if err := scanRecord(rec, elem); err != nil {
				return err
			}
		}
		sliceVal = reflect.Append(sliceVal, elem)
	}

	destVal.Elem().Set(sliceVal)
	return nil
}

func scanRecord(rec *Record, dest reflect.Value) error {
	if dest.Kind() != reflect.Struct {
		return fmt.Errorf("dest must be a struct")
	}

	t := dest.Type()
	for i := 0; i < dest.NumField(); i++ {
		field := dest.Field(i)
		fieldType := t.Field(i)

		tag := fieldType.Tag.Get("quire")
		if tag == "-" {
			continue
		}

		name := fieldType.Name
		if tag != "" {
			name = tag
		}

		value, ok := rec.Values[name]
		if !ok || value == nil {
			continue
		}

		if err := setField(field, value); err != nil {
			return fmt.Errorf("failed to set field %s: %w", fieldType.Name, err)
		}
	}

	return nil
}

func setField(field reflect.Value, value interface{}) error {
	if !field.CanSet() {
		return nil
	}

	if field.Kind() == reflect.Ptr {
		elem := reflect.New(field.Type().Elem())
		if err := setField(elem.Elem(), value); err != nil {
			return err
		}
		field.Set(elem)
		return nil
	}

	val := reflect.ValueOf(value)

	switch field.Kind() {
	case reflect.String:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("cannot assign %T to string", value)
		}
		field.SetString(s)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		f, ok := value.(float64)
		if !ok {
			return fmt.Errorf("cannot assign %T to %s", value, field.Type())
		}
		field.SetInt(int64(f))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		f, ok := value.(float64)
		if !ok || f < 0 {
			return fmt.Errorf("cannot assign %v to %s", value, field.Type())
		}
		field.SetUint(uint64(f))
	case reflect.Float32, reflect.Float64:
		f, ok := value.(float64)
		if !ok {
			return fmt.Errorf("cannot assign %T to %s", value, field.Type())
		}
		field.SetFloat(f)
	case reflect.Bool:
		b, ok := value.(bool)
		if !ok {
			return fmt.Errorf("cannot assign %T to bool", value)
		}
		field.SetBool(b)
	default:
		if !val.Type().AssignableTo(field.Type()) {
			return fmt.Errorf("cannot assign %T to %s", value, field.Type())
		}
		field.Set(val)
	}

	return nil
}
