package quire

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Kind is the logical type of a field.
type Kind string

const (
	KindString   Kind = "STRING"
	KindNumber   Kind = "NUMBER"
	KindDatetime Kind = "DATETIME"
	KindBoolean  Kind = "BOOLEAN"
)

// DateLayout is the cell text layout of DATETIME values. Values are always UTC.
const DateLayout = "2006-01-02 15:04:05.000"

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\.\d{3}$`)

// decimalPattern matches plain decimal numbers, optionally with an exponent.
var decimalPattern = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// kindCodec holds everything kind-specific: input validation, cell
// (de)serialization, query literal rendering and the operators the kind
// accepts in filters, mapped to their query-language token.
type kindCodec struct {
	validate    func(v any) (any, error)
	serialize   func(v any) string
	deserialize func(cell string) any
	literal     func(v any) (string, error)
	operators   map[Operator]string
}

var baseOperators = map[Operator]string{
	OpEq:        "=",
	OpNeq:       "!=",
	OpIsNull:    "is null",
	OpIsNotNull: "is not null",
}

func withBase(extra map[Operator]string) map[Operator]string {
	ops := make(map[Operator]string, len(baseOperators)+len(extra))
	for op, tok := range baseOperators {
		ops[op] = tok
	}
	for op, tok := range extra {
		ops[op] = tok
	}
	return ops
}

var kinds = map[Kind]kindCodec{
	KindString: {
		validate:    validateString,
		serialize:   serializeString,
		deserialize: func(cell string) any { return cell },
		literal:     func(v any) (string, error) { return quoteLiteral(v.(string)) },
		operators: withBase(map[Operator]string{
			OpContains:   "contains",
			OpStartsWith: "starts with",
			OpEndsWith:   "ends with",
			OpLike:       "like",
		}),
	},
	KindNumber: {
		validate:    validateNumber,
		serialize:   func(v any) string { return formatNumber(v.(float64)) },
		deserialize: deserializeNumber,
		literal:     func(v any) (string, error) { return formatNumber(v.(float64)), nil },
		operators: withBase(map[Operator]string{
			OpGt:  ">",
			OpGte: ">=",
			OpLt:  "<",
			OpLte: "<=",
		}),
	},
	KindDatetime: {
		validate:    validateDate,
		serialize:   func(v any) string { return FormatDate(v.(time.Time)) },
		deserialize: deserializeDate,
		literal: func(v any) (string, error) {
			return `datetime "` + FormatDate(v.(time.Time)) + `"`, nil
		},
		operators: withBase(map[Operator]string{
			OpBefore: "<",
			OpAfter:  ">",
		}),
	},
	KindBoolean: {
		validate:    validateBool,
		serialize:   func(v any) string { return FormatBool(v.(bool)) },
		deserialize: deserializeBool,
		literal:     func(v any) (string, error) { return strconv.FormatBool(v.(bool)), nil },
		operators:   withBase(nil),
	},
}

func lookupKind(k Kind) (kindCodec, bool) {
	c, ok := kinds[k]
	return c, ok
}

// Serialize validates v against kind and returns its cell text.
func Serialize(v any, kind Kind) (string, error) {
	c, ok := lookupKind(kind)
	if !ok {
		return "", &UnknownKindError{Kind: kind}
	}
	nv, err := c.validate(v)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	return c.serialize(nv), nil
}

// Deserialize converts a cell read from the sheet into the field's logical
// value. Cells that cannot be interpreted yield nil rather than an error.
func Deserialize(cell any, f Field) any {
	if cell == nil {
		return nil
	}
	text, ok := cell.(string)
	if !ok {
		text = fmt.Sprint(cell)
	}
	if f.Optional && text == "" {
		return nil
	}
	c, ok := lookupKind(f.Kind)
	if !ok {
		return nil
	}
	return c.deserialize(text)
}

// FormatDate renders t in DateLayout, converted to UTC and truncated to
// millisecond precision.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// ParseDate parses text that matches DateLayout exactly.
func ParseDate(text string) (time.Time, bool) {
	if !datePattern.MatchString(text) {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(DateLayout, text, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// FormatBool renders b as TRUE or FALSE.
func FormatBool(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}

// ParseBool recognises only the literal TRUE and FALSE tokens.
func ParseBool(text string) (value, ok bool) {
	switch text {
	case "TRUE":
		return true, true
	case "FALSE":
		return false, true
	}
	return false, false
}

func validateString(v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("expected string, received %T", v)
	}
	return s, nil
}

func validateNumber(v any) (any, error) {
	var f float64
	switch n := v.(type) {
	case int:
		f = float64(n)
	case int8:
		f = float64(n)
	case int16:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint8:
		f = float64(n)
	case uint16:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case float32:
		f = float64(n)
	case float64:
		f = n
	case string:
		text := strings.TrimSpace(n)
		if !decimalPattern.MatchString(text) {
			return nil, fmt.Errorf("expected number, received %q", n)
		}
		parsed, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("expected number, received %q", n)
		}
		f = parsed
	default:
		return nil, fmt.Errorf("expected number, received %T", v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, errors.New("expected finite number")
	}
	return f, nil
}

func validateDate(v any) (any, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case *time.Time:
		if t != nil {
			return *t, nil
		}
	}
	return nil, fmt.Errorf("expected date, received %T", v)
}

func validateBool(v any) (any, error) {
	b, ok := v.(bool)
	if !ok {
		return nil, fmt.Errorf("expected boolean, received %T", v)
	}
	return b, nil
}

// serializeString prefixes non-empty text with the apostrophe text marker
// so Sheets stores it verbatim instead of parsing it as a number, date,
// boolean or formula. The marker is not part of the stored value.
func serializeString(v any) string {
	s := v.(string)
	if s == "" {
		return s
	}
	return "'" + s
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func deserializeNumber(cell string) any {
	f, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil {
		return nil
	}
	return f
}

func deserializeDate(cell string) any {
	t, ok := ParseDate(cell)
	if !ok {
		return nil
	}
	return t
}

func deserializeBool(cell string) any {
	b, ok := ParseBool(cell)
	if !ok {
		return nil
	}
	return b
}

// quoteLiteral quotes s for the query language, which has no escape
// sequences: double quotes are used unless s contains one.
func quoteLiteral(s string) (string, error) {
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`, nil
	}
	if !strings.Contains(s, "'") {
		return "'" + s + "'", nil
	}
	return "", fmt.Errorf("string %q contains both quote characters", s)
}
