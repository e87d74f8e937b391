package collection

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ValueKind is the storage type of a reconcilable field
type ValueKind int

const (
	TextValue ValueKind = iota + 1
	IntegerValue
	DecimalValue
	BoolValue
	DateValue
)

// String returns the kind name
func (k ValueKind) String() string {
	switch k {
	case TextValue:
		return "text"
	case IntegerValue:
		return "integer"
	case DecimalValue:
		return "decimal"
	case BoolValue:
		return "bool"
	case DateValue:
		return "date"
	default:
		return "unknown"
	}
}

// Value is a typed, possibly null field value. The zero Value is invalid;
// use the constructors.
type Value struct {
	kind    ValueKind
	null    bool
	text    string
	integer int64
	dec     decimal.Decimal
	boolean bool
	date    time.Time
}

// NullOf returns the null value of kind
func NullOf(kind ValueKind) Value {
	return Value{kind: kind, null: true}
}

// Text wraps a nullable string
func Text(s *string) Value {
	if s == nil {
		return NullOf(TextValue)
	}
	return Value{kind: TextValue, text: *s}
}

// Integer wraps a nullable integer
func Integer(i *int64) Value {
	if i == nil {
		return NullOf(IntegerValue)
	}
	return Value{kind: IntegerValue, integer: *i}
}

// Decimal wraps a nullable decimal
func Decimal(d decimal.NullDecimal) Value {
	if !d.Valid {
		return NullOf(DecimalValue)
	}
	return Value{kind: DecimalValue, dec: d.Decimal}
}

// Bool wraps a boolean
func Bool(b bool) Value {
	return Value{kind: BoolValue, boolean: b}
}

// Date wraps a nullable calendar date
func Date(t *time.Time) Value {
	if t == nil {
		return NullOf(DateValue)
	}
	return Value{kind: DateValue, date: truncateToDate(*t)}
}

// Kind returns the value kind
func (v Value) Kind() ValueKind { return v.kind }

// IsNull reports whether the value is null
func (v Value) IsNull() bool { return v.null }

// TextPtr returns the text or nil when null
func (v Value) TextPtr() *string {
	if v.null {
		return nil
	}
	s := v.text
	return &s
}

// IntegerPtr returns the integer or nil when null
func (v Value) IntegerPtr() *int64 {
	if v.null {
		return nil
	}
	i := v.integer
	return &i
}

// NullDecimal returns the decimal as a nullable
func (v Value) NullDecimal() decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: v.dec, Valid: !v.null}
}

// DecimalOrZero returns the decimal, or zero when null
func (v Value) DecimalOrZero() decimal.Decimal {
	if v.null {
		return decimal.Zero
	}
	return v.dec
}

// IsTrue returns the boolean; null reads as false
func (v Value) IsTrue() bool { return v.boolean && !v.null }

// DatePtr returns the date or nil when null
func (v Value) DatePtr() *time.Time {
	if v.null {
		return nil
	}
	t := v.date
	return &t
}

// Equal compares two values of the same kind. Decimals compare numerically
// (1285.5 equals 1285.50) and dates by calendar day.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	if v.null || o.null {
		return v.null == o.null
	}
	switch v.kind {
	case TextValue:
		return v.text == o.text
	case IntegerValue:
		return v.integer == o.integer
	case DecimalValue:
		return v.dec.Equal(o.dec)
	case BoolValue:
		return v.boolean == o.boolean
	case DateValue:
		return SameDate(v.date, o.date)
	default:
		return false
	}
}

// String renders the value for logs and change records
func (v Value) String() string {
	if v.null {
		return "null"
	}
	switch v.kind {
	case TextValue:
		return v.text
	case IntegerValue:
		return strconv.FormatInt(v.integer, 10)
	case DecimalValue:
		return v.dec.String()
	case BoolValue:
		return strconv.FormatBool(v.boolean)
	case DateValue:
		return v.date.Format("2006-01-02")
	default:
		return ""
	}
}

// Coerce converts a raw payload value (string, json.Number, bool, float64 or
// an integer) into a Value of kind. Strings holding numbers are accepted for
// numeric kinds. Anything that cannot be represented yields a *ParseFault.
func Coerce(kind ValueKind, raw any) (Value, error) {
	switch kind {
	case TextValue:
		s, ok := scalarText(raw)
		if !ok {
			return Value{}, fault(raw, kind)
		}
		return Value{kind: TextValue, text: s}, nil

	case IntegerValue:
		s, ok := scalarText(raw)
		if !ok {
			return Value{}, fault(raw, kind)
		}
		s = strings.TrimSpace(s)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return Value{kind: IntegerValue, integer: i}, nil
		}
		// 42.0 from a float encoder is still an integer
		if f, err := strconv.ParseFloat(s, 64); err == nil && f == math.Trunc(f) && math.Abs(f) < 1<<62 {
			return Value{kind: IntegerValue, integer: int64(f)}, nil
		}
		return Value{}, fault(raw, kind)

	case DecimalValue:
		s, ok := scalarText(raw)
		if !ok {
			return Value{}, fault(raw, kind)
		}
		d, err := decimal.NewFromString(strings.TrimSpace(s))
		if err != nil {
			return Value{}, fault(raw, kind)
		}
		return Value{kind: DecimalValue, dec: d}, nil

	case BoolValue:
		switch b := raw.(type) {
		case bool:
			return Bool(b), nil
		case string:
			parsed, err := strconv.ParseBool(strings.TrimSpace(b))
			if err != nil {
				return Value{}, fault(raw, kind)
			}
			return Bool(parsed), nil
		default:
			return Value{}, fault(raw, kind)
		}

	case DateValue:
		s, ok := raw.(string)
		if !ok {
			return Value{}, fault(raw, kind)
		}
		t, err := NormalizeDate(s, CalendarDate)
		if err != nil {
			return Value{}, err
		}
		return Value{kind: DateValue, date: t}, nil
	}
	return Value{}, fault(raw, kind)
}

// scalarText renders a JSON scalar as text; objects and arrays are rejected
func scalarText(raw any) (string, bool) {
	switch v := raw.(type) {
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case bool:
		return strconv.FormatBool(v), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	default:
		return "", false
	}
}

func fault(raw any, kind ValueKind) *ParseFault {
	return &ParseFault{Value: fmt.Sprint(raw), Kind: kind.String()}
}
