package slots

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Kind identifies which field of a Value is meaningful.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindBool
	KindNumber
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	default:
		return "invalid"
	}
}

// Value is a single flight or avatar tunable.
type Value struct {
	kind   Kind
	bool   bool
	number float64
	text   string
}

// Bool builds a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, bool: b} }

// Number builds a numeric value.
func Number(f float64) Value { return Value{kind: KindNumber, number: f} }

// Text builds a string value.
func Text(s string) Value { return Value{kind: KindText, text: s} }

func (v Value) Kind() Kind { return v.kind }
func (v Value) Valid() bool { return v.kind != KindInvalid }
func (v Value) Bool() bool { return v.bool }
func (v Value) Number() float64 { return v.number }
func (v Value) Text() string { return v.text }

// Equal reports whether both values have the same kind and content.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindBool:
		return v.bool == o.bool
	case KindNumber:
		return v.number == o.number
	case KindText:
		return v.text == o.text
	default:
		return true
	}
}

// String renders the value for display.
func (v Value) String() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.bool)
	case KindNumber:
		return strconv.FormatFloat(v.number, 'g', -1, 64)
	case KindText:
		return v.text
	default:
		return "<invalid>"
	}
}

// MarshalJSON encodes the value as a bare JSON bool, number or string.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindBool:
		return json.Marshal(v.bool)
	case KindNumber:
		return json.Marshal(v.number)
	case KindText:
		return json.Marshal(v.text)
	default:
		return nil, fmt.Errorf("marshal invalid value")
	}
}

// UnmarshalJSON accepts a JSON bool, number or string.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch typed := raw.(type) {
	case bool:
		*v = Bool(typed)
	case float64:
		*v = Number(typed)
	case string:
		*v = Text(typed)
	default:
		return fmt.Errorf("unsupported value %s", string(data))
	}
	return nil
}
