package command

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind is the JSON kind a parameter value arrived as.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindRaw // nested object or array
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	default:
		return "raw"
	}
}

// Value is one command parameter. Numbers keep their literal text until extraction.
type Value struct {
	kind Kind
	str  string
	num  json.Number
	b    bool
	raw  json.RawMessage
}

func Null() Value                 { return Value{kind: KindNull} }
func String(s string) Value       { return Value{kind: KindString, str: s} }
func Number(n json.Number) Value  { return Value{kind: KindNumber, num: n} }
func Bool(b bool) Value           { return Value{kind: KindBool, b: b} }
func Raw(r json.RawMessage) Value { return Value{kind: KindRaw, raw: append(json.RawMessage(nil), r...)} }

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool { return v.kind == KindNull }

func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("empty parameter value")
	}

	switch data[0] {
	case 'n':
		*v = Null()
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = String(s)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*v = Bool(b)
	case '{', '[':
		*v = Raw(data)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*v = Number(n)
	}
	return nil
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		return []byte(v.num.String()), nil
	case KindBool:
		return json.Marshal(v.b)
	case KindRaw:
		if len(v.raw) == 0 {
			return []byte("null"), nil
		}
		return v.raw, nil
	default:
		return []byte("null"), nil
	}
}

// Extract renders the value as text. ok is false for null and blank strings.
// Whole numbers render without a fractional part; other numbers keep their literal text.
func (v Value) Extract() (string, bool) {
	switch v.kind {
	case KindString:
		s := strings.TrimSpace(v.str)
		return s, s != ""
	case KindNumber:
		return formatNumber(v.num), true
	case KindBool:
		return strconv.FormatBool(v.b), true
	case KindRaw:
		var buf bytes.Buffer
		if err := json.Compact(&buf, v.raw); err != nil {
			return string(v.raw), len(v.raw) > 0
		}
		return buf.String(), buf.Len() > 0
	default:
		return "", false
	}
}

// ExtractOr returns fallback when Extract reports no value.
func (v Value) ExtractOr(fallback string) string {
	if s, ok := v.Extract(); ok {
		return s
	}
	return fallback
}

func formatNumber(n json.Number) string {
	if i, err := n.Int64(); err == nil {
		return strconv.FormatInt(i, 10)
	}
	f, err := n.Float64()
	if err != nil {
		return n.String()
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatFloat(f, 'f', 0, 64)
	}
	return n.String()
}
