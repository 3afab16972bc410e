package typedvalue

import (
	"encoding/base64"

	jsoniter "github.com/json-iterator/go"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// wireValue is the textual-serializer shape for a Value. Per §6, numbers
// that could lose precision as binary floats (64-bit integers, decimals) are
// carried as strings; everything else rides as native JSON.
type wireValue struct {
	Type    string       `json:"type"`
	Bool    *bool        `json:"bool,omitempty"`
	Number  *float64     `json:"number,omitempty"`
	Long    *string      `json:"long,omitempty"`
	Decimal *wireDecimal `json:"decimal,omitempty"`
	Str     *string      `json:"string,omitempty"`
	Bytes   *string      `json:"bytes,omitempty"`
	Array   *wireArray   `json:"array,omitempty"`
}

type wireDecimal struct {
	Unscaled string `json:"unscaled"`
	Scale    int32  `json:"scale"`
}

type wireArray struct {
	ElementType string      `json:"elementType"`
	Elements    []wireValue `json:"elements"`
}

// MarshalJSON implements json.Marshaler so a Value can be embedded directly
// inside request/response payloads.
func (v Value) MarshalJSON() ([]byte, error) {
	w, err := v.toWire()
	if err != nil {
		return nil, err
	}
	return jsonAPI.Marshal(w)
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	var w wireValue
	if err := jsonAPI.Unmarshal(data, &w); err != nil {
		return err
	}
	parsed, err := fromWire(w)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func (v Value) toWire() (wireValue, error) {
	w := wireValue{Type: v.Rep.String()}
	switch v.Rep {
	case RepNull:
	case RepBoolean:
		w.Bool = &v.Bool
	case RepByte, RepShort, RepInteger, RepDate, RepTime:
		n := float64(v.Int)
		w.Number = &n
	case RepLong, RepTimestamp:
		s := itoa64(v.Int)
		w.Long = &s
	case RepFloat, RepDouble:
		if mathIsNaNOrInf(v.Float) {
			return wireValue{}, illegalArgument("cannot encode NaN/Infinity in a typed value")
		}
		n := v.Float
		w.Number = &n
	case RepDecimal:
		if v.Dec.Unscaled == nil {
			return wireValue{}, illegalArgument("decimal value has no unscaled component")
		}
		w.Decimal = &wireDecimal{Unscaled: v.Dec.Unscaled.String(), Scale: v.Dec.Scale}
	case RepString:
		w.Str = &v.Str
	case RepBytes:
		s := base64.StdEncoding.EncodeToString(v.Bytes)
		w.Bytes = &s
	case RepArray:
		elems := make([]wireValue, len(v.Array))
		for i, e := range v.Array {
			ew, err := e.toWire()
			if err != nil {
				return wireValue{}, err
			}
			elems[i] = ew
		}
		w.Array = &wireArray{ElementType: v.ElemRep.String(), Elements: elems}
	default:
		return wireValue{}, illegalArgument("unrecognized representation tag %d", v.Rep)
	}
	return w, nil
}

func fromWire(w wireValue) (Value, error) {
	rep, ok := ParseRep(w.Type)
	if !ok {
		return Value{}, illegalArgument("unknown representation tag %q", w.Type)
	}

	switch rep {
	case RepNull:
		return Null(), nil
	case RepBoolean:
		if w.Bool == nil {
			return Value{}, illegalArgument("BOOLEAN value missing bool field")
		}
		return Bool(*w.Bool), nil
	case RepByte, RepShort, RepInteger, RepDate, RepTime:
		if w.Number == nil {
			return Value{}, illegalArgument("%s value missing number field", w.Type)
		}
		return Value{Rep: rep, Int: int64(*w.Number)}, nil
	case RepLong, RepTimestamp:
		if w.Long == nil {
			return Value{}, illegalArgument("%s value missing long field", w.Type)
		}
		n, err := atoi64(*w.Long)
		if err != nil {
			return Value{}, illegalArgument("invalid long literal %q", *w.Long)
		}
		return Value{Rep: rep, Int: n}, nil
	case RepFloat, RepDouble:
		if w.Number == nil {
			return Value{}, illegalArgument("%s value missing number field", w.Type)
		}
		return Value{Rep: rep, Float: *w.Number}, nil
	case RepDecimal:
		if w.Decimal == nil {
			return Value{}, illegalArgument("BIG_DECIMAL value missing decimal field")
		}
		d, err := DecimalFromString(w.Decimal.Unscaled, w.Decimal.Scale)
		if err != nil {
			return Value{}, err
		}
		return DecimalValue(d), nil
	case RepString:
		if w.Str == nil {
			return Value{}, illegalArgument("STRING value missing string field")
		}
		return String(*w.Str), nil
	case RepBytes:
		if w.Bytes == nil {
			return Value{}, illegalArgument("BYTE_STRING value missing bytes field")
		}
		b, err := base64.StdEncoding.DecodeString(*w.Bytes)
		if err != nil {
			return Value{}, illegalArgument("invalid base64 byte string: %v", err)
		}
		return Bin(b), nil
	case RepArray:
		if w.Array == nil {
			return Value{}, illegalArgument("ARRAY value missing array field")
		}
		elemRep, ok := ParseRep(w.Array.ElementType)
		if !ok {
			return Value{}, illegalArgument("unknown array element type %q", w.Array.ElementType)
		}
		elems := make([]Value, len(w.Array.Elements))
		for i, ew := range w.Array.Elements {
			v, err := fromWire(ew)
			if err != nil {
				return Value{}, err
			}
			if !v.IsNull() && v.Rep != elemRep {
				return Value{}, illegalArgument("array element %d has type %s, expected %s", i, v.Rep, elemRep)
			}
			elems[i] = v
		}
		return Array(elemRep, elems), nil
	default:
		return Value{}, illegalArgument("unrecognized representation tag %q", w.Type)
	}
}
