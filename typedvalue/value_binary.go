package typedvalue

import (
	"fmt"
	"math"

	"github.com/metarpc/metarpc/wirebin"
)

// EncodeBinary writes the value using the compact tagged binary schema: a
// one-byte representation tag followed by the variant's payload.
func (v Value) EncodeBinary(w *wirebin.Writer) error {
	w.AddByte(byte(v.Rep))
	switch v.Rep {
	case RepNull:
	case RepBoolean:
		w.AddBool(v.Bool)
	case RepByte, RepShort, RepInteger, RepDate, RepTime:
		w.AddInt32(int32(v.Int))
	case RepLong, RepTimestamp:
		w.AddInt64(v.Int)
	case RepFloat:
		if mathIsNaNOrInf(v.Float) {
			return illegalArgument("cannot encode NaN/Infinity in a typed value")
		}
		w.AddInt32(int32(math.Float32bits(float32(v.Float))))
	case RepDouble:
		if mathIsNaNOrInf(v.Float) {
			return illegalArgument("cannot encode NaN/Infinity in a typed value")
		}
		w.AddFloat64(v.Float)
	case RepDecimal:
		if v.Dec.Unscaled == nil {
			return illegalArgument("decimal value has no unscaled component")
		}
		w.AddString(v.Dec.Unscaled.String())
		w.AddInt32(v.Dec.Scale)
	case RepString:
		w.AddString(v.Str)
	case RepBytes:
		w.AddBytes(v.Bytes)
	case RepArray:
		w.AddByte(byte(v.ElemRep))
		w.AddInt32(int32(len(v.Array)))
		for _, e := range v.Array {
			if err := e.EncodeBinary(w); err != nil {
				return err
			}
		}
	default:
		return illegalArgument("unrecognized representation tag %d", v.Rep)
	}
	return w.Error()
}

// DecodeValueBinary reads a Value previously written by EncodeBinary.
func DecodeValueBinary(r *wirebin.Reader) (Value, error) {
	tag, err := r.GetByte()
	if err != nil {
		return Value{}, err
	}

	rep := Rep(tag)
	if rep < RepNull || rep > RepArray {
		return Value{}, fmt.Errorf("%w: representation %d", wirebin.ErrInvalidTag, tag)
	}

	switch rep {
	case RepNull:
		return Null(), nil
	case RepBoolean:
		b, err := r.GetBool()
		return Bool(b), err
	case RepByte, RepShort, RepInteger, RepDate, RepTime:
		n, err := r.GetInt32()
		return Value{Rep: rep, Int: int64(n)}, err
	case RepLong, RepTimestamp:
		n, err := r.GetInt64()
		return Value{Rep: rep, Int: n}, err
	case RepFloat:
		bits, err := r.GetInt32()
		if err != nil {
			return Value{}, err
		}
		return Float32(math.Float32frombits(uint32(bits))), nil
	case RepDouble:
		f, err := r.GetFloat64()
		return Float64(f), err
	case RepDecimal:
		unscaled, err := r.GetString()
		if err != nil {
			return Value{}, err
		}
		scale, err := r.GetInt32()
		if err != nil {
			return Value{}, err
		}
		d, err := DecimalFromString(unscaled, scale)
		if err != nil {
			return Value{}, err
		}
		return DecimalValue(d), nil
	case RepString:
		s, err := r.GetString()
		return String(s), err
	case RepBytes:
		b, err := r.GetBytes()
		return Bin(b), err
	case RepArray:
		elemTag, err := r.GetByte()
		if err != nil {
			return Value{}, err
		}
		elemRep := Rep(elemTag)
		if elemRep < RepNull || elemRep > RepArray {
			return Value{}, fmt.Errorf("%w: array element representation %d", wirebin.ErrInvalidTag, elemTag)
		}
		n, err := r.GetInt32()
		if err != nil {
			return Value{}, err
		}
		if n < 0 {
			return Value{}, fmt.Errorf("%w: negative array length %d", wirebin.ErrInvalidTag, n)
		}
		elems := make([]Value, n)
		for i := range elems {
			v, err := DecodeValueBinary(r)
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
		return Value{}, fmt.Errorf("%w: representation %d", wirebin.ErrInvalidTag, tag)
	}
}
