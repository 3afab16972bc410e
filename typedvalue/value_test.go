package typedvalue

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecimalCanonicalString(t *testing.T) {
	t.Parallel()

	unscaled, ok := new(big.Int).SetString("1234567890", 10)
	require.True(t, ok)

	d, err := NewDecimal(unscaled, 5)
	require.NoError(t, err)
	assert.Equal(t, "12345.67890", d.String())
}

func TestDecimalNegativeScaleRejected(t *testing.T) {
	t.Parallel()

	_, err := NewDecimal(big.NewInt(1), -1)
	require.Error(t, err)
	var iae *IllegalArgumentError
	assert.ErrorAs(t, err, &iae)
}

func TestBinaryAsString(t *testing.T) {
	t.Parallel()

	v := Bin([]byte{0x61, 0x73, 0x64, 0x66})
	s, err := v.AsString()
	require.NoError(t, err)
	assert.Equal(t, "asdf", s)
}

func TestUnicodePassThrough(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"您好", "こんにちは", "안녕하세요"} {
		v := String(s)
		data, err := v.MarshalJSON()
		require.NoError(t, err)

		var roundtripped Value
		require.NoError(t, roundtripped.UnmarshalJSON(data))
		assert.True(t, v.Equal(roundtripped))
		assert.Equal(t, s, roundtripped.Str)

		bw := newTestWriter(t)
		require.NoError(t, v.EncodeBinary(bw))
		br := newTestReader(bw)
		decoded, err := DecodeValueBinary(br)
		require.NoError(t, err)
		assert.True(t, v.Equal(decoded))
	}
}

func TestValueRoundTripJSON(t *testing.T) {
	t.Parallel()

	d, err := DecimalFromString("12345678901234567890", 7)
	require.NoError(t, err)

	values := []Value{
		Null(),
		Bool(true),
		Byte(-12),
		Short(1234),
		Integer(-70000),
		Long(math.MaxInt64),
		Float32(1.5),
		Float64(-2.25),
		DecimalValue(d),
		String("hello"),
		Bin([]byte{1, 2, 3}),
		Date(19000),
		Time(3600000),
		Timestamp(1700000000000),
		Array(RepInteger, []Value{Integer(1), Null(), Integer(3)}),
	}

	for _, v := range values {
		data, err := v.MarshalJSON()
		require.NoError(t, err)

		var out Value
		require.NoError(t, out.UnmarshalJSON(data))
		assert.Truef(t, v.Equal(out), "json round-trip mismatch for %s: got %s", v, out)
	}
}

func TestValueRoundTripBinary(t *testing.T) {
	t.Parallel()

	d, err := DecimalFromString("99999999999999999999", 3)
	require.NoError(t, err)

	values := []Value{
		Null(),
		Bool(false),
		Long(-1),
		Float64(3.14159),
		DecimalValue(d),
		Array(RepString, []Value{String("a"), Null(), String("b")}),
		Array(RepArray, []Value{Array(RepInteger, []Value{Integer(1)})}),
	}

	for _, v := range values {
		w := newTestWriter(t)
		require.NoError(t, v.EncodeBinary(w))

		r := newTestReader(w)
		out, err := DecodeValueBinary(r)
		require.NoError(t, err)
		assert.Truef(t, v.Equal(out), "binary round-trip mismatch for %s: got %s", v, out)
		assert.Equal(t, 0, r.Remaining())
	}
}

func TestEncodeRejectsNaNAndInfinity(t *testing.T) {
	t.Parallel()

	_, err := Float64(math.NaN()).MarshalJSON()
	assert.Error(t, err)

	_, err = Float64(math.Inf(1)).MarshalJSON()
	assert.Error(t, err)

	err = Float64(math.NaN()).EncodeBinary(newTestWriter(t))
	assert.Error(t, err)
}

func TestArrayElementTypeMismatchRejected(t *testing.T) {
	t.Parallel()

	w := newTestWriter(t)
	require.NoError(t, Array(RepInteger, []Value{String("oops")}).EncodeBinary(w))
	_, err := DecodeValueBinary(newTestReader(w))
	require.Error(t, err)
}

func TestUnknownRepresentationTagIsStructuredError(t *testing.T) {
	t.Parallel()

	var v Value
	err := v.UnmarshalJSON([]byte(`{"type":"NOT_A_REAL_TYPE"}`))
	require.Error(t, err)
}
