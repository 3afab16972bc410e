package typedvalue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnMetaDataBinaryRoundTrip(t *testing.T) {
	t.Parallel()

	c := ColumnMetaData{
		Ordinal:       2,
		Name:          "amount",
		Label:         "amount",
		Type:          SQLTypeDecimal,
		Precision:     10,
		Scale:         2,
		Nullable:      true,
		Signed:        true,
		ArrayElemType: SQLTypeNull,
	}

	w := newTestWriter(t)
	c.EncodeBinary(w)
	require.NoError(t, w.Error())

	out, err := DecodeColumnMetaDataBinary(newTestReader(w))
	require.NoError(t, err)
	assert.Equal(t, c, out)
}

func TestParamMetaDataBinaryRoundTrip(t *testing.T) {
	t.Parallel()

	p := ParamMetaData{
		Ordinal:   1,
		Name:      "id",
		Type:      SQLTypeBigInt,
		Precision: 19,
		Nullable:  false,
		Signed:    true,
	}

	w := newTestWriter(t)
	p.EncodeBinary(w)
	require.NoError(t, w.Error())

	out, err := DecodeParamMetaDataBinary(newTestReader(w))
	require.NoError(t, err)
	assert.Equal(t, p, out)
}

func TestSQLTypeRepMapping(t *testing.T) {
	t.Parallel()

	assert.Equal(t, RepDecimal, SQLTypeDecimal.Rep())
	assert.Equal(t, RepString, SQLTypeVarchar.Rep())
	assert.Equal(t, RepArray, SQLTypeArray.Rep())
	assert.Equal(t, RepNull, SQLTypeNull.Rep())
}
