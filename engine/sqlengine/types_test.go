package sqlengine

import (
	"testing"

	"github.com/metarpc/metarpc/typedvalue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLooksRowReturning(t *testing.T) {
	t.Parallel()

	assert.True(t, looksRowReturning("  select * from products"))
	assert.True(t, looksRowReturning("SHOW TABLES"))
	assert.True(t, looksRowReturning("explain select 1"))
	assert.False(t, looksRowReturning("INSERT INTO products VALUES (1)"))
	assert.False(t, looksRowReturning("update products set price = 1"))
}

func TestParseDecimalStringPadsToScale(t *testing.T) {
	t.Parallel()

	d, err := parseDecimalString("1234.5", 4)
	require.NoError(t, err)
	assert.Equal(t, "1234.5000", d.String())
}

func TestParseDecimalStringTrimsExcessFraction(t *testing.T) {
	t.Parallel()

	d, err := parseDecimalString("1234.56789", 2)
	require.NoError(t, err)
	assert.Equal(t, "1234.56", d.String())
}

func TestParseDecimalStringNegative(t *testing.T) {
	t.Parallel()

	d, err := parseDecimalString("-99.5", 2)
	require.NoError(t, err)
	assert.Equal(t, "-99.50", d.String())
}

func TestValueToDriverArgNull(t *testing.T) {
	t.Parallel()

	v, err := valueToDriverArg(typedvalue.Null())
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestValueToDriverArgDecimalRendersCanonicalString(t *testing.T) {
	t.Parallel()

	d, err := typedvalue.DecimalFromString("12345", 2)
	require.NoError(t, err)

	v, err := valueToDriverArg(typedvalue.DecimalValue(d))
	require.NoError(t, err)
	assert.Equal(t, "123.45", v)
}

func TestAsInt64FromBytes(t *testing.T) {
	t.Parallel()

	n, err := asInt64([]byte("42"))
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)
}
