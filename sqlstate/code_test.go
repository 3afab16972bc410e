package sqlstate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentinelCodesMatchWireContract(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Code("00000"), Success)
	assert.Len(t, string(Success), 5)
}

func TestCodesAreFiveCharacters(t *testing.T) {
	t.Parallel()

	codes := []Code{
		Warning, NoData, ConnectionException, ConnectionDoesNotExist,
		DataException, NumericValueOutOfRange, IntegrityConstraintViolation,
		UniqueViolation, SyntaxError, UndefinedTable, InvalidSQLStatementName,
		InternalError, Uncategorized,
	}
	for _, c := range codes {
		assert.Lenf(t, string(c), 5, "code %q is not five characters", c)
	}
}
