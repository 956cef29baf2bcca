package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const functionsRegistry = `
vectorized_functions = [
    [10010, 'add', True, False, 'BIGINT', ['BIGINT', 'BIGINT'], 'MathFunctions::add'],
    [10011, 'add', True, False, 'DOUBLE', ['DOUBLE', 'DOUBLE'], 'MathFunctions::add_fp'],
    [10060, 'abs', True, False, 'BIGINT', ['BIGINT'], 'MathFunctions::abs'],
    # not an entry
    [10100, 'concat', True, False, 'VARCHAR', ['VARCHAR', 'VARCHAR'], 'StringFunctions::concat'],
]
`

func TestParseSQLFunctionsMergesOverloads(t *testing.T) {
	functions := ParseSQLFunctions(functionsRegistry)
	require.Len(t, functions, 3)

	assert.Equal(t, "abs", functions[0].Name)
	assert.Equal(t, "abs(BIGINT) -> BIGINT", functions[0].Signature)

	add := functions[1]
	assert.Equal(t, "add", add.Name)
	assert.Equal(t, "add(BIGINT, BIGINT) -> BIGINT\nadd(DOUBLE, DOUBLE) -> DOUBLE", add.Signature)

	assert.Equal(t, "concat", functions[2].Name)
	assert.Equal(t, "VARCHAR", functions[2].ReturnType)
}

func TestScanFunctionIdentifiers(t *testing.T) {
	ids := ScanFunctionIdentifiers(functionsRegistry)
	assert.Equal(t, 3, ids.Len())
	assert.True(t, ids.Has("add"))
	assert.True(t, ids.Has("abs"))
	assert.True(t, ids.Has("concat"))
}
