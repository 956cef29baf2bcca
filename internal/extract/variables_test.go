package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sessionVariableJava = `
public class SessionVariable {
    public static final String QUERY_TIMEOUT = "query_timeout";
    public static final String EXEC_MEM_LIMIT = "exec_mem_limit";

    @VarAttr(name = QUERY_TIMEOUT)
    public int queryTimeoutS = 300;

    @VariableMgr.VarAttr(name = "parallel_fragment_exec_instance_num", show = "parallel_exec_num")
    public int parallelExecInstanceNum = 1;

    @VarAttr(name = EXEC_MEM_LIMIT, flag = VariableMgr.INVISIBLE)
    public long execMemLimit = 2147483648L;
}
`

func TestParseSessionVariables(t *testing.T) {
	vars := ParseSessionVariables(sessionVariableJava, "Session")
	require.Len(t, vars, 3)

	timeout := vars[0]
	assert.Equal(t, "query_timeout", timeout.Name, "constant reference resolved")
	assert.Equal(t, "query_timeout", timeout.ID())
	assert.Equal(t, "int", timeout.Type)
	assert.Equal(t, "300", timeout.DefaultValue)
	assert.Equal(t, "Session", timeout.Scope)
	assert.False(t, timeout.Invisible)

	parallel := vars[1]
	assert.Equal(t, "parallel_fragment_exec_instance_num", parallel.Name)
	assert.Equal(t, "parallel_exec_num", parallel.Show)
	assert.Equal(t, "parallel_exec_num", parallel.ID(), "show name is the documented identifier")

	mem := vars[2]
	assert.Equal(t, "exec_mem_limit", mem.Name)
	assert.True(t, mem.Invisible)
}

func TestScanVariableIdentifiers(t *testing.T) {
	ids := ScanVariableIdentifiers(sessionVariableJava)
	assert.Equal(t, 3, ids.Len())
	assert.True(t, ids.Has("query_timeout"))
	assert.True(t, ids.Has("parallel_exec_num"), "show wins over name")
	assert.True(t, ids.Has("exec_mem_limit"))
	assert.False(t, ids.Has("parallel_fragment_exec_instance_num"))
}
