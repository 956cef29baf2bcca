package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const configJava = `
public class Config {
    /**
     * The max size of a log file before rolling.
     */
    @ConfField
    public static int log_roll_size_mb = 1024;

    @ConfField(mutable = true, comment = "Log output format")
    @Deprecated
    public static String sys_log_format = "plaintext";

    // not annotated
    public static int plain_field = 1;
}
`

func TestParseConfigParams(t *testing.T) {
	params := ParseConfigParams(configJava, "common/Config.java")
	require.Len(t, params, 2)

	first := params[0]
	assert.Equal(t, "log_roll_size_mb", first.Name)
	assert.Equal(t, "int", first.Type)
	assert.Equal(t, "1024", first.DefaultValue)
	assert.Equal(t, "The max size of a log file before rolling.", first.Comment)
	assert.False(t, first.Mutable)
	assert.Equal(t, "FE", first.Scope)

	second := params[1]
	assert.Equal(t, "sys_log_format", second.Name)
	assert.Equal(t, "String", second.Type)
	assert.Equal(t, `"plaintext"`, second.DefaultValue)
	assert.Equal(t, "Log output format", second.Comment, "annotation comment wins over code comment")
	assert.True(t, second.Mutable)
}

func TestParseConfigParamsWithoutAnnotationReturnsNothing(t *testing.T) {
	assert.Empty(t, ParseConfigParams("public static int x = 1;", "X.java"))
}

func TestScanConfigIdentifiers(t *testing.T) {
	ids := ScanConfigIdentifiers(configJava)
	assert.Equal(t, 2, ids.Len())
	assert.True(t, ids.Has("log_roll_size_mb"))
	assert.True(t, ids.Has("sys_log_format"))
	assert.False(t, ids.Has("plain_field"))
}

func TestParseAnnotationParams(t *testing.T) {
	attrs := parseAnnotationParams(`mutable = true, comment = "a, quoted text", flag = VariableMgr.INVISIBLE`)
	assert.Equal(t, "true", attrs["mutable"])
	assert.Equal(t, "a, quoted text", attrs["comment"])
	assert.Equal(t, "VariableMgr.INVISIBLE", attrs["flag"])
}
