package script

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunExportsVariables(t *testing.T) {
	var out bytes.Buffer
	runtime := NewShellRuntime(WithOutput(&out))

	sctx := &Context{
		RequestName: "login",
		Phase:       PhasePre,
		Vars:        map[string]any{"base_url": "https://api.test", "retry-count": 3},
	}
	err := runtime.Run(context.Background(), `echo "url=$PURL_VAR_base_url count=$PURL_VAR_retry_count phase=$PURL_PHASE"`, sctx)
	require.NoError(t, err)
	assert.Equal(t, "url=https://api.test count=3 phase=pre\n", out.String())
}

func TestRunSetVarProtocol(t *testing.T) {
	runtime := NewShellRuntime()

	captured := map[string]string{}
	sctx := &Context{
		Phase: PhasePost,
		SetVar: func(name, value string) {
			captured[name] = value
		},
	}
	script := "echo set_var token abc123\necho set_var note hello world"
	require.NoError(t, runtime.Run(context.Background(), script, sctx))
	assert.Equal(t, map[string]string{"token": "abc123", "note": "hello world"}, captured)
}

func TestRunMixedOutput(t *testing.T) {
	var out bytes.Buffer
	runtime := NewShellRuntime(WithOutput(&out))

	captured := map[string]string{}
	sctx := &Context{
		Phase:  PhasePre,
		SetVar: func(name, value string) { captured[name] = value },
	}
	require.NoError(t, runtime.Run(context.Background(), "echo preparing\necho set_var id 9", sctx))
	assert.Equal(t, "preparing\n", out.String())
	assert.Equal(t, map[string]string{"id": "9"}, captured)
}

func TestRunFailure(t *testing.T) {
	runtime := NewShellRuntime()

	sctx := &Context{RequestName: "cleanup", Phase: PhasePost}
	err := runtime.Run(context.Background(), "exit 3", sctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "post script")
	assert.Contains(t, err.Error(), "cleanup")
}

func TestRunFailureKeepsEarlierSetVars(t *testing.T) {
	runtime := NewShellRuntime()

	captured := map[string]string{}
	sctx := &Context{
		Phase:  PhasePost,
		SetVar: func(name, value string) { captured[name] = value },
	}
	err := runtime.Run(context.Background(), "echo set_var partial yes\nexit 1", sctx)
	require.Error(t, err)
	assert.Equal(t, map[string]string{"partial": "yes"}, captured)
}

func TestRunEmptyCommand(t *testing.T) {
	runtime := NewShellRuntime()
	require.NoError(t, runtime.Run(context.Background(), "   \n", &Context{}))
}

func TestRunTimeout(t *testing.T) {
	runtime := NewShellRuntime(WithTimeout(50 * time.Millisecond))

	err := runtime.Run(context.Background(), "sleep 2", &Context{RequestName: "slow", Phase: PhasePre})
	require.Error(t, err)
}

func TestRunUsesBaseDir(t *testing.T) {
	var out bytes.Buffer
	runtime := NewShellRuntime(WithOutput(&out))

	dir := t.TempDir()
	require.NoError(t, runtime.Run(context.Background(), "pwd", &Context{BaseDir: dir}))
	assert.Contains(t, out.String(), dir)
}
