package restler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeSettings(t *testing.T) {
	engine := `{"a": 1, "nested": {"x": 1, "y": 2}, "b": "keep"}`
	custom := `{"nested": {"x": 9}, "a": 2, "c": [1, 2]}`

	merged, err := mergeSettings([]byte(engine), []byte(custom))
	require.NoError(t, err)

	// top level only: "nested" is replaced as a whole
	assert.Equal(t, `{"a":2,"nested":{"x":9},"b":"keep","c":[1,2]}`, string(merged))
}

func TestMergeSettingsKeepsEveryKey(t *testing.T) {
	merged, err := mergeSettings([]byte(`{"a": 1, "b": 2}`), []byte(`{}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": 1, "b": 2}`, string(merged))

	merged, err = mergeSettings([]byte(`{}`), []byte(`{"c": true}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"c": true}`, string(merged))
}

func TestMergeSettingsErrors(t *testing.T) {
	_, err := mergeSettings([]byte(`[1]`), []byte(`{}`))
	require.Error(t, err)

	_, err = mergeSettings([]byte(`{}`), []byte(`{`))
	require.Error(t, err)

	require.Error(t, MergeSettings("missing.json", "custom.json", "out.json"))
}
