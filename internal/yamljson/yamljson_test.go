package yamljson

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToJSON(t *testing.T) {
	out, err := ToJSON([]byte("swagger: \"2.0\"\npaths:\n  /a:\n    get: {}\nports: [1, 2]\n"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"swagger":"2.0","paths":{"/a":{"get":{}}},"ports":[1,2]}`, string(out))

	in := []byte(` {"a": 1}`)
	out, err = ToJSON(in)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestToYAMLKeepsOrder(t *testing.T) {
	out, err := ToYAML([]byte(`{"openapi":"3.0.1","info":{"title":"t","version":"1"},"paths":{}}`))
	require.NoError(t, err)
	assert.Equal(t, "openapi: 3.0.1\ninfo:\n  title: t\n  version: \"1\"\npaths: {}\n", string(out))
}
