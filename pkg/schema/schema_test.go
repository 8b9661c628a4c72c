package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fastjson"
)

const swagger2 = `{
  "swagger": "2.0",
  "info": {"title": "ocvn", "version": "1.0"},
  "host": "example.org:8080",
  "basePath": "/api",
  "schemes": ["https"],
  "paths": {
    "/items": {
      "get": {"responses": {"200": {"description": "ok"}}}
    }
  }
}`

const openapi3Doc = `
openapi: 3.0.1
info:
  title: bibliothek
  version: "1"
servers:
  - url: https://papermc.io/api/
  - url: "{scheme}://example.org"
paths:
  /projects:
    get:
      responses:
        "200":
          description: ok
`

func TestDetect(t *testing.T) {
	v, err := Detect([]byte(swagger2))
	require.NoError(t, err)
	assert.Equal(t, Swagger2, v)

	v, err = Detect([]byte(`{"openapi":"3.0.3"}`))
	require.NoError(t, err)
	assert.Equal(t, OpenAPI3, v)

	_, err = Detect([]byte(`{"asyncapi":"2.0.0"}`))
	require.ErrorIs(t, err, ErrUnknownVersion)

	_, err = Detect([]byte(`not json`))
	require.Error(t, err)
}

func TestUpdateSwagger2(t *testing.T) {
	out, err := Update([]byte(swagger2), 40010, Options{})
	require.NoError(t, err)

	v := fastjson.MustParseBytes(out)
	assert.Equal(t, "2.0", string(v.GetStringBytes("swagger")))
	assert.Equal(t, "localhost:40010", string(v.GetStringBytes("host")))
	assert.Equal(t, "/api", string(v.GetStringBytes("basePath")))
	assert.Equal(t, "http", string(v.GetStringBytes("schemes", "0")))
	assert.True(t, v.Exists("paths", "/items", "get"))
}

func TestUpdateSwagger2ToV3(t *testing.T) {
	out, err := Update([]byte(swagger2), 40010, Options{ToV3: true})
	require.NoError(t, err)

	version, err := Detect(out)
	require.NoError(t, err)
	assert.Equal(t, OpenAPI3, version)

	v := fastjson.MustParseBytes(out)
	servers := v.GetArray("servers")
	require.Len(t, servers, 1)
	assert.Equal(t, "http://localhost:40010/api", string(servers[0].GetStringBytes("url")))
	assert.True(t, v.Exists("paths", "/items", "get"))
}

func TestUpdateOpenAPI3(t *testing.T) {
	out, err := Update([]byte(openapi3Doc), 9000, Options{})
	require.NoError(t, err)

	v := fastjson.MustParseBytes(out)
	servers := v.GetArray("servers")
	require.Len(t, servers, 2)
	assert.Equal(t, "http://localhost:9000/api", string(servers[0].GetStringBytes("url")))
	assert.Equal(t, "http://localhost:9000", string(servers[1].GetStringBytes("url")))
}

func TestRewriteServersWithoutServers(t *testing.T) {
	servers := rewriteServers(nil, "localhost:1")
	require.Len(t, servers, 1)
	assert.Equal(t, "http://localhost:1", servers[0].URL)
}

func TestUpdateFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "openapi.json")
	require.NoError(t, os.WriteFile(p, []byte(swagger2), 0o644))

	out, err := UpdateFile(p, 40020, Options{Format: "yaml"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(p), "openapi.yaml"), out)

	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "localhost:40020", string(fastjson.MustParseBytes(b).GetStringBytes("host")))

	y, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(y), "host: localhost:40020\n")

	_, err = UpdateFile(p, 1, Options{Format: "xml"})
	require.Error(t, err)
}

func TestConvertFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "openapi.json")
	require.NoError(t, os.WriteFile(p, []byte(swagger2), 0o644))

	out, err := ConvertFile(p)
	require.NoError(t, err)
	y, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(y), "swagger: \"2.0\"\n")
	assert.Contains(t, string(y), "basePath: /api\n")

	_, err = ConvertFile(out)
	require.Error(t, err)
}
