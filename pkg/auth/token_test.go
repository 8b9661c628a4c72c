package auth

import (
	"bytes"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
)

func loginServer(t *testing.T, handler fasthttp.RequestHandler) *Client {
	t.Helper()
	ln := fasthttputil.NewInmemoryListener()
	s := &fasthttp.Server{Handler: handler}
	go s.Serve(ln) //nolint:errcheck
	t.Cleanup(func() { ln.Close() })

	return NewClient(time.Second).WithDial(func(string) (net.Conn, error) {
		return ln.Dial()
	})
}

func TestKeyPath(t *testing.T) {
	cases := []struct {
		input string
		want  []string
	}{
		{"access_token", []string{"access_token"}},
		{"user{token}", []string{"user", "token"}},
		{"data[token]", []string{"data", "0", "token"}},
		{"data[items{token}]", []string{"data", "0", "items", "token"}},
		{"", []string{}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, keyPath(tc.input), tc.input)
	}
}

func TestFetch(t *testing.T) {
	var gotBody []byte
	var gotType string
	c := loginServer(t, func(ctx *fasthttp.RequestCtx) {
		gotBody = append([]byte(nil), ctx.PostBody()...)
		gotType = string(ctx.Request.Header.ContentType())
		ctx.SetContentType("application/json")
		ctx.SetBodyString(`{"user": {"token": "abc"}}`)
	})

	bearer, err := c.Fetch(Token{
		URL:         "http://sut/api/users/login",
		Method:      fasthttp.MethodPost,
		Key:         "user{token}",
		ContentType: "application/json",
		Body:        map[interface{}]interface{}{"user": map[interface{}]interface{}{"email": "a@b.c"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "abc", bearer)
	assert.JSONEq(t, `{"user": {"email": "a@b.c"}}`, string(gotBody))
	assert.Equal(t, "application/json", gotType)
}

func TestFetchArrayKey(t *testing.T) {
	c := loginServer(t, func(ctx *fasthttp.RequestCtx) {
		ctx.SetContentType("application/json")
		ctx.SetBodyString(`{"data": [{"token": "abc"}, {"token": "def"}]}`)
	})
	bearer, err := c.Fetch(Token{URL: "http://sut/token", Method: fasthttp.MethodPost, Key: "data[token]"})
	require.NoError(t, err)
	assert.Equal(t, "abc", bearer)
}

func TestFetchWithoutKey(t *testing.T) {
	c := loginServer(t, func(ctx *fasthttp.RequestCtx) {
		ctx.SetBodyString(`"raw-token"`)
	})
	bearer, err := c.Fetch(Token{URL: "http://sut/token", Method: fasthttp.MethodPost, Body: "{}"})
	require.NoError(t, err)
	assert.Equal(t, "raw-token", bearer)
}

func TestFetchRejectedLogin(t *testing.T) {
	c := loginServer(t, func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(fasthttp.StatusUnauthorized)
	})
	_, err := c.Fetch(Token{URL: "http://sut/token", Method: fasthttp.MethodPost})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestFetchHardcoded(t *testing.T) {
	bearer, err := NewClient(time.Second).Fetch(Token{Hardcode: true, Bearer: "fixed"})
	require.NoError(t, err)
	assert.Equal(t, "fixed", bearer)
}

func TestLoadToken(t *testing.T) {
	p := filepath.Join(t.TempDir(), "token.yml")
	require.NoError(t, os.WriteFile(p, []byte(`url: http://localhost:8080/login
method: POST
key: access_token
type: application/json
body:
  username: admin
  password: admin
`), 0o600))

	tok, err := LoadToken(p)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/login", tok.URL)
	assert.Equal(t, "access_token", tok.Key)

	body, err := requestBody(tok.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"username": "admin", "password": "admin"}`, body)

	require.NoError(t, os.WriteFile(p, []byte("method: POST\n"), 0o600))
	_, err = LoadToken(p)
	require.Error(t, err)
}

func TestWriteRefresh(t *testing.T) {
	h, err := ParseHeader("Authorization: Bearer a:b")
	require.NoError(t, err)
	assert.Equal(t, Header{Key: "Authorization", Value: "Bearer a:b"}, h)

	_, err = ParseHeader("no header")
	require.Error(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteRefresh(&buf, h, BearerHeader("xyz")))
	assert.Equal(t, "{u'app': {}}\nAuthorization: Bearer a:b\nAuthorization: Bearer xyz\n", buf.String())
}
