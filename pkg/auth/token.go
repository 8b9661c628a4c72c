// Package auth obtains authorization headers for the tools that test a SUT.
package auth

import (
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/iasthc/bb-exp/internal/yamljson"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fastjson"
	"gopkg.in/yaml.v2"
)

// Token is used to manually enter service authorization information.
type Token struct {
	URL         string      `yaml:"url"`
	Method      string      `yaml:"method"`
	Key         string      `yaml:"key"`
	Bearer      string      `yaml:"bearer"` // is empty when initial
	ContentType string      `yaml:"type"`
	Body        interface{} `yaml:"body"`
	Hardcode    bool        `yaml:"hardcode"`
}

// LoadToken reads a token file.
func LoadToken(path string) (Token, error) {

	t := Token{}

	b, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}

	if err := yaml.Unmarshal(b, &t); err != nil {
		return t, fmt.Errorf("%s: %w", path, err)
	}

	if !t.Hardcode && t.URL == "" {
		return t, fmt.Errorf("%s: token file is not ready yet, url is empty", path)
	}

	return t, nil

}

// Client logs in to a SUT.
type Client struct {
	client  *fasthttp.Client
	timeout time.Duration
}

// NewClient creates a client that accepts any TLS certificate, SUTs run with self-signed ones.
func NewClient(timeout time.Duration) *Client {
	return &Client{
		client: &fasthttp.Client{
			TLSConfig: &tls.Config{InsecureSkipVerify: true},
		},
		timeout: timeout,
	}
}

// WithDial replaces the dialer, mostly for tests.
func (c *Client) WithDial(dial fasthttp.DialFunc) *Client {
	c.client.Dial = dial
	return c
}

// Fetch obtains the bearer token based on the token information.
func (c *Client) Fetch(t Token) (string, error) {

	// hardcode
	if t.Hardcode {
		return t.Bearer, nil
	}

	body, err := requestBody(t.Body)
	if err != nil {
		return "", err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(t.URL)
	req.Header.SetMethod(t.Method)
	if t.ContentType != "" {
		req.Header.SetContentType(t.ContentType)
	}
	req.SetBodyString(body)

	if err := c.client.DoTimeout(req, resp, c.timeout); err != nil {
		return "", err
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return "", fmt.Errorf("invalid log in, code: %d", resp.StatusCode())
	}

	b := resp.Body()

	// Customized token info
	var p fastjson.Parser
	bearer := ""
	if v, err := p.ParseBytes(b); err == nil {
		// SPREE: access_token
		// REALWORLD: user{token}
		bearer = string(v.GetStringBytes(keyPath(t.Key)...))
	}

	if bearer == "" {
		// MAGENTO: w/o key
		bearer = strings.ReplaceAll(string(b), "\"", "")
	}

	if bearer == "" {
		return "", errors.New("empty token in log in response")
	}

	return bearer, nil

}

func requestBody(body interface{}) (string, error) {

	switch b := body.(type) {

	case nil:

		return "", nil

	case string:

		return b, nil

	}

	encoded, err := json.Marshal(yamljson.Normalize(body))
	if err != nil {
		return "", err
	}
	return string(encoded), nil

}

// keyPath splits a key such as user{token} or data[token] into fastjson keys.
func keyPath(k string) []string {

	keys := []string{}
	key := ""
	for _, c := range k {

		if c == '{' {

			keys = append(keys, key)
			key = ""

		} else if c == '[' {

			keys = append(keys, key, "0")
			key = ""

		} else if c == ']' || c == '}' {

			if len(key) > 0 {
				keys = append(keys, key)
				key = ""
			}

		} else {

			key += string(c)

		}

	}

	if len(key) > 0 {
		keys = append(keys, key)
	}

	return keys

}

// Header is an HTTP header sent with every request.
type Header struct {
	Key   string
	Value string
}

// ParseHeader parses "Key: Value".
func ParseHeader(s string) (Header, error) {
	i := strings.Index(s, ":")
	if i <= 0 {
		return Header{}, fmt.Errorf("invalid header %q, want \"Key: Value\"", s)
	}
	return Header{Key: strings.TrimSpace(s[:i]), Value: strings.TrimSpace(s[i+1:])}, nil
}

// BearerHeader is the Authorization header of a bearer token.
func BearerHeader(bearer string) Header {
	return Header{Key: "Authorization", Value: "Bearer " + bearer}
}

// WriteRefresh prints headers in the format RESTler expects from a token refresh command:
// a metadata line followed by one header per line.
func WriteRefresh(w io.Writer, headers ...Header) error {
	if _, err := fmt.Fprintln(w, "{u'app': {}}"); err != nil {
		return err
	}
	for _, h := range headers {
		if _, err := fmt.Fprintf(w, "%s: %s\n", h.Key, h.Value); err != nil {
			return err
		}
	}
	return nil
}
