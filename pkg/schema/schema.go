// Package schema patches OpenAPI and Swagger documents so that black-box tools can use them
// against a SUT listening on a local port.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi2conv"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/iasthc/bb-exp/internal/yamljson"
	"github.com/valyala/fastjson"
)

// Version is the specification version of a schema.
type Version int

// Known versions.
const (
	Unknown Version = iota
	Swagger2
	OpenAPI3
)

func (v Version) String() string {
	switch v {
	case Swagger2:
		return "swagger 2.0"
	case OpenAPI3:
		return "openapi 3"
	}
	return "unknown"
}

// ErrUnknownVersion is returned for documents that are neither Swagger 2.0 nor OpenAPI 3.
var ErrUnknownVersion = errors.New("neither a swagger nor an openapi document")

// Detect reads the version field of a JSON document.
func Detect(data []byte) (Version, error) {
	v, err := fastjson.ParseBytes(data)
	if err != nil {
		return Unknown, err
	}
	if s := string(v.GetStringBytes("swagger")); strings.HasPrefix(s, "2.") {
		return Swagger2, nil
	}
	if s := string(v.GetStringBytes("openapi")); strings.HasPrefix(s, "3.") {
		return OpenAPI3, nil
	}
	return Unknown, ErrUnknownVersion
}

// Options are the optional steps of Update.
type Options struct {
	// ToV3 converts a Swagger 2.0 document into OpenAPI 3.
	ToV3 bool
	// Format is "yaml" to also write the document as YAML, or empty.
	Format string
}

// Update points a schema at http://localhost:<port>, keeping the base path of its servers.
// It returns the patched document as JSON.
func Update(data []byte, port int, opts Options) ([]byte, error) {
	data, err := yamljson.ToJSON(data)
	if err != nil {
		return nil, err
	}
	version, err := Detect(data)
	if err != nil {
		return nil, err
	}
	host := "localhost:" + strconv.Itoa(port)

	switch version {

	case Swagger2:

		doc := &openapi2.Swagger{}
		if err := json.Unmarshal(data, doc); err != nil {
			return nil, fmt.Errorf("%s: %w", version, err)
		}
		doc.Host = host
		doc.Schemes = []string{"http"}

		if !opts.ToV3 {
			out, err := json.Marshal(doc)
			if err != nil {
				return nil, err
			}
			return keepField(out, "swagger", data)
		}
		v3, err := openapi2conv.ToV3Swagger(doc)
		if err != nil {
			return nil, fmt.Errorf("convert to openapi 3: %w", err)
		}
		v3.Servers = rewriteServers(v3.Servers, host)
		return json.Marshal(v3)

	case OpenAPI3:

		doc, err := openapi3.NewSwaggerLoader().LoadSwaggerFromData(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", version, err)
		}
		doc.Servers = rewriteServers(doc.Servers, host)
		return json.Marshal(doc)

	}
	return nil, ErrUnknownVersion
}

// keepField copies a top level string field of src into out when out lost it.
func keepField(out []byte, key string, src []byte) ([]byte, error) {
	var p fastjson.Parser
	v, err := p.ParseBytes(out)
	if err != nil {
		return nil, err
	}
	if v.Exists(key) {
		return out, nil
	}
	var a fastjson.Arena
	v.Set(key, a.NewStringBytes(fastjson.GetBytes(src, key)))
	return v.MarshalTo(nil), nil
}

// rewriteServers keeps the path of every server and replaces its scheme and host.
func rewriteServers(servers openapi3.Servers, host string) openapi3.Servers {
	res := openapi3.Servers{}
	seen := map[string]bool{}
	for _, server := range servers {
		p := ""
		// variables such as {basePath} cannot be resolved here
		if u, err := url.Parse(server.URL); err == nil && !strings.Contains(server.URL, "{") {
			p = strings.TrimSuffix(u.Path, "/")
		}
		u := url.URL{Scheme: "http", Host: host, Path: p}
		if seen[u.String()] {
			continue
		}
		seen[u.String()] = true
		res = append(res, &openapi3.Server{URL: u.String(), Description: server.Description})
	}
	if len(res) == 0 {
		res = append(res, &openapi3.Server{URL: "http://" + host})
	}
	return res
}

// UpdateFile patches the schema at path in place. With Format "yaml" a YAML copy is written
// next to it and its path returned.
func UpdateFile(path string, port int, opts Options) (string, error) {
	if opts.Format != "" && opts.Format != "yaml" {
		return "", fmt.Errorf("unsupported format %q", opts.Format)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	out, err := Update(data, port, opts)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return "", err
	}

	if opts.Format == "yaml" {
		return writeYAML(path, out)
	}
	return path, nil
}

// ConvertFile writes the JSON schema at path as YAML next to it.
func ConvertFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if !yamljson.IsJSON(data) {
		return "", fmt.Errorf("%s: not a JSON document", path)
	}
	return writeYAML(path, data)
}

func writeYAML(path string, data []byte) (string, error) {
	out, err := yamljson.ToYAML(data)
	if err != nil {
		return "", err
	}
	target := strings.TrimSuffix(path, filepath.Ext(path)) + ".yaml"
	return target, os.WriteFile(target, out, 0o644)
}
