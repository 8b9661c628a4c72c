package experiment

import "strings"

// Runtimes a SUT can run on.
const (
	JVM = "JVM"
	JS  = "JS"
)

// Platform tags of a runtime.
const (
	JDK8    = "JDK_8"
	JDK11   = "JDK_11"
	JDK17   = "JDK_17"
	DOTNET3 = "DOTNET_3"
)

// LocalSchemaPrefix marks an endpoint path that refers to a schema file on disk.
const LocalSchemaPrefix = "local:"

// AuthInfo is an auth header sent by the tools to the SUT.
type AuthInfo struct {
	Key   string `yaml:"key"`
	Value string `yaml:"value"`
}

// SUT describes a system under test.
type SUT struct {
	Name string
	// EndpointPath is where the schema is served, or LocalSchemaPrefix followed by a file path.
	EndpointPath string
	// OpenAPIName is the file name of the schema saved into the result dir.
	OpenAPIName string
	// BaseURL is appended to the target url for tools that need the base path.
	BaseURL  string
	Auth     *AuthInfo
	Runtime  string
	Platform string
}

// LocalSchema returns the local schema path if the schema is not served by the SUT.
func (s SUT) LocalSchema() (string, bool) {
	if !strings.HasPrefix(s.EndpointPath, LocalSchemaPrefix) {
		return "", false
	}
	return strings.TrimPrefix(s.EndpointPath, LocalSchemaPrefix), true
}

// IsJava reports whether the SUT runs on one of the JDK platforms.
func (s SUT) IsJava() bool {
	return s.Platform == JDK8 || s.Platform == JDK11 || s.Platform == JDK17
}

var suts = []SUT{
	{Name: "reservations-api", EndpointPath: "/v3/api-docs", OpenAPIName: "openapi.json", Runtime: JVM, Platform: JDK11},
	{Name: "bibliothek", EndpointPath: "/openapi", OpenAPIName: "openapi.json", Runtime: JVM, Platform: JDK17},
	{Name: "ocvn-rest", EndpointPath: "/v2/api-docs?group=1ocDashboardsApi", OpenAPIName: "openapi.json", Runtime: JVM, Platform: JDK8},
	{Name: "gestaohospital-rest", EndpointPath: "/v2/api-docs", OpenAPIName: "openapi.json", Runtime: JVM, Platform: JDK8},
	{Name: "genome-nexus", EndpointPath: "/v2/api-docs", OpenAPIName: "openapi.json", Runtime: JVM, Platform: JDK8},
	{Name: "session-service", EndpointPath: "/v2/api-docs", OpenAPIName: "openapi.json", Runtime: JVM, Platform: JDK8},
}

// Catalog returns a copy of the built-in SUT list.
func Catalog() []SUT {
	return append([]SUT(nil), suts...)
}

// Tool names a black-box fuzzing tool.
type Tool string

// Supported tools.
const (
	EvoMaster    Tool = "evomaster_bb_v3"
	RestlerV924  Tool = "Restler_v9_2_4"
	Schemathesis Tool = "Schemathesis"
	ARATRL       Tool = "ARAT-RL"
)

// Tools lists every supported tool in generation order.
func Tools() []Tool {
	return []Tool{EvoMaster, RestlerV924, Schemathesis, ARATRL}
}

// PlatformSetup maps a runtime to the directory holding the SUT start scripts.
type PlatformSetup struct {
	Platform string `toml:"platform" yaml:"platform"`
	Dir      string `toml:"dir" yaml:"dir"`
}
