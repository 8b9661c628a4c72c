package experiment

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
)

// Schema utility flavors.
const (
	SchemaUtilJar    = "jar"
	SchemaUtilNative = "native"
)

// PortStride is the number of ports reserved by each job.
const PortStride = 10

// Config holds the generation toggles and tool locations.
type Config struct {
	EnableAuth           bool `toml:"enable_auth" yaml:"enable_auth"`
	EnableTimeoutWrapper bool `toml:"enable_timeout_wrapper" yaml:"enable_timeout_wrapper"`
	FixSchema            bool `toml:"fix_schema" yaml:"fix_schema"`
	// SchemaUtil picks how the schema is patched: the bb-exp-util jar or `bbexp schema`.
	SchemaUtil    string `toml:"schema_util" yaml:"schema_util"`
	SchemaUtilJar string `toml:"schema_util_jar" yaml:"-"`
	// SchemaToV3 converts Swagger 2.0 schemas to OpenAPI 3 while fixing them.
	SchemaToV3 bool `toml:"schema_to_v3" yaml:"schema_to_v3"`
	// SchemaFormat is "yaml" to also write the fixed schema as YAML, or empty.
	SchemaFormat string `toml:"schema_format" yaml:"schema_format"`

	// BinDir holds bbexp and restler-driver, as seen from a job script.
	BinDir string `toml:"bin_dir" yaml:"-"`

	JVMStartupDelay int `toml:"jvm_startup_delay" yaml:"-"`
	StartupDelay    int `toml:"startup_delay" yaml:"-"`

	PythonCommand       string `toml:"python_command" yaml:"-"`
	PythonCommandARATRL string `toml:"python_command_arat_rl" yaml:"-"`
	// ARATRLScript is copied into the output dir when ARAT-RL is enabled.
	ARATRLScript string `toml:"arat_rl_script" yaml:"-"`

	Platforms []PlatformSetup `toml:"platform" yaml:"-"`
}

// DefaultConfig returns the settings used for the published experiments.
func DefaultConfig() Config {
	cfg := Config{
		EnableAuth:           true,
		EnableTimeoutWrapper: true,
		FixSchema:            true,
		SchemaUtil:           SchemaUtilJar,
		SchemaUtilJar:        "$BASE/util/bb-exp-util.jar",
		BinDir:               "$BASE/bin",
		JVMStartupDelay:      120,
		StartupDelay:         60,
		PythonCommand:        "python3",
		// ARAT-RL does not work with python 3.12
		PythonCommandARATRL: "python3.8",
		ARATRLScript:        "tools/arat-rl.py",
		Platforms: []PlatformSetup{
			{Platform: JVM, Dir: "jvm-suts"},
		},
	}
	if runtime.GOOS == "windows" {
		cfg.PythonCommand = "python"
		cfg.PythonCommandARATRL = "python"
	}
	return cfg
}

// LoadConfig reads a TOML profile on top of the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := []string{}
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.SchemaUtil != SchemaUtilJar && c.SchemaUtil != SchemaUtilNative {
		return fmt.Errorf("schema_util must be %q or %q, got %q", SchemaUtilJar, SchemaUtilNative, c.SchemaUtil)
	}
	if c.SchemaFormat != "" && c.SchemaFormat != "yaml" {
		return fmt.Errorf("schema_format must be empty or \"yaml\", got %q", c.SchemaFormat)
	}
	if c.JVMStartupDelay < 0 || c.StartupDelay < 0 {
		return fmt.Errorf("startup delays must not be negative")
	}
	return nil
}

// setupDir finds the directory of the SUT start scripts for a runtime.
func (c Config) setupDir(rt string) (string, error) {
	found := []string{}
	for _, p := range c.Platforms {
		if strings.EqualFold(p.Platform, rt) {
			found = append(found, p.Dir)
		}
	}
	if len(found) != 1 {
		return "", fmt.Errorf("%w based on %s", ErrPlatformSetup, rt)
	}
	return found[0], nil
}

// Environment variables read by the generator.
const (
	EnvJavaHome8  = "JAVA_HOME_8"
	EnvJavaHome11 = "JAVA_HOME_11"
	EnvRestlerDir = "RESTLER_DIR_V924"
)

// Env holds the tool locations taken from the environment.
type Env struct {
	JavaHome8  string
	JavaHome11 string
	RestlerDir string
}

// ReadEnv reads the tool locations through getenv, usually os.Getenv.
func ReadEnv(getenv func(string) string) Env {
	return Env{
		JavaHome8:  getenv(EnvJavaHome8),
		JavaHome11: getenv(EnvJavaHome11),
		RestlerDir: getenv(EnvRestlerDir),
	}
}

func (e Env) validate() error {
	if e.JavaHome8 == "" {
		return fmt.Errorf("%w: cannot find %s", ErrMissingEnv, EnvJavaHome8)
	}
	if e.JavaHome11 == "" {
		return fmt.Errorf("%w: cannot find %s, and it is needed for RestTestGen", ErrMissingEnv, EnvJavaHome11)
	}
	return nil
}

// Java8 is the java command of the JDK 8 installation.
func (e Env) Java8() string {
	return `"` + e.JavaHome8 + `"/bin/java`
}
