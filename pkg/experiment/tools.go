package experiment

import (
	"fmt"
	"math"
	"path"
	"strconv"
	"strings"
)

// evoMasterCmd runs EvoMaster in black-box mode.
// See https://github.com/EMResearch/EvoMaster
type evoMasterCmd struct {
	Java         string
	Jar          string
	MaxTime      int
	SwaggerURL   string
	Seed         int
	OutputPrefix string
	OutputFormat string
	Header       *AuthInfo
	OutputFolder string
	Log          string
}

func (c evoMasterCmd) render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s -Xms1G -Xmx4G -jar %s", c.Java, c.Jar)
	b.WriteString(" --blackBox true --minimize false")
	fmt.Fprintf(&b, " --maxTime %ds", c.MaxTime)
	fmt.Fprintf(&b, " --bbSwaggerUrl %s", c.SwaggerURL)
	b.WriteString(" --bbTargetUrl http://localhost:$PORT")
	fmt.Fprintf(&b, " --seed %d", c.Seed)
	b.WriteString(" --showProgress=false")
	b.WriteString(" --testSuiteSplitType=NONE")
	if c.OutputPrefix != "" {
		fmt.Fprintf(&b, " --outputFilePrefix=%s", c.OutputPrefix)
	}
	fmt.Fprintf(&b, " --outputFormat %s", c.OutputFormat)
	if c.Header != nil {
		fmt.Fprintf(&b, ` --header0 "%s"`, headerArg(c.Header))
	}
	fmt.Fprintf(&b, ` --outputFolder "%s"`, c.OutputFolder)
	fmt.Fprintf(&b, ` >> "%s" 2>&1`, c.Log)
	return b.String()
}

func (b *scriptBuilder) evoMaster(j Job) command {
	c := evoMasterCmd{
		Java:         b.env.Java8(),
		Jar:          "$BASE/tools/evomaster.jar",
		MaxTime:      b.maxTime,
		SwaggerURL:   "http://localhost:$PORT" + j.Target.EndpointPath,
		Seed:         j.Seed,
		OutputFormat: "JS_JEST",
		Header:       b.auth(j.Target),
		OutputFolder: j.ResultDirPath,
		Log:          j.ToolLogPath,
	}
	if _, ok := j.Target.LocalSchema(); ok {
		prefix := "file://"
		if !strings.HasPrefix(j.SchemaPath(), "/") {
			prefix += "/"
		}
		c.SwaggerURL = `"` + prefix + j.SchemaPath() + `"`
	}
	if b.cfg.EnableTimeoutWrapper {
		c.OutputPrefix = "EM_BB_R$" + counterVar
	}
	if j.Target.Runtime == JVM {
		c.OutputFormat = "JAVA_JUNIT_5"
	}
	return c
}

// restlerCmd runs RESTler through restler-driver.
// See https://github.com/microsoft/restler-fuzzer
type restlerCmd struct {
	Driver          string
	APISpecPath     string
	Port            int
	DropDir         string
	TimeBudget      float64
	ResultDir       string
	TokenRefreshCmd string
	Log             string
}

func (c restlerCmd) render() string {
	var b strings.Builder
	b.WriteString(c.Driver)
	fmt.Fprintf(&b, " --api_spec_path %s", c.APISpecPath)
	fmt.Fprintf(&b, " --port %d", c.Port)
	fmt.Fprintf(&b, ` --restler_drop_dir "%s"`, c.DropDir)
	fmt.Fprintf(&b, " --time_budget %s", strconv.FormatFloat(c.TimeBudget, 'f', -1, 64))
	fmt.Fprintf(&b, " --result_dir %s", c.ResultDir)
	if c.TokenRefreshCmd != "" {
		fmt.Fprintf(&b, ` --token_refresh_cmd "%s"`, c.TokenRefreshCmd)
	}
	fmt.Fprintf(&b, " >> %s 2>&1", c.Log)
	return b.String()
}

// restlerHours converts seconds into RESTler's time budget, in hours rounded up to 1/100.
func restlerHours(seconds int) float64 {
	return math.Ceil(float64(seconds)/36) / 100
}

func (b *scriptBuilder) restler(j Job) command {
	c := restlerCmd{
		Driver:      b.cfg.BinDir + "/restler-driver",
		APISpecPath: j.SchemaPath(),
		Port:        j.Port,
		DropDir:     toSlash(b.env.RestlerDir),
		TimeBudget:  restlerHours(b.maxTime),
		ResultDir:   j.ResultDirPath,
		Log:         j.ToolLogPath,
	}
	if a := b.auth(j.Target); a != nil {
		// the command is passed in double quotes and run by RESTler through a shell
		c.TokenRefreshCmd = b.cfg.BinDir + "/bbexp token --header " + dquoteEscaper.Replace(squote(a.Key+": "+a.Value))
	}
	return c
}

// schemathesisCmd runs Schemathesis.
// See https://schemathesis.readthedocs.io/en/stable/
type schemathesisCmd struct {
	// Rotate switches the test mode on every wrapped run.
	Rotate     bool
	Label      string
	ResultDir  string
	Header     *AuthInfo
	BaseURL    string
	SchemaPath string
	Log        string
}

const schemathesisRotation = `OPTION="--data-generation-method=negative"
if [ $(( $%[1]s %% 3 )) -eq 1 ]; then
	OPTION="--stateful=links"
elif [ $(( $%[1]s %% 3 )) -eq 2 ]; then
	OPTION="--checks=all"
fi
`

func (c schemathesisCmd) render() string {
	var b strings.Builder
	if c.Rotate {
		fmt.Fprintf(&b, schemathesisRotation, counterVar)
		b.WriteString("schemathesis run $OPTION")
	} else {
		b.WriteString("schemathesis run --stateful=links")
	}
	b.WriteString(" --validate-schema=false")
	b.WriteString(" --request-timeout=2000")
	fmt.Fprintf(&b, ` --cassette-path="%s/cassette%s.yaml"`, c.ResultDir, c.Label)
	fmt.Fprintf(&b, ` --junit-xml="%s/junit%s.xml"`, c.ResultDir, c.Label)
	if c.Header != nil {
		fmt.Fprintf(&b, ` --header "%s"`, headerArg(c.Header))
	}
	fmt.Fprintf(&b, " --base-url=http://localhost:$PORT%s", c.BaseURL)
	fmt.Fprintf(&b, ` "%s"`, c.SchemaPath)
	fmt.Fprintf(&b, " >> %s 2>&1", c.Log)
	return b.String()
}

func (b *scriptBuilder) schemathesis(j Job) command {
	return schemathesisCmd{
		Rotate:     b.cfg.EnableTimeoutWrapper,
		Label:      b.outputLabel(),
		ResultDir:  j.ResultDirPath,
		Header:     b.auth(j.Target),
		BaseURL:    j.Target.BaseURL,
		SchemaPath: j.SchemaPath(),
		Log:        j.ToolLogPath,
	}
}

// aratRLCmd runs ARAT-RL.
// See https://github.com/codingsoo/ARAT-RL
type aratRLCmd struct {
	Python     string
	Script     string
	SchemaPath string
	Minutes    int
	ReportPath string
	Log        string
}

func (c aratRLCmd) render() string {
	return fmt.Sprintf("%s %s %s http://localhost:$PORT %d %s >> %s 2>&1",
		c.Python, c.Script, c.SchemaPath, c.Minutes, c.ReportPath, c.Log)
}

// aratRLMinutes converts seconds into ARAT-RL's time budget, in whole minutes.
func aratRLMinutes(seconds int) int {
	return int(math.Ceil(float64(seconds)/6) / 10)
}

func (b *scriptBuilder) aratRL(j Job) command {
	report := strings.TrimSuffix(j.ToolLog(), ".txt") + "_http_500_error_report" + b.outputLabel() + ".txt"
	return aratRLCmd{
		Python:     b.cfg.PythonCommandARATRL,
		Script:     path.Base(toSlash(b.cfg.ARATRLScript)),
		SchemaPath: j.SchemaPath(),
		Minutes:    aratRLMinutes(b.maxTime),
		ReportPath: path.Join(j.ResultDirPath, report),
		Log:        j.ToolLogPath,
	}
}
