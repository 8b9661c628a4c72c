package experiment

import (
	"embed"
	"fmt"
	"path"
	"strings"
	"text/template"
)

//go:embed templates
var templateFS embed.FS

// counterVar counts the runs of a wrapped tool command, giving each run its own output suffix.
const counterVar = "i"

var scripts = template.Must(template.New("script").Funcs(template.FuncMap{
	"indent": func(s string) string {
		lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
		for i, l := range lines {
			lines[i] = "\t\t\t" + l
		}
		return strings.Join(lines, "\n")
	},
}).ParseFS(templateFS, "templates/*.tmpl"))

type headerData struct {
	Port   int
	RunCmd string
	Launch string
	SUTLog string
	JVM    bool
	Delay  int
}

type footerData struct {
	JVM bool
}

type schemaData struct {
	Local  string
	URL    string
	Target string
	Log    string
	Fix    string
}

type wrapData struct {
	Name    string
	Counter string
	Command string
	Budget  int
}

func render(name string, data interface{}) (string, error) {
	var b strings.Builder
	if err := scripts.ExecuteTemplate(&b, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return b.String(), nil
}

// command is the tool invocation of a job.
type command interface {
	render() string
}

// scriptBuilder composes job scripts out of a header, a tool body and a footer.
type scriptBuilder struct {
	cfg      Config
	env      Env
	maxTime  int
	logsDir  string
	setupDir map[string]string
}

func (b *scriptBuilder) build(j Job) (string, error) {
	label := fmt.Sprintf(`%s__%s__"$PORT"`, j.SUT, j.Tool)

	h := headerData{
		Port:   j.Port,
		Launch: fmt.Sprintf("bash $BASE/%s/%s.sh $PORT", b.setupDir[j.Target.Runtime], j.SUT),
		SUTLog: path.Join(b.logsDir, fmt.Sprintf("sut__%s__%s__$PORT.txt", j.SUT, j.Tool)),
		JVM:    j.Target.Runtime == JVM,
		Delay:  b.cfg.StartupDelay,
	}
	if b.cfg.EnableTimeoutWrapper {
		h.RunCmd = "$SCRIPT_DIR/../util/run_cmd.sh"
	}
	if h.JVM {
		// OCVN can take well over a minute to start
		h.Delay = b.cfg.JVMStartupDelay
		h.Launch += fmt.Sprintf(" $BASE/tools/jacocoagent.jar ./exec/%s__jacoco.exec", label)
	} else {
		h.Launch += " $SCRIPT_DIR/../c8/" + label
	}

	head, err := render("header.tmpl", h)
	if err != nil {
		return "", err
	}
	body, err := b.body(j)
	if err != nil {
		return "", err
	}
	foot, err := render("footer.tmpl", footerData{JVM: h.JVM})
	if err != nil {
		return "", err
	}
	return head + body + foot, nil
}

func (b *scriptBuilder) body(j Job) (string, error) {
	schema := schemaData{
		Target: j.SchemaPath(),
		Log:    j.ToolLogPath,
	}
	if local, ok := j.Target.LocalSchema(); ok {
		schema.Local = path.Clean(toSlash(local))
	} else {
		schema.URL = "http://localhost:$PORT" + j.Target.EndpointPath
	}
	if b.cfg.FixSchema {
		schema.Fix = b.fixCommand(schema.Target, j.Port, schemaFix{ToV3: b.cfg.SchemaToV3, Format: b.cfg.SchemaFormat})
	}

	s, err := render("schema.tmpl", schema)
	if err != nil {
		return "", err
	}

	cmd := b.command(j).render()
	if !b.cfg.EnableTimeoutWrapper {
		return s + cmd + "\n", nil
	}
	wrapped, err := render("wrap.tmpl", wrapData{
		Name:    j.FuncName(),
		Counter: counterVar,
		Command: cmd,
		Budget:  b.maxTime + 5,
	})
	if err != nil {
		return "", err
	}
	return s + wrapped, nil
}

// schemaFix holds the optional steps of the schema repair.
type schemaFix struct {
	ToV3   bool
	Format string
}

func (b *scriptBuilder) fixCommand(schemaPath string, port int, fix schemaFix) string {
	var s string
	if b.cfg.SchemaUtil == SchemaUtilNative {
		s = fmt.Sprintf(`%s/bbexp schema update-url-port "%s" %d`, b.cfg.BinDir, schemaPath, port)
		if fix.ToV3 {
			s += " --to-v3"
		}
		if fix.Format != "" {
			s += " --format " + fix.Format
		}
		return s
	}

	s = fmt.Sprintf(`%s -jar %s updateURLAndPort "%s" %d`, b.env.Java8(), b.cfg.SchemaUtilJar, schemaPath, port)
	if fix.ToV3 {
		s += " true"
	}
	if fix.Format != "" {
		s += " " + fix.Format
	}
	return s
}

func (b *scriptBuilder) command(j Job) command {
	switch j.Tool {
	case EvoMaster:
		return b.evoMaster(j)
	case RestlerV924:
		return b.restler(j)
	case Schemathesis:
		return b.schemathesis(j)
	case ARATRL:
		return b.aratRL(j)
	}
	panic("unknown tool " + string(j.Tool))
}

// outputLabel gives each wrapped run its own output file suffix.
func (b *scriptBuilder) outputLabel() string {
	if !b.cfg.EnableTimeoutWrapper {
		return ""
	}
	return `_R"$` + counterVar + `"`
}

func (b *scriptBuilder) auth(s SUT) *AuthInfo {
	if !b.cfg.EnableAuth {
		return nil
	}
	return s.Auth
}

// dquoteEscaper escapes what bash still expands inside double quotes.
var dquoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "$", `\$`, "`", "\\`")

// headerArg is "Key: Value" escaped for a double quoted shell word.
func headerArg(a *AuthInfo) string {
	return dquoteEscaper.Replace(a.Key + ": " + a.Value)
}

// squote quotes s as a single shell word.
func squote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func toSlash(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}
