package experiment

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"

	"fortio.org/safecast"
)

// Request holds the arguments of one generation run.
type Request struct {
	BasePort       int
	Dir            string
	MinSeed        int
	MaxSeed        int
	MaxTimeSeconds int
	SUTFilter      string
	ToolFilter     string
}

// Job is one (SUT, tool, seed, port) combination with the paths it writes to.
type Job struct {
	JobKey
	Target        SUT
	ScriptPath    string
	ResultDirPath string
	ToolLogPath   string
}

// SchemaPath is where the job saves the SUT schema.
func (j Job) SchemaPath() string {
	return path.Join(j.ResultDirPath, j.Target.OpenAPIName)
}

// Plan is a validated generation run. Building it touches nothing on disk.
type Plan struct {
	Request
	Dir       string
	TmpDir    string
	ScriptDir string
	LogsDir   string
	TestsDir  string
	SUTs      []SUT
	Tools     []Tool
	Jobs      []Job

	setupDir map[string]string
}

// Generator writes experiment scripts for a SUT catalog.
type Generator struct {
	cfg     Config
	env     Env
	catalog []SUT
}

// NewGenerator creates a Generator over the built-in SUT catalog.
func NewGenerator(cfg Config, env Env) *Generator {
	return &Generator{cfg: cfg, env: env, catalog: Catalog()}
}

// WithCatalog replaces the SUT catalog.
func (g *Generator) WithCatalog(catalog []SUT) *Generator {
	g.catalog = append([]SUT(nil), catalog...)
	return g
}

// Plan validates the request and lays out every job.
func (g *Generator) Plan(req Request) (*Plan, error) {
	if req.MinSeed > req.MaxSeed {
		return nil, ErrSeedRange
	}
	if err := g.cfg.validate(); err != nil {
		return nil, err
	}

	seen := map[string]string{}
	for _, s := range g.catalog {
		k := strings.ToLower(s.Name)
		if prev, ok := seen[k]; ok {
			return nil, fmt.Errorf("%w: %s and %s", ErrDuplicateSUT, prev, s.Name)
		}
		seen[k] = s.Name
	}

	suts, err := SelectSUTs(g.catalog, req.SUTFilter)
	if err != nil {
		return nil, err
	}
	tools, err := SelectTools(Tools(), req.ToolFilter)
	if err != nil {
		return nil, err
	}
	if err := g.env.validate(); err != nil {
		return nil, err
	}
	for _, t := range tools {
		if t == RestlerV924 && g.env.RestlerDir == "" {
			log.Printf("WARNING: cannot find %s, %s jobs get an empty --restler_drop_dir", EnvRestlerDir, RestlerV924)
		}
	}

	setupDir := map[string]string{}
	for _, s := range suts {
		dir, err := g.cfg.setupDir(s.Runtime)
		if err != nil {
			return nil, err
		}
		setupDir[s.Runtime] = dir
	}

	for _, t := range tools {
		if t != ARATRL {
			continue
		}
		if _, err := os.Stat(g.cfg.ARATRLScript); err != nil {
			return nil, fmt.Errorf("%w: %s is needed for %s", ErrMissingFile, g.cfg.ARATRLScript, ARATRL)
		}
	}

	dir, err := filepath.Abs(req.Dir)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(dir); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrOutputExists, dir)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	p := &Plan{
		Request:   req,
		Dir:       dir,
		TmpDir:    filepath.Join(dir, "tmp"),
		ScriptDir: filepath.Join(dir, "scripts"),
		LogsDir:   filepath.Join(dir, "logs"),
		TestsDir:  filepath.Join(dir, "tests"),
		SUTs:      suts,
		Tools:     tools,
		setupDir:  setupDir,
	}

	if len(suts) == 0 || len(tools) == 0 {
		return p, nil
	}

	port := req.BasePort
	for _, s := range suts {
		// seed == MaxSeed ends the loop, MaxSeed may be math.MaxInt
		for seed := req.MinSeed; ; seed++ {
			for _, t := range tools {
				if _, err := safecast.Conv[uint16](port); err != nil {
					return nil, fmt.Errorf("%w: %d for %s %s seed %d", ErrPortRange, port, s.Name, t, seed)
				}
				p.Jobs = append(p.Jobs, p.job(s, t, seed, port))
				port += PortStride
			}
			if seed == req.MaxSeed {
				break
			}
		}
	}
	return p, nil
}

func (p *Plan) job(s SUT, t Tool, seed, port int) Job {
	key := JobKey{SUT: s.Name, Tool: t, Seed: seed, Port: port}
	return Job{
		JobKey:        key,
		Target:        s,
		ScriptPath:    filepath.Join(p.ScriptDir, key.ScriptName()),
		ResultDirPath: filepath.ToSlash(filepath.Join(p.TestsDir, key.ResultDir())),
		ToolLogPath:   filepath.ToSlash(filepath.Join(p.LogsDir, key.ToolLog())),
	}
}

// Generate validates the request and writes every job script and result dir.
// Jobs written before a failure stay on disk.
func (g *Generator) Generate(req Request) (*Manifest, error) {
	p, err := g.Plan(req)
	if err != nil {
		return nil, err
	}
	return g.Write(p)
}

// Write creates the directory tree of a plan and renders its jobs.
func (g *Generator) Write(p *Plan) (*Manifest, error) {
	if err := os.MkdirAll(filepath.Dir(p.Dir), 0o755); err != nil {
		return nil, err
	}
	// Mkdir fails if another generator created the dir since the plan was built.
	if err := os.Mkdir(p.Dir, 0o755); err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("%w: %s", ErrOutputExists, p.Dir)
		}
		return nil, err
	}
	log.Println("creating folder: " + p.Dir)

	if err := os.RemoveAll(p.TmpDir); err != nil {
		return nil, err
	}
	for _, d := range []string{p.TmpDir, p.LogsDir, p.TestsDir, p.ScriptDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, err
		}
	}
	if g.cfg.EnableTimeoutWrapper {
		if err := writeRunCmd(filepath.Join(p.Dir, "util")); err != nil {
			return nil, err
		}
	}
	for _, t := range p.Tools {
		if t == ARATRL {
			if err := copyFile(g.cfg.ARATRLScript, filepath.Join(p.Dir, filepath.Base(g.cfg.ARATRLScript))); err != nil {
				return nil, err
			}
		}
	}

	b := &scriptBuilder{
		cfg:      g.cfg,
		env:      g.env,
		maxTime:  p.MaxTimeSeconds,
		logsDir:  filepath.ToSlash(p.LogsDir),
		setupDir: p.setupDir,
	}
	m := newManifest(p, g.cfg)
	for _, j := range p.Jobs {
		if err := os.Mkdir(filepath.FromSlash(j.ResultDirPath), 0o755); err != nil {
			return m, fmt.Errorf("create result dir: %w", err)
		}
		script, err := b.build(j)
		if err != nil {
			return m, err
		}
		if err := os.WriteFile(j.ScriptPath, []byte(script), 0o755); err != nil {
			return m, err
		}
		m.add(j)
	}

	if err := m.Save(filepath.Join(p.Dir, ManifestFile)); err != nil {
		return m, err
	}
	log.Printf("%d jobs written to %s", len(p.Jobs), p.ScriptDir)
	return m, nil
}

func writeRunCmd(dir string) error {
	b, err := templateFS.ReadFile("templates/run_cmd.sh")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "run_cmd.sh"), b, 0o755)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
