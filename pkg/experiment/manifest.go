package experiment

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v2"
)

// ManifestFile is written into the output dir and lists every generated job.
const ManifestFile = "jobs.yml"

// Manifest describes a generated batch for the scheduler that runs it.
type Manifest struct {
	Batch          string        `yaml:"batch"`
	Created        string        `yaml:"created"`
	BasePort       int           `yaml:"basePort"`
	MinSeed        int           `yaml:"minSeed"`
	MaxSeed        int           `yaml:"maxSeed"`
	MaxTimeSeconds int           `yaml:"maxTimeSeconds"`
	Config         Config        `yaml:"config"`
	Jobs           []ManifestJob `yaml:"jobs"`
}

// ManifestJob is one job of the batch.
type ManifestJob struct {
	Key       JobKey `yaml:",inline"`
	Script    string `yaml:"script"`
	ResultDir string `yaml:"resultDir"`
	Log       string `yaml:"log"`
}

func newManifest(p *Plan, cfg Config) *Manifest {
	return &Manifest{
		Batch:          uuid.NewString(),
		Created:        time.Now().Format(time.RFC3339),
		BasePort:       p.BasePort,
		MinSeed:        p.MinSeed,
		MaxSeed:        p.MaxSeed,
		MaxTimeSeconds: p.MaxTimeSeconds,
		Config:         cfg,
		Jobs:           []ManifestJob{},
	}
}

func (m *Manifest) add(j Job) {
	m.Jobs = append(m.Jobs, ManifestJob{
		Key:       j.JobKey,
		Script:    j.ScriptPath,
		ResultDir: j.ResultDirPath,
		Log:       j.ToolLogPath,
	})
}

// Save writes the manifest as YAML.
func (m *Manifest) Save(p string) error {
	b, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	return os.WriteFile(p, b, 0o644)
}

// LoadManifest reads a manifest written by Save.
func LoadManifest(p string) (*Manifest, error) {
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, err
	}
	m := &Manifest{}
	if err := yaml.Unmarshal(b, m); err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	return m, nil
}
