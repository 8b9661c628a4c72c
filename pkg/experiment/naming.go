package experiment

import (
	"fmt"
	"strconv"
	"strings"
)

// JobKey identifies one experiment job.
type JobKey struct {
	SUT  string `yaml:"sut"`
	Tool Tool   `yaml:"tool"`
	Seed int    `yaml:"seed"`
	Port int    `yaml:"port"`
}

// ResultDir is the name of the directory that keeps the job results.
func (k JobKey) ResultDir() string {
	return fmt.Sprintf("%s_%s__S%d_%d", k.SUT, k.Tool, k.Seed, k.Port)
}

// ScriptName is the file name of the job script.
func (k JobKey) ScriptName() string {
	return fmt.Sprintf("%s_%s_%d.sh", k.Tool, k.SUT, k.Port)
}

// FuncName names the shell function wrapping the tool command.
func (k JobKey) FuncName() string {
	return fmt.Sprintf("%s_%d_%d", k.Tool, k.Port, k.Seed)
}

// ToolLog is the file name of the tool log.
func (k JobKey) ToolLog() string {
	return fmt.Sprintf("tool__%s__%s__%d.txt", k.SUT, k.Tool, k.Port)
}

// SUTLog is the file name of the SUT log.
func (k JobKey) SUTLog() string {
	return fmt.Sprintf("sut__%s__%s__%d.txt", k.SUT, k.Tool, k.Port)
}

// ParseResultDir recovers the job key from a result directory name.
func ParseResultDir(name string) (JobKey, error) {
	i := strings.LastIndex(name, "_")
	if i < 0 {
		return JobKey{}, fmt.Errorf("invalid result dir %q: no port", name)
	}
	port, err := strconv.Atoi(name[i+1:])
	if err != nil {
		return JobKey{}, fmt.Errorf("invalid result dir %q: %w", name, err)
	}

	rest := name[:i]
	j := strings.LastIndex(rest, "__S")
	if j < 0 {
		return JobKey{}, fmt.Errorf("invalid result dir %q: no seed", name)
	}
	seed, err := strconv.Atoi(rest[j+3:])
	if err != nil {
		return JobKey{}, fmt.Errorf("invalid result dir %q: %w", name, err)
	}

	head := rest[:j]
	for _, tool := range Tools() {
		suffix := "_" + string(tool)
		if strings.HasSuffix(head, suffix) && len(head) > len(suffix) {
			return JobKey{SUT: strings.TrimSuffix(head, suffix), Tool: tool, Seed: seed, Port: port}, nil
		}
	}
	return JobKey{}, fmt.Errorf("invalid result dir %q: %w", name, ErrUnknownTool)
}
