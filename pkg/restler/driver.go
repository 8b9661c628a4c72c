// Package restler drives RESTler's compile and fuzz modes against a running SUT.
// See https://github.com/microsoft/restler-fuzzer
package restler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
)

const (
	compileDir = "Compile"

	// TokenRefreshInterval is the number of seconds between two token refreshes.
	TokenRefreshInterval = 120
)

// Options are the arguments of a RESTler run.
type Options struct {
	APISpecPath string
	DropDir     string
	IP          string
	Port        string
	Host        string
	UseSSL      bool
	// TimeBudget is in hours. Zero leaves RESTler's default.
	TimeBudget      float64
	ResultDir       string
	CustomSettings  string
	TokenRefreshCmd string
	// ProceedOnCompileFailure runs the fuzz phase even if compile failed.
	ProceedOnCompileFailure bool
	// Dotnet is the command that runs Restler.dll.
	Dotnet string
}

// Runner runs an external command inside dir.
type Runner interface {
	Run(ctx context.Context, dir string, name string, args ...string) error
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	Stdout io.Writer
	Stderr io.Writer
}

// Run starts the command in dir and waits for it.
func (r ExecRunner) Run(ctx context.Context, dir string, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	return cmd.Run()
}

// Driver runs RESTler's two phases in a result dir.
type Driver struct {
	opts   Options
	dll    string
	spec   string
	dir    string
	runner Runner
}

// New checks the options and resolves every path against the working directory.
func New(opts Options, runner Runner) (*Driver, error) {
	if opts.APISpecPath == "" {
		return nil, errors.New("api_spec_path is required")
	}
	if opts.DropDir == "" {
		return nil, errors.New("restler_drop_dir is required")
	}
	if opts.ResultDir == "" {
		return nil, errors.New("result_dir is required")
	}
	if opts.TimeBudget < 0 {
		return nil, fmt.Errorf("time_budget must not be negative, got %v", opts.TimeBudget)
	}
	if opts.Dotnet == "" {
		opts.Dotnet = "dotnet"
	}

	spec, err := filepath.Abs(opts.APISpecPath)
	if err != nil {
		return nil, err
	}
	drop, err := filepath.Abs(opts.DropDir)
	if err != nil {
		return nil, err
	}
	dir, err := filepath.Abs(opts.ResultDir)
	if err != nil {
		return nil, err
	}
	if opts.CustomSettings != "" {
		if opts.CustomSettings, err = filepath.Abs(opts.CustomSettings); err != nil {
			return nil, err
		}
	}

	return &Driver{
		opts:   opts,
		dll:    filepath.Join(drop, "restler", "Restler.dll"),
		spec:   spec,
		dir:    dir,
		runner: runner,
	}, nil
}

// ResultDir is the absolute result dir.
func (d *Driver) ResultDir() string {
	return d.dir
}

// Compile creates the result dir and compiles the API spec into a grammar and a dictionary.
func (d *Driver) Compile(ctx context.Context) error {
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return err
	}
	return d.runner.Run(ctx, d.dir, d.opts.Dotnet, d.dll, "compile", "--api_spec", d.spec)
}

// FuzzArgs returns the arguments of the fuzz phase, merging the custom settings first if set.
func (d *Driver) FuzzArgs() ([]string, error) {
	args := []string{
		d.dll, "fuzz",
		"--grammar_file", filepath.Join(compileDir, "grammar.py"),
		"--dictionary_file", filepath.Join(compileDir, "dict.json"),
	}

	settings := filepath.Join(compileDir, "engine_settings.json")
	if d.opts.CustomSettings != "" {
		merged := filepath.Join(compileDir, MergedSettings+".json")
		err := MergeSettings(filepath.Join(d.dir, settings), d.opts.CustomSettings, filepath.Join(d.dir, merged))
		if err != nil {
			return nil, err
		}
		settings = merged
	}
	args = append(args, "--settings", settings)

	if !d.opts.UseSSL {
		args = append(args, "--no_ssl")
	}
	if d.opts.IP != "" {
		args = append(args, "--target_ip", d.opts.IP)
	}
	if d.opts.Port != "" {
		args = append(args, "--target_port", d.opts.Port)
	}
	if d.opts.Host != "" {
		args = append(args, "--host", d.opts.Host)
	}
	if d.opts.TimeBudget > 0 {
		args = append(args, "--time_budget", strconv.FormatFloat(d.opts.TimeBudget, 'f', -1, 64))
	}
	if d.opts.TokenRefreshCmd != "" {
		args = append(args,
			"--token_refresh_command", d.opts.TokenRefreshCmd,
			"--token_refresh_interval", strconv.Itoa(TokenRefreshInterval))
	}
	return args, nil
}

// Fuzz runs RESTler's fuzz mode on the compiled grammar.
func (d *Driver) Fuzz(ctx context.Context) error {
	args, err := d.FuzzArgs()
	if err != nil {
		return err
	}
	return d.runner.Run(ctx, d.dir, d.opts.Dotnet, args...)
}

// Run compiles and then fuzzes. A compile failure stops the run unless
// ProceedOnCompileFailure is set.
func (d *Driver) Run(ctx context.Context) error {
	if err := d.Compile(ctx); err != nil {
		if !d.opts.ProceedOnCompileFailure {
			return fmt.Errorf("compile: %w", err)
		}
		log.Printf("compile failed, fuzzing whatever was compiled: %v", err)
	}
	if err := d.Fuzz(ctx); err != nil {
		return fmt.Errorf("fuzz: %w", err)
	}
	return nil
}
