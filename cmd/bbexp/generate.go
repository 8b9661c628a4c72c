package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/iasthc/bb-exp/pkg/experiment"
	"github.com/spf13/cobra"
)

const generateUsage = "bbexp generate <basePort> <dir> <minSeed> <maxSeed> <maxTimeSeconds> <sutFilter?> <toolFilter?>"

var generateCmd = &cobra.Command{
	Use:   "generate <basePort> <dir> <minSeed> <maxSeed> <maxTimeSeconds> [sutFilter] [toolFilter]",
	Short: "Generate the job scripts of an experiment batch",
	Long: `Generate writes one executable script per (SUT, seed, tool) into <dir>/scripts, with a
result dir per job under <dir>/tests and a jobs.yml manifest. Each job reserves 10 TCP ports
starting from <basePort>. Seeds run from <minSeed> to <maxSeed>, both included, and every tool
gets <maxTimeSeconds> of search budget.

Filters are comma separated, case-insensitive names. A leading "not;" excludes the names
instead, "all" keeps everything. <dir> must not exist yet.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) < 5 || len(args) > 7 {
			return fmt.Errorf("%w, expected 5 to 7 arguments, got %d\nUsage:\n%s", experiment.ErrUsage, len(args), generateUsage)
		}
		return nil
	},
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().String("config", "", "TOML profile overriding the default toggles and tool paths")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	req, err := parseRequest(args)
	if err != nil {
		return err
	}

	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	cfg, err := experiment.LoadConfig(path)
	if err != nil {
		return err
	}

	g := experiment.NewGenerator(cfg, experiment.ReadEnv(os.Getenv))
	m, err := g.Generate(req)
	if err != nil {
		return err
	}

	okColor.Fprintf(os.Stdout, "generated %d jobs", len(m.Jobs))
	fmt.Fprintf(os.Stdout, " (batch %s) in %s\n", m.Batch, req.Dir)
	return nil
}

func parseRequest(args []string) (experiment.Request, error) {
	ints := make([]int, 5)
	names := []string{"basePort", "dir", "minSeed", "maxSeed", "maxTimeSeconds"}
	for i, a := range args[:5] {
		if i == 1 {
			continue
		}
		n, err := strconv.Atoi(a)
		if err != nil {
			return experiment.Request{}, fmt.Errorf("%w: %s must be an integer, got %q", experiment.ErrUsage, names[i], a)
		}
		ints[i] = n
	}

	req := experiment.Request{
		BasePort:       ints[0],
		Dir:            args[1],
		MinSeed:        ints[2],
		MaxSeed:        ints[3],
		MaxTimeSeconds: ints[4],
	}
	if len(args) > 5 {
		req.SUTFilter = args[5]
	}
	if len(args) > 6 {
		req.ToolFilter = args[6]
	}
	return req, nil
}
