// Command restler-driver compiles an OpenAPI spec with RESTler and fuzzes a running SUT with the result.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/iasthc/bb-exp/pkg/restler"
	"github.com/spf13/cobra"
)

var opts restler.Options

var rootCmd = &cobra.Command{
	Use:   "restler-driver",
	Short: "Run RESTler's compile and fuzz modes against a SUT",
	Long: `restler-driver compiles --api_spec_path into a grammar and a dictionary under
<result_dir>/Compile, merges --custom_setting into the compiled engine settings when given,
then fuzzes the SUT for --time_budget hours.`,
	Args:          cobra.NoArgs,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := restler.New(opts, restler.ExecRunner{Stdout: os.Stdout, Stderr: os.Stderr})
		if err != nil {
			return err
		}
		if err := d.Run(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("Test complete.")
		fmt.Printf("See %s for results.\n", d.ResultDir())
		return nil
	},
}

func init() {
	f := rootCmd.Flags()
	f.StringVar(&opts.APISpecPath, "api_spec_path", "", "path to the OpenAPI spec")
	f.StringVar(&opts.DropDir, "restler_drop_dir", "", "RESTler's drop dir, the one containing restler/Restler.dll")
	f.StringVar(&opts.IP, "ip", "", "IP of the SUT")
	f.StringVar(&opts.Port, "port", "", "port of the SUT")
	f.StringVar(&opts.Host, "host", "", "Host header sent to the SUT")
	f.BoolVar(&opts.UseSSL, "use_ssl", false, "talk TLS to the SUT")
	f.Float64Var(&opts.TimeBudget, "time_budget", 0, "fuzzing time budget in hours")
	f.StringVar(&opts.ResultDir, "result_dir", "", "dir receiving the compile and fuzz output")
	f.StringVar(&opts.CustomSettings, "custom_setting", "", "JSON settings overriding the compiled engine settings")
	f.StringVar(&opts.TokenRefreshCmd, "token_refresh_cmd", "", "command printing fresh auth headers")
	f.BoolVar(&opts.ProceedOnCompileFailure, "proceed_on_compile_failure", true, "fuzz even if compile failed")
	f.StringVar(&opts.Dotnet, "dotnet", "dotnet", "command running Restler.dll")

	for _, name := range []string{"api_spec_path", "restler_drop_dir", "time_budget", "result_dir"} {
		if err := rootCmd.MarkFlagRequired(name); err != nil {
			panic(err)
		}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		color.New(color.FgRed, color.Bold).Fprint(os.Stdout, "ERROR: ")
		fmt.Fprintln(os.Stdout, err)
		os.Exit(1)
	}
}
