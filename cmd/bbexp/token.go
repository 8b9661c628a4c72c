package main

import (
	"errors"
	"os"
	"time"

	"github.com/iasthc/bb-exp/pkg/auth"
	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Print auth headers in the format of RESTler's token refresh command",
	Long: `Token prints a RESTler token refresh response. Headers come either from --header,
or from logging in to the SUT as described by a token file (--config):

  url: http://localhost:8080/api/users/login
  method: POST
  key: user{token}
  type: application/json
  body:
    user: {email: a@b.c, password: secret}`,
	Args: cobra.NoArgs,
	RunE: runToken,
}

func init() {
	tokenCmd.Flags().StringArray("header", nil, `static header "Key: Value", can be repeated`)
	tokenCmd.Flags().String("config", "", "token file describing the log in request")
	tokenCmd.Flags().Duration("timeout", 30*time.Second, "log in request timeout")
}

func runToken(cmd *cobra.Command, args []string) error {
	raw, err := cmd.Flags().GetStringArray("header")
	if err != nil {
		return err
	}
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	timeout, err := cmd.Flags().GetDuration("timeout")
	if err != nil {
		return err
	}
	if len(raw) == 0 && path == "" {
		return errors.New("either --header or --config is required")
	}

	headers := []auth.Header{}
	for _, h := range raw {
		header, err := auth.ParseHeader(h)
		if err != nil {
			return err
		}
		headers = append(headers, header)
	}

	if path != "" {
		t, err := auth.LoadToken(path)
		if err != nil {
			return err
		}
		bearer, err := auth.NewClient(timeout).Fetch(t)
		if err != nil {
			return err
		}
		headers = append(headers, auth.BearerHeader(bearer))
	}

	return auth.WriteRefresh(os.Stdout, headers...)
}
