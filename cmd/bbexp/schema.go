package main

import (
	"fmt"
	"log"
	"strconv"

	"github.com/iasthc/bb-exp/pkg/schema"
	"github.com/spf13/cobra"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Patch SUT schemas before handing them to a tool",
}

var updateURLAndPortCmd = &cobra.Command{
	Use:     "update-url-port <openapi path> <port>",
	Aliases: []string{"updateURLAndPort"},
	Short:   "Point a schema at http://localhost:<port>",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		port, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid port %q: %w", args[1], err)
		}
		toV3, err := cmd.Flags().GetBool("to-v3")
		if err != nil {
			return err
		}
		format, err := cmd.Flags().GetString("format")
		if err != nil {
			return err
		}

		out, err := schema.UpdateFile(args[0], port, schema.Options{ToV3: toV3, Format: format})
		if err != nil {
			return err
		}
		log.Println("updated " + out)
		return nil
	},
}

var jsonToYAMLCmd = &cobra.Command{
	Use:     "json-to-yaml <openapi path>",
	Aliases: []string{"jsonToYaml"},
	Short:   "Write a JSON schema as YAML next to it",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := schema.ConvertFile(args[0])
		if err != nil {
			return err
		}
		log.Println("converted to " + out)
		return nil
	},
}

func init() {
	updateURLAndPortCmd.Flags().Bool("to-v3", false, "convert a swagger 2.0 schema to openapi 3")
	updateURLAndPortCmd.Flags().String("format", "", "also write the schema in this format (yaml)")

	schemaCmd.AddCommand(updateURLAndPortCmd)
	schemaCmd.AddCommand(jsonToYAMLCmd)
}
