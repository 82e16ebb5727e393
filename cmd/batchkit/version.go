package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"batchkit/internal/version"
)

var versionJSON bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if versionJSON {
			return json.NewEncoder(out).Encode(version.Current())
		}
		fmt.Fprintln(out, version.Full())
		return nil
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "Print as JSON")
	rootCmd.AddCommand(versionCmd)
}
