package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"typematch/internal/version"
)

func newVersionCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show build information",
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.Current()
			switch strings.ToLower(format) {
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			case "pretty":
				if !isTerminal(cmd.OutOrStdout()) {
					prev := color.NoColor
					color.NoColor = true
					defer func() { color.NoColor = prev }()
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s\n", info, info.GoVersion)
				return err
			default:
				return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
			}
		},
	}
	cmd.Flags().StringVar(&format, "format", "pretty", "output format (pretty|json)")
	return cmd
}
