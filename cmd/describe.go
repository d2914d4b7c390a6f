package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Print a changelist or commit range",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ch, _, err := openChange(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), ch.Record().String())
		return nil
	},
}

func init() {
	addChangeFlags(describeCmd)
	rootCmd.AddCommand(describeCmd)
}
