package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var patchCmd = &cobra.Command{
	Use:   "patch",
	Short: "Print the unified diff of a change",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ch, _, err := openChange(cmd.Context())
		if err != nil {
			return err
		}
		patch, err := ch.Patch(cmd.Context())
		if err != nil {
			return fmt.Errorf("building patch: %w", err)
		}
		if patch != "" {
			fmt.Fprintln(cmd.OutOrStdout(), patch)
		}
		return nil
	},
}

func init() {
	addChangeFlags(patchCmd)
	rootCmd.AddCommand(patchCmd)
}
