package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/killallgit/realty/pkg/config"
	"github.com/spf13/cobra"
)

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "Show the configured agent profiles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		profiles := profilesFor(config.Get()).All()
		if len(profiles) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No agent profiles configured")
			return nil
		}

		for _, p := range profiles {
			swatch := lipgloss.NewStyle().Foreground(p.Color).Render("■")
			fmt.Fprintf(cmd.OutOrStdout(), "%s %-10s %s (%s)\n", swatch, p.DisplayKey, p.CanonicalName, p.Color)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(agentsCmd)
}
