package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listFormat string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Resolve and print the full inventory",
	Long: `Resolve the AKiPS inventory and print it.

Examples:
  akipsinv list
  akipsinv list --format yaml
  akipsinv list --refresh`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printInventory(cmd, listFormat)
	},
}

var hostCmd = &cobra.Command{
	Use:   "host [name]",
	Short: "Print one host's resolved variables",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printHostVars(cmd, args[0])
	},
}

var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "List the device groups that survived the group filters",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := resolve(cmd)
		if err != nil {
			return err
		}
		for _, group := range snap.Groups {
			fmt.Println(group)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().StringVar(&listFormat, "format", "json", "output format (json, yaml)")
}
