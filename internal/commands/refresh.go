package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"akipsinv/internal/inventory"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Recompute the inventory and repopulate the cache",
	Args:  cobra.NoArgs,
	RunE:  runRefresh,
}

func runRefresh(cmd *cobra.Command, args []string) error {
	svc, err := newService()
	if err != nil {
		return err
	}

	snap, err := svc.Inventory(cmd.Context(), inventory.ResolveOptions{ForceRefresh: true})
	if err != nil {
		return err
	}

	fmt.Printf("Resolved %d hosts across %d groups\n", len(snap.Hosts), len(snap.Groups))
	if cfg.Cache.Enabled && !noCache {
		fmt.Printf("Snapshot %s cached under fingerprint %s\n", snap.ID, svc.Fingerprint())
	}
	return nil
}
