package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"akipsinv/internal/akips"
	"akipsinv/internal/cache"
	"akipsinv/internal/emitter"
	"akipsinv/internal/inventory"
)

// newService wires the AKiPS client, resolver, and snapshot cache from the
// loaded configuration. Bad connection settings and invalid regex patterns
// fail here, before any request is made.
func newService() (*inventory.Service, error) {
	client, err := akips.New(cfg)
	if err != nil {
		return nil, err
	}

	resolver, err := inventory.NewResolver(cfg, client)
	if err != nil {
		return nil, err
	}

	var store inventory.Store
	if !noCache {
		store, err = cache.New(cfg.Cache)
		if err != nil {
			return nil, fmt.Errorf("initializing snapshot cache: %w", err)
		}
	}

	fingerprint := cache.Fingerprint(cfg.Source(), cfg.Akips.Host)
	return inventory.NewService(resolver, store, fingerprint), nil
}

func resolveOpts() inventory.ResolveOptions {
	return inventory.ResolveOptions{
		UseCache:     !noCache,
		ForceRefresh: forceRefresh,
	}
}

// resolve runs one resolution pass with the shared cache flags.
func resolve(cmd *cobra.Command) (*inventory.Snapshot, error) {
	svc, err := newService()
	if err != nil {
		return nil, err
	}
	return svc.Inventory(cmd.Context(), resolveOpts())
}

func printInventory(cmd *cobra.Command, format string) error {
	snap, err := resolve(cmd)
	if err != nil {
		return err
	}

	switch format {
	case "json":
		data, err := json.MarshalIndent(emitter.DynamicInventory(snap), "", "  ")
		if err != nil {
			return fmt.Errorf("encoding inventory: %w", err)
		}
		fmt.Println(string(data))
	case "yaml":
		data, err := emitter.YAMLInventory(snap)
		if err != nil {
			return err
		}
		fmt.Print(string(data))
	default:
		return fmt.Errorf("unknown format %q (expected json or yaml)", format)
	}
	return nil
}

func printHostVars(cmd *cobra.Command, name string) error {
	snap, err := resolve(cmd)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(emitter.HostVars(snap, name), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding host variables: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
