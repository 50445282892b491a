package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"akipsinv/internal/config"
	"akipsinv/internal/version"
)

var (
	cfgFile string
	cfg     *config.Config

	// external inventory script contract flags
	rootList bool
	rootHost string

	// cache behavior, shared by all resolving commands
	forceRefresh bool
	noCache      bool
)

var rootCmd = &cobra.Command{
	Use:   "akipsinv",
	Short: "Dynamic Ansible inventory for AKiPS network monitoring",
	Long: `akipsinv builds a dynamic host inventory from an AKiPS network
monitoring server: it enumerates device groups, expands group membership
into host/IP pairs, applies the configured restrict/limit/ignore/exclude
filters, attaches per-group and per-host variables, and caches the result.

Invoked with --list or --host it speaks the Ansible external inventory
script protocol, so the binary can be pointed at directly with ansible -i.`,
	Version: version.Version,
	RunE:    runRoot,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./akips.yaml)")
	rootCmd.PersistentFlags().BoolVar(&forceRefresh, "refresh", false, "bypass the snapshot cache and recompute")
	rootCmd.PersistentFlags().BoolVar(&noCache, "no-cache", false, "neither read nor write the snapshot cache")

	rootCmd.Flags().BoolVar(&rootList, "list", false, "print the full inventory as JSON (inventory script protocol)")
	rootCmd.Flags().StringVar(&rootHost, "host", "", "print one host's variables as JSON (inventory script protocol)")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(hostCmd)
	rootCmd.AddCommand(groupsCmd)
	rootCmd.AddCommand(refreshCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "%s" .Version}}
`)
}

func initConfig() {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
}

// runRoot implements the Ansible external inventory executable contract:
// `akipsinv --list` and `akipsinv --host <name>`.
func runRoot(cmd *cobra.Command, args []string) error {
	switch {
	case rootList:
		return printInventory(cmd, "json")
	case rootHost != "":
		return printHostVars(cmd, rootHost)
	default:
		return cmd.Help()
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		info := version.Get()
		fmt.Println(info.String())

		if cmd.Flag("verbose").Changed {
			fmt.Printf("\nDetails:\n")
			fmt.Printf("  Version:    %s\n", info.Version)
			fmt.Printf("  Git Commit: %s\n", info.GitCommit)
			fmt.Printf("  Built:      %s\n", info.BuildTime)
			fmt.Printf("  Go Version: %s\n", info.GoVersion)
			fmt.Printf("  Platform:   %s\n", info.Platform)
		}
	},
}

func init() {
	versionCmd.Flags().BoolP("verbose", "v", false, "verbose version output")
}
