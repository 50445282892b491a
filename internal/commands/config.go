package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
}

var showConfigCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runShowConfig,
}

var initConfigCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration file",
	RunE:  runInitConfig,
}

func init() {
	configCmd.AddCommand(showConfigCmd)
	configCmd.AddCommand(initConfigCmd)
}

func runShowConfig(cmd *cobra.Command, args []string) error {
	// never echo the AKiPS password back
	shown := *cfg
	if shown.Akips.Password != "" {
		shown.Akips.Password = "********"
	}

	data, err := yaml.Marshal(shown)
	if err != nil {
		return err
	}

	fmt.Println(string(data))
	return nil
}

func runInitConfig(cmd *cobra.Command, args []string) error {
	defaultConfig := `# akipsinv configuration

akips:
  host: https://akips.example.com
  username: api-ro
  password: password
  # proxy: http://proxy.example.com:3128
  timeout: 30s

# All filters are optional regexes; an unset filter always passes.
filters:
  # restrict_groups: ^Network
  # limit_groups: Core-Routers
  # ignore_groups: maintenance_mode
  # exclude_groups: ^Linux$|decommissioned
  # exclude_hosts: testing
  # exclude_networks: 10\.11\.12\.

# Ordered variable rules; patterns match group/host names
# case-insensitively. Later matching rules win key collisions, and host
# rules always override group rules.
hostvars:
  groups:
    - pattern: IOS
      vars:
        ansible_network_os: ios
        ansible_connection: network_cli
    - pattern: NX-OS
      vars:
        ansible_network_os: nxos
        ansible_connection: network_cli
  hosts: []

cache:
  enabled: true
  backend: file
  # dir: ~/.akipsinv/cache
  # backend: sqlite
  # path: ~/.akipsinv/cache.db

server:
  host: 0.0.0.0
  port: 8095
  read_timeout: 30s
  write_timeout: 30s
  shutdown_timeout: 10s
  debug: false

logging:
  level: info
  format: text

security:
  rate_limit: 100
  allowed_origins: ["*"]
  auth_enabled: false
  jwt_secret: change-me-in-production
  jwt_expiration: 24h
`

	path := "akips.yaml"
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists, refusing to overwrite", path)
	}

	if err := os.WriteFile(path, []byte(defaultConfig), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	fmt.Printf("Wrote %s\n", path)
	return nil
}
