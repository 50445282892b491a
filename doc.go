// Package akipsinv bridges an AKiPS network monitoring server into an
// Ansible inventory.
//
// # Overview
//
// AKiPS already knows every monitored device, its IP address, and the
// device groups it belongs to. akipsinv queries the AKiPS api-db endpoint,
// expands device groups into hosts, applies regex filters and variable
// rules, and emits the result as a dynamic inventory for Ansible, a static
// YAML inventory, or a small read-only HTTP API.
//
// The tool consists of three main components:
//   - Inventory CLI: external inventory script and ad-hoc queries
//   - Resolution Pipeline: group discovery, filtering, variable merging
//   - API Server: optional serve mode exposing the resolved inventory
//
// # Architecture
//
//	┌─────────────────┐
//	│   Ansible       │
//	│ (--list/--host) │
//	└────────┬────────┘
//	         │
//	┌────────▼────────┐       ┌─────────────────┐
//	│  Inventory CLI  │◄──────┤  Snapshot Cache │
//	│  (Cobra)        │       │  (file/sqlite)  │
//	└────────┬────────┘       └─────────────────┘
//	         │
//	┌────────▼────────┐
//	│  AKiPS api-db   │
//	│  (HTTP client)  │
//	└─────────────────┘
//
// # Core Features
//
// Resolution pipeline:
//   - Device group and super group discovery
//   - Membership expansion limited to hosts that are up
//   - Six regex filters (restrict, limit, ignore, exclude groups/hosts/networks)
//   - Ordered variable rules with host-over-group precedence
//
// Output:
//   - Ansible dynamic inventory JSON (_meta.hostvars, all.children)
//   - Static YAML inventory (all.children.<group>.hosts.<host>)
//   - Per-host variable lookup for --host
//
// Serve mode:
//   - Read-only JSON endpoints over Echo
//   - Optional JWT bearer auth with read/write roles
//   - Forced refresh endpoint that repopulates the cache
//
// # Usage
//
// Use as an Ansible external inventory script:
//
//	akipsinv --list
//	akipsinv --host core-sw-01
//
// Inspect the inventory directly:
//
//	akipsinv list --format yaml
//	akipsinv groups
//	akipsinv refresh
//
// Run the HTTP API:
//
//	akipsinv serve --config akips.yaml
//
// # Configuration
//
// Configuration can be provided via:
//   - YAML file (akips.yaml)
//   - Environment variables (AKIPS_* for connection and filters,
//     AKIPSINV_* for everything else)
//   - .env file
//
// Example configuration:
//
//	akips:
//	  host: https://akips.example.com
//	  username: api-ro
//	  password: secret
//	filters:
//	  restrict_groups: ^Network
//	  exclude_networks: 10\.11\.12\.
//	hostvars:
//	  groups:
//	    - pattern: IOS
//	      vars:
//	        ansible_network_os: ios
//	cache:
//	  enabled: true
//	  backend: file
//
// # API Endpoints
//
// Inventory:
//   - GET  /api/v1/inventory           - Full inventory (json or yaml)
//   - GET  /api/v1/hosts               - List resolved hosts
//   - GET  /api/v1/hosts/:name         - Get one host
//   - GET  /api/v1/groups              - List visited groups
//   - GET  /api/v1/groups/:name/hosts  - Hosts of one group
//   - POST /api/v1/refresh             - Force recomputation
//
// # Development
//
// Run tests:
//
//	go test ./...
//
// Build the binary:
//
//	go build -o akipsinv ./cmd/akipsinv
//
// # Technology Stack
//
//   - Go 1.25+
//   - Cobra + Viper (CLI and configuration)
//   - Echo v4 (serve mode)
//   - modernc.org/sqlite (cache backend)
//
// # License
//
// akipsinv is open source software.
package akipsinv
