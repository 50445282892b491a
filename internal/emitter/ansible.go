package emitter

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"akipsinv/internal/inventory"
)

// DynamicInventory renders the snapshot in the JSON shape Ansible expects
// from an external inventory script: one key per group with its host list,
// an "all" group naming every child group, and per-host variables under
// _meta.hostvars.
func DynamicInventory(snap *inventory.Snapshot) map[string]any {
	graph := NewGraph()
	Populate(snap, graph)

	hostvars := make(map[string]any, len(graph.Hosts()))
	for _, host := range graph.Hosts() {
		hostvars[host] = graph.HostVars(host)
	}

	out := map[string]any{
		"_meta": map[string]any{"hostvars": hostvars},
		"all":   map[string]any{"children": append([]string{"ungrouped"}, graph.Groups()...)},
	}
	for _, group := range graph.Groups() {
		out[group] = map[string]any{"hosts": graph.GroupHosts(group)}
	}
	return out
}

// HostVars returns the variable mapping for a single host, the --host side
// of the external inventory contract. Unknown hosts yield an empty mapping.
func HostVars(snap *inventory.Snapshot, name string) map[string]any {
	h, ok := snap.Hosts[name]
	if !ok {
		return map[string]any{}
	}
	vars := make(map[string]any, len(h.Vars))
	for k, v := range h.Vars {
		vars[k] = v
	}
	return vars
}

// yamlInventory mirrors the static inventory layout ansible-inventory -y
// produces: all.children.<group>.hosts.<host> with inline host variables.
type yamlInventory struct {
	All yamlAllGroup `yaml:"all"`
}

type yamlAllGroup struct {
	Children map[string]yamlGroup `yaml:"children,omitempty"`
}

type yamlGroup struct {
	Hosts map[string]yamlHost `yaml:"hosts,omitempty"`
}

type yamlHost struct {
	AnsibleHost string         `yaml:"ansible_host,omitempty"`
	Vars        map[string]any `yaml:",inline"`
}

// YAMLInventory renders the snapshot as a static YAML inventory.
func YAMLInventory(snap *inventory.Snapshot) ([]byte, error) {
	inv := yamlInventory{All: yamlAllGroup{Children: make(map[string]yamlGroup)}}

	for _, name := range snap.HostNames() {
		h := snap.Hosts[name]

		entry := yamlHost{Vars: make(map[string]any)}
		for k, v := range h.Vars {
			if k == "ansible_host" {
				if ip, ok := v.(string); ok {
					entry.AnsibleHost = ip
					continue
				}
			}
			entry.Vars[k] = v
		}

		for _, group := range h.Groups {
			g, ok := inv.All.Children[group]
			if !ok {
				g = yamlGroup{Hosts: make(map[string]yamlHost)}
			}
			g.Hosts[name] = entry
			inv.All.Children[group] = g
		}
	}

	data, err := yaml.Marshal(&inv)
	if err != nil {
		return nil, fmt.Errorf("encoding yaml inventory: %w", err)
	}
	return data, nil
}
