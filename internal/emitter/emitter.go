// Package emitter turns a resolved snapshot into an external inventory
// representation: an automation tool's host/group graph, the JSON an
// external inventory script prints, or a static YAML inventory.
package emitter

import (
	"sort"

	"akipsinv/internal/inventory"
)

// InventoryWriter is the boundary to the host/group graph an automation
// tool maintains. Implementations own the graph; the resolution pipeline
// only writes through this interface and never reads it back.
type InventoryWriter interface {
	AddHost(name string)
	AddGroup(name string)
	AddChild(group, host string)
	SetVariable(host, key string, value any)
}

// Populate walks the final host mapping and writes it through w: each host
// is registered, its groups created on demand, the host attached as a child
// of each, and every resolved variable set on it.
func Populate(snap *inventory.Snapshot, w InventoryWriter) {
	for _, name := range snap.HostNames() {
		h := snap.Hosts[name]
		w.AddHost(name)

		for _, group := range h.Groups {
			w.AddGroup(group)
			w.AddChild(group, name)
		}

		keys := make([]string, 0, len(h.Vars))
		for k := range h.Vars {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			w.SetVariable(name, k, h.Vars[k])
		}
	}
}

// Graph is an in-memory InventoryWriter. The CLI and serve mode render it;
// tests assert against it.
type Graph struct {
	hostVars   map[string]map[string]any
	groupHosts map[string][]string
	hostOrder  []string
	groupOrder []string
}

// NewGraph creates an empty inventory graph.
func NewGraph() *Graph {
	return &Graph{
		hostVars:   make(map[string]map[string]any),
		groupHosts: make(map[string][]string),
	}
}

// AddHost registers a host. Adding the same host twice is a no-op.
func (g *Graph) AddHost(name string) {
	if _, ok := g.hostVars[name]; ok {
		return
	}
	g.hostVars[name] = make(map[string]any)
	g.hostOrder = append(g.hostOrder, name)
}

// AddGroup registers a group. Adding the same group twice is a no-op.
func (g *Graph) AddGroup(name string) {
	if _, ok := g.groupHosts[name]; ok {
		return
	}
	g.groupHosts[name] = nil
	g.groupOrder = append(g.groupOrder, name)
}

// AddChild attaches a host to a group, creating both on demand.
func (g *Graph) AddChild(group, host string) {
	g.AddGroup(group)
	g.AddHost(host)
	for _, h := range g.groupHosts[group] {
		if h == host {
			return
		}
	}
	g.groupHosts[group] = append(g.groupHosts[group], host)
}

// SetVariable sets a variable on a host, creating the host on demand.
func (g *Graph) SetVariable(host, key string, value any) {
	g.AddHost(host)
	g.hostVars[host][key] = value
}

// Hosts returns registered host names in registration order.
func (g *Graph) Hosts() []string {
	return append([]string(nil), g.hostOrder...)
}

// Groups returns registered group names in registration order.
func (g *Graph) Groups() []string {
	return append([]string(nil), g.groupOrder...)
}

// GroupHosts returns the hosts attached to a group.
func (g *Graph) GroupHosts(group string) []string {
	return append([]string(nil), g.groupHosts[group]...)
}

// HostVars returns the variables set on a host.
func (g *Graph) HostVars(host string) map[string]any {
	vars := make(map[string]any, len(g.hostVars[host]))
	for k, v := range g.hostVars[host] {
		vars[k] = v
	}
	return vars
}
