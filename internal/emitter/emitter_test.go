package emitter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"akipsinv/internal/inventory"
)

func twoHostSnapshot() *inventory.Snapshot {
	return &inventory.Snapshot{
		Groups: []string{"Core", "Campus"},
		Hosts: map[string]*inventory.ResolvedHost{
			"sw2": {
				Name:   "sw2",
				Groups: []string{"Campus"},
				Vars:   map[string]any{"ansible_host": "10.0.0.2"},
			},
			"sw1": {
				Name:   "sw1",
				Groups: []string{"Core", "Campus"},
				Vars: map[string]any{
					"ansible_host":       "10.0.0.1",
					"ansible_network_os": "ios",
				},
			},
		},
	}
}

func TestPopulate(t *testing.T) {
	g := NewGraph()
	Populate(twoHostSnapshot(), g)

	// hosts are walked in sorted order
	assert.Equal(t, []string{"sw1", "sw2"}, g.Hosts())
	assert.Equal(t, []string{"Core", "Campus"}, g.Groups())

	assert.Equal(t, []string{"sw1"}, g.GroupHosts("Core"))
	assert.Equal(t, []string{"sw1", "sw2"}, g.GroupHosts("Campus"))

	assert.Equal(t, map[string]any{
		"ansible_host":       "10.0.0.1",
		"ansible_network_os": "ios",
	}, g.HostVars("sw1"))
}

func TestGraph_Idempotent(t *testing.T) {
	g := NewGraph()
	g.AddHost("h1")
	g.AddHost("h1")
	g.AddChild("A", "h1")
	g.AddChild("A", "h1")

	assert.Equal(t, []string{"h1"}, g.Hosts())
	assert.Equal(t, []string{"h1"}, g.GroupHosts("A"))
}

func TestDynamicInventory(t *testing.T) {
	out := DynamicInventory(twoHostSnapshot())

	meta, ok := out["_meta"].(map[string]any)
	require.True(t, ok)
	hostvars, ok := meta["hostvars"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"ansible_host": "10.0.0.2"}, hostvars["sw2"])

	all, ok := out["all"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, []string{"ungrouped", "Core", "Campus"}, all["children"])

	core, ok := out["Core"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, []string{"sw1"}, core["hosts"])
}

func TestDynamicInventory_EmptySnapshot(t *testing.T) {
	out := DynamicInventory(&inventory.Snapshot{Hosts: map[string]*inventory.ResolvedHost{}})

	meta := out["_meta"].(map[string]any)
	assert.Empty(t, meta["hostvars"])
	all := out["all"].(map[string]any)
	assert.Equal(t, []string{"ungrouped"}, all["children"])
}

func TestHostVars(t *testing.T) {
	snap := twoHostSnapshot()

	assert.Equal(t, map[string]any{"ansible_host": "10.0.0.2"}, HostVars(snap, "sw2"))
	assert.Equal(t, map[string]any{}, HostVars(snap, "nope"), "unknown hosts yield an empty mapping")
}

func TestYAMLInventory(t *testing.T) {
	data, err := YAMLInventory(twoHostSnapshot())
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, yaml.Unmarshal(data, &got))

	all := got["all"].(map[string]any)
	children := all["children"].(map[string]any)
	require.Contains(t, children, "Core")
	require.Contains(t, children, "Campus")

	campus := children["Campus"].(map[string]any)
	hosts := campus["hosts"].(map[string]any)
	require.Contains(t, hosts, "sw1")
	require.Contains(t, hosts, "sw2")

	sw1 := hosts["sw1"].(map[string]any)
	assert.Equal(t, "10.0.0.1", sw1["ansible_host"])
	assert.Equal(t, "ios", sw1["ansible_network_os"])
}
