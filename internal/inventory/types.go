// Package inventory implements the resolution pipeline that turns AKiPS
// device groups and their membership into a host inventory: group discovery,
// membership expansion, layered regex filtering, and variable merging with a
// fixed precedence (host rules over group rules, later rules over earlier
// ones).
package inventory

import (
	"sort"
	"time"
)

// ResolvedHost is one host in the final inventory: its name, the ordered set
// of groups that reported it, and its merged variables. The ansible_host
// variable is always present, seeded from the host's IP when it is first
// seen.
type ResolvedHost struct {
	Name   string         `json:"name"`
	Groups []string       `json:"groups"`
	Vars   map[string]any `json:"vars"`
}

// InGroup reports whether the host accumulated a membership in group.
func (h *ResolvedHost) InGroup(group string) bool {
	for _, g := range h.Groups {
		if g == group {
			return true
		}
	}
	return false
}

// addGroup appends group to the membership set if not already present.
// Visit order is preserved; it decides group-variable precedence.
func (h *ResolvedHost) addGroup(group string) {
	if !h.InGroup(group) {
		h.Groups = append(h.Groups, group)
	}
}

// Snapshot is a fully resolved inventory, the unit stored in the snapshot
// cache. Hosts exist only transiently during a resolution pass; the snapshot
// is the only durable artifact.
type Snapshot struct {
	// ID identifies one resolution run
	ID string `json:"id"`

	// Fingerprint is the cache key the snapshot was stored under
	Fingerprint string `json:"fingerprint,omitempty"`

	// GeneratedAt is the resolution time in UTC
	GeneratedAt time.Time `json:"generated_at"`

	// Groups are the groups that survived the pre-fetch gates, in visit
	// order (a group is listed even when all of its hosts were filtered)
	Groups []string `json:"groups"`

	// Hosts maps host name to its resolved entry
	Hosts map[string]*ResolvedHost `json:"hosts"`
}

// HostNames returns the host names sorted for stable output.
func (s *Snapshot) HostNames() []string {
	names := make([]string, 0, len(s.Hosts))
	for name := range s.Hosts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GroupHosts returns the sorted names of hosts that accumulated a
// membership in group.
func (s *Snapshot) GroupHosts(group string) []string {
	var names []string
	for name, h := range s.Hosts {
		if h.InGroup(group) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// HasGroup reports whether group was visited during resolution.
func (s *Snapshot) HasGroup(group string) bool {
	for _, g := range s.Groups {
		if g == group {
			return true
		}
	}
	return false
}
