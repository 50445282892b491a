package inventory

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"akipsinv/internal/akips"
	"akipsinv/internal/config"
)

// Source lists groups and group members from the monitoring system.
// *akips.Client satisfies it; tests substitute a fake.
type Source interface {
	ListGroups(ctx context.Context) ([]string, error)
	ListGroupMembers(ctx context.Context, group string) ([]akips.Member, error)
}

// Resolver runs the filter and merge pipeline over an AKiPS source.
// Resolution is strictly sequential: the membership filters at the end of
// the pipeline depend on fully accumulated state from all groups.
type Resolver struct {
	source     Source
	filters    *Filters
	groupRules []Rule
	hostRules  []Rule
	debug      bool
}

// NewResolver compiles the configured filters and variable rules. A bad
// regex fails here, before any network call.
func NewResolver(cfg *config.Config, source Source) (*Resolver, error) {
	filters, err := CompileFilters(cfg.Filters)
	if err != nil {
		return nil, err
	}

	groupRules, err := CompileRules(cfg.Hostvars.Groups)
	if err != nil {
		return nil, fmt.Errorf("hostvars.groups: %w", err)
	}

	hostRules, err := CompileRules(cfg.Hostvars.Hosts)
	if err != nil {
		return nil, fmt.Errorf("hostvars.hosts: %w", err)
	}

	return &Resolver{
		source:     source,
		filters:    filters,
		groupRules: groupRules,
		hostRules:  hostRules,
		debug:      cfg.Server.Debug,
	}, nil
}

// debugLog logs a message only if debug mode is enabled in config
func (r *Resolver) debugLog(format string, args ...interface{}) {
	if r.debug {
		log.Printf(format, args...)
	}
}

// Resolve expands group membership into the final host inventory.
//
// The group-level gates run before the per-group membership fetch, the
// host-level excludes before variable accumulation, and the limit/exclude
// membership filters only after every group has been visited: a host can be
// reported by several groups, and those two checks apply to the union of
// its memberships rather than to any single group.
func (r *Resolver) Resolve(ctx context.Context) (*Snapshot, error) {
	groups, err := r.source.ListGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing groups: %w", err)
	}

	// Host and group names share one namespace: a host whose name equals
	// any known group name is dropped later with a warning.
	knownGroups := make(map[string]struct{}, len(groups))
	for _, g := range groups {
		if g != "" {
			knownGroups[g] = struct{}{}
		}
	}

	snap := &Snapshot{
		ID:          uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Hosts:       make(map[string]*ResolvedHost),
	}
	visited := make(map[string]bool, len(groups))

	for _, group := range groups {
		if group == "" {
			continue
		}
		if r.filters.RestrictsGroup(group) {
			r.debugLog("skipping group %s: restrict_groups does not match", group)
			continue
		}
		if r.filters.IgnoresGroup(group) {
			r.debugLog("ignoring group %s", group)
			continue
		}

		members, err := r.source.ListGroupMembers(ctx, group)
		if err != nil {
			return nil, fmt.Errorf("listing members of group %s: %w", group, err)
		}

		if !visited[group] {
			visited[group] = true
			snap.Groups = append(snap.Groups, group)
		}

		groupVars := Resolve(r.groupRules, group)

		for _, m := range members {
			if _, collides := knownGroups[m.Name]; collides {
				log.Printf("warning: skipping host %s: name collides with a group name", m.Name)
				continue
			}
			if r.filters.ExcludesHost(m.Name) {
				r.debugLog("excluding host %s by name", m.Name)
				continue
			}
			if r.filters.ExcludesNetwork(m.IP) {
				r.debugLog("excluding host %s by ip %s", m.Name, m.IP)
				continue
			}

			h, ok := snap.Hosts[m.Name]
			if !ok {
				h = &ResolvedHost{
					Name: m.Name,
					Vars: map[string]any{"ansible_host": m.IP},
				}
				snap.Hosts[m.Name] = h
			}
			h.addGroup(group)

			// Group variables accumulate across every group the host
			// belongs to, in visit order; the last group wins ties.
			for k, v := range groupVars {
				h.Vars[k] = v
			}
		}
	}

	// Host-level rules run after all groups and always win ties against
	// group-sourced variables.
	for name, h := range snap.Hosts {
		for k, v := range Resolve(r.hostRules, name) {
			h.Vars[k] = v
		}
	}

	for name, h := range snap.Hosts {
		if !r.filters.KeepsMembership(h.Groups) {
			r.debugLog("dropping host %s: no membership matches limit_groups", name)
			delete(snap.Hosts, name)
			continue
		}
		if r.filters.ExcludesMembership(h.Groups) {
			r.debugLog("dropping host %s: a membership matches exclude_groups", name)
			delete(snap.Hosts, name)
		}
	}

	return snap, nil
}
