package inventory

import (
	"fmt"
	"regexp"

	"akipsinv/internal/config"
)

// Filters holds the compiled filter set for one resolution run. Every
// filter is independently optional; a nil pattern always passes.
//
// restrict_groups and ignore_groups gate groups before their membership is
// fetched. exclude_hosts and exclude_networks gate individual members.
// limit_groups and exclude_groups run only after all groups have been
// visited, against a host's accumulated membership set.
type Filters struct {
	restrict        *regexp.Regexp
	ignore          *regexp.Regexp
	limit           *regexp.Regexp
	excludeGroups   *regexp.Regexp
	excludeHosts    *regexp.Regexp
	excludeNetworks *regexp.Regexp
}

// CompileFilters compiles the configured filter patterns. An invalid
// pattern is a fatal configuration error, surfaced before any network call.
func CompileFilters(cfg config.FiltersConfig) (*Filters, error) {
	f := &Filters{}
	var err error

	if f.restrict, err = compileOptional(cfg.RestrictGroups); err != nil {
		return nil, fmt.Errorf("restrict_groups: %w", err)
	}
	if f.ignore, err = compileOptional(cfg.IgnoreGroups); err != nil {
		return nil, fmt.Errorf("ignore_groups: %w", err)
	}
	if f.excludeGroups, err = compileOptional(cfg.ExcludeGroups); err != nil {
		return nil, fmt.Errorf("exclude_groups: %w", err)
	}
	if f.excludeHosts, err = compileOptional(cfg.ExcludeHosts); err != nil {
		return nil, fmt.Errorf("exclude_hosts: %w", err)
	}
	if f.excludeNetworks, err = compileOptional(cfg.ExcludeNetworks); err != nil {
		return nil, fmt.Errorf("exclude_networks: %w", err)
	}

	// limit_groups matches anchored at the start of the group name:
	// limiting to "Core" keeps hosts in Core-Routers but not in Non-Core.
	// The other group filters match anywhere in the name.
	if cfg.LimitGroups != "" {
		f.limit, err = regexp.Compile("^(?:" + cfg.LimitGroups + ")")
		if err != nil {
			return nil, fmt.Errorf("limit_groups: %w", err)
		}
	}

	return f, nil
}

func compileOptional(pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, nil
	}
	return regexp.Compile(pattern)
}

// RestrictsGroup reports whether the restrict-groups allow-list is set and
// does not match group.
func (f *Filters) RestrictsGroup(group string) bool {
	return f.restrict != nil && !f.restrict.MatchString(group)
}

// IgnoresGroup reports whether the ignore-groups deny-list matches group.
func (f *Filters) IgnoresGroup(group string) bool {
	return f.ignore != nil && f.ignore.MatchString(group)
}

// ExcludesHost reports whether the exclude-hosts filter matches the host name.
func (f *Filters) ExcludesHost(name string) bool {
	return f.excludeHosts != nil && f.excludeHosts.MatchString(name)
}

// ExcludesNetwork reports whether the exclude-networks filter matches the IP.
func (f *Filters) ExcludesNetwork(ip string) bool {
	return f.excludeNetworks != nil && f.excludeNetworks.MatchString(ip)
}

// KeepsMembership reports whether a host with the given accumulated
// memberships survives the limit-groups filter: unset keeps everything,
// otherwise at least one membership must match the anchored pattern.
func (f *Filters) KeepsMembership(groups []string) bool {
	if f.limit == nil {
		return true
	}
	for _, g := range groups {
		if f.limit.MatchString(g) {
			return true
		}
	}
	return false
}

// ExcludesMembership reports whether any accumulated membership matches the
// exclude-groups deny-list.
func (f *Filters) ExcludesMembership(groups []string) bool {
	if f.excludeGroups == nil {
		return false
	}
	for _, g := range groups {
		if f.excludeGroups.MatchString(g) {
			return true
		}
	}
	return false
}
