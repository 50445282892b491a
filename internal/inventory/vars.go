package inventory

import (
	"fmt"
	"regexp"

	"akipsinv/internal/config"
)

// Rule is a compiled variable rule: a regex matched against a group or host
// name and the variables applied when it matches.
type Rule struct {
	Pattern string
	Vars    map[string]any

	re *regexp.Regexp
}

// CompileRules compiles configured variable rules. Patterns match
// case-insensitively anywhere in the subject. Declaration order is
// preserved; it decides override precedence in Resolve.
func CompileRules(rules []config.VarRule) ([]Rule, error) {
	compiled := make([]Rule, 0, len(rules))
	for _, r := range rules {
		re, err := regexp.Compile("(?i)" + r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid hostvars pattern %q: %w", r.Pattern, err)
		}
		compiled = append(compiled, Rule{Pattern: r.Pattern, Vars: r.Vars, re: re})
	}
	return compiled, nil
}

// Resolve merges the variables of every rule whose pattern matches subject,
// in declaration order: later matching rules overwrite earlier ones on key
// collision. An empty rule set yields an empty mapping.
func Resolve(rules []Rule, subject string) map[string]any {
	vars := make(map[string]any)
	for _, r := range rules {
		if r.re.MatchString(subject) {
			for k, v := range r.Vars {
				vars[k] = v
			}
		}
	}
	return vars
}
