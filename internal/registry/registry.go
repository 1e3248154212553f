// Package registry dispatches per-source normalizer overrides. Known
// customers and drivers get tailored field handling; everything else falls
// through to the generic normalizers.
package registry

// Overrides replaces individual field normalizers for a matched source.
// Nil members keep the generic behavior. An override returning an error
// degrades that one job back to the generic normalizers; it never aborts
// the document.
type Overrides struct {
	Customer func(raw string) (string, error)
	Activity func(raw string) (string, error)
	Postcode func(raw string) (string, error)
	Address  func(lines []string) (string, error)
}

// SourceRule pairs a source predicate with its normalizer overrides.
type SourceRule struct {
	Name      string
	Match     func(driver, customer string) bool
	Overrides Overrides
}

// Registry is an ordered, immutable-after-init list of source rules.
// The first matching predicate wins.
type Registry struct {
	rules []SourceRule
}

// New builds a registry from rules in evaluation order.
func New(rules ...SourceRule) *Registry {
	r := &Registry{rules: make([]SourceRule, len(rules))}
	copy(r.rules, rules)
	return r
}

// Resolve returns the first rule whose predicate matches the document
// source, or ok=false for generic handling.
func (r *Registry) Resolve(driver, customer string) (SourceRule, bool) {
	for _, rule := range r.rules {
		if rule.Match != nil && rule.Match(driver, customer) {
			return rule, true
		}
	}
	return SourceRule{}, false
}

// Len reports the number of registered rules.
func (r *Registry) Len() int { return len(r.rules) }
