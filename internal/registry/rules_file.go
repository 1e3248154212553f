package registry

import (
	"os"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/fieldserve/runsheet-cli/internal/normalize"
)

// rulesFile is the on-disk shape of rules.yaml.
type rulesFile struct {
	Rules []fileRule `yaml:"rules"`
}

// fileRule declares a source rule without code: regex predicates plus
// declarative normalizer tweaks.
type fileRule struct {
	Name            string            `yaml:"name"`
	DriverPattern   string            `yaml:"driver_pattern"`
	CustomerPattern string            `yaml:"customer_pattern"`
	StripCustomer   []string          `yaml:"strip_customer"`
	ActivityAliases map[string]string `yaml:"activity_aliases"`
	DropAddress     []string          `yaml:"drop_address_lines"`
}

// LoadFile reads declarative source rules from a YAML file. A missing path
// yields no rules and no error; a malformed file is an error so bad rules
// never silently vanish.
func LoadFile(path string) ([]SourceRule, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "registry: read rules file %s", path)
	}

	var rf rulesFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, eris.Wrapf(err, "registry: parse rules file %s", path)
	}

	rules := make([]SourceRule, 0, len(rf.Rules))
	for _, fr := range rf.Rules {
		rule, err := compileRule(fr)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

func compileRule(fr fileRule) (SourceRule, error) {
	if fr.Name == "" {
		return SourceRule{}, eris.New("registry: rule missing name")
	}
	if fr.DriverPattern == "" && fr.CustomerPattern == "" {
		return SourceRule{}, eris.Errorf("registry: rule %q has no predicate pattern", fr.Name)
	}

	var driverRe, customerRe *regexp.Regexp
	var err error
	if fr.DriverPattern != "" {
		if driverRe, err = regexp.Compile("(?i)" + fr.DriverPattern); err != nil {
			return SourceRule{}, eris.Wrapf(err, "registry: rule %q driver_pattern", fr.Name)
		}
	}
	if fr.CustomerPattern != "" {
		if customerRe, err = regexp.Compile("(?i)" + fr.CustomerPattern); err != nil {
			return SourceRule{}, eris.Wrapf(err, "registry: rule %q customer_pattern", fr.Name)
		}
	}

	strips := make([]*regexp.Regexp, 0, len(fr.StripCustomer))
	for _, p := range fr.StripCustomer {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return SourceRule{}, eris.Wrapf(err, "registry: rule %q strip_customer %q", fr.Name, p)
		}
		strips = append(strips, re)
	}

	drops := make([]*regexp.Regexp, 0, len(fr.DropAddress))
	for _, p := range fr.DropAddress {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return SourceRule{}, eris.Wrapf(err, "registry: rule %q drop_address_lines %q", fr.Name, p)
		}
		drops = append(drops, re)
	}

	aliases := make(map[string]string, len(fr.ActivityAliases))
	for from, to := range fr.ActivityAliases {
		aliases[strings.ToUpper(strings.TrimSpace(from))] = strings.ToUpper(strings.TrimSpace(to))
	}

	rule := SourceRule{
		Name: fr.Name,
		Match: func(driver, customer string) bool {
			if driverRe != nil && !driverRe.MatchString(driver) {
				return false
			}
			if customerRe != nil && !customerRe.MatchString(customer) {
				return false
			}
			return true
		},
	}

	if len(strips) > 0 {
		rule.Overrides.Customer = func(raw string) (string, error) {
			s := raw
			for _, re := range strips {
				s = re.ReplaceAllString(s, "")
			}
			return normalize.Customer(s), nil
		}
	}
	if len(aliases) > 0 {
		rule.Overrides.Activity = func(raw string) (string, error) {
			if to, ok := aliases[strings.ToUpper(strings.TrimSpace(raw))]; ok {
				return to, nil
			}
			return normalize.Activity(raw), nil
		}
	}
	if len(drops) > 0 {
		rule.Overrides.Address = func(lines []string) (string, error) {
			var kept []string
			for _, l := range lines {
				dropped := false
				for _, re := range drops {
					if re.MatchString(l) {
						dropped = true
						break
					}
				}
				if !dropped {
					kept = append(kept, l)
				}
			}
			return normalize.Address(kept), nil
		}
	}

	return rule, nil
}
