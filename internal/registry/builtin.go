package registry

import (
	"strings"

	"github.com/fieldserve/runsheet-cli/internal/normalize"
)

// Builtin returns the rules for sources whose sheets need tailored
// handling. Order matters: first match wins.
func Builtin() []SourceRule {
	return []SourceRule{
		tescoRule(),
		ricoRule(),
	}
}

// tescoRule handles Tesco-issued sheets: store numbers ride inside the
// customer cell and "SWAP" is their term for a tech exchange.
func tescoRule() SourceRule {
	return SourceRule{
		Name: "tesco",
		Match: func(driver, customer string) bool {
			return strings.Contains(strings.ToUpper(customer), "TESCO")
		},
		Overrides: Overrides{
			Customer: func(raw string) (string, error) {
				s := normalize.Customer(raw)
				for _, suffix := range []string{" PLC", " LTD", " LIMITED"} {
					s = strings.TrimSuffix(s, suffix)
				}
				return strings.TrimSpace(s), nil
			},
			Activity: func(raw string) (string, error) {
				if strings.EqualFold(strings.TrimSpace(raw), "SWAP") {
					return "TECH EXCHANGE", nil
				}
				return normalize.Activity(raw), nil
			},
		},
	}
}

// ricoRule handles Rico-driver sheets, whose address blocks lead with hub
// routing lines that are not part of the delivery address.
func ricoRule() SourceRule {
	return SourceRule{
		Name: "rico",
		Match: func(driver, customer string) bool {
			return strings.Contains(strings.ToUpper(driver), "RICO")
		},
		Overrides: Overrides{
			Address: func(lines []string) (string, error) {
				var kept []string
				for _, l := range lines {
					up := strings.ToUpper(strings.TrimSpace(l))
					if strings.HasPrefix(up, "HUB ") || strings.HasPrefix(up, "VIA ") {
						continue
					}
					kept = append(kept, l)
				}
				return normalize.Address(kept), nil
			},
		},
	}
}
