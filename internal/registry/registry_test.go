package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	// Suppress warning output from degraded-override paths under test.
	zap.ReplaceGlobals(zap.NewNop())
}

func TestResolve_FirstMatchWins(t *testing.T) {
	t.Parallel()

	r := New(
		SourceRule{Name: "a", Match: func(driver, customer string) bool { return customer == "X" }},
		SourceRule{Name: "b", Match: func(driver, customer string) bool { return true }},
	)

	rule, ok := r.Resolve("SMITH", "X")
	require.True(t, ok)
	assert.Equal(t, "a", rule.Name)

	rule, ok = r.Resolve("SMITH", "Y")
	require.True(t, ok)
	assert.Equal(t, "b", rule.Name)
}

func TestResolve_NoMatch(t *testing.T) {
	t.Parallel()

	r := New(SourceRule{Name: "a", Match: func(driver, customer string) bool { return false }})

	_, ok := r.Resolve("SMITH", "TESCO")
	assert.False(t, ok)
	assert.Equal(t, 1, r.Len())
}

func TestResolve_NilMatchSkipped(t *testing.T) {
	t.Parallel()

	r := New(SourceRule{Name: "broken"})
	_, ok := r.Resolve("SMITH", "TESCO")
	assert.False(t, ok)
}

func TestBuiltin_Tesco(t *testing.T) {
	t.Parallel()

	r := New(Builtin()...)

	rule, ok := r.Resolve("SMITH", "TESCO STORES PLC")
	require.True(t, ok)
	assert.Equal(t, "tesco", rule.Name)

	got, err := rule.Overrides.Customer("TESCO STORES PLC")
	require.NoError(t, err)
	assert.Equal(t, "TESCO STORES", got)

	act, err := rule.Overrides.Activity("SWAP")
	require.NoError(t, err)
	assert.Equal(t, "TECH EXCHANGE", act)

	act, err = rule.Overrides.Activity("MAINT")
	require.NoError(t, err)
	assert.Equal(t, "MAINTENANCE", act)
}

func TestBuiltin_Rico(t *testing.T) {
	t.Parallel()

	r := New(Builtin()...)

	rule, ok := r.Resolve("RICO-7", "ASDA")
	require.True(t, ok)
	assert.Equal(t, "rico", rule.Name)

	addr, err := rule.Overrides.Address([]string{"HUB NORTH WEST", "VIA M62 DEPOT", "UNIT 4", "LEEDS"})
	require.NoError(t, err)
	assert.Equal(t, "UNIT 4, LEEDS", addr)
}
