package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCustomer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "TESCO STORES", "TESCO STORES"},
		{"lowercase", "tesco stores", "TESCO STORES"},
		{"store ref stripped", "TESCO STORE 16661UK", "TESCO STORE"},
		{"leading index", "12. TESCO STORES", "TESCO STORES"},
		{"signature marker", "TESCO CUSTOMER SIGNATURE", "TESCO"},
		{"do not invoice banner", "ASDA DO NOT INVOICE", "ASDA"},
		{"trailing junk", "MORRISONS ,-", "MORRISONS"},
		{"collapsed spaces", "B&Q   WAREHOUSE", "B&Q WAREHOUSE"},
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Customer(tt.in))
		})
	}
}

func TestSplitJobNumber(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		in       string
		wantNum  string
		wantRest string
		ok       bool
	}{
		{"six digits", "426979 TESCO", "426979", "TESCO", true},
		{"seven digits", "4269797 TESCO STORE", "4269797", "TESCO STORE", true},
		{"eight digits", "42697971", "42697971", "", true},
		{"too short", "12345 TESCO", "", "12345 TESCO", false},
		{"too long", "123456789 TESCO", "", "123456789 TESCO", false},
		{"not leading", "TESCO 4269797", "", "TESCO 4269797", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			num, rest, ok := SplitJobNumber(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.wantNum, num)
			assert.Equal(t, tt.wantRest, rest)
		})
	}
}

func TestCutStoreRef(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		in         string
		wantBefore string
		wantAfter  string
		found      bool
	}{
		{"splits header", "TESCO STORE 16661UK MANCHESTER", "TESCO STORE", "MANCHESTER", true},
		{"ref at end", "ASDA 123UK", "ASDA", "", true},
		{"no ref", "TESCO STORE MANCHESTER", "TESCO STORE MANCHESTER", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			before, after, found := CutStoreRef(tt.in)
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.wantBefore, before)
			assert.Equal(t, tt.wantAfter, after)
		})
	}
}
