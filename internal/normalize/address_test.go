package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want LineClass
	}{
		{"street line", "14 DEANSGATE", ClassAddress},
		{"city line", "MANCHESTER", ClassAddress},
		{"contact lead", "CONTACT: J SMITH", ClassContact},
		{"honorific", "MR SMITH", ClassContact},
		{"phone", "0161 123 4567", ClassContact},
		{"instruction", "PLEASE CALL AHEAD", ClassInstruction},
		{"notes marker", "NOTES", ClassInstruction},
		{"signature", "CUSTOMER SIGNATURE", ClassSignature},
		{"bare store ref", "16661UK", ClassStoreRef},
		{"store ref in text", "UNIT 4 16661UK", ClassAddress},
		{"empty", "  ", ClassEmpty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Classify(tt.in))
		})
	}
}

func TestAddress(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		lines []string
		want  string
	}{
		{
			name:  "joins address lines",
			lines: []string{"UNIT 4", "TRAFFORD PARK", "MANCHESTER"},
			want:  "UNIT 4, TRAFFORD PARK, MANCHESTER",
		},
		{
			name:  "drops contact and instruction lines",
			lines: []string{"14 DEANSGATE", "CONTACT: J SMITH", "PLEASE USE REAR DOOR", "MANCHESTER"},
			want:  "14 DEANSGATE, MANCHESTER",
		},
		{
			name:  "strips embedded store ref",
			lines: []string{"UNIT 4 16661UK", "MANCHESTER"},
			want:  "UNIT 4, MANCHESTER",
		},
		{
			name:  "collapses adjacent duplicates",
			lines: []string{"MANCHESTER", "manchester", "M1 1AA"},
			want:  "MANCHESTER, M1 1AA",
		},
		{
			name:  "empty input",
			lines: nil,
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Address(tt.lines))
		})
	}
}
