package lookup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimpleMatch(t *testing.T) {
	tests := []struct {
		name     string
		haystack string
		needle   string
		want     bool
	}{
		{"substring hit", "Replace brake chamber", "brake", true},
		{"case insensitive", "OIL CHANGE", "oil", true},
		{"surrounding whitespace", "PM Service", "  pm  ", true},
		{"miss", "Alignment", "brake", false},
		{"empty needle", "Alignment", "", false},
		{"empty haystack", "", "brake", false},
		{"both empty", "", "", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, SimpleMatch(tc.haystack, tc.needle))
		})
	}
}

func TestPartMatchReflexive(t *testing.T) {
	for _, part := range []string{"HD400", "BW-287126-N", "2-1/2 clamp", "0012345"} {
		assert.True(t, PartMatch(part, part), "part %q should match itself", part)
	}
}

func TestPartMatch(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		needle    string
		want      bool
	}{
		{"punctuation insensitive", "BW-287126-N", "bw287126n", true},
		{"hyphen in query", "HD400", "H-D 400", true},
		{"containment candidate in query", "400", "HD400", true},
		{"containment query in candidate", "HD400-X", "400", true},
		{"leading zeros stripped", "0012345", "12345", true},
		{"leading zeros on query", "12345", "0012345", true},
		{"multi word all present", "FLT GRD OIL FILTER", "oil flt", true},
		{"multi word one missing", "FLT GRD OIL FILTER", "oil brake", false},
		{"prefix either direction", "HD400-X", "HD400", true},
		{"disjoint", "ABC123", "XYZ999", false},
		{"empty query", "HD400", "", false},
		{"empty candidate", "", "HD400", false},
		{"symbols only query", "HD400", "--//--", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, PartMatch(tc.candidate, tc.needle))
		})
	}
}

func TestNormalizePart(t *testing.T) {
	assert.Equal(t, "bw287126n", normalizePart(" BW-287126/N "))
	assert.Equal(t, "", normalizePart("--- "))
}

func TestStripLeadingZeros(t *testing.T) {
	assert.Equal(t, "12345", stripLeadingZeros("0012345"))
	assert.Equal(t, "0", stripLeadingZeros("000"))
	assert.Equal(t, "12", stripLeadingZeros("12"))
}
