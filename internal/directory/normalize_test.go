package directory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"a@x.com", "a@x.com"},
		{"A@X.COM", "a@x.com"},
		{"  A@x.Com  ", "a@x.com"},
		{"\tOps@Plant.example\n", "ops@plant.example"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeEmail(tt.in), "input %q", tt.in)
	}
}

func TestCoerceFacilities(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"null", "", []string{}},
		{"whitespace only", "   ", []string{}},
		{"json list", `["Plant A","Plant B"]`, []string{"Plant A", "Plant B"}},
		{"json list with padding", ` ["Plant A", " Plant B "] `, []string{"Plant A", "Plant B"}},
		{"json list dedup keeps order", `["B","A","B"]`, []string{"B", "A"}},
		{"json with non-strings skipped", `["Plant A", 7, null]`, []string{"Plant A"}},
		{"comma delimited", "Plant A,Plant B", []string{"Plant A", "Plant B"}},
		{"comma delimited padded", " Plant A , Plant B ,", []string{"Plant A", "Plant B"}},
		{"single value", "Plant A", []string{"Plant A"}},
		{"malformed json degrades to empty", `["Plant A"`, []string{}},
		{"json object degrades to empty", `{"a":1}`, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CoerceFacilities(tt.raw))
		})
	}
}
