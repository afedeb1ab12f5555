package markdown

import (
	"strings"
	"testing"
)

// TestRender tests formatting and HTML escaping.
func TestRender(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		notWant string
	}{
		{name: "bold", in: "**Rest day**", want: "<strong>Rest day</strong>"},
		{name: "hard wraps", in: "line one\nline two", want: "<br"},
		{name: "raw html escaped", in: "<script>alert(1)</script>", notWant: "<script>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Render(tt.in)
			if err != nil {
				t.Fatalf("Render: %v", err)
			}
			if tt.want != "" && !strings.Contains(got, tt.want) {
				t.Errorf("Render(%q) = %q, want substring %q", tt.in, got, tt.want)
			}
			if tt.notWant != "" && strings.Contains(got, tt.notWant) {
				t.Errorf("Render(%q) = %q, must not contain %q", tt.in, got, tt.notWant)
			}
		})
	}
}
