package version

import "testing"

func TestParse_Valid(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  SemVer
	}{
		{name: "simple", input: "1.2.3", want: SemVer{Major: 1, Minor: 2, Patch: 3}},
		{name: "with prefix", input: "v2.0.1", want: SemVer{Major: 2, Minor: 0, Patch: 1}},
		{
			name:  "prerelease and build",
			input: "1.0.0-rc.1+exp.sha",
			want:  SemVer{Major: 1, Minor: 0, Patch: 0, PreRelease: "rc.1", Build: "exp.sha"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q) returned error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Fatalf("expected %#v, got %#v", tt.want, got)
			}
			if got.String() != tt.want.String() {
				t.Fatalf("expected %q, got %q", tt.want.String(), got.String())
			}
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, input := range []string{"", "1", "1.0", "1.0.0.0", "01.0.0", "1.0.0-01", "1.0.0-rc..1", "v1.0"} {
		t.Run(input, func(t *testing.T) {
			if _, err := Parse(input); err == nil {
				t.Fatalf("expected parse error for %q", input)
			}
		})
	}
}
