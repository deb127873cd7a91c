package requirements

import "testing"

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.8.0", "1.8.0", 0},
		{"1.8.0", "2.0.0", -1},
		{"2.0.0", "1.8.0", 1},
		{"2.0", "2.0.0", 0},
		{"2.10.0", "2.9.0", 1},
		{"1.0a1", "1.0", -1},
		{"1.0a1", "1.0b1", -1},
		{"1.0b1", "1.0rc1", -1},
		{"1.0rc1", "1.0", -1},
		{"1.0", "1.0.post1", -1},
		{"1.0.dev3", "1.0a1", -1},
		{"1!1.0", "2.0", 1},
		{"v2.0", "2.0", 0},
		{"2.0+cu118", "2.0", 0},
		{"1.0rc1", "1.0rc2", -1},
	}

	for _, tt := range tests {
		t.Run(tt.a+" vs "+tt.b, func(t *testing.T) {
			if got := CompareVersions(tt.a, tt.b); got != tt.want {
				t.Errorf("CompareVersions(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSpecifierMatch(t *testing.T) {
	tests := []struct {
		spec    string
		version string
		want    bool
	}{
		{"==1.8.0", "1.8.0", true},
		{"==1.8.0", "1.8.1", false},
		{"==1.8.*", "1.8.3", true},
		{"==1.8.*", "1.9.0", false},
		{"!=1.8.0", "1.8.0", false},
		{"!=1.8.0", "1.8.1", true},
		{">=2.0", "2.0.0", true},
		{">=2.0", "1.9.9", false},
		{"<2.0", "1.9.9", true},
		{"<2.0", "2.0.0", false},
		{">1.0,<2.0", "1.5", true},
		{">1.0,<2.0", "2.1", false},
		{"~=2.2.0", "2.2.5", true},
		{"~=2.2.0", "2.3.0", false},
		{"~=2.2.0", "2.1.9", false},
		{"~=2.2", "2.9", true},
		{"~=2.2", "3.0", false},
		{"===1.8.0", "1.8.0", true},
		{"===1.8.0", "1.8", false},
		{"", "1.2.3", true},
	}

	for _, tt := range tests {
		t.Run(tt.spec+"/"+tt.version, func(t *testing.T) {
			spec, err := ParseSpecifier(tt.spec)
			if err != nil {
				t.Fatalf("ParseSpecifier(%q): %v", tt.spec, err)
			}
			if got := spec.Match(tt.version); got != tt.want {
				t.Errorf("Match(%q, %q) = %v, want %v", tt.spec, tt.version, got, tt.want)
			}
		})
	}
}

func TestParseSpecifierErrors(t *testing.T) {
	for _, bad := range []string{"1.8.0", "=>2.0", "== "} {
		if _, err := ParseSpecifier(bad); err == nil {
			t.Errorf("ParseSpecifier(%q) should fail", bad)
		}
	}
}

func TestSpecifierString(t *testing.T) {
	spec, err := ParseSpecifier(">=1.8, <2.0")
	if err != nil {
		t.Fatal(err)
	}
	if got := spec.String(); got != ">=1.8,<2.0" {
		t.Errorf("String() = %q", got)
	}
}

func TestEffectiveVersion(t *testing.T) {
	tests := []struct {
		spec string
		want string
	}{
		{"==1.8.0", "1.8.0"},
		{"===1.8.0", "1.8.0"},
		{">=2.0", "2.0"},
		{"~=2.2.0", "2.2.0"},
		{">1.0", ""},
		{"<2.0", ""},
		{"", ""},
		{">=2.0,==2.2.0", "2.2.0"},
		{"==1.8.*", "1.8"},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			spec, err := ParseSpecifier(tt.spec)
			if err != nil {
				t.Fatalf("ParseSpecifier(%q): %v", tt.spec, err)
			}
			if got := spec.EffectiveVersion(); got != tt.want {
				t.Errorf("EffectiveVersion(%q) = %q, want %q", tt.spec, got, tt.want)
			}
		})
	}
}
