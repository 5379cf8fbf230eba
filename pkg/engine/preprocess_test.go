package engine

import "testing"

func TestPreprocessSource(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{"keyword", `(cylinder :radius 5)`, `(cylinder "__kw_radius" 5)`},
		{"hyphenated keyword", `(plane :x-axis v)`, `(plane "__kw_x-axis" v)`},
		{"keyword in string", `"a :keyword inside"`, `"a :keyword inside"`},
		{"escaped quote in string", `"say \":hi\"" :k`, `"say \":hi\"" "__kw_k"`},
		{"backtick string", "`raw :kw`", "`raw :kw`"},
		{"assignment", `(def x := 10)`, `(def x := 10)`},
		{"kebab identifier", `(def plate-width 3)`, `(def plate_width 3)`},
		{"minus operator", `(- 10 5)`, `(- 10 5)`},
		{"negative number", `(vec3 0 -1 0)`, `(vec3 0 -1 0)`},
		{"exponent", `1e-3`, `1e-3`},
		{"double semicolon comment", ";; note :kw\n(box)", "// note :kw\n(box)"},
		{"single semicolon comment", `; note`, `// note`},
		{"unterminated string", `"open`, `"open`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := preprocessSource(tt.input); got != tt.expect {
				t.Errorf("preprocessSource(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

func TestParseArgs(t *testing.T) {
	pa := parseArgs(nil)
	if len(pa.kw) != 0 || len(pa.positional) != 0 {
		t.Errorf("empty args parsed to %+v", pa)
	}
	if err := pa.only("origin"); err != nil {
		t.Errorf("only on empty args: %v", err)
	}
}
