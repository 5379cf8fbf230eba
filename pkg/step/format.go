package step

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/chazu/meshstep/pkg/geom"
)

// num formats a REAL attribute with four decimals. Negative zero prints as
// zero.
func num(f float64) string {
	s := fmt.Sprintf("%.4f", f)
	if s == "-0.0000" {
		return "0.0000"
	}
	return s
}

// triple formats a point or direction as "(x,y,z)".
func triple(v geom.Vec3) string {
	return "(" + num(v.X) + "," + num(v.Y) + "," + num(v.Z) + ")"
}

// refList formats an aggregate of references as "(#1,#2)".
func refList(refs []Ref) string {
	parts := make([]string, len(refs))
	for i, r := range refs {
		parts[i] = r.String()
	}
	return "(" + strings.Join(parts, ",") + ")"
}

// quote renders s as a STEP string literal. Apostrophes and backslashes are
// doubled; characters outside printable ASCII use the \X2\ control directive.
func quote(s string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		i += size
		switch {
		case r == '\'':
			b.WriteString("''")
		case r == '\\':
			b.WriteString(`\\`)
		case r >= 0x20 && r < 0x7f:
			b.WriteRune(r)
		case r <= 0xffff:
			fmt.Fprintf(&b, `\X2\%04X\X0\`, r)
		default:
			fmt.Fprintf(&b, `\X4\%08X\X0\`, r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}
