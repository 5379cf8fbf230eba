package engine

// kwPrefix marks string literals that stood for :keywords in the source.
const kwPrefix = "__kw_"

// preprocessSource rewrites strategy script source into something zygomys
// reads:
//
//   - :keyword becomes the string literal "__kw_keyword", so keywords never
//     collide with user variables
//   - kebab-case identifiers become snake_case (zygomys reads a-b as a minus)
//   - ; and ;; line comments become // comments
//
// String literals (double-quoted and backtick) pass through untouched, as
// does the := operator.
func preprocessSource(source string) string {
	s := &scanner{src: []byte(source), out: make([]byte, 0, len(source)+len(source)/4)}
	for s.i < len(s.src) {
		c := s.src[s.i]
		switch {
		case c == '"':
			s.quoted('"', true)
		case c == '`':
			s.quoted('`', false)
		case c == ';':
			s.comment()
		case c == ':' && s.peek(1) == '=':
			s.copy(2)
		case c == ':' && isLetter(s.peek(1)):
			s.keyword()
		case c == '-' && s.i > 0 && isIdentChar(s.src[s.i-1]) && isLetter(s.peek(1)):
			s.out = append(s.out, '_')
			s.i++
		default:
			s.copy(1)
		}
	}
	return string(s.out)
}

type scanner struct {
	src []byte
	out []byte
	i   int
}

// peek returns the byte n positions ahead, or 0 past the end.
func (s *scanner) peek(n int) byte {
	if s.i+n < len(s.src) {
		return s.src[s.i+n]
	}
	return 0
}

func (s *scanner) copy(n int) {
	end := min(s.i+n, len(s.src))
	s.out = append(s.out, s.src[s.i:end]...)
	s.i = end
}

// quoted copies a literal up to and including its closing delimiter.
func (s *scanner) quoted(delim byte, escapes bool) {
	s.copy(1)
	for s.i < len(s.src) && s.src[s.i] != delim {
		if escapes && s.src[s.i] == '\\' {
			s.copy(2)
			continue
		}
		s.copy(1)
	}
	s.copy(1)
}

func (s *scanner) comment() {
	for s.i < len(s.src) && s.src[s.i] == ';' {
		s.i++
	}
	s.out = append(s.out, '/', '/')
	for s.i < len(s.src) && s.src[s.i] != '\n' {
		s.copy(1)
	}
}

func (s *scanner) keyword() {
	start := s.i + 1
	end := start
	for end < len(s.src) && isKWChar(s.src[end]) {
		end++
	}
	s.out = append(s.out, '"')
	s.out = append(s.out, kwPrefix...)
	s.out = append(s.out, s.src[start:end]...)
	s.out = append(s.out, '"')
	s.i = end
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentChar(c byte) bool {
	return isLetter(c) || isDigit(c) || c == '_'
}

func isKWChar(c byte) bool {
	return isIdentChar(c) || c == '-'
}
