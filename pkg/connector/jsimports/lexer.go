package jsimports

import "strings"

// mask returns src with comments, regular expression literals, template text and
// the contents of every string literal outside a specifier position replaced by
// spaces. Quotes, newlines and byte offsets are kept.
func mask(src string) string {
	l := &lexer{src: src, out: []byte(src)}
	l.run()
	return string(l.out)
}

type lexer struct {
	src string
	out []byte
	pos int

	// prev and prev2 are the last two significant tokens seen in code.
	prev, prev2 string

	// depth is the brace depth; templates holds the depth at which each open
	// ${ substitution started.
	depth     int
	templates []int
}

func (l *lexer) run() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == '/' && l.peek(1) == '/':
			end := strings.IndexByte(l.src[l.pos:], '\n')
			if end < 0 {
				end = len(l.src)
			} else {
				end += l.pos
			}
			l.blank(l.pos, end)
			l.pos = end
		case c == '/' && l.peek(1) == '*':
			end := strings.Index(l.src[l.pos+2:], "*/")
			if end < 0 {
				end = len(l.src)
			} else {
				end += l.pos + 4
			}
			l.blank(l.pos, end)
			l.pos = end
		case c == '\'' || c == '"':
			l.quoted(c)
		case c == '`':
			l.pos++
			l.template()
		case c == '/' && l.regexAllowed():
			l.regex()
		case c == '{':
			l.depth++
			l.token("{")
			l.pos++
		case c == '}':
			if n := len(l.templates); n > 0 && l.templates[n-1] == l.depth {
				l.templates = l.templates[:n-1]
				l.pos++
				l.template()
				continue
			}
			l.depth--
			l.token("}")
			l.pos++
		case isIdent(c):
			start := l.pos
			for l.pos < len(l.src) && isIdent(l.src[l.pos]) {
				l.pos++
			}
			l.token(l.src[start:l.pos])
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			l.pos++
		default:
			l.token(string(c))
			l.pos++
		}
	}
}

// quoted steps over a '...' or "..." literal. An unterminated literal ends at
// the line break.
func (l *lexer) quoted(q byte) {
	start := l.pos
	l.pos++
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == '\\' {
			l.pos += 2
			continue
		}
		if c == q || c == '\n' {
			break
		}
		l.pos++
	}
	end := min(l.pos, len(l.src))
	if !l.specifierPosition() {
		l.blank(start+1, end)
	}
	if end < len(l.src) && l.src[end] == q {
		end++
	}
	l.pos = end
	l.token("str")
}

// template steps over template text up to the closing backtick or the next ${.
func (l *lexer) template() {
	for l.pos < len(l.src) {
		switch l.src[l.pos] {
		case '\\':
			l.blank(l.pos, l.pos+2)
			l.pos += 2
		case '`':
			l.pos++
			l.token("str")
			return
		case '$':
			if l.peek(1) == '{' {
				l.templates = append(l.templates, l.depth)
				l.pos += 2
				l.token("{")
				return
			}
			l.blank(l.pos, l.pos+1)
			l.pos++
		default:
			l.blank(l.pos, l.pos+1)
			l.pos++
		}
	}
}

// regex steps over a regular expression literal. A slash with no closing slash
// on the same line is a division operator after all.
func (l *lexer) regex() {
	inClass := false
	for i := l.pos + 1; i < len(l.src); i++ {
		switch l.src[i] {
		case '\\':
			i++
		case '[':
			inClass = true
		case ']':
			inClass = false
		case '\n':
			l.token("/")
			l.pos++
			return
		case '/':
			if !inClass {
				l.blank(l.pos+1, i)
				l.pos = i + 1
				l.token("regex")
				return
			}
		}
	}
	l.token("/")
	l.pos++
}

// specifierPosition reports whether a string literal starting now is a module
// specifier: after from, after a bare import, or as the argument of require(
// or import(.
func (l *lexer) specifierPosition() bool {
	switch l.prev {
	case "from", "import":
		return true
	case "(":
		return l.prev2 == "require" || l.prev2 == "import"
	}
	return false
}

// regexAllowed reports whether a slash starts a regular expression rather than
// a division.
func (l *lexer) regexAllowed() bool {
	switch l.prev {
	case "", "(", ",", "=", ":", "[", "!", "&", "|", "?", "{", "}", ";",
		"+", "-", "*", "%", "<", ">", "~", "^",
		"return", "typeof", "instanceof", "case", "do", "else", "in", "of",
		"new", "delete", "void", "throw", "yield", "await":
		return true
	}
	return false
}

func (l *lexer) token(t string) {
	l.prev2, l.prev = l.prev, t
}

func (l *lexer) peek(n int) byte {
	if l.pos+n < len(l.src) {
		return l.src[l.pos+n]
	}
	return 0
}

func (l *lexer) blank(from, to int) {
	to = min(to, len(l.out))
	for i := from; i < to; i++ {
		if l.out[i] != '\n' {
			l.out[i] = ' '
		}
	}
}

func isIdent(c byte) bool {
	return c == '_' || c == '$' ||
		'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9' ||
		c >= 0x80
}
