package scratch

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	errTrailingEscape = errors.New("trailing backslash")
	errUnclosedClass  = errors.New("unclosed character class")
)

// Ignore skips intake entries whose names match any of its glob patterns.
//
// Entry names carry no separators, so a pattern applies to the whole name:
//   - * matches any run of characters
//   - ? matches exactly one character
//   - [...] and [!...] match one character from (or outside) a set
//   - \ escapes the next character
//
// All patterns are compiled into one anchored alternation.
type Ignore struct {
	re *regexp.Regexp
}

// NewIgnore compiles the given patterns. Empty patterns are skipped; an empty
// list yields a filter that matches nothing.
func NewIgnore(patterns []string) (*Ignore, error) {
	alternatives := make([]string, 0, len(patterns))

	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}

		expr, err := globExpr(pattern)
		if err != nil {
			return nil, fmt.Errorf("ignore pattern %q: %w", pattern, err)
		}

		alternatives = append(alternatives, expr)
	}

	if len(alternatives) == 0 {
		return &Ignore{}, nil
	}

	re, err := regexp.Compile(`(?s)^(?:` + strings.Join(alternatives, "|") + `)$`)
	if err != nil {
		return nil, fmt.Errorf("compiling ignore patterns: %w", err)
	}

	return &Ignore{re: re}, nil
}

// Match reports whether name matches any pattern.
func (i *Ignore) Match(name string) bool {
	return i != nil && i.re != nil && i.re.MatchString(name)
}

// globExpr translates one glob into an unanchored regular expression.
func globExpr(glob string) (string, error) {
	var b strings.Builder

	for rest := glob; rest != ""; {
		switch rest[0] {
		case '*':
			b.WriteString(`.*`)

			rest = rest[1:]
		case '?':
			b.WriteString(`.`)

			rest = rest[1:]
		case '\\':
			if len(rest) < 2 {
				return "", errTrailingEscape
			}

			b.WriteString(regexp.QuoteMeta(rest[1:2]))

			rest = rest[2:]
		case '[':
			class, n, err := globClass(rest)
			if err != nil {
				return "", err
			}

			b.WriteString(class)

			rest = rest[n:]
		default:
			b.WriteString(regexp.QuoteMeta(rest[:1]))

			rest = rest[1:]
		}
	}

	return b.String(), nil
}

// globClass translates the bracket expression at the start of s and returns
// it with the number of bytes consumed. A ] directly after [ or [! is a member.
func globClass(s string) (string, int, error) {
	body := s[1:]

	negate := strings.HasPrefix(body, "!")
	if negate {
		body = body[1:]
	}

	start := 0
	if strings.HasPrefix(body, "]") {
		start = 1
	}

	end := strings.IndexByte(body[start:], ']')
	if end < 0 {
		return "", 0, errUnclosedClass
	}

	end += start

	var b strings.Builder

	b.WriteByte('[')

	if negate {
		b.WriteByte('^')
	}

	for _, c := range []byte(body[:end]) {
		if strings.IndexByte(`\[]^`, c) >= 0 {
			b.WriteByte('\\')
		}

		b.WriteByte(c)
	}

	b.WriteByte(']')

	return b.String(), len(s) - len(body) + end + 1, nil
}
