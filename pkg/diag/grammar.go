package diag

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// rule describes one captured field of a diagnostic text. The order of
// rules in a grammar is the order of the fields in the driver output.
type rule[T any] struct {
	name   string
	prefix string // regexp matched before the value
	value  string // regexp for the captured value, no groups
	assign func(*T, string) error
}

type grammar[T any] struct {
	kind  string
	rules []rule[T]
	re    *regexp.Regexp
}

// newGrammar compiles the rules in order, followed by tail.
func newGrammar[T any](kind, flags, tail string, rules ...rule[T]) *grammar[T] {
	var b strings.Builder

	if flags != "" {
		b.WriteString("(?" + flags + ")")
	}

	for _, r := range rules {
		b.WriteString(r.prefix)
		b.WriteString("(" + r.value + ")")
	}

	b.WriteString(tail)

	return &grammar[T]{
		kind:  kind,
		rules: rules,
		re:    regexp.MustCompile(b.String()),
	}
}

// Pattern returns the compiled expression, mostly useful in tests and logs.
func (g *grammar[T]) Pattern() string {
	return g.re.String()
}

func (g *grammar[T]) parse(text string) (*T, error) {
	m := g.re.FindStringSubmatch(text)
	if m == nil {
		return nil, &MalformedTextError{Kind: g.kind, Text: text}
	}

	out := new(T)

	for i, r := range g.rules {
		if err := r.assign(out, m[i+1]); err != nil {
			return nil, &MalformedTextError{
				Kind:    g.kind,
				Text:    text,
				Wrapped: fmt.Errorf("field %s: %w", r.name, err),
			}
		}
	}

	return out, nil
}

func intField[T any](get func(*T) *int) func(*T, string) error {
	return func(t *T, s string) error {
		v, err := strconv.Atoi(s)
		if err != nil {
			return err
		}

		*get(t) = v

		return nil
	}
}

func int64Field[T any](get func(*T) *int64) func(*T, string) error {
	return func(t *T, s string) error {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return err
		}

		*get(t) = v

		return nil
	}
}

func stringField[T any](get func(*T) *string) func(*T, string) error {
	return func(t *T, s string) error {
		*get(t) = s
		return nil
	}
}

func byteField[T any](get func(*T) *byte) func(*T, string) error {
	return func(t *T, s string) error {
		if len(s) != 1 {
			return fmt.Errorf("expected one character, got %q", s)
		}

		*get(t) = s[0]

		return nil
	}
}

// flagField stores whether the captured token equals want.
func flagField[T any](want string, get func(*T) *bool) func(*T, string) error {
	return func(t *T, s string) error {
		*get(t) = s == want
		return nil
	}
}

func trimLine(s string) string {
	return strings.TrimRight(s, " \t\r\n")
}
