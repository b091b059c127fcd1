package reader

import (
	"errors"

	. "github.com/andrakis/SchemingSharply/types"
)

// ErrIncomplete is wrapped by errors caused by input that ends too early,
// such as an open list or string. A REPL can keep reading on it.
var ErrIncomplete = errors.New("unexpected end of input")

func IsIncomplete(err error) bool {
	return errors.Is(err, ErrIncomplete)
}

type Reader struct {
	tokens []string
	index  int
}

func (r *Reader) Next() (string, bool) {
	t, ok := r.Peek()
	if !ok {
		return t, false
	}

	r.index++
	return t, true
}

func (r *Reader) Peek() (string, bool) {
	if r.index >= len(r.tokens) {
		return "EOF", false
	}
	return r.tokens[r.index], true
}

// More reports whether unread tokens remain.
func (r *Reader) More() bool {
	return r.index < len(r.tokens)
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

// Tokenize splits source text into tokens. Parentheses are always tokens of
// their own, ";;" comments run to the end of the line, and a token opened by
// a double or single quote runs to the matching unescaped quote.
func Tokenize(input string) ([]string, error) {
	t := make([]string, 0, 16)
	for pos := 0; pos < len(input); {
		c := input[pos]
		switch {
		case isSpace(c):
			pos++

		case c == ';' && pos+1 < len(input) && input[pos+1] == ';':
			for pos < len(input) && input[pos] != '\n' && input[pos] != '\r' {
				pos++
			}

		case c == '(' || c == ')':
			t = append(t, string(c))
			pos++

		case c == '"' || c == '\'':
			wasSlash := false
			end := pos + 1
			for ; end < len(input); end++ {
				if wasSlash {
					wasSlash = false
					continue
				}
				if input[end] == '\\' {
					wasSlash = true
					continue
				}
				if input[end] == c {
					break
				}
			}
			if end >= len(input) {
				return nil, Wrap(RuntimeAssertionFailed, ErrIncomplete, "expected %c, got EOF", c)
			}
			t = append(t, input[pos:end+1])
			pos = end + 1

		default:
			end := pos + 1
			for end < len(input) && !isSpace(input[end]) && input[end] != '(' && input[end] != ')' {
				end++
			}
			t = append(t, input[pos:end])
			pos = end
		}
	}
	return t, nil
}

// Read parses the first expression in input.
func Read(input string) (*Value, error) {
	tokens, err := Tokenize(input)
	if err != nil {
		return nil, err
	}

	return ReadForm(&Reader{tokens, 0})
}

// ReadAll parses every expression in input, in order.
func ReadAll(input string) ([]*Value, error) {
	tokens, err := Tokenize(input)
	if err != nil {
		return nil, err
	}

	r := &Reader{tokens, 0}
	forms := []*Value{}
	for r.More() {
		f, err := ReadForm(r)
		if err != nil {
			return nil, err
		}
		forms = append(forms, f)
	}
	return forms, nil
}

func ReadForm(r *Reader) (*Value, error) {
	t, ok := r.Peek()
	if !ok {
		return nil, Wrap(RuntimeAssertionFailed, ErrIncomplete, "expected form, got EOF")
	}

	switch t {
	case "(":
		return readList(r)
	case ")":
		return nil, Errorf(RuntimeAssertionFailed, "unexpected ')'")
	default:
		r.Next()
		return Atom(t), nil
	}
}

func readList(r *Reader) (*Value, error) {
	r.Next() // Skip the opening (
	ret := []*Value{}
	t, ok := r.Peek()
	for ; t != ")" && ok; t, ok = r.Peek() {
		f, err := ReadForm(r)
		if err != nil {
			return nil, err
		}
		ret = append(ret, f)
	}
	if !ok {
		return nil, Wrap(RuntimeAssertionFailed, ErrIncomplete, "expected ')' but got EOF")
	}

	r.Next() // Skip over the )
	return NewList(ret...), nil
}

// Atom classifies a single non-parenthesis token.
func Atom(t string) *Value {
	switch {
	case isDigit(t[0]) || (len(t) >= 2 && t[0] == '-' && isDigit(t[1])):
		for i := 0; i < len(t); i++ {
			if t[i] == '.' {
				return FloatText(t)
			}
		}
		return IntText(t)
	case len(t) >= 2 && t[0] == '"' && t[len(t)-1] == '"':
		return Str(t[1 : len(t)-1])
	}
	return Sym(t)
}
