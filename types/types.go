package types

import (
	"strconv"
	"strings"
)

type Tag int

const (
	Symbol Tag = iota
	String
	Integer
	Float
	List
	Lambda
	Macro
	Proc
	ProcEnv
	EnvRef
)

func (t Tag) String() string {
	switch t {
	case Symbol:
		return "SYMBOL"
	case String:
		return "STRING"
	case Integer:
		return "INTEGER"
	case Float:
		return "FLOAT"
	case List:
		return "LIST"
	case Lambda:
		return "LAMBDA"
	case Macro:
		return "MACRO"
	case Proc:
		return "PROC"
	case ProcEnv:
		return "PROCENV"
	case EnvRef:
		return "ENVPTR"
	}
	return "Unknown typeid: " + strconv.Itoa(int(t))
}

// ParseTag is the inverse of Tag.String, case-insensitive.
func ParseTag(name string) (Tag, bool) {
	for t := Symbol; t <= EnvRef; t++ {
		if strings.EqualFold(t.String(), name) {
			return t, true
		}
	}
	return 0, false
}

// IsBasic reports whether values of the tag are stored purely as text.
func (t Tag) IsBasic() bool {
	switch t {
	case Symbol, String, Integer, Float:
		return true
	}
	return false
}

type NativeFunc func(args []*Value) (*Value, error)

// NativeEnvFunc receives the calling environment as an EnvRef value.
type NativeEnvFunc func(args []*Value, env *Value) (*Value, error)

// Value is the tagged cell every runtime datum is represented by.
//
// Text holds the payload of the basic tags, including the canonical text of
// numbers. Children is only used by List, Lambda and Macro; a Lambda or Macro
// keeps the whole (lambda params body) form, with Env the captured environment.
type Value struct {
	Tag      Tag
	Text     string
	Children []*Value
	Proc     NativeFunc
	ProcEnv  NativeEnvFunc
	Name     string
	Env      *Env
}

const (
	NilText   = "#nil"
	TrueText  = "#true"
	FalseText = "#false"
)

// Shared sentinels. Nothing in the runtime modifies them.
var (
	Nil   = &Value{Tag: Symbol, Text: NilText}
	True  = &Value{Tag: Symbol, Text: TrueText}
	False = &Value{Tag: Symbol, Text: FalseText}
)

func Sym(name string) *Value { return &Value{Tag: Symbol, Text: name} }

func Str(s string) *Value { return &Value{Tag: String, Text: s} }

func Int(n int64) *Value { return &Value{Tag: Integer, Text: strconv.FormatInt(n, 10)} }

func IntText(text string) *Value { return &Value{Tag: Integer, Text: text} }

func Float64(f float64) *Value { return &Value{Tag: Float, Text: formatFloat(f)} }

func FloatText(text string) *Value { return &Value{Tag: Float, Text: text} }

func NewList(children ...*Value) *Value {
	if children == nil {
		children = []*Value{}
	}
	return &Value{Tag: List, Children: children}
}

func NewProc(name string, fn NativeFunc) *Value {
	return &Value{Tag: Proc, Name: name, Proc: fn}
}

func NewProcEnv(name string, fn NativeEnvFunc) *Value {
	return &Value{Tag: ProcEnv, Name: name, ProcEnv: fn}
}

func NewEnvRef(env *Env) *Value { return &Value{Tag: EnvRef, Env: env} }

func Bool(b bool) *Value {
	if b {
		return True
	}
	return False
}

// Copy returns a shallow copy; the child slice is shared.
func (v *Value) Copy() *Value {
	c := *v
	return &c
}

func (v *Value) IsList() bool {
	return v.Tag == List || v.Tag == Lambda || v.Tag == Macro
}

// Empty is true for anything that is not a List with at least one child.
func (v *Value) Empty() bool {
	return v.Tag != List || len(v.Children) == 0
}

func (v *Value) Len() int {
	if !v.IsList() {
		return 0
	}
	return len(v.Children)
}

// Head returns a fresh copy of Nil for an empty list or a non-list.
func (v *Value) Head() *Value {
	if v.Empty() {
		return Nil.Copy()
	}
	return v.Children[0]
}

func (v *Value) Tail() *Value {
	if v.Empty() {
		return NewList()
	}
	rest := make([]*Value, len(v.Children)-1)
	copy(rest, v.Children[1:])
	return NewList(rest...)
}

// Index fails rather than handing back a sentinel for anything it cannot
// address.
func (v *Value) Index(i int) (*Value, error) {
	if !v.IsList() {
		return nil, Errorf(IndexOutOfRange, "%d of non-list %s", i, v.Render(true))
	}
	if i < 0 || i >= len(v.Children) {
		return nil, Errorf(IndexOutOfRange, "%d of %s", i, v.Render(true))
	}
	return v.Children[i], nil
}

// IsFalse is the boolean test used by if and the logical primitives.
func (v *Value) IsFalse() bool {
	return Equal(v, False) || Equal(v, Nil)
}

// Coerce reinterprets the value under another tag. Basic tags share a text
// representation so conversion between them never fails.
func (v *Value) Coerce(to Tag) (*Value, error) {
	if v.Tag == to {
		return v, nil
	}
	if v.Tag.IsBasic() && to.IsBasic() {
		c := v.Copy()
		c.Tag = to
		return c, nil
	}
	return nil, Errorf(InvalidCoercion, "conversion not implemented from %s to %s", v.Tag, to)
}

func (v *Value) String() string { return v.Render(false) }

// Render converts the value to text. With expr set, strings are quoted and
// closures are written out as the form that created them.
func (v *Value) Render(expr bool) string {
	switch v.Tag {
	case Symbol, Integer, Float:
		return v.Text
	case String:
		if expr {
			return `"` + v.Text + `"`
		}
		return v.Text
	case List:
		return "(" + Join(v.Children, " ", expr) + ")"
	case Lambda, Macro:
		if !expr {
			if v.Tag == Lambda {
				return "<Lambda>"
			}
			return "<Macro>"
		}
		word := "lambda"
		if v.Tag == Macro {
			word = "macro"
		}
		var params, body string
		if len(v.Children) > 1 {
			params = v.Children[1].Render(true)
		}
		if len(v.Children) > 2 {
			body = v.Children[2].Render(true)
		}
		return "(" + word + " " + params + " " + body + ")"
	case Proc:
		if expr {
			return "(proc " + v.Name + ")"
		}
		return "<Proc>"
	case ProcEnv:
		if expr {
			return "(procenv " + v.Name + ")"
		}
		return "<ProcEnv>"
	case EnvRef:
		if expr {
			return "(envptr)"
		}
		return "<EnvPtr>"
	}
	return "<" + v.Tag.String() + ">"
}

// Join renders each value and separates them with sep.
func Join(vals []*Value, sep string, expr bool) string {
	parts := make([]string, len(vals))
	for i, c := range vals {
		parts[i] = c.Render(expr)
	}
	return strings.Join(parts, sep)
}
