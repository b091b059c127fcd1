package types

import (
	"strconv"
	"strings"
)

// formatFloat always leaves a decimal point in the text so that the reader
// classifies it as a Float again.
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".IN") {
		s += ".0"
	}
	return s
}

func (v *Value) IsNumber() bool {
	return v.Tag == Integer || v.Tag == Float
}

// ToInteger parses the stored text. Floats truncate toward zero.
func (v *Value) ToInteger() (int64, error) {
	if v.Tag == Float {
		f, err := v.ToFloat()
		return int64(f), err
	}
	n, err := strconv.ParseInt(v.Text, 10, 64)
	if err != nil {
		return 0, Wrap(InvalidOperation, err, "%s is not an integer", v.Render(true))
	}
	return n, nil
}

func (v *Value) ToFloat() (float64, error) {
	if v.Tag != Float {
		n, err := v.ToInteger()
		return float64(n), err
	}
	f, err := strconv.ParseFloat(v.Text, 64)
	if err != nil {
		return 0, Wrap(InvalidOperation, err, "%s is not a float", v.Render(true))
	}
	return f, nil
}

// Equal compares two values. An Integer and a Float compare numerically; other
// differing basic tags are compared after coercing b to a's tag. Any other tag
// mismatch is unequal.
func Equal(a, b *Value) bool {
	if a == b {
		return true
	}
	if a.IsNumber() && b.IsNumber() && a.Tag != b.Tag {
		c, err := Compare(a, b)
		return err == nil && c == 0
	}
	if a.Tag != b.Tag {
		if !a.Tag.IsBasic() || !b.Tag.IsBasic() {
			return false
		}
		b, _ = b.Coerce(a.Tag)
	}
	switch a.Tag {
	case Integer:
		x, errx := a.ToInteger()
		y, erry := b.ToInteger()
		if errx != nil || erry != nil {
			return a.Text == b.Text
		}
		return x == y
	case Float:
		x, errx := a.ToFloat()
		y, erry := b.ToFloat()
		if errx != nil || erry != nil {
			return a.Text == b.Text
		}
		return x == y
	case Symbol, String:
		return a.Text == b.Text
	case Lambda, Macro:
		return a.Env == b.Env && equalChildren(a.Children, b.Children)
	case List:
		return equalChildren(a.Children, b.Children)
	case Proc, ProcEnv:
		return a.Name != "" && a.Name == b.Name
	case EnvRef:
		return a.Env == b.Env
	}
	return false
}

func equalChildren(xs, ys []*Value) bool {
	if len(xs) != len(ys) {
		return false
	}
	for i := range xs {
		if !Equal(xs[i], ys[i]) {
			return false
		}
	}
	return true
}

// Compare orders two numbers, comparing as floats if either one is a Float.
func Compare(a, b *Value) (int, error) {
	if !a.IsNumber() || !b.IsNumber() {
		return 0, Errorf(InvalidOperation, "cannot compare %s with %s", a.Render(true), b.Render(true))
	}
	if a.Tag == Float || b.Tag == Float {
		x, err := a.ToFloat()
		if err != nil {
			return 0, err
		}
		y, err := b.ToFloat()
		if err != nil {
			return 0, err
		}
		switch {
		case x < y:
			return -1, nil
		case x > y:
			return 1, nil
		}
		return 0, nil
	}
	x, err := a.ToInteger()
	if err != nil {
		return 0, err
	}
	y, err := b.ToInteger()
	if err != nil {
		return 0, err
	}
	switch {
	case x < y:
		return -1, nil
	case x > y:
		return 1, nil
	}
	return 0, nil
}

type arith struct {
	op   string
	ints func(x, y int64) (int64, error)
	flts func(x, y float64) float64
}

func (o arith) apply(a, b *Value) (*Value, error) {
	if !a.IsNumber() {
		return nil, Errorf(TypeNotImplemented, "%s %s %s", a.Render(true), o.op, b.Render(true))
	}
	if !b.IsNumber() {
		return nil, Errorf(InvalidOperation, "%s %s %s", a.Render(true), o.op, b.Render(true))
	}
	if a.Tag == Float || b.Tag == Float {
		x, err := a.ToFloat()
		if err != nil {
			return nil, err
		}
		y, err := b.ToFloat()
		if err != nil {
			return nil, err
		}
		return Float64(o.flts(x, y)), nil
	}
	x, err := a.ToInteger()
	if err != nil {
		return nil, err
	}
	y, err := b.ToInteger()
	if err != nil {
		return nil, err
	}
	n, err := o.ints(x, y)
	if err != nil {
		return nil, err
	}
	return Int(n), nil
}

var (
	addOp = arith{"+",
		func(x, y int64) (int64, error) { return x + y, nil },
		func(x, y float64) float64 { return x + y }}
	subOp = arith{"-",
		func(x, y int64) (int64, error) { return x - y, nil },
		func(x, y float64) float64 { return x - y }}
	mulOp = arith{"*",
		func(x, y int64) (int64, error) { return x * y, nil },
		func(x, y float64) float64 { return x * y }}
	divOp = arith{"/",
		func(x, y int64) (int64, error) {
			if y == 0 {
				return 0, Errorf(InvalidOperation, "%d / 0", x)
			}
			return x / y, nil
		},
		func(x, y float64) float64 { return x / y }}
)

// Add sums numbers and also concatenates strings and lists.
func Add(a, b *Value) (*Value, error) {
	switch {
	case a.Tag == String && b.Tag == String:
		return Str(a.Text + b.Text), nil
	case a.Tag == List && b.Tag == List:
		out := make([]*Value, 0, len(a.Children)+len(b.Children))
		out = append(out, a.Children...)
		return NewList(append(out, b.Children...)...), nil
	}
	return addOp.apply(a, b)
}

func Sub(a, b *Value) (*Value, error) { return subOp.apply(a, b) }

func Mul(a, b *Value) (*Value, error) { return mulOp.apply(a, b) }

// Div truncates for integers; integer division by zero is an error.
func Div(a, b *Value) (*Value, error) { return divOp.apply(a, b) }
