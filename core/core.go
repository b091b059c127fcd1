package core

import (
	"fmt"
	"io"
	"os"

	"github.com/andrakis/SchemingSharply/eval"
	"github.com/andrakis/SchemingSharply/reader"
	. "github.com/andrakis/SchemingSharply/types"
)

var ns = map[string]NativeFunc{
	"+": fold("+", Add),
	"-": fold("-", Sub),
	"*": fold("*", Mul),
	"/": fold("/", Div),

	// Comparisons
	"<":  compare("<", func(c int) bool { return c < 0 }),
	"<=": compare("<=", func(c int) bool { return c <= 0 }),
	">":  compare(">", func(c int) bool { return c > 0 }),
	">=": compare(">=", func(c int) bool { return c >= 0 }),
	"=":  equal,
	"==": equal,
	"!=": notEqual,
	"!":  not,

	// Lists
	"head":   head,
	"tail":   tail,
	"cons":   cons,
	"append": appendList,
	"list":   mkList,
	"length": length,
	"null?":  nullQ,
	"nth":    nth,

	// Text
	"expr": expr,
	"str":  fStr,

	// Types
	"type-of": typeOf,
	"coerce":  coerce,
}

var constants = map[string]*Value{
	"nil":     Nil,
	"#f":      False,
	"#t":      True,
	NilText:   Nil,
	FalseText: False,
	TrueText:  True,
}

// AddGlobals registers the primitive library into env. print writes to out;
// eval and load evaluate with ev.
func AddGlobals(env *Env, ev *eval.Evaluator, out io.Writer) {
	for name, v := range constants {
		env.Define(name, v)
	}
	for name, fn := range ns {
		env.Define(name, NewProc(name, fn))
	}

	env.Define("print", NewProc("print", func(args []*Value) (*Value, error) {
		fmt.Fprintln(out, Join(args, " ", false))
		return Nil, nil
	}))

	l := &envLib{ev}
	env.Define("eval", NewProcEnv("eval", l.eval))
	env.Define("env", NewProcEnv("env", l.env))
	env.Define("env-str", NewProc("env-str", envStr))
	env.Define("load", NewProcEnv("load", l.load))
}

func arity(name string, args []*Value, n int) error {
	if len(args) < n {
		return Errorf(RuntimeAssertionFailed, "%s expects at least %d arguments, got %d", name, n, len(args))
	}
	return nil
}

// Arithmetic
func fold(name string, op func(a, b *Value) (*Value, error)) NativeFunc {
	return func(args []*Value) (*Value, error) {
		if err := arity(name, args, 1); err != nil {
			return nil, err
		}
		acc := args[0]
		for _, a := range args[1:] {
			var err error
			if acc, err = op(acc, a); err != nil {
				return nil, err
			}
		}
		return acc, nil
	}
}

// Comparisons chain: every argument after the first is compared against the
// first.
func compare(name string, holds func(int) bool) NativeFunc {
	return func(args []*Value) (*Value, error) {
		if err := arity(name, args, 2); err != nil {
			return nil, err
		}
		for _, a := range args[1:] {
			c, err := Compare(args[0], a)
			if err != nil {
				return nil, err
			}
			if !holds(c) {
				return False, nil
			}
		}
		return True, nil
	}
}

func equal(args []*Value) (*Value, error) {
	if err := arity("=", args, 2); err != nil {
		return nil, err
	}
	for _, a := range args[1:] {
		if !Equal(args[0], a) {
			return False, nil
		}
	}
	return True, nil
}

func notEqual(args []*Value) (*Value, error) {
	eq, err := equal(args)
	if err != nil {
		return nil, err
	}
	return Bool(eq.IsFalse()), nil
}

func not(args []*Value) (*Value, error) {
	if err := arity("!", args, 1); err != nil {
		return nil, err
	}
	return Bool(args[0].IsFalse()), nil
}

// Lists
func list1(name string, args []*Value) (*Value, error) {
	if err := arity(name, args, 1); err != nil {
		return nil, err
	}
	if !args[0].IsList() {
		return nil, Errorf(TypeNotImplemented, "%s expects a list, got %s", name, args[0].Render(true))
	}
	return args[0], nil
}

func head(args []*Value) (*Value, error) {
	l, err := list1("head", args)
	if err != nil {
		return nil, err
	}
	return l.Head(), nil
}

func tail(args []*Value) (*Value, error) {
	l, err := list1("tail", args)
	if err != nil {
		return nil, err
	}
	return l.Tail(), nil
}

func cons(args []*Value) (*Value, error) {
	if err := arity("cons", args, 2); err != nil {
		return nil, err
	}
	if args[1].Tag != List {
		return nil, Errorf(TypeNotImplemented, "second argument to cons must be a list, got %s", args[1].Render(true))
	}
	out := make([]*Value, 0, len(args[1].Children)+1)
	out = append(out, args[0])
	return NewList(append(out, args[1].Children...)...), nil
}

func appendList(args []*Value) (*Value, error) {
	out := []*Value{}
	for _, a := range args {
		if a.Tag != List {
			return nil, Errorf(TypeNotImplemented, "append expects lists, got %s", a.Render(true))
		}
		out = append(out, a.Children...)
	}
	return NewList(out...), nil
}

func mkList(args []*Value) (*Value, error) {
	out := make([]*Value, len(args))
	copy(out, args)
	return NewList(out...), nil
}

func length(args []*Value) (*Value, error) {
	l, err := list1("length", args)
	if err != nil {
		return nil, err
	}
	return Int(int64(l.Len())), nil
}

func nullQ(args []*Value) (*Value, error) {
	if err := arity("null?", args, 1); err != nil {
		return nil, err
	}
	return Bool(args[0].Len() == 0), nil
}

func nth(args []*Value) (*Value, error) {
	if err := arity("nth", args, 2); err != nil {
		return nil, err
	}
	i, err := args[1].ToInteger()
	if err != nil {
		return nil, err
	}
	return args[0].Index(int(i))
}

// Text
func expr(args []*Value) (*Value, error) {
	return Str(Join(args, " ", true)), nil
}

func fStr(args []*Value) (*Value, error) {
	return Str(Join(args, "", false)), nil
}

// Types
func typeOf(args []*Value) (*Value, error) {
	if err := arity("type-of", args, 1); err != nil {
		return nil, err
	}
	return Sym(args[0].Tag.String()), nil
}

func coerce(args []*Value) (*Value, error) {
	if err := arity("coerce", args, 2); err != nil {
		return nil, err
	}
	to, ok := ParseTag(args[1].Text)
	if !ok {
		return nil, Errorf(InvalidCoercion, "unknown type %s", args[1].Render(true))
	}
	return args[0].Coerce(to)
}

// Environment access
type envLib struct {
	ev *eval.Evaluator
}

func envArg(name string, args []*Value, i int, caller *Value) (*Value, error) {
	if len(args) <= i {
		return caller, nil
	}
	if args[i].Tag != EnvRef {
		return nil, Errorf(TypeNotImplemented, "%s expects an environment, got %s", name, args[i].Render(true))
	}
	return args[i], nil
}

// (eval exp [env])
func (l *envLib) eval(args []*Value, caller *Value) (*Value, error) {
	if err := arity("eval", args, 1); err != nil {
		return nil, err
	}
	env, err := envArg("eval", args, 1, caller)
	if err != nil {
		return nil, err
	}
	return l.ev.Eval(args[0], env)
}

func (l *envLib) env(args []*Value, caller *Value) (*Value, error) {
	return caller, nil
}

func envStr(args []*Value) (*Value, error) {
	if err := arity("env-str", args, 1); err != nil {
		return nil, err
	}
	if args[0].Tag != EnvRef {
		return nil, Errorf(TypeNotImplemented, "env-str expects an environment, got %s", args[0].Render(true))
	}
	return Str(args[0].Env.String()), nil
}

// (load path [env]) evaluates every form in the file and returns the last
// result.
func (l *envLib) load(args []*Value, caller *Value) (*Value, error) {
	if err := arity("load", args, 1); err != nil {
		return nil, err
	}
	env, err := envArg("load", args, 1, caller)
	if err != nil {
		return nil, err
	}
	return LoadFile(l.ev, args[0].Text, env)
}

// LoadFile reads path and evaluates its forms in env.
func LoadFile(ev *eval.Evaluator, path string, env *Value) (*Value, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, Wrap(RuntimeAssertionFailed, err, "load %s: %v", path, err)
	}
	return EvalString(ev, string(src), env)
}

// EvalString evaluates every form in src and returns the last result.
func EvalString(ev *eval.Evaluator, src string, env *Value) (*Value, error) {
	forms, err := reader.ReadAll(src)
	if err != nil {
		return nil, err
	}
	result := Nil
	for _, f := range forms {
		if result, err = ev.Eval(f, env); err != nil {
			return nil, err
		}
	}
	return result, nil
}
