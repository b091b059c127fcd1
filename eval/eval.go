// Package eval evaluates values produced by the reader against a chain of
// environments.
//
// Special forms, the branches of if, the last form of begin, closure bodies
// and macro expansions are all evaluated by looping rather than recursing, so
// self tail calls run in constant Go stack. Everything else recurses.
package eval

import (
	"context"
	"log/slog"

	. "github.com/andrakis/SchemingSharply/types"
)

type Evaluator struct {
	// Logger receives debug traces of tail calls and macro expansions.
	Logger *slog.Logger
	// MaxDepth bounds non-tail recursion. Zero means unbounded.
	MaxDepth int

	// depth is shared by nested Eval calls made from natives such as eval
	// and load, so recursion through them still counts against MaxDepth.
	depth int
}

// Eval evaluates x in env, which must be an EnvRef, with no depth limit.
func Eval(x, env *Value) (*Value, error) {
	return (&Evaluator{}).Eval(x, env)
}

func (ev *Evaluator) Eval(x, env *Value) (*Value, error) {
	if env == nil || env.Tag != EnvRef || env.Env == nil {
		return nil, Errorf(RuntimeAssertionFailed, "environment expected")
	}
	return ev.eval(x, env.Env)
}

func (ev *Evaluator) tracing() bool {
	return ev.Logger != nil && ev.Logger.Enabled(context.Background(), slog.LevelDebug)
}

func (ev *Evaluator) eval(x *Value, env *Env) (*Value, error) {
	ev.depth++
	defer func() { ev.depth-- }()
	if ev.MaxDepth > 0 && ev.depth > ev.MaxDepth {
		return nil, Errorf(RuntimeAssertionFailed, "recursion depth %d exceeded", ev.MaxDepth)
	}

	for {
		switch x.Tag {
		case Symbol:
			return env.Lookup(x.Text)
		case String, Integer, Float:
			return x, nil
		case List:
		default:
			return x, nil
		}

		list := x.Children
		if len(list) == 0 {
			return Nil, nil
		}

		if head := list[0]; head.Tag == Symbol {
			switch head.Text {
			case "quote": // (quote exp)
				return x.Index(1)

			case "if": // (if test conseq [alt])
				if len(list) < 3 {
					return nil, Errorf(RuntimeAssertionFailed, "if needs a test and a consequent: %s", x.Render(true))
				}
				test, err := ev.eval(list[1], env)
				if err != nil {
					return nil, err
				}
				if !test.IsFalse() {
					x = list[2]
				} else if len(list) > 3 {
					x = list[3]
				} else {
					return Nil, nil
				}
				continue

			case "set!": // (set! var exp), var must already exist
				name, err := bindingName(x)
				if err != nil {
					return nil, err
				}
				val, err := ev.eval(list[2], env)
				if err != nil {
					return nil, err
				}
				return env.Set(name, val)

			case "define": // (define var exp)
				name, err := bindingName(x)
				if err != nil {
					return nil, err
				}
				val, err := ev.eval(list[2], env)
				if err != nil {
					return nil, err
				}
				return env.Define(name, val), nil

			case "lambda", "macro": // (lambda (var*) exp)
				closure := x.Copy()
				closure.Tag = Lambda
				if head.Text == "macro" {
					closure.Tag = Macro
				}
				closure.Env = env
				return closure, nil

			case "begin": // (begin exp*)
				if len(list) == 1 {
					return Nil, nil
				}
				for _, form := range list[1 : len(list)-1] {
					if _, err := ev.eval(form, env); err != nil {
						return nil, err
					}
				}
				x = list[len(list)-1]
				continue
			}
		}

		// (proc exp*)
		proc, err := ev.eval(list[0], env)
		if err != nil {
			return nil, err
		}

		var args []*Value
		if proc.Tag == Macro {
			args = list[1:]
		} else {
			args = make([]*Value, 0, len(list)-1)
			for _, operand := range list[1:] {
				arg, err := ev.eval(operand, env)
				if err != nil {
					return nil, err
				}
				args = append(args, arg)
			}
		}

		switch proc.Tag {
		case Lambda:
			body, callEnv, err := callHelper(proc, args)
			if err != nil {
				return nil, err
			}
			if ev.tracing() {
				ev.Logger.Debug("tail call",
					slog.String("head", list[0].Render(true)),
					slog.Int("argument-count", len(args)),
					slog.Int("depth", ev.depth))
			}
			x, env = body, callEnv
			continue // TCO

		case Macro:
			body, macroEnv, err := callHelper(proc, args)
			if err != nil {
				return nil, err
			}
			expansion, err := ev.eval(body, macroEnv)
			if err != nil {
				return nil, err
			}
			if ev.tracing() {
				ev.Logger.Debug("macro expansion",
					slog.String("head", list[0].Render(true)),
					slog.String("expansion", expansion.Render(true)))
			}
			x = expansion
			continue

		case Proc:
			if proc.Proc == nil {
				return nil, ValueError(InvalidProcedure, proc)
			}
			return proc.Proc(args)

		case ProcEnv:
			if proc.ProcEnv == nil {
				return nil, ValueError(InvalidProcedure, proc)
			}
			return proc.ProcEnv(args, NewEnvRef(env))
		}

		return nil, ValueError(InvalidProcedure, proc)
	}
}

// bindingName checks the shape of (define var exp) and (set! var exp).
func bindingName(x *Value) (string, error) {
	if len(x.Children) < 3 {
		return "", Errorf(RuntimeAssertionFailed, "%s needs a name and a value: %s",
			x.Children[0].Text, x.Render(true))
	}
	name := x.Children[1]
	if name.Tag != Symbol && name.Tag != String {
		return "", Errorf(RuntimeAssertionFailed, "%s expects a symbol, got %s",
			x.Children[0].Text, name.Render(true))
	}
	return name.Text, nil
}

// callHelper builds the scope a closure body runs in: the formal parameters
// bound to args, enclosed by the environment the closure captured.
func callHelper(f *Value, args []*Value) (*Value, *Env, error) {
	params, err := f.Index(1)
	if err != nil {
		return nil, nil, err
	}
	body, err := f.Index(2)
	if err != nil {
		return nil, nil, err
	}

	newEnv := NewEnv(f.Env)
	if err := newEnv.Bind(params, args); err != nil {
		return nil, nil, err
	}
	return body, newEnv, nil
}
