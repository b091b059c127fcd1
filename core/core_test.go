package core

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/andrakis/SchemingSharply/eval"
	. "github.com/andrakis/SchemingSharply/types"
)

func setup(t *testing.T) (*Value, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	root := NewEnv(nil)
	AddGlobals(root, &eval.Evaluator{}, &out)
	return NewEnvRef(root), &out
}

func evalString(t *testing.T, env *Value, src string) *Value {
	t.Helper()
	v, err := EvalString(&eval.Evaluator{}, src, env)
	if err != nil {
		t.Fatalf("%s: %v", src, err)
	}
	return v
}

func TestPrimitives(t *testing.T) {
	env, _ := setup(t)
	cases := []struct {
		src, want string
	}{
		{"(+ 1 2 3 4)", "10"},
		{"(- 10 1 2)", "7"},
		{"(- 5)", "5"},
		{"(* 2 3.5)", "7.0"},
		{"(/ 100 5 2)", "10"},
		{`(+ "ab" "cd")`, "abcd"},
		{"(< 1 2 3)", TrueText},
		{"(< 1 2 0)", FalseText},
		{"(>= 3 3 1)", TrueText},
		{"(> 1.5 1)", TrueText},
		{"(<= 2 1)", FalseText},
		{"(= 2 2.0)", TrueText},
		{"(== (quote a) \"a\")", TrueText},
		{"(!= 1 2)", TrueText},
		{"(! #f)", TrueText},
		{"(! 0)", FalseText},
		{"(head (list 1 2 3))", "1"},
		{"(head (quote ()))", NilText},
		{"(tail (list 1 2 3))", "(2 3)"},
		{"(tail (quote ()))", "()"},
		{"(cons 1 (list 2 3))", "(1 2 3)"},
		{"(append (list 1) (list 2 3) (quote ()))", "(1 2 3)"},
		{"(append)", "()"},
		{"(list)", "()"},
		{"(length (list 1 2 3))", "3"},
		{"(null? (quote ()))", TrueText},
		{"(null? (list 1))", FalseText},
		{"(nth (list 1 2 3) 1)", "2"},
		{`(expr 1 "two" (quote (x "y")))`, `1 "two" (x "y")`},
		{`(str "a" 1 "b")`, "a1b"},
		{"(type-of 1)", "INTEGER"},
		{"(type-of 1.5)", "FLOAT"},
		{`(type-of "s")`, "STRING"},
		{"(type-of (quote s))", "SYMBOL"},
		{"(type-of (list))", "LIST"},
		{"(type-of (lambda (x) x))", "LAMBDA"},
		{"(type-of +)", "PROC"},
		{"(type-of eval)", "PROCENV"},
		{"(type-of (env))", "ENVPTR"},
		{`(coerce "12" (quote integer))`, "12"},
		{`(type-of (coerce "12" (quote INTEGER)))`, "INTEGER"},
		{"nil", NilText},
		{"#t", TrueText},
		{"#false", FalseText},
	}
	for _, tc := range cases {
		if got := evalString(t, env, tc.src).String(); got != tc.want {
			t.Errorf("%s = %s, want %s", tc.src, got, tc.want)
		}
	}
}

func TestPrimitiveErrors(t *testing.T) {
	env, _ := setup(t)
	cases := []struct {
		src  string
		code Code
	}{
		{"(+)", RuntimeAssertionFailed},
		{"(< 1)", RuntimeAssertionFailed},
		{"(/ 1 0)", InvalidOperation},
		{"(nth (list 1 2 3) 3)", IndexOutOfRange},
		{"(nth (list 1 2 3) -1)", IndexOutOfRange},
		{"(nth 5 0)", IndexOutOfRange},
		{"(head 1)", TypeNotImplemented},
		{"(length \"abc\")", TypeNotImplemented},
		{"(cons 1 2)", TypeNotImplemented},
		{"(append (list 1) 2)", TypeNotImplemented},
		{"(coerce (list) (quote string))", InvalidCoercion},
		{"(coerce 1 (quote nothing))", InvalidCoercion},
		{"(eval 1 2)", TypeNotImplemented},
		{"(env-str 1)", TypeNotImplemented},
		{`(load "/nonexistent/file.scm")`, RuntimeAssertionFailed},
	}
	for _, tc := range cases {
		_, err := EvalString(&eval.Evaluator{}, tc.src, env)
		if !IsCode(err, tc.code) {
			t.Errorf("%s: expected %s, got %v", tc.src, tc.code, err)
		}
	}
}

func TestPrint(t *testing.T) {
	env, out := setup(t)
	v := evalString(t, env, `(print "hello" 1 (list 2 "x"))`)
	if v != Nil {
		t.Errorf("print returned %s", v.Render(true))
	}
	if got, want := out.String(), "hello 1 (2 x)\n"; got != want {
		t.Errorf("print wrote %q, want %q", got, want)
	}
}

func TestEvalAndEnv(t *testing.T) {
	env, _ := setup(t)
	if v := evalString(t, env, "(eval (quote (+ 1 2)))"); v.Text != "3" {
		t.Errorf("eval = %s", v)
	}

	// eval with an explicit environment sees the bindings of that scope.
	evalString(t, env, "(define scope (lambda (x) (env)))")
	evalString(t, env, "(define e (scope 42))")
	if v := evalString(t, env, "(eval (quote x) e)"); v.Text != "42" {
		t.Errorf("eval in captured env = %s", v)
	}
	if _, err := EvalString(&eval.Evaluator{}, "x", env); !IsCode(err, SymbolNotFound) {
		t.Errorf("x leaked into the global scope: %v", err)
	}

	s := evalString(t, env, "(env-str e)")
	if s.Tag != String || s.Text != "#Env{ x: 42}" {
		t.Errorf("env-str = %q", s.Text)
	}
}

func TestLoad(t *testing.T) {
	env, out := setup(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "lib.scm")
	src := `;; helpers
(define square (lambda (n) (* n n)))
(print "loaded")
(square 7)
`
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	v := evalString(t, env, `(load "`+path+`")`)
	if v.Text != "49" {
		t.Errorf("load returned %s", v)
	}
	if v := evalString(t, env, "(square 3)"); v.Text != "9" {
		t.Errorf("definition from file not visible: %s", v)
	}
	if !strings.Contains(out.String(), "loaded") {
		t.Errorf("print output missing: %q", out.String())
	}

	bad := filepath.Join(dir, "bad.scm")
	if err := os.WriteFile(bad, []byte("(define y 1) (+ y"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(&eval.Evaluator{}, bad, env); err == nil {
		t.Errorf("expected an error for an incomplete file")
	}
}

func TestEvalStringReturnsLastResult(t *testing.T) {
	env, _ := setup(t)
	if v := evalString(t, env, ""); v != Nil {
		t.Errorf("empty source = %s", v)
	}
	if v := evalString(t, env, "(define a 2) (define b 3) (* a b)"); v.Text != "6" {
		t.Errorf("last result = %s", v)
	}
}

func TestDepthLimitSpansNestedEval(t *testing.T) {
	ev := &eval.Evaluator{MaxDepth: 200}
	root := NewEnv(nil)
	AddGlobals(root, ev, io.Discard)
	env := NewEnvRef(root)

	if _, err := EvalString(ev, "(define f (lambda (n) (+ 1 (eval (list (quote f) n)))))", env); err != nil {
		t.Fatal(err)
	}
	if _, err := EvalString(ev, "(f 0)", env); !IsCode(err, RuntimeAssertionFailed) {
		t.Errorf("recursion through eval: expected the depth limit, got %v", err)
	}

	path := filepath.Join(t.TempDir(), "self.scm")
	if err := os.WriteFile(path, []byte(`(+ 1 (load "`+path+`"))`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(ev, path, env); !IsCode(err, RuntimeAssertionFailed) {
		t.Errorf("recursion through load: expected the depth limit, got %v", err)
	}

	// The count unwinds after an error, so later evaluations start fresh.
	if v, err := EvalString(ev, "(+ 1 2)", env); err != nil || v.Text != "3" {
		t.Errorf("after the depth error: %v, %v", v, err)
	}
}
