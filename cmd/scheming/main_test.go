package main

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/peterh/liner"

	"github.com/andrakis/SchemingSharply/config"
	"github.com/andrakis/SchemingSharply/reader"
	. "github.com/andrakis/SchemingSharply/types"
)

func testSession(t *testing.T, out io.Writer) *session {
	t.Helper()
	cfg := config.Default()
	cfg.Color = false
	return newSession(cfg, out, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRep(t *testing.T) {
	var out bytes.Buffer
	s := testSession(t, &out)

	got, err := s.rep("(define x 3) (+ x x)")
	if err != nil {
		t.Fatalf("rep: %v", err)
	}
	if got != "3\n6" {
		t.Errorf("rep = %q", got)
	}

	got, err = s.rep(`(print "hi") (undefined) (+ 1 1)`)
	if !IsCode(err, SymbolNotFound) {
		t.Errorf("expected SymbolNotFound, got %v", err)
	}
	if got != NilText {
		t.Errorf("results before the error = %q", got)
	}
	if out.String() != "hi\n" {
		t.Errorf("print output = %q", out.String())
	}

	if _, err := s.rep("(+ 1"); !reader.IsIncomplete(err) {
		t.Errorf("expected incomplete input, got %v", err)
	}
}

func TestDepthLimitFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Color = false
	cfg.MaxDepth = 50
	s := newSession(cfg, io.Discard, slog.New(slog.NewTextHandler(io.Discard, nil)))
	_, err := s.rep("(define f (lambda (n) (if (= n 0) 0 (+ 1 (f (- n 1)))))) (f 1000)")
	if !IsCode(err, RuntimeAssertionFailed) {
		t.Errorf("expected the depth limit, got %v", err)
	}
}

func TestLoadPrelude(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prelude.scm")
	if err := os.WriteFile(path, []byte("(define inc (lambda (n) (+ n 1)))"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := testSession(t, io.Discard)
	s.cfg.Prelude = []string{path}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if err := s.loadPrelude(logger); err != nil {
		t.Fatalf("loadPrelude: %v", err)
	}
	got, err := s.rep("(inc 41)")
	if err != nil || got != "42" {
		t.Errorf("(inc 41) = %q, %v", got, err)
	}
}

type scriptedPrompter struct {
	lines   []string
	errs    []error
	prompts []string
}

func (p *scriptedPrompter) Prompt(prompt string) (string, error) {
	p.prompts = append(p.prompts, prompt)
	line, err := p.lines[0], p.errs[0]
	p.lines, p.errs = p.lines[1:], p.errs[1:]
	return line, err
}

func TestReadByParseProbe(t *testing.T) {
	p := &scriptedPrompter{
		lines: []string{"(+ 1", "2)"},
		errs:  []error{nil, nil},
	}
	src, ok := readByParseProbe(p, "> ", ".. ")
	if !ok || src != "(+ 1\n2)" {
		t.Errorf("got %q, %v", src, ok)
	}
	if want := []string{"> ", ".. "}; !reflect.DeepEqual(p.prompts, want) {
		t.Errorf("prompts = %q, want %q", p.prompts, want)
	}
}

func TestReadByParseProbeErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		ok   bool
	}{
		{"eof ends the session", io.EOF, false},
		{"abort keeps going", liner.ErrPromptAborted, true},
		{"other errors keep going", errors.New("terminal glitch"), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := &scriptedPrompter{lines: []string{"(list", ""}, errs: []error{nil, tc.err}}
			src, ok := readByParseProbe(p, "> ", ".. ")
			if ok != tc.ok || src != "" {
				t.Errorf("got %q, %v, want \"\", %v", src, ok, tc.ok)
			}
		})
	}
}

type fakeHistory []string

func (h fakeHistory) WriteHistory(w io.Writer) (int, error) {
	n := 0
	for _, line := range h {
		m, err := io.WriteString(w, line+"\n")
		n += m
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

func TestSaveHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history")
	if err := saveHistory(fakeHistory{"(+ 1 2)", "(list 1)"}, path); err != nil {
		t.Fatalf("saveHistory: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "(+ 1 2)\n(list 1)\n" {
		t.Errorf("history file = %q", data)
	}

	if err := saveHistory(fakeHistory{"x"}, filepath.Join(path, "not-a-dir", "h")); err == nil {
		t.Errorf("expected an error for an unwritable path")
	}
}
