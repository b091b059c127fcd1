package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/peterh/liner"

	"github.com/andrakis/SchemingSharply/config"
	"github.com/andrakis/SchemingSharply/core"
	"github.com/andrakis/SchemingSharply/eval"
	"github.com/andrakis/SchemingSharply/printer"
	"github.com/andrakis/SchemingSharply/reader"
	. "github.com/andrakis/SchemingSharply/types"
)

const (
	appName = "scheming"
	version = "0.3.0"
)

var helpText = `Type quit, exit or \q to quit.
Use (env-str (env)) to display the environment.
Use (eval expr) or (eval expr (env)) to evaluate a quoted expression.
Use (load "file.scm") to evaluate a file.
`

type session struct {
	cfg *config.Config
	ev  *eval.Evaluator
	env *Value
	out io.Writer
	p   *printer.Printer
}

func newSession(cfg *config.Config, out io.Writer, logger *slog.Logger) *session {
	ev := &eval.Evaluator{Logger: logger, MaxDepth: cfg.MaxDepth}
	root := NewEnv(nil)
	core.AddGlobals(root, ev, out)
	return &session{
		cfg: cfg,
		ev:  ev,
		env: NewEnvRef(root),
		out: out,
		p:   &printer.Printer{Color: cfg.Color},
	}
}

func (s *session) loadPrelude(logger *slog.Logger) error {
	for _, path := range s.cfg.Prelude {
		logger.Debug("loading prelude", slog.String("path", path))
		if _, err := core.LoadFile(s.ev, path, s.env); err != nil {
			return err
		}
	}
	return nil
}

// rep reads, evaluates and prints every form in input.
func (s *session) rep(input string) (string, error) {
	forms, err := reader.ReadAll(input)
	if err != nil {
		return "", err
	}
	out := []string{}
	for _, f := range forms {
		v, err := s.ev.Eval(f, s.env)
		if err != nil {
			return strings.Join(out, "\n"), err
		}
		out = append(out, s.p.Result(v))
	}
	return strings.Join(out, "\n"), nil
}

func main() {
	fs := flag.NewFlagSet(appName, flag.ExitOnError)
	configPath := fs.String("config", "", "path to the YAML config file")
	debug := fs.Bool("debug", false, "log evaluator traces to stderr")
	noColor := fs.Bool("no-color", false, "disable coloured output")
	fs.Usage = usage
	_ = fs.Parse(os.Args[1:])

	cfg, err := config.Load(config.Path(*configPath))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg.ApplyEnv()
	if *debug {
		cfg.Debug = true
	}
	if *noColor {
		cfg.Color = false
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	args := fs.Args()
	cmd := "repl"
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "repl":
		os.Exit(cmdRepl(cfg, logger))
	case "run":
		os.Exit(cmdRun(cfg, logger, args))
	case "eval":
		os.Exit(cmdEval(cfg, logger, args))
	case "version":
		fmt.Println(appName, version)
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", appName, cmd)
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: %s [-config file] [-debug] [-no-color] <command> [args]

Commands:
  repl            start the interactive loop (default)
  run FILE...     evaluate files in one environment
  eval EXPR...    evaluate expressions and print the results
  version         print the version
`, appName)
}

func cmdRun(cfg *config.Config, logger *slog.Logger, files []string) int {
	if len(files) == 0 {
		fmt.Fprintf(os.Stderr, "%s run: no files given\n", appName)
		return 2
	}
	s := newSession(cfg, os.Stdout, logger)
	if err := s.loadPrelude(logger); err != nil {
		fmt.Fprintln(os.Stderr, s.p.Error(err))
		return 1
	}
	for _, path := range files {
		logger.Debug("running", slog.String("path", path))
		if _, err := core.LoadFile(s.ev, path, s.env); err != nil {
			fmt.Fprintln(os.Stderr, s.p.Error(err))
			return 1
		}
	}
	return 0
}

func cmdEval(cfg *config.Config, logger *slog.Logger, exprs []string) int {
	s := newSession(cfg, os.Stdout, logger)
	if err := s.loadPrelude(logger); err != nil {
		fmt.Fprintln(os.Stderr, s.p.Error(err))
		return 1
	}
	out, err := s.rep(strings.Join(exprs, " "))
	if out != "" {
		fmt.Println(out)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, s.p.Error(err))
		return 1
	}
	return 0
}

func cmdRepl(cfg *config.Config, logger *slog.Logger) int {
	fmt.Printf("%s %s\n%s\n", appName, version, helpText)

	s := newSession(cfg, os.Stdout, logger)
	if err := s.loadPrelude(logger); err != nil {
		fmt.Fprintln(os.Stderr, s.p.Error(err))
	}

	histPath := config.ExpandHome(cfg.HistoryFile)
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	var saveOnce sync.Once
	save := func() {
		saveOnce.Do(func() {
			if err := saveHistory(ln, histPath); err != nil {
				logger.Debug("history not saved", slog.String("path", histPath), slog.Any("error", err))
			}
		})
	}
	defer save()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		save()
		ln.Close()
		os.Exit(130)
	}()

	for {
		code, ok := readByParseProbe(ln, cfg.Prompt, cfg.Continuation)
		if !ok {
			fmt.Println()
			return 0
		}

		switch strings.TrimSpace(code) {
		case "":
			continue
		case "quit", "exit", `\q`:
			return 0
		case "help":
			fmt.Print(helpText)
			continue
		}

		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
		out, err := s.rep(code)
		if out != "" {
			fmt.Println(out)
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, s.p.Error(err))
		}
	}
}

// historyWriter is the part of liner.State that saveHistory needs.
type historyWriter interface {
	WriteHistory(w io.Writer) (int, error)
}

func saveHistory(h historyWriter, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := h.WriteHistory(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

type prompter interface {
	Prompt(prompt string) (string, error)
}

// readByParseProbe keeps prompting for continuation lines while the text
// read so far ends in the middle of a form. Only EOF ends the session; any
// other prompt error drops the pending input and keeps the REPL running.
func readByParseProbe(ln prompter, prompt, cont string) (string, bool) {
	var b strings.Builder

	for {
		var line string
		var err error
		if b.Len() == 0 {
			line, err = ln.Prompt(prompt)
		} else {
			line, err = ln.Prompt(cont)
		}
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if _, perr := reader.ReadAll(src); reader.IsIncomplete(perr) {
			continue
		}
		return src, true
	}
}
