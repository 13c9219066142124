// Package cli implements the risp command-line interface.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/thomasrohde/risp/pkg/config"
	"github.com/thomasrohde/risp/pkg/diagnostics"
	"github.com/thomasrohde/risp/pkg/evaluator"
	"github.com/thomasrohde/risp/pkg/formatter"
	"github.com/thomasrohde/risp/pkg/help"
	"github.com/thomasrohde/risp/pkg/runtime"
)

// Exit codes.
const (
	ExitOK      = 0
	ExitUsage   = 1
	ExitInvalid = 2
	ExitBudget  = 3
	ExitRuntime = 4
	ExitStack   = 5
)

// App carries the streams and project directory a command runs against.
type App struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	// Dir is searched for .risp.yaml.
	Dir string
}

// Main dispatches args (without the program name) and returns the exit code.
func (a *App) Main(ctx context.Context, args []string) int {
	if len(args) < 1 {
		fmt.Fprintln(a.Stderr, "usage: risp <command> [options]")
		fmt.Fprintln(a.Stderr, "commands: run, check, fmt, trace, config, help")
		return ExitUsage
	}

	switch args[0] {
	case "run":
		return a.cmdRun(ctx, args[1:])
	case "check":
		return a.cmdCheck(args[1:])
	case "fmt":
		return a.cmdFmt(args[1:])
	case "trace":
		return a.cmdTrace(args[1:])
	case "config":
		return a.cmdConfig()
	case "help", "--help", "-h":
		return a.cmdHelp(args[1:])
	default:
		fmt.Fprintf(a.Stderr, "Unknown command: %s\n", args[0])
		return ExitUsage
	}
}

func (a *App) cmdRun(ctx context.Context, args []string) int {
	const usage = "usage: risp run <file|-> [--pretty] [-e <expr>] [--trace <out.jsonl>] [--max-depth N] [--timeout-ms N] [--stats]"

	var file, expr, tracePath string
	pretty, prettySet, stats, exprSet := false, false, false, false
	var maxDepth, timeoutMs *int64

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--pretty":
			pretty, prettySet = true, true
		case "--stats":
			stats = true
		case "-e", "--trace", "--max-depth", "--timeout-ms":
			if i+1 >= len(args) {
				fmt.Fprintf(a.Stderr, "missing value for %s\n%s\n", args[i], usage)
				return ExitUsage
			}
			flag, val := args[i], args[i+1]
			i++
			switch flag {
			case "-e":
				expr, exprSet = val, true
			case "--trace":
				tracePath = val
			default:
				n, err := strconv.ParseInt(val, 10, 64)
				if err != nil || n <= 0 {
					fmt.Fprintf(a.Stderr, "%s expects a positive integer, got %q\n", flag, val)
					return ExitUsage
				}
				if flag == "--max-depth" {
					maxDepth = &n
				} else {
					timeoutMs = &n
				}
			}
		default:
			if args[i] == "-" || !strings.HasPrefix(args[i], "-") {
				file = args[i]
			}
		}
	}

	if file == "" && !exprSet {
		fmt.Fprintln(a.Stderr, usage)
		return ExitUsage
	}

	cfg, code := a.loadConfig(pretty)
	if code != ExitOK {
		return code
	}
	if !prettySet {
		pretty = cfg.Output.Pretty
	}
	if maxDepth != nil {
		cfg.Limits.MaxDepth = *maxDepth
	}
	if timeoutMs != nil {
		cfg.Limits.TimeMs = *timeoutMs
	}

	var source, filename string
	if exprSet {
		source, filename = expr, "<expr>"
	} else {
		var exitCode int
		source, filename, exitCode = a.readSource(file, pretty)
		if exitCode != ExitOK {
			return exitCode
		}
	}

	opts := []runtime.Option{runtime.WithConfig(cfg)}
	var trace *traceWriter
	if tracePath != "" {
		f, err := os.Create(tracePath)
		if err != nil {
			a.printDiag(diagnostics.MakeDiag(diagnostics.EIO, fmt.Sprintf("cannot write trace file: %s", tracePath), nil, ""), pretty)
			return ExitUsage
		}
		defer f.Close()
		trace = newTraceWriter(f)
		opts = append(opts, runtime.WithTrace(trace.write))
	}

	rt := runtime.New(opts...)
	result, execErr := rt.Run(ctx, source, filename)

	if trace != nil && trace.err != nil {
		a.printDiag(diagnostics.MakeDiag(diagnostics.EIO,
			fmt.Sprintf("cannot write trace file: %s: %s", tracePath, trace.err), nil, ""), pretty)
		return ExitUsage
	}

	if stats && result != nil {
		if b, err := evaluator.StatsToJSON(result.Stats); err == nil {
			fmt.Fprintln(a.Stderr, string(b))
		}
	}

	if execErr != nil {
		var diagErr *runtime.DiagnosticError
		if errors.As(execErr, &diagErr) {
			fmt.Fprintln(a.Stderr, diagnostics.FormatDiagnostics(diagErr.Diagnostics, pretty))
			return ExitInvalid
		}
		var rtErr *evaluator.RuntimeError
		if errors.As(execErr, &rtErr) {
			hint := ""
			if rtErr.Code == diagnostics.EStack {
				hint = "raise limits.maxDepth or pass --max-depth"
			}
			a.printDiag(diagnostics.MakeDiag(rtErr.Code, rtErr.Message, rtErr.Span, hint), pretty)
			return ExitCodeForDiag(rtErr.Code)
		}
		fmt.Fprintln(a.Stderr, execErr.Error())
		return ExitRuntime
	}

	if result == nil || result.Value == nil {
		return ExitOK
	}
	if pretty {
		fmt.Fprintln(a.Stdout, evaluator.Inspect(result.Value))
		return ExitOK
	}
	jsonBytes, err := evaluator.ObjectToJSON(result.Value)
	if err != nil {
		fmt.Fprintf(a.Stderr, "error serializing result: %s\n", err)
		return ExitRuntime
	}
	fmt.Fprintln(a.Stdout, string(jsonBytes))
	return ExitOK
}

func (a *App) cmdCheck(args []string) int {
	var file string
	pretty := false

	for _, arg := range args {
		switch arg {
		case "--pretty":
			pretty = true
		default:
			if arg == "-" || !strings.HasPrefix(arg, "-") {
				file = arg
			}
		}
	}

	if file == "" {
		fmt.Fprintln(a.Stderr, "usage: risp check <file> [--pretty]")
		return ExitUsage
	}

	source, filename, exitCode := a.readSource(file, pretty)
	if exitCode != ExitOK {
		return exitCode
	}

	rt := runtime.New()
	diags := rt.Check(source, filename)
	if len(diags) > 0 {
		fmt.Fprintln(a.Stderr, diagnostics.FormatDiagnostics(diags, pretty))
		return ExitInvalid
	}

	if pretty {
		fmt.Fprintln(a.Stdout, "No errors found.")
	} else {
		fmt.Fprintln(a.Stdout, "[]")
	}
	return ExitOK
}

func (a *App) cmdFmt(args []string) int {
	var file string
	write := false

	for _, arg := range args {
		switch arg {
		case "--write":
			write = true
		default:
			if !strings.HasPrefix(arg, "-") {
				file = arg
			}
		}
	}

	if file == "" {
		fmt.Fprintln(a.Stderr, "usage: risp fmt <file> [--write]")
		return ExitUsage
	}

	source, filename, exitCode := a.readSource(file, false)
	if exitCode != ExitOK {
		return exitCode
	}

	rt := runtime.New()
	formatted, fmtErr := rt.Format(source, filename)
	if fmtErr != nil {
		var diagErr *runtime.DiagnosticError
		if errors.As(fmtErr, &diagErr) {
			fmt.Fprintln(a.Stderr, diagnostics.FormatDiagnostics(diagErr.Diagnostics, false))
			return ExitInvalid
		}
		fmt.Fprintln(a.Stderr, fmtErr.Error())
		return ExitInvalid
	}

	if formatter.HasComments(source) {
		fmt.Fprintln(a.Stderr, "warning: comments are not preserved by the formatter")
	}

	if write {
		if err := os.WriteFile(file, []byte(formatted), 0o644); err != nil {
			a.printDiag(diagnostics.MakeDiag(diagnostics.EIO, fmt.Sprintf("cannot write file: %s", file), nil, ""), false)
			return ExitUsage
		}
		return ExitOK
	}
	fmt.Fprint(a.Stdout, formatted)
	return ExitOK
}

func (a *App) cmdTrace(args []string) int {
	var file string
	textOutput := false

	for _, arg := range args {
		switch arg {
		case "--json":
			textOutput = false
		case "--text":
			textOutput = true
		default:
			if !strings.HasPrefix(arg, "-") {
				file = arg
			}
		}
	}

	if file == "" {
		fmt.Fprintln(a.Stderr, "usage: risp trace <file.jsonl> [--json|--text]")
		return ExitUsage
	}

	f, err := os.Open(file)
	if err != nil {
		a.printDiag(diagnostics.MakeDiag(diagnostics.EIO, fmt.Sprintf("cannot read file: %s", file), nil, ""), false)
		return ExitUsage
	}
	defer f.Close()

	summary := ComputeTraceSummary(f)
	if textOutput {
		PrintTraceSummaryText(a.Stdout, summary)
		return ExitOK
	}
	b, _ := json.Marshal(summary)
	fmt.Fprintln(a.Stdout, string(b))
	return ExitOK
}

func (a *App) cmdConfig() int {
	cfg, code := a.loadConfig(false)
	if code != ExitOK {
		return code
	}
	source := cfg.Path
	if source == "" {
		source = "defaults"
	}
	data, err := cfg.Marshal()
	if err != nil {
		a.printDiag(diagnostics.MakeDiag(diagnostics.EConfig, err.Error(), nil, ""), false)
		return ExitUsage
	}
	fmt.Fprintf(a.Stdout, "# source: %s\n%s", source, data)
	return ExitOK
}

func (a *App) cmdHelp(args []string) int {
	showIndex := false
	topic := ""
	for _, arg := range args {
		if arg == "--index" {
			showIndex = true
		} else if !strings.HasPrefix(arg, "-") {
			topic = arg
		}
	}

	if showIndex {
		fmt.Fprint(a.Stdout, help.FormsIndex())
		return ExitOK
	}

	if topic == "" {
		fmt.Fprint(a.Stdout, help.QUICKREF)
		return ExitOK
	}

	_, content, err := help.MatchTopic(topic)
	if err != nil {
		fmt.Fprintf(a.Stderr, "%s\nAvailable topics: %s\n", err, strings.Join(help.TopicList, ", "))
		return ExitUsage
	}
	fmt.Fprint(a.Stdout, content)
	return ExitOK
}

func (a *App) loadConfig(pretty bool) (*config.Config, int) {
	cfg, err := config.Load(a.Dir)
	if err != nil {
		a.printDiag(diagnostics.MakeDiag(diagnostics.EConfig, err.Error(), nil, "fix or remove the config file"), pretty)
		return nil, ExitUsage
	}
	return cfg, ExitOK
}

func (a *App) readSource(file string, pretty bool) (string, string, int) {
	if file == "-" {
		data, err := io.ReadAll(a.Stdin)
		if err != nil {
			a.printDiag(diagnostics.MakeDiag(diagnostics.EIO, fmt.Sprintf("error reading stdin: %s", err), nil, ""), pretty)
			return "", "", ExitUsage
		}
		return string(data), "<stdin>", ExitOK
	}

	source, err := os.ReadFile(file)
	if err != nil {
		a.printDiag(diagnostics.MakeDiag(diagnostics.EIO, fmt.Sprintf("cannot read file: %s", file), nil, ""), pretty)
		return "", "", ExitUsage
	}
	return string(source), file, ExitOK
}

func (a *App) printDiag(d diagnostics.Diagnostic, pretty bool) {
	fmt.Fprintln(a.Stderr, diagnostics.FormatDiagnostics([]diagnostics.Diagnostic{d}, pretty))
}

// ExitCodeForDiag maps a runtime error code to the process exit code.
func ExitCodeForDiag(code string) int {
	switch code {
	case diagnostics.EBudget, diagnostics.ECanceled:
		return ExitBudget
	case diagnostics.EStack:
		return ExitStack
	default:
		return ExitRuntime
	}
}
