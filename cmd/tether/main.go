package main

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/toyz/tether/internal/cli"
	"github.com/toyz/tether/internal/config"
	"github.com/toyz/tether/internal/utils"
)

// errReported is returned by commands that already printed their failure
var errReported = stderrors.New("error already reported")

type app struct {
	out    io.Writer
	errOut io.Writer
}

func (a *app) diagnostics(verbose, quiet bool) *utils.DiagnosticSystem {
	var diagnostics *utils.DiagnosticSystem
	switch {
	case quiet:
		diagnostics = utils.NewQuietDiagnostics()
	case verbose:
		diagnostics = utils.NewVerboseDiagnostics()
	default:
		diagnostics = utils.NewDiagnosticSystem(utils.DiagnosticInfo)
	}
	diagnostics.SetOutput(a.out, a.errOut)
	return diagnostics
}

func (a *app) report(err error, verbose bool) error {
	reporter := cli.NewDiagnosticReporter(verbose)
	reporter.SetOutput(a.out, a.errOut)
	reporter.ReportError(err)
	return errReported
}

type generateCommand struct {
	app *app `no-flag:"yes"`

	Config    string `short:"c" long:"config" description:"YAML configuration file (default: tether.yaml when present)"`
	EnvFile   string `long:"env-file" description:"dotenv file loaded before reading TETHER_* variables" default:".env"`
	Module    string `long:"module" description:"Module path for generated imports (default: the go.mod module)"`
	MaxRounds int    `long:"max-rounds" description:"Generation rounds to run before giving up (default: 10)"`
	Verbose   bool   `short:"v" long:"verbose" description:"Enable verbose output and detailed error reporting"`
	Quiet     bool   `short:"q" long:"quiet" description:"Only show errors"`

	Args struct {
		Directories []string `positional-arg-name:"directories" description:"Package directories; ./... scans recursively"`
	} `positional-args:"yes"`
}

func (c *generateCommand) Execute(_ []string) error {
	cfg, err := config.Load(c.Config, c.EnvFile)
	if err != nil {
		return c.app.report(err, c.Verbose)
	}
	cfg.Apply(config.Overrides{
		Directories: c.Args.Directories,
		Module:      c.Module,
		MaxRounds:   c.MaxRounds,
		Verbose:     c.Verbose,
		Quiet:       c.Quiet,
	})

	diagnostics := c.app.diagnostics(cfg.Verbose, cfg.Quiet)
	diagnostics.Header("generating clients, proxies and modules")

	summary, err := cli.NewGenerator(diagnostics).Run(*cfg)
	if err != nil {
		return c.app.report(err, cfg.Verbose)
	}

	diagnostics.Summary("Generation complete", map[string]interface{}{
		"Run":               summary.RunID,
		"Module":            summary.Module,
		"Rounds":            summary.Rounds,
		"Packages":          summary.Packages,
		"Components":        summary.Components,
		"Bindings":          summary.Bindings,
		"Clients generated": summary.Clients,
		"Proxies generated": summary.Proxies,
		"Modules":           summary.Modules,
		"Files written":     len(summary.Files),
	})
	if cfg.Verbose && len(summary.Files) > 0 {
		diagnostics.Section("Generated Files")
		for _, file := range summary.Files {
			diagnostics.List("%s", file)
		}
	}
	return nil
}

type cleanCommand struct {
	app *app `no-flag:"yes"`

	Quiet bool `short:"q" long:"quiet" description:"Only show errors"`

	Args struct {
		Directories []string `positional-arg-name:"directories" required:"1" description:"Package directories; ./... scans recursively"`
	} `positional-args:"yes"`
}

func (c *cleanCommand) Execute(_ []string) error {
	diagnostics := c.app.diagnostics(false, c.Quiet)
	removed, err := cli.NewCleaner().CleanGeneratedFiles(c.Args.Directories)
	if err != nil {
		return c.app.report(err, false)
	}
	diagnostics.Success("removed %d generated files", len(removed))
	for _, file := range removed {
		diagnostics.List("%s", file)
	}
	return nil
}

type resolveCommand struct {
	app *app `no-flag:"yes"`

	Symbols string   `long:"symbols" required:"yes" description:"YAML symbol manifest describing the snapshot"`
	Type    string   `long:"type" required:"yes" description:"Requested type as <import path>.<Name>, prefixed with * for a pointer"`
	Tags    []string `long:"tag" description:"Qualifying tag of the request; repeatable"`
}

func (c *resolveCommand) Execute(_ []string) error {
	resolution, err := cli.ResolveFromManifest(c.Symbols, c.Type, c.Tags)
	if err != nil {
		return c.app.report(err, false)
	}
	fmt.Fprintln(c.app.out, resolution)
	return nil
}

func newParser(a *app) *flags.Parser {
	parser := flags.NewNamedParser("tether", flags.HelpFlag|flags.PassDoubleDash)
	parser.LongDescription = "Generates remote-service client implementations, aspect proxies and\n" +
		"per-package modules from //tether:: annotations."

	commands := []struct {
		name, short, long string
		data              interface{}
	}{
		{"generate", "Generate clients, proxies and modules",
			"Runs generation rounds until every component dependency is bound, then writes autogen_module.go per package.",
			&generateCommand{app: a}},
		{"clean", "Remove generated files",
			"Deletes every file starting with the tether generated-code header.",
			&cleanCommand{app: a}},
		{"resolve", "Resolve one binding against a symbol manifest",
			"Prints 'resolved <declaration> via <constructor>', 'deferred' or 'not applicable'.",
			&resolveCommand{app: a}},
	}
	for _, command := range commands {
		if _, err := parser.AddCommand(command.name, command.short, command.long, command.data); err != nil {
			panic(err)
		}
	}
	return parser
}

// run executes the command line and returns the process exit code
func run(args []string, out, errOut io.Writer) int {
	a := &app{out: out, errOut: errOut}
	parser := newParser(a)

	_, err := parser.ParseArgs(args)
	if err == nil {
		return 0
	}

	var flagsErr *flags.Error
	switch {
	case stderrors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp:
		fmt.Fprintln(out, flagsErr.Message)
		return 0
	case stderrors.As(err, &flagsErr):
		fmt.Fprintf(errOut, "Error: %s\n\n", flagsErr.Message)
		parser.WriteHelp(errOut)
		return 2
	case stderrors.Is(err, errReported):
		return 1
	default:
		a.report(err, false)
		return 1
	}
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
