package main

import (
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// Trace keys of the packages of this module.
var traceKeys = []string{
	"pearley.pearl",
	"pearley.grammar",
	"pearley.earley",
	"pearley.semiring",
	"pearley.scanner",
	"pearley.ptree",
}

type options struct {
	trace    string
	init     string
	semiring string
	mode     string
	goal     string
}

func main() {
	initDisplay()
	gtrace.SyntaxTracer = gologadapter.New()
	if err := rootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "pearl [sentence]",
		Short: "Interactive shell for weighted Earley parsing",
		Long: `pearl reads grammar rules and sentences, parses the sentences with a
probabilistic Earley parser and displays charts and parse trees.
If a sentence is given as an argument, it is parsed with the rules of the
init file (or the default grammar) before the shell starts.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts, strings.TrimSpace(strings.Join(args, " ")))
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&opts.trace, "trace", "t", "Info", "Trace level [Debug|Info|Error]")
	flags.StringVarP(&opts.init, "init", "i", "", "Initial load of rules and commands")
	flags.StringVarP(&opts.semiring, "semiring", "s", "probability", "Semiring of scores [probability|log]")
	flags.StringVarP(&opts.mode, "mode", "m", "strict", "Scan mode [strict|drop|wildcard|panic]")
	flags.StringVarP(&opts.goal, "goal", "g", "", "Goal category (default: left side of first rule)")
	return cmd
}

func run(opts *options, input string) error {
	setTraceLevel(tracing.LevelInfo) // will set the correct level later
	pterm.Info.Println("Welcome to pearl")
	tracer().Infof("Trace level is %s", opts.trace)
	intp, err := NewIntp()
	if err != nil {
		pterm.Error.Println(err.Error())
		return err
	}
	for _, cmdline := range []string{"semiring " + opts.semiring, "mode " + opts.mode} {
		if _, err := intp.Eval(cmdline); err != nil {
			return err
		}
	}
	if opts.init == "" {
		intp.loadDefaultGrammar()
	} else if err := intp.loadInitFile(opts.init); err != nil {
		return err
	}
	if opts.goal != "" {
		if _, err := intp.Eval("goal " + opts.goal); err != nil {
			return err
		}
	}
	setTraceLevel(tracing.TraceLevelFromString(opts.trace)) // now set the user supplied level
	if input != "" {
		tracer().Infof("Input argument is \"%s\"", input)
		if _, err := intp.Eval("parse " + input); err != nil {
			return err
		}
	}
	repl, err := readline.New("pearl> ")
	if err != nil {
		tracer().Errorf(err.Error())
		return err
	}
	defer repl.Close()
	intp.repl = repl
	tracer().Infof("Quit with <ctrl>D") // inform user how to stop the CLI
	intp.REPL()
	return nil
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.EnableDebugMessages()
	pterm.Info.Prefix = pterm.Prefix{
		Text:  "  >>",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  "  Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

func setTraceLevel(level tracing.TraceLevel) {
	for _, key := range traceKeys {
		tracing.Select(key).SetTraceLevel(level)
	}
}
