package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/npillmayer/pearley/earley"
	"github.com/npillmayer/pearley/grammar"
	"github.com/npillmayer/pearley/scanner/lexmach"
	"github.com/npillmayer/pearley/semiring"
	"github.com/pterm/pterm"
)

// We provide a small English grammar with an ambiguous attachment of
// prepositional phrases as a default.
var defaultGrammar = []string{
	`S -> NP VP`,
	`0.6 VP -> V NP`,
	`0.4 VP -> VP PP`,
	`0.2 NP -> NP PP`,
	`0.8 NP -> N`,
	`PP -> P NP`,
	`0.4 N -> "she"`,
	`0.3 N -> "fish"`,
	`0.3 N -> "forks"`,
	`V -> "eats"`,
	`P -> "with"`,
}

// Intp is our interpreter object
type Intp struct {
	repl   *readline.Instance
	lexer  *lexmach.LMAdapter
	rules  []ruleSpec
	sr     semiring.Semiring
	mode   earley.ScanMode
	goal   string
	g      *grammar.Grammar // built lazily from rules
	chart  *earley.Chart
	status earley.Status
}

// NewIntp creates an interpreter without any rules.
func NewIntp() (*Intp, error) {
	lexer, err := lexmach.SentenceAdapter()
	if err != nil {
		return nil, err
	}
	return &Intp{
		lexer: lexer,
		sr:    semiring.Probability,
		mode:  earley.Strict,
	}, nil
}

func (intp *Intp) loadDefaultGrammar() {
	for _, line := range defaultGrammar {
		if _, err := intp.Eval("rule " + line); err != nil {
			panic(fmt.Errorf("error in default grammar: %w", err))
		}
	}
}

func (intp *Intp) loadInitFile(filename string) error {
	f, err := os.Open(filename)
	if err != nil {
		tracer().Errorf("Unable to open init file: %s", filename)
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		if _, err := intp.Eval(line); err != nil {
			tracer().Errorf("Error line %d: %v", lineno, err)
		}
	}
	if err := scanner.Err(); err != nil {
		tracer().Errorf("Error while reading init file: " + err.Error())
		return err
	}
	return nil
}

// REPL starts interactive mode.
func (intp *Intp) REPL() {
	for {
		line, err := intp.repl.Readline()
		if err != nil { // io.EOF
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		quit, err := intp.Eval(line)
		if err != nil {
			continue
		}
		if quit {
			break
		}
	}
	println("Good bye!")
}

// Eval executes a command, given on a line by itself. Errors are displayed
// and returned.
func (intp *Intp) Eval(line string) (bool, error) {
	name, args, _ := strings.Cut(strings.TrimSpace(line), " ")
	cmd, ok := commands[name]
	if !ok {
		err := fmt.Errorf("unknown command %q, try 'help'", name)
		pterm.Error.Println(err.Error())
		return false, err
	}
	if name == "quit" {
		return true, nil
	}
	if err := cmd.run(intp, strings.TrimSpace(args)); err != nil {
		pterm.Error.Println(err.Error())
		return false, err
	}
	return false, nil
}

// Grammar returns the grammar for the current rules, creating it if necessary.
func (intp *Intp) Grammar() (*grammar.Grammar, error) {
	if intp.g != nil {
		return intp.g, nil
	}
	if len(intp.rules) == 0 {
		return nil, fmt.Errorf("no rules defined")
	}
	g, err := buildGrammar(intp.rules, grammar.WithSemiring(intp.sr))
	if err != nil {
		return nil, err
	}
	g.Dump() // only visible in debug mode
	intp.g = g
	return g, nil
}

// invalidate drops the grammar and the last parse after a change of settings.
func (intp *Intp) invalidate() {
	intp.g = nil
	intp.chart = nil
}

// Parse tokenizes and parses a sentence.
func (intp *Intp) Parse(input string) (*earley.Chart, earley.Status, error) {
	g, err := intp.Grammar()
	if err != nil {
		return nil, earley.Error, err
	}
	goal := g.Rule(0).Left
	if intp.goal != "" {
		goal = grammar.NT(intp.goal)
	}
	tz, err := intp.lexer.Scanner(input)
	if err != nil {
		return nil, earley.Error, err
	}
	parser := earley.NewParser(g, earley.WithGoal(goal), earley.WithScanMode(intp.mode))
	return parser.ParseTokenizer(tz)
}
