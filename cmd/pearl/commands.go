package main

import (
	"fmt"
	"strings"

	"github.com/hokaccha/go-prettyjson"
	"github.com/npillmayer/pearley/earley"
	"github.com/npillmayer/pearley/grammar"
	"github.com/npillmayer/pearley/ptree"
	"github.com/npillmayer/pearley/semiring"
	"github.com/pterm/pterm"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type command struct {
	help string
	run  func(intp *Intp, args string) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"rule":     {"rule [weight] LHS -> symbol …   add a grammar rule", (*Intp).addRule},
		"rules":    {"rules                         list the grammar rules", (*Intp).listRules},
		"clear":    {"clear                         remove all rules", (*Intp).clearRules},
		"semiring": {"semiring probability|log      set the semiring of scores", (*Intp).setSemiring},
		"mode":     {"mode strict|drop|wildcard|panic  set the scan mode", (*Intp).setMode},
		"goal":     {"goal NT                       set the goal category", (*Intp).setGoal},
		"parse":    {"parse sentence                parse a sentence", (*Intp).parse},
		"chart":    {"chart                         show the chart of the last parse", (*Intp).showChart},
		"tree":     {"tree                          show the best parse tree", (*Intp).showTree},
		"trees":    {"trees                         show all parse trees", (*Intp).showTrees},
		"json":     {"json                          show the best parse tree as JSON", (*Intp).showJSON},
		"help":     {"help                          list commands", (*Intp).help},
		"quit":     {"quit                          leave pearl", nil},
	}
}

func (intp *Intp) help(string) error {
	names := maps.Keys(commands)
	slices.Sort(names)
	for _, name := range names {
		pterm.Println("  " + commands[name].help)
	}
	return nil
}

func (intp *Intp) addRule(args string) error {
	r, err := parseRule(args)
	if err != nil {
		return err
	}
	intp.rules = append(intp.rules, r)
	intp.invalidate()
	tracer().Debugf("added rule %v", r)
	return nil
}

func (intp *Intp) listRules(string) error {
	g, err := intp.Grammar()
	if err != nil {
		return err
	}
	for _, r := range g.Rules() {
		pterm.Printf("%3d: %v\n", r.Serial, r)
	}
	names := make([]string, 0, len(g.NonTerminals()))
	for _, A := range g.NonTerminals() {
		names = append(names, A.Name())
	}
	pterm.Info.Println("non-terminals: " + strings.Join(names, " "))
	return nil
}

func (intp *Intp) clearRules(string) error {
	intp.rules = nil
	intp.invalidate()
	return nil
}

func (intp *Intp) setSemiring(args string) error {
	sr, err := semiring.ByName(args)
	if err != nil {
		return err
	}
	intp.sr = sr
	intp.invalidate()
	tracer().Infof("semiring is %s", sr.Name())
	return nil
}

func (intp *Intp) setMode(args string) error {
	mode, err := earley.ParseScanMode(args)
	if err != nil {
		return err
	}
	intp.mode = mode
	intp.chart = nil
	tracer().Infof("scan mode is %s", mode)
	return nil
}

func (intp *Intp) setGoal(args string) error {
	if !isName(args) {
		return fmt.Errorf("not a non-terminal: %q", args)
	}
	intp.goal = args
	intp.chart = nil
	return nil
}

func (intp *Intp) parse(args string) error {
	chart, status, err := intp.Parse(args)
	intp.chart, intp.status = nil, status
	if err != nil {
		return err
	}
	intp.chart = chart
	if status != earley.Accept {
		pterm.Warning.Println("input is not accepted")
		return nil
	}
	p, _ := chart.Probability(intp.goalOf(chart))
	pterm.Success.Printf("accepted, p = %g\n", intp.sr.ToProbability(p))
	return nil
}

func (intp *Intp) goalOf(chart *earley.Chart) grammar.NonTerminal {
	return chart.Seed().Right[0].(grammar.NonTerminal)
}

func (intp *Intp) acceptingChart() (*earley.Chart, error) {
	if intp.chart == nil {
		return nil, fmt.Errorf("no parse, use 'parse' first")
	}
	if intp.status != earley.Accept {
		return nil, fmt.Errorf("last input has not been accepted")
	}
	return intp.chart, nil
}

func (intp *Intp) showChart(string) error {
	if intp.chart == nil {
		return fmt.Errorf("no parse, use 'parse' first")
	}
	pterm.Println(intp.chart.String())
	return nil
}

func (intp *Intp) showTree(string) error {
	chart, err := intp.acceptingChart()
	if err != nil {
		return err
	}
	tree, score, ok := earley.BestParseTree(chart, intp.goalOf(chart))
	if !ok {
		return fmt.Errorf("cannot extract a parse tree")
	}
	pterm.Info.Printf("best tree, p = %g\n", intp.sr.ToProbability(score))
	return renderTree(tree)
}

func (intp *Intp) showTrees(string) error {
	chart, err := intp.acceptingChart()
	if err != nil {
		return err
	}
	iter := earley.AllParseTrees(chart, intp.goalOf(chart))
	for iter.Next() {
		pterm.Info.Printf("tree #%d\n", iter.Count())
		if err := renderTree(iter.Tree()); err != nil {
			return err
		}
	}
	return nil
}

func (intp *Intp) showJSON(string) error {
	chart, err := intp.acceptingChart()
	if err != nil {
		return err
	}
	tree, _, ok := earley.BestParseTree(chart, intp.goalOf(chart))
	if !ok {
		return fmt.Errorf("cannot extract a parse tree")
	}
	out, err := prettyjson.Marshal(tree)
	if err != nil {
		return err
	}
	pterm.Println(string(out))
	return nil
}

// renderTree displays a parse tree on a terminal.
func renderTree(tree *ptree.Node) error {
	root := pterm.NewTreeFromLeveledList(leveledTree(tree))
	return pterm.DefaultTree.WithRoot(root).Render()
}

func leveledTree(tree *ptree.Node) pterm.LeveledList {
	var ll pterm.LeveledList
	tree.Each(func(node *ptree.Node, level int) {
		ll = append(ll, pterm.LeveledListItem{
			Level: level,
			Text:  node.Label(),
		})
	})
	return ll
}
