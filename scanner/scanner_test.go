package scanner

import (
	"fmt"
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

var inputStrings = []string{
	"1",
	"1+12",
	"Hello #World",
	`x="mystring" // commented `,
	"1,22,333",
}

var tokenCounts = []int{1, 3, 3, 3, 5}

func TestScan1(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "pearley.scanner")
	defer teardown()
	//
	for i, input := range inputStrings {
		t.Logf("------+-----------------+--------")
		reader := strings.NewReader(input)
		name := fmt.Sprintf("input #%d", i)
		scanner := GoTokenizer(name, reader)
		token := scanner.NextToken()
		count := 0
		for token.TokType() != EOF {
			t.Logf(" %4d | %15s | @%5d", token.TokType(), token.Lexeme(), token.Span().From())
			token = scanner.NextToken()
			count++
		}
		if count != tokenCounts[i] {
			t.Errorf("Expected token count for #%d to be %d, is %d", i, tokenCounts[i], count)
		}
	}
	t.Logf("------+-----------------+--------")
}

func TestWords(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "pearley.scanner")
	defer teardown()
	//
	tokens := Words("  the cat\tsees  a dog ")
	if len(tokens) != 5 {
		t.Fatalf("Expected 5 words, have %d", len(tokens))
	}
	if tokens[1].Lexeme() != "cat" || tokens[1].Span().From() != 6 || tokens[1].Span().To() != 9 {
		t.Errorf("Expected second word to be 'cat' at (6…9), is %q at %v", tokens[1].Lexeme(), tokens[1].Span())
	}
	if tokens[4].TokType() != Word {
		t.Errorf("Expected word tokens to be of type Word")
	}
	tz := NewWordTokenizer("a b")
	if all := Drain(tz); len(all) != 2 {
		t.Errorf("Expected tokenizer to produce 2 words, produced %d", len(all))
	}
	if tok := tz.NextToken(); tok.TokType() != EOF {
		t.Errorf("Expected exhausted tokenizer to return EOF")
	}
}
