/*
Package main provides an interactive command line tool (pearl) for
experiments with weighted grammars. Users enter grammar rules, choose a
semiring and a scan mode, and parse sentences. pearl prints the chart, the
probability of the input, the best parse tree and all parse trees.

pearl serves as a sandbox for grammar development: rules may be loaded from
an init file and changed interactively, and every parse can be inspected
down to the scores of single chart states.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>
*/
package main

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'pearley.pearl'
func tracer() tracing.Trace {
	return tracing.Select("pearley.pearl")
}
