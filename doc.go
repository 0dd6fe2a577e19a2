/*
Package pearley is a toolbox for probabilistic Earley parsing.

Given a weighted context-free grammar and a sequence of input tokens, pearley
builds an Earley chart of partial derivations, scores each of them with
forward and inner probabilities under an abstract semiring, and extracts the
best-scoring (Viterbi) derivation or enumerates all derivations. Package
structure is as follows:

■ semiring: Package semiring defines the scoring algebra (probabilities,
negative log-probabilities) and an arena of deferred score expressions.

■ grammar: Package grammar implements weighted rules, a grammar builder and
the static left-corner and unit-production analysis.

■ earley: Package earley implements the predict–scan–complete engine, the
chart, scan-failure policies and parse tree extraction.

■ ptree: Package ptree provides the parse tree type produced by the parser.

■ scanner: Package scanner provides tokenizers delivering input tokens.

The base package contains data types which are used throughout all the other packages.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>
*/
package pearley
