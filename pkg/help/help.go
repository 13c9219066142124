// Package help holds the text shown by `risp help`.
package help

import (
	"fmt"
	"sort"
	"strings"
)

// Version is printed in the quick reference header.
const Version = "v0.1"

// QUICKREF is printed by `risp help` with no topic.
var QUICKREF = `risp ` + Version + ` - a minimal expression language

  (+ a b)  (- a b)  (== a b)       arithmetic on unsigned 64-bit ints, equality
  (If cond then else)              0 and false are falsy
  (Define name value)              bind name, yields value
  (Func (params...) body)          function literal
  (Apply f args...)                call f with args

Commands:
  risp run <file|-> [--pretty] [-e <expr>] [--trace <out.jsonl>]
                    [--max-depth N] [--timeout-ms N] [--stats]
  risp check <file> [--pretty]
  risp fmt <file> [--write]
  risp trace <file.jsonl> [--json|--text]
  risp config
  risp help [topic] [--index]

Topics: syntax, types, scoping, budget, config, diagnostics, examples
`

// Topics maps topic names to their help text.
var Topics = map[string]string{
	"syntax": `SYNTAX

A program is a sequence of parenthesised forms. Keywords are case-sensitive.

  integer     0 .. 18446744073709551615
  boolean     true | false
  identifier  [A-Za-z_][A-Za-z0-9_]*
  comment     ; to end of line

  (+ a b) (- a b) (== a b)
  (If cond then else)
  (Define name value)
  (Func (p1 p2 ...) body)
  (Apply callee arg1 arg2 ...)

The value of a program is the value of its last expression.
`,

	"types": `TYPES

  num       unsigned 64-bit integer
  bool      true or false
  function  parameters plus a body expression

+ and - require num operands. Overflow (E_OVERFLOW) and results below zero
(E_UNDERFLOW) are errors. == compares any two values structurally; values
of different types are never equal. Two functions are equal when their
parameters and bodies are identical.

If treats 0 and false as false and every other num or bool as true.
A function condition is E_TYPE.
`,

	"scoping": `SCOPING

There is one environment per run. Define binds into it and later
expressions see the binding.

Apply evaluates the callee and every argument against the caller's
environment. A Define inside an argument is not visible to its siblings
and does not reach the caller.

The body runs in a copy of the caller's environment with the parameters
bound on top. Names the body defines are discarded when the call returns.
Functions therefore see the bindings of the place they are called from,
not of the place they were written.
`,

	"budget": `BUDGET

  maxDepth   nesting limit for Apply (default 10000); exceeding it is
             E_STACK, which is fatal for the session
  timeMs     wall-clock limit (E_BUDGET)
  maxSteps   limit on evaluated expressions (E_BUDGET)

Set them in .risp.yaml under limits:, or with --max-depth and
--timeout-ms on risp run. Cancellation is checked at every Apply and If.
`,

	"config": `CONFIG

risp reads the first file found of:

  ./.risp.yaml
  ~/.risp/config.yaml

and falls back to built-in defaults. Unknown keys are rejected.

  limits:
    maxDepth: 10000
    timeMs: 0
    maxSteps: 0
  output:
    pretty: false
  trace:
    runId: cli

risp config prints the resolved configuration.
`,

	"diagnostics": `DIAGNOSTICS

  E_LEX           invalid character in source
  E_PARSE         malformed form
  E_DUP_PARAM     repeated parameter name in Func
  E_TYPE          operand or condition of the wrong type
  E_UNBOUND       identifier not bound in the environment
  E_NOT_CALLABLE  Apply on a value that is not a function
  E_ARITY         argument count differs from parameter count
  E_UNDERFLOW     subtraction below zero
  E_OVERFLOW      addition above 18446744073709551615
  E_STACK         call depth limit reached
  E_BUDGET        time or step budget exhausted
  E_CANCELED      evaluation canceled by the host
  E_CONFIG        invalid configuration file
  E_IO            file could not be read or written

Exit codes of risp run:
  0 success   1 usage, I/O or config   2 parse or validation
  3 budget or cancellation   4 runtime error   5 stack exhausted
`,

	"examples": `EXAMPLES

  (- (+ 1 2) 2)                                   ; 1

  (Define plus_two (Func (x) (+ x 2)))
  (Apply plus_two 3)                              ; 5

  (Apply (Func (a b) (+ a (+ b 1))) 100 200)      ; 301

  (Define sum
    (Func (n)
      (If (== n 1)
        1
        (+ n (Apply sum (- n 1))))))
  (Apply sum 100)                                 ; 5050
`,
}

// TopicList is the display order of topics.
var TopicList = []string{"syntax", "types", "scoping", "budget", "config", "diagnostics", "examples"}

// MatchTopic resolves a topic by exact name or unique prefix.
func MatchTopic(query string) (string, string, error) {
	if content, ok := Topics[query]; ok {
		return query, content, nil
	}

	var matches []string
	for _, name := range TopicList {
		if strings.HasPrefix(name, query) {
			matches = append(matches, name)
		}
	}
	if query == "" || len(matches) == 0 {
		return "", "", fmt.Errorf("unknown help topic '%s'", query)
	}
	if len(matches) > 1 {
		return "", "", fmt.Errorf("ambiguous help topic '%s' (matches %s)", query, strings.Join(matches, ", "))
	}
	return matches[0], Topics[matches[0]], nil
}

var forms = map[string]string{
	"+":      "(+ a b)            sum of two nums",
	"-":      "(- a b)            difference of two nums",
	"==":     "(== a b)           structural equality",
	"If":     "(If c t e)         conditional",
	"Define": "(Define name v)    bind a name",
	"Func":   "(Func (p...) body) function literal",
	"Apply":  "(Apply f args...)  call a function",
}

// FormsIndex lists every special form, sorted by name.
func FormsIndex() string {
	names := make([]string, 0, len(forms))
	for name := range forms {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("Forms:\n")
	for _, name := range names {
		fmt.Fprintf(&b, "  %s\n", forms[name])
	}
	fmt.Fprintf(&b, "\nTotal: %d forms\n", len(names))
	return b.String()
}
