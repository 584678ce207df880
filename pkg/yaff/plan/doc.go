// Package plan loads chain definitions from YAML and compiles them into
// chains.
//
// A plan names its steps instead of carrying code; the names are resolved
// against a Registry of action and catcher factories:
//
//	name: doubled-sum
//	initial: [1, 2, 3]
//	steps:
//	  - par: double
//	  - par: double
//	    limit: 1
//	  - seq: sum
//	  - catch: recover
//	    with:
//	      values: [0]
//
// DefaultRegistry holds the built-in names: value, pass, sleep, fail, sum,
// double and count for actions, recover and rethrow for catchers.
package plan
