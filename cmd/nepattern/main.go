// Command nepattern resolves pattern expressions and runs values through
// them from the command line.
//
// Usage:
//
//	# Convert tokens with a builtin pattern
//	nepattern exec int 42 17
//
//	# Combine and negate patterns
//	nepattern exec '!int|bool' yes
//
//	# Register a pattern-set file and list every pattern
//	nepattern --defs patterns.toml list
//
//	# Validate a pattern-set file
//	nepattern check patterns.yaml
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		st := newStyles(os.Stderr, true)
		fmt.Fprintln(os.Stderr, st.failed.Render("error:"), err)
		os.Exit(1)
	}
}
