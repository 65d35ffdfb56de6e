// The main package for the climex executable.
package main

import (
	"github.com/climex-dev/climex/cmd"
)

// main is the entry point of the application.
// It defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
