package main

import (
	"github.com/kbase/gdcloadfiles/cmd"
)

// gdcloadfiles <manifest>: see cmd/root.go or run with --help for the flags
// and configuration file settings.
func main() {
	cmd.Execute()
}
