// Command ritmxoid evaluates biorhythm balance, risk and activity windows for
// stored profiles, from the terminal or over HTTP.
//
// Usage:
//
//	ritmxoid serve
//	ritmxoid profile add --name=Ann --birth=1990-01-01T12:00 [--team=Red] [--master]
//	ritmxoid snapshot [profile] [--at=2024-02-01]
//	ritmxoid calendar [profile] --year=2024
//	ritmxoid rank [--at=...]
//	ritmxoid compat <a> <b>
package main

import (
	"fmt"
	"os"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
