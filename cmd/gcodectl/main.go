// Command gcodectl is the reference CLI harness (spec.md §6, SPEC_FULL.md
// §4.9/§4.13): run a .gcode file once, or watch a directory of them.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gcode-engine/engine/cli"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	harness := cli.NewHarness()
	if err := harness.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
