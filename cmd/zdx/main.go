// Command zdx is the ZDX terminal agent: a multi-provider streaming
// conversational CLI with chat, exec, login/logout, model-catalog, and
// thread-management subcommands.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tallesborges/zdx/cmd/zdx/cmd"
)

// interruptExitCode follows the common shell convention of 128+SIGINT.
const interruptExitCode = 130

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := cmd.NewRootCommand()
	err := root.ExecuteContext(ctx)
	if err == nil {
		return
	}

	if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
		fmt.Fprintln(os.Stderr, "interrupted")
		os.Exit(interruptExitCode)
	}

	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
