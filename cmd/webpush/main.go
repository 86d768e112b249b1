// Command webpush generates VAPID keys, sends single notifications and runs
// the subscription intake server with its scheduled dispatcher.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

const usage = `usage: webpush <command> [flags]

commands:
  keygen   generate a VAPID key pair
  send     send one notification to a subscription
  serve    run the intake server and the dispatcher
  token    issue an owner bearer token for the intake API
`

type command func(ctx context.Context, args []string, stdout io.Writer) error

var commands = map[string]command{
	"keygen": runKeygen,
	"send":   runSend,
	"serve":  runServe,
	"token":  runToken,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", args[0], usage)
		return 2
	}
	if err := cmd(ctx, args[1:], stdout); err != nil {
		fmt.Fprintf(stderr, "webpush %s: %v\n", args[0], err)
		return 1
	}
	return 0
}
