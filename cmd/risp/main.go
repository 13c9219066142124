// Command risp is the risp CLI entry point.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/thomasrohde/risp/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	dir, _ := os.Getwd()
	app := &cli.App{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Dir:    dir,
	}
	code := app.Main(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}
