// Copyright (c) 2026 Herdcount. All rights reserved.

// Command manage is the administrative CLI for a Herdcount deployment.
//
// It reads the same configuration as the API server and talks to the same
// PostgreSQL database through the domain services.
//
//	manage create            apply all migrations
//	manage reset --yes       roll back and re-apply migrations
//	manage counts --limit 20 print the newest count events
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/herdcount/herdcount/internal/platform/constants"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// options are the flags shared by every command.
type options struct {
	yes      bool
	limit    int
	username string
	password string
	devices  int
	events   int
	verbose  bool
}

// errUsage marks errors that should be followed by the help text.
var errUsage = errors.New("usage")

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var opts options

	flagSet := pflag.NewFlagSet("manage", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.BoolVarP(&opts.yes, "yes", "y", false, "confirm destructive commands (drop, reset)")
	flagSet.IntVar(&opts.limit, "limit", 10, "number of count events to print, 0 for all")
	flagSet.StringVar(&opts.username, "username", "admin", "username for testuser")
	flagSet.StringVar(&opts.password, "password", "admin123", "password for testuser")
	flagSet.IntVar(&opts.devices, "devices", 2, "devices created by seed")
	flagSet.IntVar(&opts.events, "events", 24, "count events per device created by seed")
	flagSet.BoolVarP(&opts.verbose, "verbose", "v", false, "log at debug level")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(stdout, flagSet)
			return nil
		}
		return err
	}

	if help, _ := flagSet.GetBool("help"); help {
		printHelp(stdout, flagSet)
		return nil
	}

	positional := flagSet.Args()
	if len(positional) == 0 {
		printHelp(stderr, flagSet)
		return fmt.Errorf("%w: missing command", errUsage)
	}
	if len(positional) > 1 {
		return fmt.Errorf("%w: unexpected argument %q", errUsage, positional[1])
	}

	name := strings.ToLower(positional[0])
	if name == "help" {
		printHelp(stdout, flagSet)
		return nil
	}

	cmd, found := commands[name]
	if !found {
		printHelp(stderr, flagSet)
		return fmt.Errorf("%w: unknown command %q", errUsage, name)
	}

	if cmd.destructive && !opts.yes {
		return fmt.Errorf("%w: %s deletes every table, pass --yes to confirm", errUsage, name)
	}

	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(stderr, &slog.HandlerOptions{Level: level})).
		With(slog.String("app", constants.AppName+"-manage"))

	env, err := newEnvironment(ctx, logger, stdout, opts, cmd.needsPool)
	if err != nil {
		return err
	}
	defer env.close()

	return cmd.run(ctx, env)
}

func printHelp(out io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(out, "Herdcount database management.\n\nUsage:\n  manage [flags] <command>\n\nCommands:\n")

	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "  %-10s %s\n", name, commands[name].summary)
	}
	fmt.Fprintf(out, "  %-10s %s\n", "help", "show this message")

	fmt.Fprintf(out, "\nFlags:\n")
	flagSet.SetOutput(out)
	flagSet.PrintDefaults()
}
