package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	os.Exit(runMain(os.Args, DefaultEnv(), DefaultDeps()))
}

// runMain dispatches to a subcommand and returns the process exit code.
func runMain(args []string, env *Environment, deps *Dependencies) int {
	if len(args) < 2 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	warnUnknownEnvVars(env.Stderr)

	switch args[1] {
	case "render":
		return runRenderCmd(args[2:], env)
	case "doctor":
		return runDoctorCmd(args[2:], env)
	case "completion":
		if err := runCompletion(args[2:], env); err != nil {
			fmt.Fprintln(env.Stderr, err)
			return exitCodeFor(err)
		}
		return ExitSuccess
	case "version":
		fmt.Fprintf(env.Stdout, "htmlpdf %s\n", Version)
		return ExitSuccess
	case "help", "-h", "--help":
		runHelp(args[2:], &Dependencies{Now: deps.Now, Stdout: env.Stdout, Stderr: env.Stderr})
		return ExitSuccess
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[1])
		printUsage(env.Stderr)
		return ExitUsage
	}
}

// runRenderCmd parses render flags, builds a renderer pool, and runs the
// render pipeline to completion.
func runRenderCmd(args []string, env *Environment) int {
	flags, positional, err := parseRenderFlags(args)
	if err != nil {
		fmt.Fprintln(env.Stderr, err)
		return ExitUsage
	}

	if flags.common.verbose {
		_, _ = maxprocs.Set(maxprocs.Logger(func(format string, a ...interface{}) {
			fmt.Fprintf(env.Stderr, format+"\n", a...)
		}))
	} else {
		_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))
	}

	cfg, err := resolveConfig(flags, env)
	if err != nil {
		fmt.Fprintln(env.Stderr, err)
		return exitCodeFor(err)
	}

	poolSize := resolvePoolSize(flags.workers)
	if flags.common.verbose {
		fmt.Fprintf(env.Stderr, "Pool size: %d\n", poolSize)
	}

	opts := buildRendererOptions(cfg, flags.common.verbose, env)
	pool := NewRendererPool(poolSize, opts...)
	defer pool.Close()

	ctx, stop := notifyContext(context.Background())
	defer stop()

	if err := runRender(ctx, positional, flags, pool, env); err != nil {
		fmt.Fprintln(env.Stderr, err)
		return exitCodeFor(err)
	}
	return ExitSuccess
}
