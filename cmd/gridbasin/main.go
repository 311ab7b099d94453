package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/wgdzlh/gridbasin/log"
)

type command struct {
	name        string
	description string
	run         func(ctx context.Context, set *flag.FlagSet, args []string) error
}

var subCommands []command

func init() {
	subCommands = []command{
		{"inject", "Overwrite raster cells with values of a point layer.", runInject},
		{"basin", "Export rasters as SIGA basin text files.", runBasin},
		{"help", "Print this message.", func(context.Context, *flag.FlagSet, []string) error { printUsage(); return nil }},
	}
}

func printUsage() {
	fmt.Printf("USAGE:\n    %s [SUBCOMMAND] [SUBCOMMAND FLAGS]\n\n", os.Args[0])
	fmt.Print("SUBCOMMANDS: \n")
	for _, c := range subCommands {
		fmt.Printf("%12s    %s\n", c.name, c.description)
	}
	fmt.Printf("\nUse -h as SUBCOMMAND FLAG to print help for each subcommand.\n\n")
}

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	if len(args) < 2 {
		fmt.Printf("\nERROR: No subcommand was provided.\n\n")
		printUsage()
		return 1
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer log.Sync()

	name := args[1]
	for _, c := range subCommands {
		if c.name != name {
			continue
		}
		set := flag.NewFlagSet(name, flag.ContinueOnError)
		if err := c.run(ctx, set, args[2:]); err != nil {
			if err == flag.ErrHelp {
				return 0
			}
			fmt.Fprintf(os.Stderr, "\nERROR: %v\n", err)
			return 1
		}
		return 0
	}
	fmt.Printf("\nERROR: Subcommand '%s' was not found.\n\n", name)
	printUsage()
	return 1
}
