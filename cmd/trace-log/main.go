// Command trace-log views and analyzes trace capture files.
//
// Capture files are written by the record sink of a trace configuration
// (see pkg/traceconfig) or directly with tracelog.NewFileLogger.
//
// Usage:
//
//	trace-log <command> [flags] <file.tlog>
//
// Commands:
//
//	view     View capture file in human-readable format
//	export   Export capture file to JSONL or CSV
//	filter   Filter capture file and write to new file
//	stats    Show statistics about the capture file
//
// Examples:
//
//	# View all blocks
//	trace-log view trace.tlog
//
//	# View only TLS blocks
//	trace-log view --category tls trace.tlog
//
//	# Export to CSV
//	trace-log export --format csv -o trace.csv trace.tlog
//
//	# Keep only blocks mentioning "handshake"
//	trace-log filter --contains handshake -o hs.tlog trace.tlog
//
//	# Show statistics
//	trace-log stats trace.tlog
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/peterbourgon/ff/v4/ffval"

	"github.com/ADT-Software/openssl/cmd/trace-log/commands"
)

func main() {
	err := exec(context.Background(), os.Stdout, os.Stderr, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var errNoPath = errors.New("capture file path required")

func capturePath(args []string) (string, error) {
	if len(args) < 1 {
		return "", errNoPath
	}
	return args[0], nil
}

func exec(ctx context.Context, stdout, stderr io.Writer, args []string) (err error) {
	rootFlags := ff.NewFlagSet("trace-log")
	root := &ff.Command{
		Name:      "trace-log",
		Usage:     "trace-log <command> [flags] <file.tlog>",
		ShortHelp: "view and analyze trace capture files",
		Flags:     rootFlags,
	}

	// trace-log view
	var (
		viewCategory string
		viewContains string
	)
	viewFlags := ff.NewFlagSet("view").SetParent(rootFlags)
	viewFlags.AddFlag(ff.FlagConfig{LongName: "category", Value: ffval.NewValue(&viewCategory), Usage: "only blocks of this category", Placeholder: "NAME"})
	viewFlags.AddFlag(ff.FlagConfig{LongName: "contains", Value: ffval.NewValue(&viewContains), Usage: "only blocks whose body contains TEXT", Placeholder: "TEXT"})
	root.Subcommands = append(root.Subcommands, &ff.Command{
		Name:      "view",
		Usage:     "trace-log view [flags] <file.tlog>",
		ShortHelp: "view capture file in human-readable format",
		Flags:     viewFlags,
		Exec: func(ctx context.Context, args []string) error {
			path, err := capturePath(args)
			if err != nil {
				return err
			}
			filter := commands.ViewFilter{Contains: viewContains}
			if viewCategory != "" {
				c, err := commands.ParseCategoryFlag(viewCategory)
				if err != nil {
					return err
				}
				filter.Category = &c
			}
			return commands.RunView(path, filter, stdout)
		},
	})

	// trace-log export
	var (
		exportFormat string
		exportOutput string
	)
	exportFlags := ff.NewFlagSet("export").SetParent(rootFlags)
	exportFlags.AddFlag(ff.FlagConfig{LongName: "format", Value: ffval.NewEnum(&exportFormat, "jsonl", "csv"), Usage: "output format: jsonl, csv", Placeholder: "FORMAT"})
	exportFlags.AddFlag(ff.FlagConfig{ShortName: 'o', Value: ffval.NewValue(&exportOutput), Usage: "output file (default: stdout)", Placeholder: "FILE"})
	root.Subcommands = append(root.Subcommands, &ff.Command{
		Name:      "export",
		Usage:     "trace-log export [flags] <file.tlog>",
		ShortHelp: "export capture file to JSONL or CSV",
		Flags:     exportFlags,
		Exec: func(ctx context.Context, args []string) error {
			path, err := capturePath(args)
			if err != nil {
				return err
			}
			return commands.RunExport(path, exportFormat, exportOutput, stdout)
		},
	})

	// trace-log filter
	var filterOpts commands.FilterOptions
	filterFlags := ff.NewFlagSet("filter").SetParent(rootFlags)
	filterFlags.AddFlag(ff.FlagConfig{ShortName: 'o', Value: ffval.NewValue(&filterOpts.Output), Usage: "output file (required)", Placeholder: "FILE"})
	filterFlags.AddFlag(ff.FlagConfig{LongName: "block-id", Value: ffval.NewValue(&filterOpts.BlockID), Usage: "filter by block ID", Placeholder: "ID"})
	filterFlags.AddFlag(ff.FlagConfig{LongName: "category", Value: ffval.NewValue(&filterOpts.Category), Usage: "filter by category", Placeholder: "NAME"})
	filterFlags.AddFlag(ff.FlagConfig{LongName: "contains", Value: ffval.NewValue(&filterOpts.Contains), Usage: "filter by body text", Placeholder: "TEXT"})
	filterFlags.AddFlag(ff.FlagConfig{LongName: "time-start", Value: ffval.NewValue(&filterOpts.TimeStart), Usage: "filter by start time (RFC3339)", Placeholder: "TIME"})
	filterFlags.AddFlag(ff.FlagConfig{LongName: "time-end", Value: ffval.NewValue(&filterOpts.TimeEnd), Usage: "filter by end time (RFC3339)", Placeholder: "TIME"})
	root.Subcommands = append(root.Subcommands, &ff.Command{
		Name:      "filter",
		Usage:     "trace-log filter -o <out.tlog> [flags] <file.tlog>",
		ShortHelp: "filter capture file and write to new file",
		Flags:     filterFlags,
		Exec: func(ctx context.Context, args []string) error {
			path, err := capturePath(args)
			if err != nil {
				return err
			}
			return commands.RunFilter(path, filterOpts, stdout)
		},
	})

	// trace-log stats
	statsFlags := ff.NewFlagSet("stats").SetParent(rootFlags)
	root.Subcommands = append(root.Subcommands, &ff.Command{
		Name:      "stats",
		Usage:     "trace-log stats <file.tlog>",
		ShortHelp: "show statistics about the capture file",
		Flags:     statsFlags,
		Exec: func(ctx context.Context, args []string) error {
			path, err := capturePath(args)
			if err != nil {
				return err
			}
			return commands.RunStats(path, stdout)
		},
	})

	showHelp := true
	defer func() {
		errHelp := errors.Is(err, ff.ErrHelp) || errors.Is(err, ff.ErrNoExec)
		if showHelp || errHelp || errors.Is(err, errNoPath) {
			selected := root.GetSelected()
			if selected == nil {
				selected = root
			}
			fmt.Fprintf(stderr, "\n%s\n", ffhelp.Command(selected))
		}
		if errHelp {
			err = nil
		}
	}()

	if err := root.Parse(args, ff.WithEnvVarPrefix("TRACE_LOG")); err != nil {
		return err
	}

	showHelp = false
	return root.Run(ctx)
}
