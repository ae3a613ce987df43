// Package interactive provides the interactive command-line interface
// for trace-demo.
package interactive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"github.com/ADT-Software/openssl/pkg/trace"
	"github.com/ADT-Software/openssl/pkg/tracelog"
)

// Options configures a Console.
type Options struct {
	// Recorder backs the record sink. Nil disables it.
	Recorder *tracelog.Recorder
}

// Console handles interactive mode for trace-demo.
type Console struct {
	tr   *trace.Tracer
	opts Options
	rl   *readline.Instance

	stdout io.Writer
	stderr io.Writer
}

// New creates a console reading commands from the terminal. Bind a tracer
// before calling Run.
func New() (*Console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "trace> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	c := newConsole(nil, Options{}, rl.Stdout(), rl.Stderr())
	c.rl = rl
	return c, nil
}

// Bind sets the tracer the commands operate on.
func (c *Console) Bind(tr *trace.Tracer, opts Options) {
	c.tr = tr
	c.opts = opts
}

func newConsole(tr *trace.Tracer, opts Options, stdout, stderr io.Writer) *Console {
	return &Console{tr: tr, opts: opts, stdout: stdout, stderr: stderr}
}

// Stdout returns a writer that coordinates with the readline prompt.
// Use it for log output so lines do not clobber the input.
func (c *Console) Stdout() io.Writer { return c.stdout }

// Stderr returns a writer that coordinates with the readline prompt.
func (c *Console) Stderr() io.Writer { return c.stderr }

// Close releases the terminal.
func (c *Console) Close() error {
	if c.rl == nil {
		return nil
	}
	return c.rl.Close()
}

// Run reads and executes commands until exit, EOF or ctx is done.
func (c *Console) Run(ctx context.Context) error {
	defer c.Close()

	c.printHelp()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := c.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			fmt.Fprintln(c.stdout, "Exiting...")
			return nil
		}

		if c.Execute(line) {
			fmt.Fprintln(c.stdout, "Exiting...")
			return nil
		}
	}
}

// Execute runs one command line and reports whether it asked to exit.
func (c *Console) Execute(line string) (exit bool) {
	parts := strings.Fields(strings.TrimSpace(line))
	if len(parts) == 0 {
		return false
	}
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "?":
		c.printHelp()
	case "list", "ls":
		c.cmdList()
	case "categories", "cats":
		c.cmdCategories()
	case "enable":
		c.cmdEnable(args)
	case "disable":
		c.cmdDisable(args)
	case "prefix":
		c.cmdText(args, c.tr.SetPrefix, "prefix")
	case "suffix":
		c.cmdText(args, c.tr.SetSuffix, "suffix")
	case "trace", "t":
		c.cmdTrace(args)
	case "misuse":
		c.cmdMisuse()
	case "quit", "exit", "q":
		return true
	default:
		fmt.Fprintf(c.stdout, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return false
}

func (c *Console) printHelp() {
	fmt.Fprintln(c.stdout, `
Trace Demo Commands:
  Channels:
    list                      - Show configured channels
    categories                - List all category names
    enable <cat> <sink>       - Attach a sink: stdout, stderr, discard, record
    disable <cat>             - Detach the category's sink
    prefix <cat> [text]       - Set or clear the block prefix
    suffix <cat> [text]       - Set or clear the block suffix

  Tracing:
    trace <cat> <text...>     - Emit one block
    misuse                    - End a block twice and show the misuse count

  General:
    help                      - Show this help
    quit                      - Exit`)
}

func (c *Console) category(args []string, usage string) (trace.Category, bool) {
	if len(args) == 0 {
		fmt.Fprintf(c.stdout, "Usage: %s\n", usage)
		return trace.CategoryInvalid, false
	}
	cat := trace.CategoryByName(args[0])
	if cat == trace.CategoryInvalid {
		fmt.Fprintf(c.stdout, "Unknown category: %s (type 'categories' for the list)\n", args[0])
		return cat, false
	}
	return cat, true
}

func (c *Console) cmdList() {
	anyInfo, _ := c.tr.Channel(trace.CategoryAny)
	configured := 0
	for _, cat := range trace.Categories() {
		info, _ := c.tr.Channel(cat)
		if !info.HasSink && info.Prefix == "" && info.Suffix == "" {
			continue
		}
		configured++
		state := "disabled"
		if info.HasSink {
			state = info.Mode.String()
		}
		fmt.Fprintf(c.stdout, "  %-16s %-9s prefix=%q suffix=%q\n", cat, state, info.Prefix, info.Suffix)
	}
	if configured == 0 {
		fmt.Fprintln(c.stdout, "  (no channels configured)")
	}
	if anyInfo.HasSink {
		fmt.Fprintln(c.stdout, "  other categories fall back to ANY")
	}
	if n := c.tr.Misuses(); n > 0 {
		fmt.Fprintf(c.stdout, "  misuses: %d\n", n)
	}
}

func (c *Console) cmdCategories() {
	for _, cat := range trace.Categories() {
		marker := " "
		if c.tr.Enabled(cat) {
			marker = "*"
		}
		fmt.Fprintf(c.stdout, "  %s %2d %s\n", marker, int(cat), cat)
	}
}

func (c *Console) cmdEnable(args []string) {
	cat, ok := c.category(args, "enable <cat> <stdout|stderr|discard|record>")
	if !ok {
		return
	}
	if len(args) < 2 {
		fmt.Fprintln(c.stdout, "Usage: enable <cat> <stdout|stderr|discard|record>")
		return
	}

	var err error
	switch strings.ToLower(args[1]) {
	case "stdout":
		err = c.tr.SetSink(cat, trace.NewWriterSinkNoClose(c.stdout))
	case "stderr":
		err = c.tr.SetSink(cat, trace.NewWriterSinkNoClose(c.stderr))
	case "discard":
		err = c.tr.SetSink(cat, trace.NewWriterSinkNoClose(io.Discard))
	case "record":
		if c.opts.Recorder == nil {
			fmt.Fprintln(c.stdout, "No recorder configured")
			return
		}
		err = c.opts.Recorder.Attach(c.tr, cat)
	default:
		fmt.Fprintf(c.stdout, "Unknown sink: %s\n", args[1])
		return
	}
	if err != nil {
		fmt.Fprintf(c.stdout, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(c.stdout, "%s -> %s\n", cat, strings.ToLower(args[1]))
}

func (c *Console) cmdDisable(args []string) {
	cat, ok := c.category(args, "disable <cat>")
	if !ok {
		return
	}
	if err := c.tr.SetSink(cat, nil); err != nil {
		fmt.Fprintf(c.stdout, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(c.stdout, "%s disabled\n", cat)
}

func (c *Console) cmdText(args []string, set func(trace.Category, string) error, what string) {
	cat, ok := c.category(args, what+" <cat> [text]")
	if !ok {
		return
	}
	text := strings.Join(args[1:], " ")
	if err := set(cat, text); err != nil {
		fmt.Fprintf(c.stdout, "Error: %v\n", err)
		return
	}
	if text == "" {
		fmt.Fprintf(c.stdout, "%s %s cleared\n", cat, what)
		return
	}
	fmt.Fprintf(c.stdout, "%s %s = %q\n", cat, what, text)
}

func (c *Console) cmdTrace(args []string) {
	cat, ok := c.category(args, "trace <cat> <text...>")
	if !ok {
		return
	}
	text := strings.Join(args[1:], " ")
	if !c.tr.Tracef(cat, "%s\n", text) {
		fmt.Fprintf(c.stdout, "%s is disabled\n", cat)
	}
}

func (c *Console) cmdMisuse() {
	b := c.tr.Begin(trace.CategoryTrace)
	if b == nil {
		fmt.Fprintln(c.stdout, "TRACE is disabled; enable it or ANY first")
		return
	}
	before := c.tr.Misuses()
	b.End()
	b.End()
	fmt.Fprintf(c.stdout, "misuses: %d -> %d\n", before, c.tr.Misuses())
}
