// Command certgen renders certificate templates from the command line and
// serves the rendering HTTP API.
//
// # Usage
//
//	certgen [-config certgen.yaml] <command> [flags]
//
// # Commands
//
//   - render: render one certificate to a PDF
//   - batch: render one certificate per record into a single PDF
//   - preview: render the first page to an image
//   - validate: report structural problems of a template
//   - merge: merge PDF files
//   - split: split a batch PDF into one file per certificate
//   - serve: run the HTTP and WebSocket API
//
// Settings come from the config file, then CERTGEN_* environment variables.
// A .env file in the working directory is loaded first.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/yahya12213/certgen/config"
)

// errInvalid marks a completed run whose result is negative, such as a
// template that fails validation. It exits 1 without an error message.
var errInvalid = errors.New("invalid")

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		if !errors.Is(err, errInvalid) {
			fmt.Fprintf(os.Stderr, "certgen: %v\n", err)
		}
		os.Exit(1)
	}
}

// app carries what every command needs.
type app struct {
	cfg    *config.Config
	log    *slog.Logger
	stdout io.Writer
	stderr io.Writer
}

type command struct {
	summary string
	run     func(a *app, ctx context.Context, args []string) error
}

var commands = map[string]command{
	"render":   {"render one certificate to a PDF", (*app).render},
	"batch":    {"render one certificate per record into a single PDF", (*app).batch},
	"preview":  {"render the first page to a PNG or JPEG image", (*app).preview},
	"validate": {"report structural problems of a template", (*app).validate},
	"merge":    {"merge PDF files", (*app).merge},
	"split":    {"split a batch PDF into one file per certificate", (*app).split},
	"serve":    {"run the HTTP and WebSocket API", (*app).serve},
}

var commandOrder = []string{"render", "batch", "preview", "validate", "merge", "split", "serve"}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("certgen", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "certgen.yaml", "Path to the YAML config file (optional)")
	fs.Usage = func() { usage(stderr) }
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		usage(stderr)
		return flag.ErrHelp
	}

	name := fs.Arg(0)
	cmd, ok := commands[name]
	if !ok {
		usage(stderr)
		return fmt.Errorf("unknown command %q", name)
	}

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		return err
	}
	cfg.ApplyEnv()

	a := &app{
		cfg:    cfg,
		log:    cfg.Log.Logger(stderr),
		stdout: stdout,
		stderr: stderr,
	}
	return cmd.run(a, ctx, fs.Args()[1:])
}

func usage(w io.Writer) {
	fmt.Fprintf(w, "Usage:\n  certgen [-config certgen.yaml] <command> [flags]\n\nCommands:\n")
	for _, name := range commandOrder {
		fmt.Fprintf(w, "  %-9s %s\n", name, commands[name].summary)
	}
	fmt.Fprintf(w, "\nRun 'certgen <command> -h' for the flags of a command.\n")
}
