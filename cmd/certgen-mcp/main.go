// Command certgen-mcp is an MCP (Model Context Protocol) server that exposes
// certificate rendering to AI assistants over stdio.
//
// # Installation
//
//	go install github.com/yahya12213/certgen/cmd/certgen-mcp@latest
//
// # Client configuration
//
//	{
//	  "mcpServers": {
//	    "certgen": {
//	      "command": "certgen-mcp",
//	      "env": {"CERTGEN_BASE_URL": "https://backoffice.example.com"}
//	    }
//	  }
//	}
//
// # Available Tools
//
//   - render_certificate: Render one certificate to a PDF
//   - render_batch: Render one certificate per record into a single PDF
//   - preview_certificate: Render the first page as a PNG image
//   - resolve_pages: Convert a template to the multi-page shape
//   - substitute_variables: Replace {variable} tokens in a text
//   - validate_template: Report structural problems of a template
//   - page_geometry: Page size, canvas size and px-to-mm ratios
//   - merge_pdfs: Merge certificate PDFs
//   - split_batch: Split a batch PDF into one file per certificate
//
// # Available Resources
//
//   - certgen://variables : Template variable vocabulary
//   - certgen://formats : Page formats in both orientations
//   - certgen://elements : Element types and default sizes
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/yahya12213/certgen/config"
	"github.com/yahya12213/certgen/doctpl"
	"github.com/yahya12213/certgen/mcp"
)

func main() {
	configPath := flag.String("config", "", "Path to the YAML config file (optional)")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		fatal(err)
	}
	cfg.ApplyEnv()

	// stdout carries the protocol
	log := cfg.Log.Logger(os.Stderr)
	opts, err := cfg.ComposerOptions(log)
	if err != nil {
		fatal(err)
	}

	server := mcp.NewServer()
	server.SetLogger(log)
	mcp.RegisterDefaultTools(server, doctpl.NewComposer(opts...))
	mcp.RegisterDefaultResources(server)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx); err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "certgen-mcp: %v\n", err)
	os.Exit(1)
}
