package main

import (
	"fmt"
	"io"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"

	"github.com/redvampir/multicode-sub002/internal/cache"
	"github.com/redvampir/multicode-sub002/internal/logging"
	"github.com/redvampir/multicode-sub002/internal/pipeline"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Env carries the writers and logger every command runs with
type Env struct {
	Stdout io.Writer
	Stderr io.Writer
	Logger zerolog.Logger
}

// pipeline opens the cache under cacheDir, when set, and returns a
// pipeline using it together with a function releasing the cache
func (e *Env) pipeline(cacheDir string) (*pipeline.Pipeline, func(), error) {
	if cacheDir == "" {
		return pipeline.New(nil, e.Logger), func() {}, nil
	}
	c, err := cache.Open(cache.Options{Path: cacheDir}, e.Logger)
	if err != nil {
		return nil, nil, err
	}
	release := func() {
		if err := c.Close(); err != nil {
			e.Logger.Warn().Err(err).Msg("closing generation cache")
		}
	}
	return pipeline.New(c, e.Logger), release, nil
}

// CLI is the command line grammar
type CLI struct {
	Version   kong.VersionFlag `help:"Show version information"`
	LogLevel  string           `env:"MULTICODE_LOG_LEVEL" default:"warn" help:"Log level (trace, debug, info, warn, error)"`
	LogFormat string           `env:"MULTICODE_LOG_FORMAT" enum:"console,json" default:"console" help:"Log format (console, json)"`
	NoColor   bool             `env:"MULTICODE_NO_COLOR" help:"Disable colored output"`

	// Commands
	Generate GenerateCmd `cmd:"" help:"Generate C++ from a graph document"`
	Validate ValidateCmd `cmd:"" help:"Check graph documents without writing code"`
	Watch    WatchCmd    `cmd:"" help:"Regenerate whenever the document or its packages change"`
	Nodes    NodesCmd    `cmd:"" help:"List available node types"`
	Schema   SchemaCmd   `cmd:"" help:"Print the JSON schema of graph documents"`
	MCP      MCPCmd      `cmd:"" help:"Start MCP server (stdio transport)"`
}

// NewCLI creates a new CLI instance.
func NewCLI() *CLI {
	return &CLI{}
}

// Execute parses command-line arguments and executes the selected command.
func (c *CLI) Execute(args []string, stdout, stderr io.Writer) error {
	parser, err := kong.New(c,
		kong.Name("multicode"),
		kong.Description("Translate node graph documents into C++17"),
		kong.Writers(stdout, stderr),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version": Version,
		},
	)
	if err != nil {
		return fmt.Errorf("building command line: %w", err)
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	logger, err := logging.New(stderr, logging.Config{
		Level:   c.LogLevel,
		Format:  logging.Format(c.LogFormat),
		NoColor: c.NoColor,
	})
	if err != nil {
		return err
	}
	if c.NoColor {
		disableColor()
	}

	return kongCtx.Run(&Env{Stdout: stdout, Stderr: stderr, Logger: logger})
}
