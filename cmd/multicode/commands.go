package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	multicode "github.com/redvampir/multicode-sub002"
	"github.com/redvampir/multicode-sub002/codegen"
	"github.com/redvampir/multicode-sub002/internal/pipeline"
	"github.com/redvampir/multicode-sub002/mcp"
	"github.com/redvampir/multicode-sub002/parse"
)

// OptionFlags override the generation options of the document. Zero
// values keep the document's setting.
type OptionFlags struct {
	Indent        int    `env:"MULTICODE_INDENT" help:"Spaces per indentation level"`
	Locale        string `env:"MULTICODE_LOCALE" help:"Language of generated comments (en, ru)"`
	Name          string `help:"Graph name shown in the file header"`
	MaxDepth      int    `env:"MULTICODE_MAX_DEPTH" help:"Maximum nesting depth of generated blocks"`
	NoComments    bool   `help:"Omit label comments and the file header"`
	SourceMarkers bool   `env:"MULTICODE_SOURCE_MARKERS" help:"Emit // [node:<id>] markers"`
	NoHeaders     bool   `help:"Omit the #include block"`
	NoMain        bool   `help:"Do not wrap the body in int main()"`
}

// Apply returns opts with the flags applied
func (f OptionFlags) Apply(opts multicode.Options) multicode.Options {
	if f.Indent != 0 {
		opts.IndentWidth = f.Indent
	}
	if f.Locale != "" {
		opts.Locale = multicode.Locale(f.Locale)
	}
	if f.Name != "" {
		opts.GraphName = f.Name
	}
	if f.MaxDepth != 0 {
		opts.MaxDepth = f.MaxDepth
	}
	if f.NoComments {
		opts.IncludeComments = false
	}
	if f.SourceMarkers {
		opts.IncludeSourceMarkers = true
	}
	if f.NoHeaders {
		opts.IncludeHeaders = false
	}
	if f.NoMain {
		opts.WrapInMain = false
	}
	return opts
}

// PackageFlags select node packages and the output cache
type PackageFlags struct {
	Packages []string `short:"p" name:"package" env:"MULTICODE_PACKAGES" type:"path" help:"Node package directory (repeatable)"`
	CacheDir string   `env:"MULTICODE_CACHE_DIR" type:"path" help:"Directory of the generation cache"`
}

// loadDocument parses path and builds the pipeline request for it
func loadDocument(path string, strict bool, pkgs PackageFlags, flags OptionFlags) (pipeline.Request, error) {
	parser := parse.NewParser()
	if strict {
		parser.AddValidator(&parse.FunctionCallValidator{})
	}
	doc, err := parser.ParseFile(path)
	if err != nil {
		return pipeline.Request{}, err
	}
	return pipeline.Request{
		Document: doc,
		BaseDir:  filepath.Dir(path),
		Packages: pkgs.Packages,
		Options:  flags.Apply(doc.GenerationOptions()),
	}, nil
}

// writeCode writes code to path, or to stdout when path is empty or "-"
func writeCode(env *Env, path, code string) error {
	if path == "" || path == "-" {
		_, err := fmt.Fprint(env.Stdout, code)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, []byte(code), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// writeSourceMap writes the source map of a run as a JSON array
func writeSourceMap(env *Env, path string, mapping []codegen.SourceMapping) error {
	if mapping == nil {
		mapping = []codegen.SourceMapping{}
	}
	data, err := json.MarshalIndent(mapping, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding source map: %w", err)
	}
	return writeCode(env, path, string(data)+"\n")
}

// GenerateCmd translates one document.
type GenerateCmd struct {
	Input  string `arg:"" type:"existingfile" help:"Graph document (JSON)"`
	Output    string `short:"o" type:"path" help:"Output file (stdout when omitted)"`
	SourceMap string `name:"source-map" type:"path" help:"Write the line to node id map as JSON"`
	Strict    bool   `help:"Reject calls to undefined functions before generating"`

	PackageFlags `embed:""`
	OptionFlags  `embed:""`
}

// Run executes the generate command.
func (c *GenerateCmd) Run(env *Env) error {
	req, err := loadDocument(c.Input, c.Strict, c.PackageFlags, c.OptionFlags)
	if err != nil {
		return err
	}

	p, release, err := env.pipeline(c.CacheDir)
	if err != nil {
		return err
	}
	defer release()

	res, err := p.Run(req)
	if err != nil {
		return err
	}
	if err := writeCode(env, c.Output, res.Code); err != nil {
		return err
	}
	if c.SourceMap != "" {
		if err := writeSourceMap(env, c.SourceMap, res.SourceMap); err != nil {
			return err
		}
	}

	printDiagnostics(env.Stderr, res.Diagnostics, req.Options.Locale)
	if c.Output != "" && c.Output != "-" {
		printGenerated(env.Stderr, c.Output, res)
	}
	if res.HasErrors() {
		return fmt.Errorf("generation reported %d error(s)", countErrors(res.Diagnostics))
	}
	return nil
}

// ValidateCmd checks documents.
type ValidateCmd struct {
	Inputs []string `arg:"" type:"existingfile" help:"Graph documents (JSON)"`
	Strict bool     `help:"Reject calls to undefined functions"`

	Packages []string `short:"p" name:"package" env:"MULTICODE_PACKAGES" type:"path" help:"Node package directory (repeatable)"`
}

// Run executes the validate command.
func (c *ValidateCmd) Run(env *Env) error {
	p := pipeline.New(nil, env.Logger)

	invalid := 0
	for _, input := range c.Inputs {
		req, err := loadDocument(input, c.Strict, PackageFlags{Packages: c.Packages}, OptionFlags{})
		if err != nil {
			invalid++
			printInvalid(env.Stderr, input, parse.Messages(err))
			continue
		}
		res, err := p.Run(req)
		if err != nil {
			invalid++
			printInvalid(env.Stderr, input, []string{err.Error()})
			continue
		}
		printDiagnostics(env.Stderr, res.Diagnostics, req.Options.Locale)
		if res.HasErrors() {
			invalid++
			continue
		}
		printValid(env.Stdout, input, len(res.Diagnostics))
	}

	if invalid > 0 {
		return fmt.Errorf("%d of %d document(s) invalid", invalid, len(c.Inputs))
	}
	return nil
}

// NodesCmd lists node types.
type NodesCmd struct {
	Category string   `short:"c" help:"Only list this category"`
	JSON     bool     `help:"Print JSON instead of a listing"`
	Packages []string `short:"p" name:"package" env:"MULTICODE_PACKAGES" type:"path" help:"Node package directory (repeatable)"`
}

// Run executes the nodes command.
func (c *NodesCmd) Run(env *Env) error {
	nodes, err := pipeline.New(nil, env.Logger).Nodes(c.Category, c.Packages...)
	if err != nil {
		return err
	}

	if c.JSON {
		data, err := json.MarshalIndent(nodes, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(env.Stdout, string(data))
		return err
	}

	printNodes(env.Stdout, nodes)
	return nil
}

// SchemaCmd prints the document JSON schema.
type SchemaCmd struct {
	Output string `short:"o" type:"path" help:"Output file (stdout when omitted)"`
}

// Run executes the schema command.
func (c *SchemaCmd) Run(env *Env) error {
	schema, err := parse.DocumentSchema()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding schema: %w", err)
	}
	return writeCode(env, c.Output, string(data)+"\n")
}

// MCPCmd starts the MCP server.
type MCPCmd struct {
	PackageFlags `embed:""`
}

// Run executes the mcp command.
func (c *MCPCmd) Run(env *Env) error {
	ctx, stop := signalContext()
	defer stop()

	p, release, err := env.pipeline(c.CacheDir)
	if err != nil {
		return err
	}
	defer release()

	// stdout carries JSON-RPC only; logs go to stderr
	server := mcp.NewServer(p, c.Packages, Version, env.Logger)
	return server.Run(ctx)
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
