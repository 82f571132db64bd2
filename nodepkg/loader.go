// Package nodepkg loads node-definition packages written in HCL.
//
// A package is a directory of *.hcl files, each holding node blocks:
//
//	node "Clamp" {
//	  label    = "Clamp"
//	  category = "Math"
//	  includes = ["algorithm"]
//
//	  input "value" { type = "double" }
//	  input "hi" {
//	    type    = "double"
//	    default = 10
//	  }
//	  output "result" { type = "double" }
//
//	  template = "double {{output.result}} = std::clamp({{input.value}}, 0.0, {{input.hi}});"
//	}
package nodepkg

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/rs/zerolog"

	multicode "github.com/redvampir/multicode-sub002"
	"github.com/redvampir/multicode-sub002/codegen"
)

// Extension of package files
const Extension = ".hcl"

// fileRoot decodes all top-level blocks of a package file
type fileRoot struct {
	Nodes  []*nodeBlock `hcl:"node,block"`
	Remain hcl.Body     `hcl:",remain"`
}

type nodeBlock struct {
	Type           string           `hcl:"type,label"`
	Label          string           `hcl:"label,optional"`
	LabelLocalized string           `hcl:"label_localized,optional"`
	Category       string           `hcl:"category,optional"`
	Description    string           `hcl:"description,optional"`
	Includes       []string         `hcl:"includes,optional"`
	Template       string           `hcl:"template,optional"`
	Expression     string           `hcl:"expression,optional"`
	Before         string           `hcl:"before,optional"`
	After          string           `hcl:"after,optional"`
	Inputs         []*portBlock     `hcl:"input,block"`
	Outputs        []*portBlock     `hcl:"output,block"`
	Properties     []*propertyBlock `hcl:"property,block"`
	DeclRange      hcl.Range        `hcl:",def_range"`
}

type portBlock struct {
	ID       string         `hcl:"id,label"`
	Name     string         `hcl:"name,optional"`
	Type     string         `hcl:"type,optional"`
	Required bool           `hcl:"required,optional"`
	Default  hcl.Expression `hcl:"default,optional"`
}

type propertyBlock struct {
	ID      string         `hcl:"id,label"`
	Name    string         `hcl:"name,optional"`
	Type    string         `hcl:"type,optional"`
	Default hcl.Expression `hcl:"default,optional"`
}

// Package is the result of loading one or more package paths. It is a
// codegen.DefinitionLookup.
type Package struct {
	codegen.DefinitionMap
	// Files are the package files that were read, sorted
	Files []string
	// Dirs are the directories the files were found in, for watching
	Dirs []string

	origins map[multicode.NodeType]string
}

// Origin returns the file and line a definition was declared at
func (p *Package) Origin(t multicode.NodeType) (string, bool) {
	origin, ok := p.origins[t]
	return origin, ok
}

// Loader reads node-definition packages
type Loader struct {
	logger zerolog.Logger
}

// NewLoader creates a loader
func NewLoader(logger zerolog.Logger) *Loader {
	return &Loader{logger: logger}
}

// Load reads every *.hcl file under the given paths. Paths may be files
// or directories; missing paths are skipped. A node type declared twice
// is an error.
func (l *Loader) Load(paths ...string) (*Package, error) {
	files, err := findFiles(paths)
	if err != nil {
		return nil, err
	}
	l.logger.Debug().Int("files", len(files)).Strs("paths", paths).Msg("loading node packages")

	pkg := &Package{
		DefinitionMap: codegen.NewDefinitionMap(),
		Files:         files,
		origins:       make(map[multicode.NodeType]string),
	}
	dirs := make(map[string]bool)

	parser := hclparse.NewParser()
	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("parse %s: %w", file, diags)
		}

		var root fileRoot
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &root); diags.HasErrors() {
			return nil, fmt.Errorf("decode %s: %w", file, diags)
		}

		for _, block := range root.Nodes {
			def, err := translateNode(block)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", block.DeclRange, err)
			}
			if prev, dup := pkg.origins[def.Type]; dup {
				return nil, fmt.Errorf("%s: node %q already defined at %s", block.DeclRange, def.Type, prev)
			}
			pkg.Add(def)
			pkg.origins[def.Type] = block.DeclRange.String()
		}
		dirs[filepath.Dir(file)] = true
	}

	for dir := range dirs {
		pkg.Dirs = append(pkg.Dirs, dir)
	}
	sort.Strings(pkg.Dirs)

	l.logger.Info().Int("definitions", len(pkg.DefinitionMap)).Int("files", len(files)).Msg("node packages loaded")
	return pkg, nil
}

// findFiles walks paths and returns the package files found, sorted and
// without duplicates
func findFiles(paths []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("access %s: %w", path, err)
		}

		if !info.IsDir() {
			if filepath.Ext(path) == Extension {
				add(path)
			}
			continue
		}
		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && filepath.Ext(p) == Extension {
				add(p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", path, err)
		}
	}
	sort.Strings(files)
	return files, nil
}
