// Package module resolves `import` nodes against a set of in-memory Brain
// source files, the Non-goals-scoped stand-in for the original's
// filesystem-backed ModuleCache (original_source/src/module.rs):
// resolution here works over files already loaded onto the driver's
// command line rather than walking and canonicalizing a directory tree.
package module

import (
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/brain-lang/brainc/internal/ast"
)

// File is one parsed input file, keyed by the path the driver loaded it
// under — the same key an Import node's Path names.
type File struct {
	Path    string
	Program *ast.Program
}

// exports is the per-file cache entry module.rs's ModuleExports mirrors:
// the set of names declared with "export" plus every top-level definition
// (exported or not) that a dependent file may need inlined.
type exports struct {
	names       map[string]bool
	definitions []ast.Node
}

// Cache resolves imports across a fixed set of files loaded up front,
// memoizing each file's export set the same way ModuleCache does, and
// detecting cycles via a currently-loading set (module.rs's
// currently_loading).
type Cache struct {
	files   map[string]*ast.Program
	loaded  map[string]*exports
	loading map[string]bool
}

// NewCache indexes files by path for Resolve to look up by import path.
func NewCache(files []File) *Cache {
	m := make(map[string]*ast.Program, len(files))
	for _, f := range files {
		m[f.Path] = f.Program
	}
	return &Cache{
		files:   m,
		loaded:  make(map[string]*exports),
		loading: make(map[string]bool),
	}
}

// Resolve returns entry's Program with every Import node replaced in place
// by all top-level definitions of the imported file (recursively resolved),
// in source order — the same flattening resolve_imports performs before
// semantic analysis ever sees the tree. Unexported definitions are inlined
// too, so exported ones can call them; the names an Import lists are only
// checked for being exported.
func (c *Cache) Resolve(entryPath string) (*ast.Program, error) {
	exp, err := c.load(entryPath)
	if err != nil {
		return nil, err
	}
	return &ast.Program{Items: exp.definitions}, nil
}

func (c *Cache) load(path string) (*exports, error) {
	if exp, ok := c.loaded[path]; ok {
		return exp, nil
	}
	if c.loading[path] {
		return nil, errors.Errorf("circular import detected — %q is already being loaded", path)
	}
	prog, ok := c.files[path]
	if !ok {
		return nil, errors.Errorf("cannot find module %q", path)
	}
	c.loading[path] = true
	defer delete(c.loading, path)

	var definitions []ast.Node
	exportedNames := make(map[string]bool)

	for _, item := range prog.Items {
		imp, ok := item.(*ast.Import)
		if !ok {
			definitions = append(definitions, item)
			continue
		}
		depExports, err := c.load(imp.Path)
		if err != nil {
			return nil, err
		}
		for _, name := range imp.Names {
			if !depExports.names[name] {
				return nil, errors.Errorf(
					"'%s' is not exported from '%s'.\n  Exported symbols: %s\n  Hint: add 'export' before the declaration in '%s'",
					name, imp.Path, formatNames(depExports.names), imp.Path)
			}
		}
		definitions = append(definitions, depExports.definitions...)
	}

	for _, item := range prog.Items {
		switch n := item.(type) {
		case *ast.FunctionDef:
			if n.Exported {
				exportedNames[n.Name] = true
			}
		case *ast.LetBinding:
			if n.Exported {
				exportedNames[n.Name] = true
			}
		}
	}

	exp := &exports{names: exportedNames, definitions: definitions}
	c.loaded[path] = exp
	return exp, nil
}

func formatNames(names map[string]bool) string {
	if len(names) == 0 {
		return "(none — no symbols are exported from this module)"
	}
	sorted := make([]string, 0, len(names))
	for n := range names {
		sorted = append(sorted, n)
	}
	sort.Strings(sorted)
	return strings.Join(sorted, ", ")
}
