// Package arch_test enforces foundry's package structure: the import order
// between internal packages, where heavy dependencies may appear, exported
// API documentation, package-level state and source size.
package arch_test

import (
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"testing"
)

const internalPrefix = "github.com/papapumpkin/foundry/internal/"

// sourceFile is one parsed Go file of an internal package.
type sourceFile struct {
	rel   string // path from the repo root, for messages
	file  *ast.File
	lines int
	test  bool
}

// pkgSource is every Go file in one internal package directory.
type pkgSource struct {
	name  string
	files []sourceFile
}

// prod returns the package's non-test files.
func (p pkgSource) prod() []sourceFile {
	var out []sourceFile
	for _, f := range p.files {
		if !f.test {
			out = append(out, f)
		}
	}
	return out
}

// imports returns the sorted, de-duplicated import paths of the package's
// non-test files.
func (p pkgSource) imports() []string {
	seen := map[string]bool{}
	for _, f := range p.prod() {
		for _, spec := range f.file.Imports {
			path, err := strconv.Unquote(spec.Path.Value)
			if err == nil {
				seen[path] = true
			}
		}
	}
	out := make([]string, 0, len(seen))
	for path := range seen {
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}

// source parses every package under internal/, arch_test excluded.
// Generated files are skipped.
func source(t *testing.T) (*token.FileSet, []pkgSource) {
	t.Helper()
	_, self, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot locate arch_test sources")
	}
	internal := filepath.Dir(filepath.Dir(self))

	entries, err := os.ReadDir(internal)
	if err != nil {
		t.Fatal(err)
	}
	fset := token.NewFileSet()
	var pkgs []pkgSource
	for _, e := range entries {
		if !e.IsDir() || e.Name() == "arch_test" {
			continue
		}
		paths, err := filepath.Glob(filepath.Join(internal, e.Name(), "*.go"))
		if err != nil {
			t.Fatal(err)
		}
		p := pkgSource{name: e.Name()}
		for _, path := range paths {
			f, err := parser.ParseFile(fset, path, nil, parser.ParseComments)
			if err != nil {
				t.Fatalf("parsing %s: %v", path, err)
			}
			if ast.IsGenerated(f) {
				continue
			}
			p.files = append(p.files, sourceFile{
				rel:   "internal/" + e.Name() + "/" + filepath.Base(path),
				file:  f,
				lines: fset.File(f.Pos()).LineCount(),
				test:  strings.HasSuffix(path, "_test.go"),
			})
		}
		if len(p.prod()) > 0 {
			pkgs = append(pkgs, p)
		}
	}
	if len(pkgs) == 0 {
		t.Fatal("no internal packages found")
	}
	return fset, pkgs
}

// receiverName returns the base type name of a method receiver.
func receiverName(recv *ast.FieldList) string {
	if recv == nil || len(recv.List) == 0 {
		return ""
	}
	expr := recv.List[0].Type
	if star, ok := expr.(*ast.StarExpr); ok {
		expr = star.X
	}
	switch x := expr.(type) {
	case *ast.Ident:
		return x.Name
	case *ast.IndexExpr:
		if id, ok := x.X.(*ast.Ident); ok {
			return id.Name
		}
	}
	return ""
}
