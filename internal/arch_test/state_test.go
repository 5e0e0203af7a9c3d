package arch_test

import (
	"go/ast"
	"go/token"
	"strings"
	"testing"
)

// statePrefixes lets a package keep package-level values under a naming
// convention. The tui styles and colors are built once and never changed.
var statePrefixes = map[string][]string{
	"tui": {"style", "color"},
}

// constantLike reports whether a package-level var initialised with val is
// fixed after init: an error sentinel or a literal table.
func constantLike(val ast.Expr) bool {
	switch v := val.(type) {
	case *ast.CompositeLit, *ast.BasicLit:
		return true
	case *ast.CallExpr:
		sel, ok := v.Fun.(*ast.SelectorExpr)
		if !ok {
			return false
		}
		pkg, ok := sel.X.(*ast.Ident)
		if !ok {
			return false
		}
		call := pkg.Name + "." + sel.Sel.Name
		return call == "errors.New" || call == "fmt.Errorf"
	}
	return false
}

// TestNoPackageState keeps services free of package-level mutable state.
// Loggers, stores and caches are passed in, never reached through globals.
func TestNoPackageState(t *testing.T) {
	t.Parallel()
	fset, pkgs := source(t)

	for _, p := range pkgs {
		for _, f := range p.prod() {
			for _, decl := range f.file.Decls {
				gd, ok := decl.(*ast.GenDecl)
				if !ok || gd.Tok != token.VAR {
					continue
				}
				for _, spec := range gd.Specs {
					vs := spec.(*ast.ValueSpec)
					for i, n := range vs.Names {
						if n.Name == "_" || hasPrefix(n.Name, statePrefixes[p.name]) {
							continue
						}
						if i < len(vs.Values) && constantLike(vs.Values[i]) {
							continue
						}
						t.Errorf("%s: package-level var %s.%s holds state; pass it in instead",
							fset.Position(n.Pos()), p.name, n.Name)
					}
				}
			}
		}
	}
}

func hasPrefix(name string, prefixes []string) bool {
	for _, pre := range prefixes {
		if strings.HasPrefix(name, pre) {
			return true
		}
	}
	return false
}
