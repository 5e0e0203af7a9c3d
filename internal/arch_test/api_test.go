package arch_test

import (
	"go/ast"
	"go/token"
	"strings"
	"testing"
)

// sharedInterfaces are interfaces declared next to their implementations.
// Backend has TOML and SQLite stores behind OpenBackend; Policy has the
// fixed answers and the line prompter, with tui adding the picker.
var sharedInterfaces = map[string]bool{
	"catalog.Backend": true,
	"conflict.Policy": true,
}

// documented reports whether doc is a comment that starts with name.
func documented(doc *ast.CommentGroup, name string) bool {
	return doc != nil && strings.HasPrefix(strings.TrimSpace(doc.Text()), name)
}

func hasText(groups ...*ast.CommentGroup) bool {
	for _, g := range groups {
		if g != nil && strings.TrimSpace(g.Text()) != "" {
			return true
		}
	}
	return false
}

func TestExportedAPIDocumented(t *testing.T) {
	t.Parallel()
	fset, pkgs := source(t)

	report := func(pos token.Pos, what, name string) {
		t.Errorf("%s: exported %s %s has no doc comment", fset.Position(pos), what, name)
	}
	for _, p := range pkgs {
		for _, f := range p.prod() {
			for _, decl := range f.file.Decls {
				switch d := decl.(type) {
				case *ast.FuncDecl:
					if !d.Name.IsExported() {
						continue
					}
					if d.Recv != nil && !ast.IsExported(receiverName(d.Recv)) {
						continue
					}
					if !documented(d.Doc, d.Name.Name) {
						report(d.Pos(), "func", d.Name.Name)
					}
				case *ast.GenDecl:
					grouped := d.Lparen.IsValid()
					for _, spec := range d.Specs {
						switch s := spec.(type) {
						case *ast.TypeSpec:
							doc := s.Doc
							if doc == nil {
								doc = d.Doc
							}
							if s.Name.IsExported() && !documented(doc, s.Name.Name) {
								report(s.Pos(), "type", s.Name.Name)
							}
						case *ast.ValueSpec:
							for _, n := range s.Names {
								if !n.IsExported() {
									continue
								}
								// Members of a const or var group may lean on
								// the group comment or a trailing one.
								if grouped && hasText(d.Doc, s.Doc, s.Comment) {
									continue
								}
								if !grouped && (documented(d.Doc, n.Name) || documented(s.Doc, n.Name)) {
									continue
								}
								report(n.Pos(), d.Tok.String(), n.Name)
							}
						}
					}
				}
			}
		}
	}
}

// TestInterfacesLiveWithConsumers flags an interface whose methods are all
// implemented by a type of the same package. Such interfaces belong to the
// package that consumes them.
func TestInterfacesLiveWithConsumers(t *testing.T) {
	t.Parallel()
	_, pkgs := source(t)

	for _, p := range pkgs {
		methods := map[string]map[string]bool{}
		ifaces := map[string][]string{}
		for _, f := range p.prod() {
			for _, decl := range f.file.Decls {
				switch d := decl.(type) {
				case *ast.FuncDecl:
					if recv := receiverName(d.Recv); recv != "" {
						if methods[recv] == nil {
							methods[recv] = map[string]bool{}
						}
						methods[recv][d.Name.Name] = true
					}
				case *ast.GenDecl:
					for _, spec := range d.Specs {
						ts, ok := spec.(*ast.TypeSpec)
						if !ok {
							continue
						}
						it, ok := ts.Type.(*ast.InterfaceType)
						if !ok {
							continue
						}
						for _, m := range it.Methods.List {
							for _, n := range m.Names {
								ifaces[ts.Name.Name] = append(ifaces[ts.Name.Name], n.Name)
							}
						}
					}
				}
			}
		}

		for iface, want := range ifaces {
			if len(want) == 0 || sharedInterfaces[p.name+"."+iface] {
				continue
			}
			for typ, have := range methods {
				all := true
				for _, m := range want {
					all = all && have[m]
				}
				if all {
					t.Errorf("%s.%s is implemented by %s in the same package; declare it where it is consumed", p.name, iface, typ)
				}
			}
		}
	}
}
