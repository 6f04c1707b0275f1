// Package compiler ties the pipeline together: lex, parse, resolve,
// generate. One call turns source text into a descriptor tree plus every
// diagnostic the stages produced, merged and sorted by position.
package compiler

import (
	"sort"
	"sync"

	"github.com/ferroui/ferro/pkg/ast"
	"github.com/ferroui/ferro/pkg/codegen"
	"github.com/ferroui/ferro/pkg/descriptor"
	"github.com/ferroui/ferro/pkg/diag"
	"github.com/ferroui/ferro/pkg/lexer"
	"github.com/ferroui/ferro/pkg/parser"
	"github.com/ferroui/ferro/pkg/resolver"
)

// Result is the outcome of compiling one file. Tree is nil only when the
// lexer hit a fatal condition; every recoverable problem still yields a
// tree (with placeholder slots) so tooling can keep working against it.
type Result struct {
	Name  string
	File  *ast.File
	Tree  *descriptor.Tree
	Diags diag.List
}

// OK reports whether the file compiled without errors. Warnings do not
// count against it.
func (r Result) OK() bool {
	return r.Tree != nil && !r.Diags.HasErrors()
}

// Compile runs the full pipeline on one source file.
func Compile(name, src string) Result {
	out := Result{Name: name}

	tokens, ldiags, err := lexer.Tokenize(name, src)
	out.Diags = append(out.Diags, ldiags...)
	if err != nil {
		out.Diags.Sort()
		return out
	}

	file, pdiags := parser.Parse(name, tokens)
	out.File = file
	out.Diags = append(out.Diags, pdiags...)

	res, rdiags := resolver.Resolve(file)
	out.Diags = append(out.Diags, rdiags...)

	tree, gdiags := codegen.Generate(res)
	out.Tree = tree
	out.Diags = append(out.Diags, gdiags...)

	out.Diags.Sort()
	return out
}

// CompileAll compiles files concurrently and returns results sorted by
// name. Sources maps file name to content.
func CompileAll(sources map[string]string) []Result {
	results := make([]Result, 0, len(sources))
	var mu sync.Mutex
	var wg sync.WaitGroup
	for name, src := range sources {
		wg.Add(1)
		go func(name, src string) {
			defer wg.Done()
			r := Compile(name, src)
			mu.Lock()
			results = append(results, r)
			mu.Unlock()
		}(name, src)
	}
	wg.Wait()
	sort.Slice(results, func(i, j int) bool { return results[i].Name < results[j].Name })
	return results
}
