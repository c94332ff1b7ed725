package results

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// filterEnv is the environment a filter expression is evaluated against.
// row maps column labels ("input: x", "output", "exception") to their text.
func filterEnv(c Category, index int, r Row) map[string]any {
	return map[string]any{
		"category": string(c),
		"index":    index,
		"row":      r.Map(),
	}
}

// CompileFilter compiles a boolean expr-lang expression over category,
// index and row.
func CompileFilter(exprStr string) (*vm.Program, error) {
	exprStr = strings.TrimSpace(exprStr)
	if exprStr == "" {
		return nil, nil
	}
	program, err := expr.Compile(exprStr, expr.Env(filterEnv(Passed, 0, nil)), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile filter %q: %w", exprStr, err)
	}
	return program, nil
}

// Filter returns a copy of g keeping only the rows for which exprStr holds.
// An empty expression keeps everything.
func Filter(g *Grids, exprStr string) (*Grids, error) {
	program, err := CompileFilter(exprStr)
	if err != nil {
		return nil, err
	}
	out := &Grids{}
	for _, c := range Categories {
		for i, r := range g.Rows(c) {
			if program != nil {
				res, err := expr.Run(program, filterEnv(c, i, r))
				if err != nil {
					return nil, fmt.Errorf("eval filter on %s[%d]: %w", c, i, err)
				}
				if keep, _ := res.(bool); !keep {
					continue
				}
			}
			out.add(c, r.clone())
		}
	}
	return out, nil
}
