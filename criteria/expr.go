package criteria

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/s0up4200/findarr/media"
)

// CompilationError indicates a custom criteria expression could not be
// compiled.
type CompilationError struct {
	Expression string
	Reason     string
	Err        error
}

func (e *CompilationError) Error() string {
	return fmt.Sprintf("compilation error in '%s': %s", e.Expression, e.Reason)
}

func (e *CompilationError) Unwrap() error {
	return e.Err
}

// FromExpression compiles a custom matcher from an expr expression
// evaluated against the release fields, e.g.
//
//	Resolution >= 1080 && Seeders > 5 && Title contains "REMUX"
//
// Available fields: Title, Indexer, TitleLower, Size, Seeders, AgeDays,
// Quality, QualityLower, Resolution.
func FromExpression(expression string) (Matcher, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{Expression: expression, Reason: "empty expression"}
	}

	program, err := expr.Compile(expression,
		expr.Env(releaseEnv(media.Release{})),
		expr.AsBool(),
	)
	if err != nil {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     err.Error(),
			Err:        err,
		}
	}

	return func(r media.Release) bool {
		out, err := runProgram(program, r)
		if err != nil {
			return false
		}
		return out
	}, nil
}

func runProgram(program *vm.Program, r media.Release) (bool, error) {
	out, err := expr.Run(program, releaseEnv(r))
	if err != nil {
		return false, err
	}
	matched, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("expression returned %T, want bool", out)
	}
	return matched, nil
}

// releaseEnv flattens a release into the expression environment.
func releaseEnv(r media.Release) map[string]any {
	return map[string]any{
		"Title":        r.Title,
		"TitleLower":   strings.ToLower(r.Title),
		"Indexer":      r.Indexer,
		"Size":         r.Size,
		"Seeders":      r.Seeders,
		"AgeDays":      r.AgeDays,
		"Quality":      r.Quality.Name,
		"QualityLower": strings.ToLower(r.Quality.Name),
		"Resolution":   r.Quality.Resolution,
	}
}
