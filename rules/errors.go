package rules

import (
	"errors"
	"fmt"
	"strings"
)

// Stage names the point at which a rule failed.
type Stage string

const (
	StageCompile  Stage = "compile"
	StageEvaluate Stage = "evaluate"
)

// EvaluationError is returned when a rule fails to compile or run. It is
// distinct from a rule violation, which is a plain error naming the prop.
type EvaluationError struct {
	Stage  Stage
	Engine string
	Expr   string
	// Scope is "Component.key" for evaluation failures and empty when
	// compiling.
	Scope string
	Err   error
}

func (e *EvaluationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "rules: %s %s", e.Engine, e.Stage)
	if e.Expr != "" {
		fmt.Fprintf(&b, " %q", e.Expr)
	}
	if e.Scope != "" {
		fmt.Fprintf(&b, " for %s", e.Scope)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	return b.String()
}

func (e *EvaluationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// engineFailure reports problems with the evaluator itself rather than an
// expression.
func engineFailure(engine string, err error) error {
	if err == nil {
		return nil
	}
	if isAnnotated(err) {
		return err
	}
	return fmt.Errorf("rules: %s evaluator: %w", engine, err)
}

func compileFailure(engine, expr string, err error) error {
	return annotate(StageCompile, engine, expr, "", err)
}

func evaluationFailure(engine, expr, scope string, err error) error {
	return annotate(StageEvaluate, engine, expr, scope, err)
}

// annotate fills the blanks of an existing EvaluationError instead of
// nesting a second one.
func annotate(stage Stage, engine, expr, scope string, err error) error {
	if err == nil {
		return nil
	}
	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		if evalErr.Stage == "" {
			evalErr.Stage = stage
		}
		if evalErr.Engine == "" {
			evalErr.Engine = engine
		}
		if evalErr.Expr == "" {
			evalErr.Expr = expr
		}
		if evalErr.Scope == "" {
			evalErr.Scope = scope
		}
		return evalErr
	}
	return &EvaluationError{Stage: stage, Engine: engine, Expr: expr, Scope: scope, Err: err}
}

func isAnnotated(err error) bool {
	var evalErr *EvaluationError
	return errors.As(err, &evalErr) || strings.HasPrefix(err.Error(), "rules:")
}
