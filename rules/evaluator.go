// Package rules declares prop and context contracts as expressions. A rule
// is a composite.Validator whose expression sees the checked value and the
// surrounding mapping, evaluated by expr-lang, CEL or (behind the js_eval
// build tag) goja.
package rules

import (
	"errors"
	"fmt"
	"time"
)

// Engine names accepted by NewEvaluator and WithEngine.
const (
	EngineExpr = "expr"
	EngineCEL  = "cel"
	EngineJS   = "js"
)

var (
	// ErrNoEvaluator reports an engine that is unknown or not compiled in.
	ErrNoEvaluator = errors.New("rules: evaluator not configured")
	// ErrNotBoolean reports a rule that produced something other than a bool.
	ErrNotBoolean = errors.New("rules: rule must return a boolean")
)

// Input is what a rule sees while validating one key.
type Input struct {
	Values    map[string]any
	Key       string
	Component string
	Location  string
	Metadata  map[string]any
	Now       time.Time
}

// Evaluator runs rule expressions against an Input.
type Evaluator interface {
	Evaluate(in Input, expression string) (any, error)
	Compile(expression string) (CompiledRule, error)
}

// CompiledRule is an expression compiled once and evaluated many times.
type CompiledRule interface {
	Evaluate(in Input) (any, error)
}

// NewEvaluator returns the evaluator registered for engine.
func NewEvaluator(engine string, opts ...Option) (Evaluator, error) {
	cfg := applyOptions(opts)
	switch engine {
	case "", EngineExpr:
		return newExprEvaluator(cfg), nil
	case EngineCEL:
		return newCELEvaluator(cfg), nil
	case EngineJS:
		if !jsEvaluatorAvailable() {
			return nil, fmt.Errorf("%w: %s (build with -tags js_eval)", ErrNoEvaluator, engine)
		}
		return newJSEvaluator(cfg), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNoEvaluator, engine)
}

// Engines lists the engines available in this build.
func Engines() []string {
	engines := []string{EngineExpr, EngineCEL}
	if jsEvaluatorAvailable() {
		engines = append(engines, EngineJS)
	}
	return engines
}

// EngineName names the engine behind e.
func EngineName(e Evaluator) string {
	switch e.(type) {
	case nil:
		return "unknown"
	case *exprEvaluator:
		return EngineExpr
	case *celEvaluator:
		return EngineCEL
	default:
		if isJSEvaluator(e) {
			return EngineJS
		}
		return "custom"
	}
}

func (in Input) withDefaults() Input {
	if in.Now.IsZero() {
		in.Now = time.Now()
	}
	if in.Values == nil {
		in.Values = map[string]any{}
	}
	if in.Metadata == nil {
		in.Metadata = map[string]any{}
	}
	return in
}

func (in Input) value() any {
	return in.Values[in.Key]
}

// scopeLabel identifies the checked key in errors and logs.
func (in Input) scopeLabel() string {
	switch {
	case in.Component != "" && in.Key != "":
		return in.Component + "." + in.Key
	case in.Key != "":
		return in.Key
	default:
		return in.Component
	}
}

// variables is the environment shared by every engine.
func (in Input) variables() map[string]any {
	return map[string]any{
		"value":     in.value(),
		"props":     in.Values,
		"key":       in.Key,
		"component": in.Component,
		"location":  in.Location,
		"metadata":  in.Metadata,
		"now":       in.Now,
	}
}
