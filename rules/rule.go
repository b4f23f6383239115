package rules

import (
	"fmt"
	"time"

	"github.com/goliatone/go-composite"
)

// Rule is a composite.Validator backed by a boolean expression. The
// expression sees value, props, key, component, location, metadata and now.
type Rule struct {
	engine     string
	expression string
	compiled   CompiledRule
	required   bool
	metadata   map[string]any
	logger     Logger
}

var (
	_ composite.Validator = (*Rule)(nil)
	_ composite.Describer = (*Rule)(nil)
)

// New compiles expression with the engine chosen by WithEngine (expr by
// default). Compilation errors surface here, when the class is declared.
func New(expression string, opts ...Option) (*Rule, error) {
	cfg := applyOptions(opts)
	evaluator, err := NewEvaluator(cfg.engine, opts...)
	if err != nil {
		return nil, err
	}
	compiled, err := evaluator.Compile(expression)
	if err != nil {
		return nil, err
	}
	return &Rule{
		engine:     EngineName(evaluator),
		expression: expression,
		compiled:   compiled,
		required:   cfg.required,
		metadata:   cfg.metadata,
		logger:     cfg.logger,
	}, nil
}

// Must is New that panics on error, for package level declarations.
func Must(expression string, opts ...Option) *Rule {
	rule, err := New(expression, opts...)
	if err != nil {
		panic(err)
	}
	return rule
}

// Expr compiles an expr-lang rule.
func Expr(expression string, opts ...Option) (*Rule, error) {
	return New(expression, forceEngine(opts, EngineExpr)...)
}

// CEL compiles a CEL rule.
func CEL(expression string, opts ...Option) (*Rule, error) {
	return New(expression, forceEngine(opts, EngineCEL)...)
}

// JS compiles a JavaScript rule; it requires the js_eval build tag.
func JS(expression string, opts ...Option) (*Rule, error) {
	return New(expression, forceEngine(opts, EngineJS)...)
}

func forceEngine(opts []Option, engine string) []Option {
	out := make([]Option, 0, len(opts)+1)
	out = append(out, opts...)
	return append(out, WithEngine(engine))
}

// Expression returns the rule source.
func (r *Rule) Expression() string { return r.expression }

// Engine names the engine that compiled the rule.
func (r *Rule) Engine() string { return r.engine }

// IsRequired returns a copy of r that also reports missing values.
func (r *Rule) IsRequired() *Rule {
	clone := *r
	clone.required = true
	return &clone
}

// Validate implements composite.Validator. Missing values are only checked
// for presence; the expression runs for every present value.
func (r *Rule) Validate(values map[string]any, key, componentName string, location composite.Location) error {
	value, ok := values[key]
	if !ok || value == nil || composite.IsUndefined(value) {
		if r.required {
			return fmt.Errorf("Required %s `%s` was not specified in `%s`.", location, key, componentName)
		}
		return nil
	}

	in := Input{
		Values:    values,
		Key:       key,
		Component: componentName,
		Location:  string(location),
		Metadata:  r.metadata,
	}
	start := time.Now()
	result, err := r.compiled.Evaluate(in)
	if err == nil {
		if _, isBool := result.(bool); !isBool {
			err = evaluationFailure(r.engine, r.expression, in.scopeLabel(),
				fmt.Errorf("%w, got %T", ErrNotBoolean, result))
		}
	}
	r.logger.LogEvaluation(LogEvent{
		Engine:   r.engine,
		Expr:     r.expression,
		Scope:    in.scopeLabel(),
		Duration: time.Since(start),
		Result:   result,
		Err:      err,
	})
	if err != nil {
		return err
	}
	if !result.(bool) {
		return fmt.Errorf("Invalid %s `%s` supplied to `%s`, failed rule `%s`.", location, key, componentName, r.expression)
	}
	return nil
}

// Describe implements composite.Describer.
func (r *Rule) Describe() composite.Descriptor {
	return composite.Descriptor{Kind: "rule", Required: r.required, Rule: r.expression}
}
