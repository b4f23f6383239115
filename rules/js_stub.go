//go:build !js_eval

package rules

// newJSEvaluator is unavailable without the js_eval build tag.
func newJSEvaluator(config) Evaluator {
	return nil
}

func jsEvaluatorAvailable() bool {
	return false
}

func isJSEvaluator(Evaluator) bool {
	return false
}
