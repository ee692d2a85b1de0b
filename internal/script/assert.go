package script

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/artpar/curl2json/internal/core"
	"github.com/artpar/curl2json/internal/tree"
)

// ErrAssertionFailed is returned by Check when at least one assertion fails.
var ErrAssertionFailed = errors.New("assertion failed")

// Result is the outcome of a single assertion.
type Result struct {
	Expression string
	Passed     bool
	Error      string
}

// Summary provides aggregate assertion statistics.
type Summary struct {
	Total  int
	Passed int
	Failed int
}

// Summarize counts results.
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		if r.Passed {
			s.Passed++
		} else {
			s.Failed++
		}
	}
	return s
}

// Bind exposes req and resp to scripts as the globals request and response.
//
//	request:  method, url, headers, body
//	response: status, statusText, headers, header(name), body, raw,
//	          contentType, time (milliseconds), size
func Bind(e *Engine, req *core.Request, resp *core.Response) {
	reqBody, _ := req.Body()
	e.SetGlobal("request", map[string]interface{}{
		"method":  req.Method(),
		"url":     req.URL(),
		"headers": req.Headers(),
		"body":    reqBody,
	})

	e.SetGlobal("response", map[string]interface{}{
		"status":      resp.Status().Code(),
		"statusText":  resp.Status().Text(),
		"headers":     resp.Headers(),
		"header":      resp.Header,
		"body":        tree.ToAny(resp.Body()),
		"raw":         string(resp.Raw()),
		"contentType": resp.ContentType(),
		"time":        resp.Timing().Total.Milliseconds(),
		"size":        resp.Size(),
	})
}

// Evaluate runs every expression against the bound request and response. An
// expression passes when its value is truthy; exceptions and syntax errors
// fail it. Evaluation stops early only when ctx ends.
func Evaluate(ctx context.Context, req *core.Request, resp *core.Response, expressions []string) ([]Result, error) {
	engine := NewEngine()
	Bind(engine, req, resp)

	results := make([]Result, 0, len(expressions))
	for _, expr := range expressions {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		ok, err := engine.Truthy(ctx, expr)
		result := Result{Expression: expr, Passed: ok && err == nil}
		if err != nil {
			result.Error = err.Error()
		}
		results = append(results, result)
	}

	return results, nil
}

// Check wraps ErrAssertionFailed with the failed expressions, or returns
// nil when every result passed.
func Check(results []Result) error {
	var failed []string
	for _, r := range results {
		if r.Passed {
			continue
		}
		msg := r.Expression
		if r.Error != "" {
			msg += " (" + r.Error + ")"
		}
		failed = append(failed, msg)
	}
	if len(failed) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrAssertionFailed, strings.Join(failed, "; "))
}
