// Package script evaluates JavaScript assertions against executed requests.
package script

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/dop251/goja"
)

// ConsoleHandler is a function that handles console output from JavaScript.
type ConsoleHandler func(level, message string)

// Engine wraps the Goja JavaScript runtime. Calls are serialized; the
// runtime itself is not safe for concurrent use.
type Engine struct {
	mu             sync.Mutex
	runtime        *goja.Runtime
	consoleHandler ConsoleHandler
}

// NewEngine creates a new JavaScript execution engine.
func NewEngine() *Engine {
	e := &Engine{runtime: goja.New()}
	e.runtime.SetFieldNameMapper(goja.TagFieldNameMapper("json", true))
	e.setupConsole()
	return e
}

// setupConsole installs console.log, error, warn and info.
func (e *Engine) setupConsole() {
	console := e.runtime.NewObject()

	for _, level := range []string{"log", "error", "warn", "info"} {
		level := level
		console.Set(level, func(call goja.FunctionCall) goja.Value {
			parts := make([]string, len(call.Arguments))
			for i, arg := range call.Arguments {
				parts[i] = fmt.Sprintf("%v", arg.Export())
			}
			if e.consoleHandler != nil {
				e.consoleHandler(level, strings.Join(parts, " "))
			}
			return goja.Undefined()
		})
	}

	e.runtime.Set("console", console)
}

// SetConsoleHandler sets the handler for console output.
func (e *Engine) SetConsoleHandler(handler ConsoleHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.consoleHandler = handler
}

// SetGlobal sets a global variable accessible from JavaScript.
func (e *Engine) SetGlobal(name string, value interface{}) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.runtime.Set(name, value)
}

// Execute runs a script and returns its exported completion value, or nil
// for undefined and null.
func (e *Engine) Execute(ctx context.Context, script string) (interface{}, error) {
	value, err := e.run(ctx, script)
	if err != nil {
		return nil, err
	}
	if value == nil || goja.IsUndefined(value) || goja.IsNull(value) {
		return nil, nil
	}
	return value.Export(), nil
}

// Truthy runs a script and reports whether its completion value is truthy
// in the JavaScript sense.
func (e *Engine) Truthy(ctx context.Context, script string) (bool, error) {
	value, err := e.run(ctx, script)
	if err != nil {
		return false, err
	}
	if value == nil {
		return false, nil
	}
	return value.ToBoolean(), nil
}

func (e *Engine) run(ctx context.Context, script string) (goja.Value, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	// Interrupt long-running scripts when the context ends.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			e.runtime.Interrupt("context cancelled")
		case <-done:
		}
	}()

	e.runtime.ClearInterrupt()

	program, err := goja.Compile("assertion", script, true)
	if err != nil {
		return nil, fmt.Errorf("syntax error: %w", err)
	}

	value, err := e.runtime.RunProgram(program)
	if err != nil {
		if interrupted, ok := err.(*goja.InterruptedError); ok {
			return nil, fmt.Errorf("execution interrupted: %v", interrupted.Value())
		}
		if exception, ok := err.(*goja.Exception); ok {
			return nil, fmt.Errorf("runtime error: %s", exception.Value().String())
		}
		return nil, fmt.Errorf("runtime error: %w", err)
	}

	return value, nil
}
