// Package engine evaluates strategy scripts. A script is a small Lisp
// program, run in a fresh zygomys sandbox, whose builtins declare the
// primitives and assumptions of a conversion strategy.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chazu/meshstep/pkg/strategy"
	zygo "github.com/glycerine/zygomys/zygo"
)

// EvalError is a parse or runtime error in a script.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Option configures an Engine.
type Option func(*Engine)

// WithTimeout overrides EvalTimeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// Engine evaluates scripts. It is safe for concurrent use; only the result
// of the most recent call is delivered, earlier callers get a superseded
// error.
type Engine struct {
	mu         sync.Mutex
	generation uint64
	timeout    time.Duration
}

// NewEngine returns an Engine with the default timeout.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{timeout: EvalTimeout}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate runs source and returns the strategy it declared.
//
// Return semantics:
//   - success: strategy, nil, nil
//   - parse or runtime error in the script: nil, eval errors, nil
//   - timeout, panic or a superseded call: nil, nil, error
func (e *Engine) Evaluate(source string) (*strategy.Strategy, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("engine: panic during evaluation: %v", r)}
			}
		}()
		s, evalErrs := evaluate(source)
		ch <- evalResult{strategy: s, errors: evalErrs}
	}()

	return e.wait(ch, gen)
}

// evaluate runs source in a fresh sandbox, which has no filesystem or
// process access.
func evaluate(source string) (*strategy.Strategy, []EvalError) {
	s := &strategy.Strategy{}
	if strings.TrimSpace(source) == "" {
		return s, nil
	}

	env := zygo.NewZlispSandbox()
	defer env.Stop()
	registerBuiltins(env, s)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err)
	}
	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err)
	}
	return s, nil
}

var (
	// "Error on line N: ..." as zygomys reports parse errors.
	onLinePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)
	// "line N: ..." at the start of a message.
	linePrefixPattern = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)
)

// parseZygomysError turns an interpreter error into EvalErrors, pulling out
// the line number when the message carries one.
func parseZygomysError(err error) []EvalError {
	msg := strings.TrimSpace(err.Error())
	for _, re := range []*regexp.Regexp{onLinePattern, linePrefixPattern} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			detail := strings.TrimSpace(strings.Replace(msg, m[0], m[2], 1))
			return []EvalError{{Line: line, Message: detail}}
		}
	}
	return []EvalError{{Message: msg}}
}
