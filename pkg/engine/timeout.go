package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/chazu/meshstep/pkg/strategy"
)

// EvalTimeout is the default hard limit for one evaluation.
const EvalTimeout = 5 * time.Second

var (
	// ErrTimeout is returned when a script runs past the engine's timeout.
	ErrTimeout = errors.New("engine: evaluation timed out")
	// ErrSuperseded is returned to a caller whose evaluation finished after
	// a newer one had started.
	ErrSuperseded = errors.New("engine: evaluation superseded by newer request")
)

type evalResult struct {
	strategy *strategy.Strategy
	errors   []EvalError
	err      error
}

// wait blocks for the result on ch or the engine timeout, whichever comes
// first. A timed-out goroutine keeps running; its result is dropped because
// nothing reads ch again.
func (e *Engine) wait(ch <-chan evalResult, gen uint64) (*strategy.Strategy, []EvalError, error) {
	timer := time.NewTimer(e.timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		e.mu.Lock()
		current := e.generation
		e.mu.Unlock()
		if gen != current {
			return nil, nil, ErrSuperseded
		}
		return res.strategy, res.errors, res.err
	case <-timer.C:
		return nil, nil, fmt.Errorf("%w after %s", ErrTimeout, e.timeout)
	}
}
