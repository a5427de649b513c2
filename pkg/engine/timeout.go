package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/chazu/cutout/pkg/design"
)

// EvalTimeout is the default hard limit for a single evaluation.
const EvalTimeout = 5 * time.Second

var (
	// ErrTimeout is returned when a script runs past the engine's limit.
	ErrTimeout = errors.New("evaluation timed out")

	// ErrSuperseded is returned to a caller whose evaluation finished
	// after a newer one had started.
	ErrSuperseded = errors.New("evaluation superseded by newer request")
)

// evalResult carries the worker goroutine's output.
type evalResult struct {
	design *design.Design
	errors []EvalError
	err    error
}

// current returns the generation of the latest Evaluate call.
func (e *Engine) current() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.generation
}

// await blocks until ch delivers or the engine's timeout fires. A result
// from generation gen is dropped if a newer Evaluate has begun since.
// A timed-out worker keeps running and its late result is never read.
func (e *Engine) await(ch <-chan evalResult, gen uint64) (*design.Design, []EvalError, error) {
	timer := time.NewTimer(e.timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		if gen != e.current() {
			return nil, nil, ErrSuperseded
		}
		return res.design, res.errors, res.err
	case <-timer.C:
		return nil, nil, fmt.Errorf("%w after %s", ErrTimeout, e.timeout)
	}
}
