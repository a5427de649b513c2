// Package engine runs cutout design scripts. Scripts are zygomys Lisp
// evaluated in a sandbox; the builtins they call declare named pieces
// on a design.Design.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chazu/cutout/pkg/design"
	zygo "github.com/glycerine/zygomys/zygo"
)

// EvalError is a problem in the user's script: a parse error, an
// unknown symbol, or a builtin rejecting its arguments. Line is 1-based
// and zero when the interpreter gave no position.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	switch {
	case e.Line > 0 && e.Col > 0:
		return fmt.Sprintf("line %d col %d: %s", e.Line, e.Col, e.Message)
	case e.Line > 0:
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Engine evaluates scripts one sandbox per call, so results never depend
// on earlier scripts. Concurrent callers are allowed; only the most
// recent call gets a result.
type Engine struct {
	mu         sync.Mutex
	generation uint64
	timeout    time.Duration
}

// NewEngine returns an Engine limited to EvalTimeout per script.
func NewEngine() *Engine {
	return NewEngineWithTimeout(EvalTimeout)
}

// NewEngineWithTimeout returns an Engine with a custom per-script limit.
func NewEngineWithTimeout(timeout time.Duration) *Engine {
	return &Engine{timeout: timeout}
}

// Evaluate runs source and returns the design it declares.
//
// Script problems come back as EvalErrors with a nil design and nil
// error. The error result is reserved for failures of the run itself:
// ErrTimeout, ErrSuperseded, or a recovered panic.
func (e *Engine) Evaluate(source string) (*design.Design, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()
		d, evalErrs, err := e.run(source)
		ch <- evalResult{design: d, errors: evalErrs, err: err}
	}()

	return e.await(ch, gen)
}

// run evaluates source in a fresh sandbox.
func (e *Engine) run(source string) (*design.Design, []EvalError, error) {
	d := design.New()
	if strings.TrimSpace(source) == "" {
		return d, nil, nil
	}

	// No filesystem or system access from scripts.
	env := zygo.NewZlispSandbox()
	defer env.Stop()
	registerBuiltins(env, d)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}
	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err), nil
	}
	return d, nil, nil
}

var (
	// "Error on line 3: ..." from the parser, possibly after a prefix.
	linePattern = regexp.MustCompile(`(?is)(?:error )?on line (\d+):\s*(.*)`)
	// "line 3: ..." at the start of the message.
	linePatternShort = regexp.MustCompile(`(?is)^line (\d+):\s*(.*)`)
)

// parseZygomysError turns an interpreter error into EvalErrors, pulling
// out the line number when the message carries one. Text before the
// location marker is kept so builtin messages survive.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()
	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		m := re.FindStringSubmatchIndex(msg)
		if m == nil {
			continue
		}
		line, _ := strconv.Atoi(msg[m[2]:m[3]])
		return []EvalError{{
			Line:    line,
			Message: strings.TrimSpace(msg[:m[0]] + " " + msg[m[4]:m[5]]),
		}}
	}
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
