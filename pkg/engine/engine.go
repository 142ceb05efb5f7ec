// Package engine provides the Lisp evaluation engine for Burl.
// It wraps zygomys in a sandboxed environment and drives the part
// builder from user source code.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	zygo "github.com/glycerine/zygomys/zygo"
	"go.uber.org/zap"

	"github.com/chazu/burl/pkg/build"
	"github.com/chazu/burl/pkg/kernel"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
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

// Result is the output of a successful evaluation.
type Result struct {
	// Part is the accumulated solid, nil when the program produced no
	// geometry.
	Part     kernel.Shape
	Vertices int
	Edges    int
	Faces    int
	Solids   int
	Bounds   kernel.Box
}

// Engine wraps the zygomys interpreter for Burl evaluation.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment for determinism.
type Engine struct {
	kern kernel.Kernel
	log  *zap.Logger

	mu         sync.Mutex
	generation uint64
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger installs a logger; the default is zap.NewNop().
func WithLogger(l *zap.Logger) EngineOption {
	return func(e *Engine) { e.log = l }
}

// NewEngine creates an Engine backed by the given kernel.
func NewEngine(k kernel.Kernel, opts ...EngineOption) *Engine {
	e := &Engine{kern: k, log: zap.NewNop()}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Evaluate takes Lisp source code and produces a built part.
// Each call creates a fresh zygomys sandbox for deterministic evaluation.
//
// Return semantics:
//   - On success: returns result + nil errors + nil error
//   - On parse/eval failure: returns nil result + eval errors + nil error
//   - On fatal failure (timeout, panic): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*Result, []EvalError, error) {
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

		res, evalErrs, err := e.evaluate(source)
		ch <- evalResult{res: res, errors: evalErrs, err: err}
	}()

	return waitWithTimeout(ch, gen, &e.mu, &e.generation)
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) (*Result, []EvalError, error) {
	// Empty source is a valid program that produces an empty part.
	if strings.TrimSpace(source) == "" {
		return &Result{}, nil, nil
	}

	// Sandbox mode prevents user code from accessing the filesystem or
	// syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	ctx := build.NewContext(e.kern, build.WithLogger(e.log))
	part := build.NewPart(ctx)
	st := &evalState{ctx: ctx, part: part}

	// Sketches left open by a failed program must come off the stack
	// before the part builder does.
	defer func() {
		_ = st.closeOpenSketches()
		part.Close()
	}()

	registerBuiltins(env, st)

	err := env.LoadString(preprocessSource(source))
	if err != nil {
		return nil, parseZygomysError(err), nil
	}

	_, err = env.Run()
	if err != nil {
		return nil, parseZygomysError(err), nil
	}

	if err := st.closeOpenSketches(); err != nil {
		return nil, []EvalError{{Message: err.Error()}}, nil
	}

	res := &Result{Part: part.Part()}
	if res.Part != nil {
		k := e.kern
		res.Vertices = len(k.Vertices(res.Part))
		res.Edges = len(k.Edges(res.Part))
		res.Faces = len(k.Faces(res.Part))
		res.Solids = len(k.Solids(res.Part))
		res.Bounds = k.BoundingBox(res.Part)
	}
	return res, nil, nil
}

// BuildMesh evaluates source and tessellates the resulting part.
func (e *Engine) BuildMesh(source string) (*kernel.Mesh, []EvalError, error) {
	res, evalErrs, err := e.Evaluate(source)
	if err != nil || evalErrs != nil {
		return nil, evalErrs, err
	}
	if res.Part == nil {
		return &kernel.Mesh{}, nil, nil
	}
	m, err := e.kern.ToMesh(res.Part)
	if err != nil {
		return nil, nil, fmt.Errorf("tessellate: %w", err)
	}
	return m, nil, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
// It attempts to extract line number information from the error message.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	// zygomys formats parse errors as "Error on line N: <details>\n"
	if m := linePattern.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		detail := strings.TrimSpace(m[2])
		return []EvalError{{
			Line:    line,
			Message: detail,
		}}
	}

	if m := linePatternShort.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		detail := strings.TrimSpace(m[2])
		return []EvalError{{
			Line:    line,
			Message: detail,
		}}
	}

	// Fallback: no line info available.
	return []EvalError{{
		Message: strings.TrimSpace(msg),
	}}
}
