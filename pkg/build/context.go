package build

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/chazu/burl/pkg/kernel"
)

// Builder is a scoped construction frame. Builders live on a Context
// stack; geometry produced while a builder is the top of the stack is
// merged into it, and closing a nested builder hands its result to the
// enclosing one.
type Builder interface {
	// addToContext merges shapes into the builder under the given
	// mode. facesToPending routes faces into the pending list when
	// true; when false faces take part in booleans directly.
	addToContext(shapes []kernel.Shape, facesToPending bool, mode Mode) error

	// locations is the builder's placement stack.
	locations() *Locations
}

// Context owns the kernel connection and the stack of active builders.
// All geometry in one model shares a single Context.
type Context struct {
	kern  kernel.Kernel
	log   *zap.Logger
	stack []Builder
}

// ContextOption configures a Context.
type ContextOption func(*Context)

// WithLogger installs a logger; the default is zap.NewNop().
func WithLogger(l *zap.Logger) ContextOption {
	return func(c *Context) { c.log = l }
}

// NewContext wraps a kernel for model construction.
func NewContext(k kernel.Kernel, opts ...ContextOption) *Context {
	c := &Context{kern: k, log: zap.NewNop()}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Kernel returns the underlying modeling kernel.
func (c *Context) Kernel() kernel.Kernel { return c.kern }

// Depth reports how many builders are currently open.
func (c *Context) Depth() int { return len(c.stack) }

func (c *Context) push(b Builder) {
	c.stack = append(c.stack, b)
}

// pop removes b from the top of the stack. Closing builders out of
// order is a programming error, not a runtime condition.
func (c *Context) pop(b Builder) {
	n := len(c.stack)
	if n == 0 || c.stack[n-1] != b {
		panic("build: builder closed out of order")
	}
	c.stack[n-1] = nil
	c.stack = c.stack[:n-1]
}

// current returns the innermost open builder.
func (c *Context) current() (Builder, error) {
	if len(c.stack) == 0 {
		return nil, ErrNoActiveContext
	}
	return c.stack[len(c.stack)-1], nil
}

// currentPart returns the innermost builder, which must be a part
// builder.
func (c *Context) currentPart() (*PartBuilder, error) {
	b, err := c.current()
	if err != nil {
		return nil, err
	}
	p, ok := b.(*PartBuilder)
	if !ok {
		return nil, fmt.Errorf("operation needs a part builder: %w", ErrNoActiveContext)
	}
	return p, nil
}
