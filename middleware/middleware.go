package middleware

import (
	"context"

	"github.com/sweetpotato0/chainsocket/capability"
)

// Context represents one capability call passing through the chain
type Context struct {
	// Kind and Name identify the target capability
	Kind capability.Kind
	Name string

	// Caller is the agent making the call, when known
	Caller string

	// Input is the user prompt, tool input or delegated input
	Input string

	// Output is set by the final handler
	Output string

	// Error from execution
	Error error

	// Metadata for passing data between middlewares
	Metadata map[string]any

	// Internal state
	context context.Context
}

// NewContext creates a new middleware context
func NewContext(ctx context.Context, kind capability.Kind, name, input string) *Context {
	return &Context{
		Kind:     kind,
		Name:     name,
		Caller:   capability.CallerFrom(ctx),
		Input:    input,
		Metadata: make(map[string]any),
		context:  ctx,
	}
}

// Context returns the underlying context.Context
func (c *Context) Context() context.Context {
	if c.context == nil {
		return context.Background()
	}
	return c.context
}

// Middleware defines the interface for middleware components
// Middlewares can intercept and modify capability calls made through a host
type Middleware interface {
	// Name returns the name of the middleware for logging and debugging
	Name() string

	// Execute runs the middleware logic
	// It receives the current context and a next handler to continue the chain
	// Returning error will stop the middleware chain
	Execute(ctx *Context, next Handler) error
}

// Handler is the function called to pass control to the next middleware
type Handler func(*Context) error

// Func adapts a function to the Middleware interface.
type Func struct {
	ID string
	Fn func(ctx *Context, next Handler) error
}

// Name returns the middleware name
func (f Func) Name() string { return f.ID }

// Execute calls Fn
func (f Func) Execute(ctx *Context, next Handler) error { return f.Fn(ctx, next) }

// MiddlewareChain represents a sequence of middleware to be executed
type MiddlewareChain struct {
	middlewares []Middleware
}

// NewChain creates a new middleware chain
func NewChain(middlewares ...Middleware) *MiddlewareChain {
	return &MiddlewareChain{
		middlewares: middlewares,
	}
}

// Add appends a middleware to the chain
func (c *MiddlewareChain) Add(m Middleware) *MiddlewareChain {
	c.middlewares = append(c.middlewares, m)
	return c
}

// Len returns the number of middlewares in the chain
func (c *MiddlewareChain) Len() int {
	return len(c.middlewares)
}

// Execute runs all middlewares in the chain. The handler's error is also
// stored in ctx.Error so outer middlewares can observe it.
func (c *MiddlewareChain) Execute(ctx *Context, finalHandler Handler) error {
	return c.executeMiddleware(ctx, 0, func(ctx *Context) error {
		err := finalHandler(ctx)
		ctx.Error = err
		return err
	})
}

// executeMiddleware recursively executes middlewares in sequence
func (c *MiddlewareChain) executeMiddleware(ctx *Context, index int, finalHandler Handler) error {
	if index >= len(c.middlewares) {
		return finalHandler(ctx)
	}

	nextHandler := func(ctx *Context) error {
		return c.executeMiddleware(ctx, index+1, finalHandler)
	}

	return c.middlewares[index].Execute(ctx, nextHandler)
}
