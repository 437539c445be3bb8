package router

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// HandlerFunc is the shape every domain operation exposes to the router.
type HandlerFunc[Request, Response any] func(ctx context.Context, req *Request) (*Response, error)

// MiddlewareFunc runs before the handler. A non-nil returned context replaces
// the request context for everything downstream.
type MiddlewareFunc func(ctx context.Context) (context.Context, error)

type Router struct {
	Inner gin.IRouter

	base   context.Context
	engine *gin.Engine
}

// New creates a Router rooted at the given base context. The base context
// carries configs, logger, database, and the rest of the ambient state; every
// request context is derived from it.
func New(ctx context.Context) *Router {
	engine := gin.New()
	engine.Use(gin.Recovery())

	return &Router{
		Inner:  engine,
		base:   ctx,
		engine: engine,
	}
}

func GET[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.Inner.GET(pattern, wrapHandler(r, http.MethodGet, handler))
}

func POST[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.Inner.POST(pattern, wrapHandler(r, http.MethodPost, handler))
}

func (r *Router) Use(middleware MiddlewareFunc) {
	r.Inner.Use(wrapMiddleware(r, middleware))
}

// Branch creates a sub router sharing the base context. Middlewares added to
// the branch do not affect the parent.
func (r *Router) Branch() *Router {
	return &Router{
		Inner:  r.Inner.Group(""),
		base:   r.base,
		engine: r.engine,
	}
}

func (r *Router) Group(pattern string) *Router {
	return &Router{
		Inner:  r.Inner.Group(pattern),
		base:   r.base,
		engine: r.engine,
	}
}

func (r *Router) Handler() http.Handler {
	return r.engine
}
