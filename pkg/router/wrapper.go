package router

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lazy-lotto/backend/pkg/errorx"
	"github.com/lazy-lotto/backend/pkg/xcontext"
)

const requestContextKey = "lotto-request-context"

func requestContext(r *Router, gctx *gin.Context) context.Context {
	if value, ok := gctx.Get(requestContextKey); ok {
		return value.(context.Context)
	}

	return xcontext.WithHTTPRequest(r.base, gctx.Request)
}

func wrapHandler[Request, Response any](
	r *Router,
	method string,
	handler HandlerFunc[Request, Response],
) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		var req Request
		var err error
		switch method {
		case http.MethodGet:
			err = gctx.ShouldBindQuery(&req)
		case http.MethodPost:
			err = gctx.ShouldBindJSON(&req)
		}

		ctx := requestContext(r, gctx)
		if err != nil {
			xcontext.Logger(ctx).Debugf("Cannot bind the request: %v", err)
			gctx.JSON(http.StatusOK, newErrorResponse(
				errorx.New(errorx.BadRequest, "Cannot bind the request")))
			return
		}

		resp, err := handler(ctx, &req)
		if err != nil {
			gctx.JSON(http.StatusOK, newErrorResponse(err))
			return
		}

		gctx.JSON(http.StatusOK, newResponse(resp))
	}
}

func wrapMiddleware(r *Router, middleware MiddlewareFunc) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		ctx, err := middleware(requestContext(r, gctx))
		if err != nil {
			gctx.JSON(http.StatusOK, newErrorResponse(err))
			gctx.Abort()
			return
		}

		if ctx != nil {
			gctx.Set(requestContextKey, ctx)
		}
	}
}
