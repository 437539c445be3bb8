package middleware

import (
	"context"

	"github.com/lazy-lotto/backend/pkg/router"
	"github.com/lazy-lotto/backend/pkg/xcontext"
)

func Logger() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		if r := xcontext.HTTPRequest(ctx); r != nil {
			xcontext.Logger(ctx).Infof("%s | %s", r.Method, r.URL.Path)
		}

		return nil, nil
	}
}
