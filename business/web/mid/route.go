package mid

import (
	"context"
	"net/http"

	"github.com/dimfeld/httptreemux/v5"
)

// route returns the matched route pattern or the raw path when the router
// did not record one.
func route(ctx context.Context, r *http.Request) string {
	if data := httptreemux.ContextData(ctx); data != nil {
		if pattern := data.Route(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}
