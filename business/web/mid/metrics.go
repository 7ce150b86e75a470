package mid

import (
	"context"
	"net/http"
	"time"

	"github.com/ardanlabs/deschool/business/sys/metrics"
	"github.com/ardanlabs/deschool/foundation/web"
)

// Metrics updates program counters.
func Metrics(m *metrics.Metrics) web.Middleware {

	// This is the actual middleware function to be executed.
	mw := func(handler web.Handler) web.Handler {

		// Create the handler that will be attached in the middleware chain.
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

			// Call the next handler.
			err := handler(ctx, w, r)

			status := http.StatusInternalServerError
			start := time.Now()
			if v, verr := web.GetValues(ctx); verr == nil {
				status = v.StatusCode
				start = v.Now
			}

			// Routes are recorded with their pattern so account and course
			// ids do not explode the label space.
			m.AddRequest(r.Method, route(ctx, r), status, time.Since(start))

			// Increment if there is an error flowing through the request.
			if err != nil {
				m.AddError()
			}

			// Return the error so it can be handled further up the chain.
			return err
		}

		return h
	}

	return mw
}
