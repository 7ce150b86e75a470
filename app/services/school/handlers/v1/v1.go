// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/ardanlabs/deschool/app/services/school/handlers/v1/private"
	"github.com/ardanlabs/deschool/app/services/school/handlers/v1/public"
	"github.com/ardanlabs/deschool/business/sys/metrics"
	"github.com/ardanlabs/deschool/foundation/deschool/state"
	"github.com/ardanlabs/deschool/foundation/events"
	"github.com/ardanlabs/deschool/foundation/nameservice"
	"github.com/ardanlabs/deschool/foundation/web"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log     *zap.SugaredLogger
	State   *state.State
	NS      *nameservice.NameService
	Evts    *events.Events
	Metrics *metrics.Metrics
}

// PublicRoutes binds all the version 1 public routes.
func PublicRoutes(app *web.App, cfg Config) {
	pbl := public.Handlers{
		Log:     cfg.Log,
		State:   cfg.State,
		NS:      cfg.NS,
		Evts:    cfg.Evts,
		Metrics: cfg.Metrics,
	}

	app.Handle(http.MethodGet, version, "/events", pbl.Events)
	app.Handle(http.MethodGet, version, "/genesis/list", pbl.Genesis)
	app.Handle(http.MethodGet, version, "/accounts/list", pbl.Accounts)
	app.Handle(http.MethodGet, version, "/accounts/list/:account", pbl.Account)
	app.Handle(http.MethodPost, version, "/tx/submit", pbl.SubmitTransaction)
	app.Handle(http.MethodGet, version, "/courses/list", pbl.Courses)
	app.Handle(http.MethodGet, version, "/courses/list/:course", pbl.Course)
	app.Handle(http.MethodGet, version, "/courses/next", pbl.NextCourse)
	app.Handle(http.MethodGet, version, "/registrations/list/:course", pbl.Registrations)
	app.Handle(http.MethodGet, version, "/registrations/list/:course/:account", pbl.Registration)
	app.Handle(http.MethodGet, version, "/scholarships/list/:course", pbl.Scholarships)
	app.Handle(http.MethodGet, version, "/batches/list", pbl.Batches)
	app.Handle(http.MethodGet, version, "/batches/list/:batch", pbl.Batch)
	app.Handle(http.MethodGet, version, "/batches/current", pbl.CurrentBatch)
	app.Handle(http.MethodGet, version, "/curve", pbl.Curve)
	app.Handle(http.MethodGet, version, "/curve/mintable/:amount", pbl.Mintable)
	app.Handle(http.MethodGet, version, "/curve/burnable/:amount", pbl.Burnable)
	app.Handle(http.MethodGet, version, "/curve/predict/:amount", pbl.PredictBurn)
	app.Handle(http.MethodGet, version, "/vault", pbl.Vault)
}

// PrivateRoutes binds all the version 1 private routes.
func PrivateRoutes(app *web.App, cfg Config) {
	prv := private.Handlers{
		Log:     cfg.Log,
		State:   cfg.State,
		Evts:    cfg.Evts,
		Metrics: cfg.Metrics,
	}

	app.Handle(http.MethodGet, version, "/node/status", prv.Status)
	app.Handle(http.MethodPost, version, "/node/mine", prv.Mine)
	app.Handle(http.MethodPost, version, "/node/harvest", prv.Harvest)
	app.Handle(http.MethodGet, version, "/node/journal/list", prv.Journal)
	app.Handle(http.MethodGet, version, "/node/journal/list/:from/:to", prv.Journal)
}
