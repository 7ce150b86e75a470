// Package private maintains the group of handlers for node operator access.
package private

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ardanlabs/deschool/app/services/school/handlers/v1/params"
	"github.com/ardanlabs/deschool/business/sys/metrics"
	"github.com/ardanlabs/deschool/business/web/errs"
	"github.com/ardanlabs/deschool/foundation/deschool/state"
	"github.com/ardanlabs/deschool/foundation/deschool/storage"
	"github.com/ardanlabs/deschool/foundation/events"
	"github.com/ardanlabs/deschool/foundation/validate"
	"github.com/ardanlabs/deschool/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of operator endpoints.
type Handlers struct {
	Log     *zap.SugaredLogger
	State   *state.State
	Evts    *events.Events
	Metrics *metrics.Metrics
}

// Status returns the current status of the school.
func (h Handlers) Status(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	st := status{
		Block:       h.State.Block(),
		Seq:         h.State.Seq(),
		Addresses:   h.State.Addresses(),
		Courses:     h.State.NextCourseID(),
		Batch:       h.State.CurrentBatchID(),
		Subscribers: h.Evts.Len(),
	}

	return web.Respond(ctx, w, st, http.StatusOK)
}

// Mine advances the block height.
func (h Handlers) Mine(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var req mineRequest
	if err := web.Decode(r, &req); err != nil {
		return decodeError(err)
	}

	h.Log.Infow("mine", "traceid", v.TraceID, "blocks", req.Blocks)

	rcpt, err := h.State.Mine(ctx, req.Blocks)
	h.Metrics.AddOperation(state.OpMine, err)
	if err != nil {
		return errs.FromRejection(err)
	}

	h.Metrics.SetBlock(h.State.Block())

	return web.Respond(ctx, w, rcpt, http.StatusOK)
}

// Harvest moves profit from the node operator, the genesis deployer, into
// the simulated vault. Other keepers harvest with a signed transaction.
func (h Handlers) Harvest(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var req harvestRequest
	if err := web.Decode(r, &req); err != nil {
		return decodeError(err)
	}

	profit, err := req.profit()
	if err != nil {
		return errs.NewTrusted(fmt.Errorf("invalid profit: %w", err), http.StatusBadRequest)
	}

	keeper := h.State.Genesis().Deployer

	h.Log.Infow("harvest", "traceid", v.TraceID, "keeper", keeper, "profit", profit)

	rcpt, err := h.State.Harvest(ctx, keeper, profit)
	h.Metrics.AddOperation(state.OpHarvest, err)
	if err != nil {
		return errs.FromRejection(err)
	}

	return web.Respond(ctx, w, rcpt, http.StatusOK)
}

// Journal returns the journaled records, optionally limited to the
// inclusive sequence range from/to.
func (h Handlers) Journal(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	records, err := h.State.Records()
	if err != nil {
		return err
	}

	if web.Param(r, "from") == "" {
		return web.Respond(ctx, w, records, http.StatusOK)
	}

	from, err := params.ID(r, "from")
	if err != nil {
		return err
	}

	to, err := params.ID(r, "to")
	if err != nil {
		return err
	}

	if from > to {
		return errs.NewTrusted(fmt.Errorf("from %d is greater than to %d", from, to), http.StatusBadRequest)
	}

	out := make([]storage.Record, 0, len(records))
	for _, rec := range records {
		if rec.Seq >= from && rec.Seq <= to {
			out = append(out, rec)
		}
	}

	return web.Respond(ctx, w, out, http.StatusOK)
}

// decodeError keeps validation errors intact for the error middleware and
// marks everything else as a bad request.
func decodeError(err error) error {
	if validate.IsFieldErrors(err) {
		return err
	}
	return errs.NewTrusted(err, http.StatusBadRequest)
}
