// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/ardanlabs/deschool/app/services/school/handlers/v1/params"
	"github.com/ardanlabs/deschool/business/sys/metrics"
	"github.com/ardanlabs/deschool/business/web/errs"
	"github.com/ardanlabs/deschool/foundation/deschool/state"
	"github.com/ardanlabs/deschool/foundation/deschool/txn"
	"github.com/ardanlabs/deschool/foundation/events"
	"github.com/ardanlabs/deschool/foundation/nameservice"
	"github.com/ardanlabs/deschool/foundation/web"
	"github.com/gorilla/websocket"
	"github.com/holiman/uint256"
	"go.uber.org/zap"
)

// Handlers manages the set of school endpoints.
type Handlers struct {
	Log     *zap.SugaredLogger
	State   *state.State
	NS      *nameservice.NameService
	WS      websocket.Upgrader
	Evts    *events.Events
	Metrics *metrics.Metrics
}

// Events handles a web socket to provide events to a client. The names
// query parameter restricts the stream to a comma separated list of events.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	var names []string
	if q := web.Query(r, "names"); q != "" {
		names = strings.Split(q, ",")
	}

	ch := h.Evts.Acquire(v.TraceID, names...)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// SubmitTransaction executes a signed wallet transaction and returns the
// receipt with the emitted events.
func (h Handlers) SubmitTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var signedTx txn.SignedTx
	if err := web.Decode(r, &signedTx); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	h.Log.Infow("submit tx", "traceid", v.TraceID, "tx", signedTx, "sig", signedTx.SignatureString())

	rcpt, err := h.State.SubmitTx(ctx, signedTx)
	h.Metrics.AddOperation(signedTx.Op, err)
	if err != nil {
		return errs.FromRejection(err)
	}

	return web.Respond(ctx, w, rcpt, http.StatusOK)
}

// Genesis returns the genesis information and the component addresses.
func (h Handlers) Genesis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	gi := genesisInfo{
		Genesis:   h.State.Genesis(),
		Addresses: h.State.Addresses(),
		Domain:    h.State.PermitDomain(),
		Block:     h.State.Block(),
	}

	return web.Respond(ctx, w, gi, http.StatusOK)
}

// Accounts returns the reserve balance of every account.
func (h Handlers) Accounts(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	bals := h.State.TokenBalances()

	resp := balances{
		Block:    h.State.Block(),
		Balances: make([]balance, 0, len(bals)),
	}
	for address, amount := range bals {
		resp.Balances = append(resp.Balances, balance{
			Address: address,
			Name:    h.NS.Lookup(address),
			Balance: amount,
		})
	}

	sort.Slice(resp.Balances, func(i, j int) bool {
		return resp.Balances[i].Address.Cmp(resp.Balances[j].Address) < 0
	})

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Account returns everything the school knows about an account.
func (h Handlers) Account(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	address, err := params.Address(r, "account")
	if err != nil {
		return err
	}

	addrs := h.State.Addresses()

	act := account{
		Address:      address,
		Name:         h.NS.Lookup(address),
		Nonce:        h.State.Nonce(address),
		PermitNonce:  h.State.PermitNonce(address),
		Reserve:      h.State.TokenBalance(address),
		Learn:        h.State.LearnBalance(address),
		SchoolAllow:  h.State.Allowance(address, addrs.School),
		CurveAllow:   h.State.Allowance(address, addrs.Curve),
		YieldRewards: h.State.YieldRewards(address),
	}

	return web.Respond(ctx, w, act, http.StatusOK)
}

// Courses returns every course.
func (h Handlers) Courses(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.Courses(), http.StatusOK)
}

// Course returns the specified course.
func (h Handlers) Course(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	courseID, err := params.ID(r, "course")
	if err != nil {
		return err
	}

	c, err := h.State.Course(courseID)
	if err != nil {
		return errs.FromRejection(err)
	}

	return web.Respond(ctx, w, c, http.StatusOK)
}

// NextCourse returns the id the next course will receive.
func (h Handlers) NextCourse(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, nextCourse{CourseID: h.State.NextCourseID()}, http.StatusOK)
}

// Registrations returns the seats on the course.
func (h Handlers) Registrations(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	courseID, err := params.ID(r, "course")
	if err != nil {
		return err
	}

	if _, err := h.State.Course(courseID); err != nil {
		return errs.FromRejection(err)
	}

	return web.Respond(ctx, w, h.State.Registrations(courseID), http.StatusOK)
}

// Registration returns a learner's seat with its settlement progress.
func (h Handlers) Registration(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	courseID, err := params.ID(r, "course")
	if err != nil {
		return err
	}

	learner, err := params.Address(r, "account")
	if err != nil {
		return err
	}

	reg, err := h.State.Registration(learner, courseID)
	if err != nil {
		return errs.FromRejection(err)
	}

	elapsed, err := h.State.Verify(learner, courseID)
	if err != nil {
		return errs.FromRejection(err)
	}

	eligible, err := h.State.EligibleFunds(learner, courseID)
	if err != nil {
		return errs.FromRejection(err)
	}

	remaining, err := h.State.FundsRemaining(learner, courseID)
	if err != nil {
		return errs.FromRejection(err)
	}

	resp := registration{
		Registration:   reg,
		LearnerName:    h.NS.Lookup(learner),
		Checkpoints:    elapsed,
		EligibleFunds:  eligible,
		FundsRemaining: remaining,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Scholarships returns the scholarship pool of the course.
func (h Handlers) Scholarships(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	courseID, err := params.ID(r, "course")
	if err != nil {
		return err
	}

	pool, err := h.State.ScholarshipPool(courseID)
	if err != nil {
		return errs.FromRejection(err)
	}

	return web.Respond(ctx, w, pool, http.StatusOK)
}

// Batches returns every batch.
func (h Handlers) Batches(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.Batches(), http.StatusOK)
}

// Batch returns the specified batch.
func (h Handlers) Batch(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	batchID, err := params.ID(r, "batch")
	if err != nil {
		return err
	}

	b, err := h.State.Batch(batchID)
	if err != nil {
		return errs.FromRejection(err)
	}

	return web.Respond(ctx, w, b, http.StatusOK)
}

// CurrentBatch returns the open batch id and its total.
func (h Handlers) CurrentBatch(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	resp := currentBatch{
		BatchID: h.State.CurrentBatchID(),
		Total:   h.State.CurrentBatchTotal(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Curve returns the bonding curve state.
func (h Handlers) Curve(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.Curve(), http.StatusOK)
}

// Mintable returns the LEARN minted for a reserve deposit.
func (h Handlers) Mintable(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return h.quote(ctx, w, r, h.State.Mintable)
}

// Burnable returns the LEARN burned to withdraw a reserve amount.
func (h Handlers) Burnable(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return h.quote(ctx, w, r, h.State.Burnable)
}

// PredictBurn returns the reserve released for burning a LEARN amount.
func (h Handlers) PredictBurn(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return h.quote(ctx, w, r, h.State.PredictBurn)
}

func (h Handlers) quote(ctx context.Context, w http.ResponseWriter, r *http.Request, fn func(*uint256.Int) (*uint256.Int, error)) error {
	amount, err := params.Amount(r, "amount")
	if err != nil {
		return err
	}

	result, err := fn(amount)
	if err != nil {
		return errs.FromRejection(fmt.Errorf("quote: %w", err))
	}

	return web.Respond(ctx, w, quote{Amount: amount, Result: result}, http.StatusOK)
}

// Vault returns the school position in the yield source.
func (h Handlers) Vault(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.Vault(), http.StatusOK)
}
