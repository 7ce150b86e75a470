package handlers_test

import (
	"bytes"
	"crypto/ecdsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/ardanlabs/deschool/app/services/school/handlers"
	"github.com/ardanlabs/deschool/business/sys/metrics"
	"github.com/ardanlabs/deschool/business/web/errs"
	"github.com/ardanlabs/deschool/foundation/deschool/genesis"
	"github.com/ardanlabs/deschool/foundation/deschool/state"
	"github.com/ardanlabs/deschool/foundation/deschool/storage"
	"github.com/ardanlabs/deschool/foundation/deschool/storage/memory"
	"github.com/ardanlabs/deschool/foundation/deschool/txn"
	"github.com/ardanlabs/deschool/foundation/deschool/vesting"
	"github.com/ardanlabs/deschool/foundation/events"
	"github.com/ardanlabs/deschool/foundation/nameservice"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"go.uber.org/zap"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const zdata = "../../../../zdata"

type school struct {
	public  http.Handler
	private http.Handler
	state   *state.State
	chainID uint16
}

func newSchool(t *testing.T) school {
	gen, err := genesis.Load(zdata + "/genesis.json")
	if err != nil {
		t.Fatalf("unable to load genesis: %v", err)
	}

	ns, err := nameservice.New(zdata + "/accounts")
	if err != nil {
		t.Fatalf("unable to load accounts: %v", err)
	}

	evts := events.New()
	st, err := state.New(state.Config{
		Genesis:   gen,
		Storage:   memory.New(),
		EvHandler: func(v string, args ...any) { evts.Send(v) },
	})
	if err != nil {
		t.Fatalf("unable to construct state: %v", err)
	}

	cfg := handlers.MuxConfig{
		Shutdown:   make(chan os.Signal, 1),
		Log:        zap.NewNop().Sugar(),
		State:      st,
		NS:         ns,
		Evts:       evts,
		Metrics:    metrics.New("test"),
		CorsOrigin: "*",
	}

	return school{
		public:  handlers.PublicMux(cfg),
		private: handlers.PrivateMux(cfg),
		state:   st,
		chainID: gen.ChainID,
	}
}

func loadKey(t *testing.T, name string) *ecdsa.PrivateKey {
	pk, err := crypto.LoadECDSA(zdata + "/accounts/" + name + ".ecdsa")
	if err != nil {
		t.Fatalf("unable to load %s key: %v", name, err)
	}
	return pk
}

func call(h http.Handler, method string, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}

	r := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	return w
}

func (s school) submit(t *testing.T, pk *ecdsa.PrivateKey, nonce uint64, op string, args any) *httptest.ResponseRecorder {
	tx, err := txn.New(s.chainID, nonce, op, args)
	if err != nil {
		t.Fatalf("unable to build %s tx: %v", op, err)
	}

	signedTx, err := tx.Sign(pk)
	if err != nil {
		t.Fatalf("unable to sign %s tx: %v", op, err)
	}

	return call(s.public, http.MethodPost, "/v1/tx/submit", signedTx)
}

func TestCourseFlow(t *testing.T) {
	s := newSchool(t)

	steward := loadKey(t, "steward")
	learner := loadKey(t, "learner")
	learnerAddr := crypto.PubkeyToAddress(learner.PublicKey)

	t.Log("Given the need to run a course through the web api.")
	{
		t.Logf("\tTest 0:\tWhen the steward creates a course and a learner registers.")
		{
			w := s.submit(t, steward, 1, state.OpCreateCourse, state.CreateCourseArgs{
				Fee:      uint256.NewInt(100),
				Schedule: vesting.NewCheckpointed(4, 10),
				URL:      "https://school.example/go",
			})
			if w.Code != http.StatusOK {
				t.Fatalf("\t%s\tTest 0:\tShould create the course: %d %s", failed, w.Code, w.Body)
			}

			var rcpt state.Receipt
			if err := json.NewDecoder(w.Body).Decode(&rcpt); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould decode the receipt: %v", failed, err)
			}
			if len(rcpt.Events) != 1 || rcpt.Events[0].Name != state.EvCourseCreated {
				t.Fatalf("\t%s\tTest 0:\tShould emit CourseCreated: %+v", failed, rcpt.Events)
			}
			t.Logf("\t%s\tTest 0:\tShould create the course and emit CourseCreated.", success)

			addrs := s.state.Addresses()
			if w := s.submit(t, learner, 1, state.OpApprove, state.ApproveArgs{Spender: addrs.School, Amount: uint256.NewInt(100)}); w.Code != http.StatusOK {
				t.Fatalf("\t%s\tTest 0:\tShould approve the school: %d %s", failed, w.Code, w.Body)
			}
			if w := s.submit(t, learner, 2, state.OpRegister, state.CourseArgs{CourseID: 0}); w.Code != http.StatusOK {
				t.Fatalf("\t%s\tTest 0:\tShould register the learner: %d %s", failed, w.Code, w.Body)
			}
			t.Logf("\t%s\tTest 0:\tShould register the learner.", success)

			w = s.submit(t, learner, 3, state.OpRegister, state.CourseArgs{CourseID: 0})
			if w.Code != http.StatusConflict {
				t.Fatalf("\t%s\tTest 0:\tShould reject a second registration with 409: got %d", failed, w.Code)
			}

			var er errs.Response
			if err := json.NewDecoder(w.Body).Decode(&er); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould decode the error: %v", failed, err)
			}
			if er.Error != "register: already registered" || er.Kind != "duplicate" {
				t.Fatalf("\t%s\tTest 0:\tShould report the duplicate: %+v", failed, er)
			}
			t.Logf("\t%s\tTest 0:\tShould reject a second registration with the reason.", success)
		}

		t.Logf("\tTest 1:\tWhen the operator mines blocks.")
		{
			w := call(s.private, http.MethodPost, "/v1/node/mine", map[string]any{"blocks": 0})
			if w.Code != http.StatusBadRequest {
				t.Fatalf("\t%s\tTest 1:\tShould reject mining zero blocks: got %d", failed, w.Code)
			}

			var er errs.Response
			if err := json.NewDecoder(w.Body).Decode(&er); err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould decode the error: %v", failed, err)
			}
			if _, exists := er.Fields["blocks"]; !exists {
				t.Fatalf("\t%s\tTest 1:\tShould name the blocks field: %+v", failed, er)
			}
			t.Logf("\t%s\tTest 1:\tShould reject mining zero blocks.", success)

			if w := call(s.private, http.MethodPost, "/v1/node/mine", map[string]any{"blocks": 10}); w.Code != http.StatusOK {
				t.Fatalf("\t%s\tTest 1:\tShould mine ten blocks: %d %s", failed, w.Code, w.Body)
			}
			if s.state.Block() != 10 {
				t.Fatalf("\t%s\tTest 1:\tShould be at block 10: got %d", failed, s.state.Block())
			}
			t.Logf("\t%s\tTest 1:\tShould mine ten blocks.", success)

			if w := s.submit(t, learner, 3, state.OpMine, state.MineArgs{Blocks: 1}); w.Code != http.StatusUnauthorized {
				t.Fatalf("\t%s\tTest 1:\tShould not mine from a wallet: got %d", failed, w.Code)
			}
			t.Logf("\t%s\tTest 1:\tShould not mine from a wallet.", success)
		}

		t.Logf("\tTest 2:\tWhen querying the learner's registration.")
		{
			w := call(s.public, http.MethodGet, "/v1/registrations/list/0/"+learnerAddr.Hex(), nil)
			if w.Code != http.StatusOK {
				t.Fatalf("\t%s\tTest 2:\tShould return the registration: %d %s", failed, w.Code, w.Body)
			}

			var reg struct {
				Checkpoints    uint64       `json:"checkpoints_elapsed"`
				EligibleFunds  *uint256.Int `json:"eligible_funds"`
				FundsRemaining *uint256.Int `json:"funds_remaining"`
			}
			if err := json.NewDecoder(w.Body).Decode(&reg); err != nil {
				t.Fatalf("\t%s\tTest 2:\tShould decode the registration: %v", failed, err)
			}
			if reg.Checkpoints != 1 || reg.EligibleFunds.Uint64() != 25 || reg.FundsRemaining.Uint64() != 100 {
				t.Fatalf("\t%s\tTest 2:\tShould have 25 eligible of 100 after one checkpoint: %+v", failed, reg)
			}
			t.Logf("\t%s\tTest 2:\tShould have 25 eligible of 100 after one checkpoint.", success)

			if w := call(s.public, http.MethodGet, "/v1/registrations/list/7/"+learnerAddr.Hex(), nil); w.Code != http.StatusNotFound {
				t.Fatalf("\t%s\tTest 2:\tShould return 404 for an unknown course: got %d", failed, w.Code)
			}
			if w := call(s.public, http.MethodGet, "/v1/registrations/list/0/learner", nil); w.Code != http.StatusBadRequest {
				t.Fatalf("\t%s\tTest 2:\tShould return 400 for a bad address: got %d", failed, w.Code)
			}
			t.Logf("\t%s\tTest 2:\tShould map lookup failures to 404 and 400.", success)
		}

		t.Logf("\tTest 3:\tWhen listing the journal.")
		{
			w := call(s.private, http.MethodGet, "/v1/node/journal/list", nil)
			if w.Code != http.StatusOK {
				t.Fatalf("\t%s\tTest 3:\tShould list the journal: %d %s", failed, w.Code, w.Body)
			}

			var records []storage.Record
			if err := json.NewDecoder(w.Body).Decode(&records); err != nil {
				t.Fatalf("\t%s\tTest 3:\tShould decode the journal: %v", failed, err)
			}

			ops := []string{state.OpCreateCourse, state.OpApprove, state.OpRegister, state.OpMine}
			if len(records) != len(ops) {
				t.Fatalf("\t%s\tTest 3:\tShould journal only the successful operations: got %d", failed, len(records))
			}
			for i, op := range ops {
				if records[i].Op != op {
					t.Fatalf("\t%s\tTest 3:\tShould journal %s at %d: got %s", failed, op, i, records[i].Op)
				}
			}
			t.Logf("\t%s\tTest 3:\tShould journal only the successful operations.", success)

			w = call(s.private, http.MethodGet, "/v1/node/journal/list/2/3", nil)
			records = nil
			if err := json.NewDecoder(w.Body).Decode(&records); err != nil || len(records) != 2 {
				t.Fatalf("\t%s\tTest 3:\tShould return the requested range: %v %d", failed, err, len(records))
			}
			t.Logf("\t%s\tTest 3:\tShould return the requested range.", success)
		}

		t.Logf("\tTest 4:\tWhen the operator harvests profit into the vault.")
		{
			if w := s.submit(t, learner, 3, state.OpBatchDeposit, struct{}{}); w.Code != http.StatusOK {
				t.Fatalf("\t%s\tTest 4:\tShould deposit the open batch: %d %s", failed, w.Code, w.Body)
			}

			deployer := s.state.Genesis().Deployer
			w := call(s.private, http.MethodPost, "/v1/node/harvest", map[string]any{"keeper": learnerAddr.Hex(), "profit": "10"})
			if w.Code != http.StatusBadRequest {
				t.Fatalf("\t%s\tTest 4:\tShould not accept a keeper in the request: got %d", failed, w.Code)
			}
			t.Logf("\t%s\tTest 4:\tShould not accept a keeper in the request.", success)

			learnerBal := s.state.TokenBalance(learnerAddr)
			deployerBal := s.state.TokenBalance(deployer)

			if w := call(s.private, http.MethodPost, "/v1/node/harvest", map[string]any{"profit": "10"}); w.Code != http.StatusOK {
				t.Fatalf("\t%s\tTest 4:\tShould harvest: %d %s", failed, w.Code, w.Body)
			}

			exp := new(uint256.Int).Sub(deployerBal, uint256.NewInt(10))
			if got := s.state.TokenBalance(deployer); !got.Eq(exp) {
				t.Fatalf("\t%s\tTest 4:\tShould take the profit from the deployer: got %s exp %s", failed, got.Dec(), exp.Dec())
			}
			if got := s.state.TokenBalance(learnerAddr); !got.Eq(learnerBal) {
				t.Fatalf("\t%s\tTest 4:\tShould leave other accounts untouched: got %s", failed, got.Dec())
			}
			t.Logf("\t%s\tTest 4:\tShould take the profit from the deployer only.", success)
		}
	}
}
