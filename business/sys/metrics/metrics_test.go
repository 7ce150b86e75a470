package metrics_test

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/ardanlabs/deschool/business/sys/metrics"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func TestMetrics(t *testing.T) {
	t.Log("Given the need to track service metrics.")
	{
		t.Logf("\tTest 0:\tWhen recording requests and operations.")
		{
			m := metrics.New("school")

			m.AddRequest(http.MethodGet, "/v1/courses", http.StatusOK, time.Millisecond)
			m.AddOperation("register", nil)
			m.AddOperation("register", errors.New("already registered"))
			m.AddEvent("LearnerRegistered")
			m.AddError()
			m.AddPanic()
			m.SetBlock(42)

			families, err := m.Gatherer().Gather()
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to gather metrics: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to gather metrics.", success)

			found := make(map[string]int)
			for _, mf := range families {
				found[mf.GetName()] = len(mf.GetMetric())
			}

			if found["school_operations_total"] != 2 {
				t.Fatalf("\t%s\tTest 0:\tShould record ok and rejected operations: %v", failed, found)
			}
			if found["school_http_requests_total"] != 1 {
				t.Fatalf("\t%s\tTest 0:\tShould record the request: %v", failed, found)
			}
			t.Logf("\t%s\tTest 0:\tShould record the request and both operation results.", success)
		}
	}
}
