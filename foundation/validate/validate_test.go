package validate_test

import (
	"testing"

	"github.com/ardanlabs/deschool/foundation/validate"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

type request struct {
	Holder string `json:"holder" validate:"required,address"`
	Blocks uint64 `json:"blocks" validate:"gt=0"`
}

func TestCheck(t *testing.T) {
	t.Log("Given the need to validate request models.")
	{
		t.Logf("\tTest 0:\tWhen the model is valid.")
		{
			req := request{Holder: "0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4", Blocks: 1}
			if err := validate.Check(req); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould accept the model: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould accept the model.", success)
		}

		t.Logf("\tTest 1:\tWhen the model is invalid.")
		{
			err := validate.Check(request{Holder: "0xzz"})
			if !validate.IsFieldErrors(err) {
				t.Fatalf("\t%s\tTest 1:\tShould return field errors: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould return field errors.", success)

			fields := validate.GetFieldErrors(err).Fields()
			if _, exists := fields["holder"]; !exists {
				t.Fatalf("\t%s\tTest 1:\tShould name the holder field by its json tag: %v", failed, fields)
			}
			if _, exists := fields["blocks"]; !exists {
				t.Fatalf("\t%s\tTest 1:\tShould name the blocks field by its json tag: %v", failed, fields)
			}
			t.Logf("\t%s\tTest 1:\tShould name both fields by their json tags.", success)
		}
	}
}
