package assertion

import (
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// Assertion is the federated login payload the gateway's /auth/exchange
// accepts: the Google subject plus the profile fields the portals collect
// from the sign-in widget.
type Assertion struct {
	GoogleID string `json:"google_id" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name"`
}

var validate = validator.New()

// Validate checks the payload before it is sent to the gateway, mirroring the
// gateway's own binding rules.
func (a Assertion) Validate() error {
	if err := validate.Struct(a); err != nil {
		return errors.Wrap(err, "[Assertion.Validate]")
	}
	return nil
}
