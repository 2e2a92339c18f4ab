// SPDX-License-Identifier: MIT
package methods

import (
	"sigbench/internal/method"
	"sigbench/internal/signal"
)

// IdentityID is the ID of the pass-through denoiser.
const IdentityID = "identity_denoise"

// Identity is a denoiser that returns its input unchanged. It is the
// baseline every other denoiser is compared with, and takes no parameters.
type Identity struct {
	method.Template
}

// NewIdentity constructs the identity denoiser.
func NewIdentity() method.Method {
	return &Identity{method.Template{MethodID: IdentityID, MethodTask: method.Denoising}}
}

// Apply returns a copy of sig. Any non-nil params are rejected.
func (m *Identity) Apply(sig signal.Signal, params method.Params) (method.Result, error) {
	if len(params) > 0 {
		return method.Result{}, method.InvalidParamsf("%s takes no parameters, got %s", m.ID(), params)
	}
	return method.Denoised(sig.Clone()), nil
}
