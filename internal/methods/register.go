// SPDX-License-Identifier: MIT
// Package methods contains the built-in denoising and detection methods.
//
// New methods embed method.Template, implement Apply, optionally implement
// method.ParameterSource, and are added to RegisterBuiltins.
package methods

import (
	"sigbench/internal/method"
	"sigbench/internal/registry"
)

// Compile-time checks for interface implementations.
var (
	_ method.Method          = (*Identity)(nil)
	_ method.Method          = (*NoiseGate)(nil)
	_ method.ParameterSource = (*NoiseGate)(nil)
	_ method.Method          = (*SpectralGate)(nil)
	_ method.ParameterSource = (*SpectralGate)(nil)
	_ method.Method          = (*EnergyOnset)(nil)
	_ method.ParameterSource = (*EnergyOnset)(nil)
	_ method.Method          = (*PeakDetection)(nil)
	_ method.ParameterSource = (*PeakDetection)(nil)
)

// builtins lists every built-in method in display order.
var builtins = []struct {
	id      string
	factory registry.Factory
}{
	{IdentityID, NewIdentity},
	{NoiseGateID, NewNoiseGate},
	{SpectralGateID, NewSpectralGate},
	{EnergyOnsetID, NewEnergyOnset},
	{PeakDetectionID, NewPeakDetection},
}

// RegisterBuiltins adds every built-in method to r.
func RegisterBuiltins(r *registry.Registry) error {
	for _, b := range builtins {
		if err := r.Register(b.id, b.factory); err != nil {
			return err
		}
	}
	return nil
}

// DefaultRegistry returns a registry holding the built-in methods.
func DefaultRegistry() *registry.Registry {
	r := registry.New()
	if err := RegisterBuiltins(r); err != nil {
		panic("methods: " + err.Error())
	}
	return r
}
