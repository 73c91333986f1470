//
// Copyright 2024 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//

// Package mechanism provides Laplace mechanisms that randomise a real-valued
// query result so that it satisfies ε or (ε, δ) differential privacy.
//
// A mechanism is configured through a Builder and finalised with Build into
// an immutable Mechanism:
//
//	m, err := mechanism.NewTruncatedLaplace().
//		SetSensitivity(1).
//		SetEpsilon(math.Log(3)).
//		SetBounds(0, 100).
//		Build()
//	if err != nil {
//		// Handle the configuration error.
//	}
//	noisy, err := m.Randomise(42)
//
// All derived parameters (the noise scale, the effective scale of the
// bounded-domain mechanism and the noise bound of the bounded-noise
// mechanism) are computed by Build and never change afterwards.
//
// For general details and key definitions, see
// https://github.com/google/differential-privacy/blob/main/differential_privacy.md#key-definitions.
package mechanism

import (
	"fmt"

	log "github.com/golang/glog"
	"github.com/google/differential-privacy/mechanisms/checks"
	"github.com/google/differential-privacy/mechanisms/domain"
	"github.com/google/differential-privacy/mechanisms/noise"
	"github.com/google/differential-privacy/mechanisms/rand"
)

// Variant is an enum type. Its values are the supported Laplace mechanisms.
type Variant int

// Laplace mechanisms, differing in how they handle a bounded output domain.
const (
	// Plain adds unbounded Laplace noise.
	Plain Variant = iota
	// Truncated adds Laplace noise, then clips the result into the domain.
	Truncated
	// Folded adds Laplace noise, then reflects the result into the domain.
	Folded
	// BoundedDomain samples directly from the Laplace distribution
	// conditioned on the domain, with a scale widened to compensate for the
	// probability mass outside it.
	BoundedDomain
	// BoundedNoise caps the magnitude of the Laplace noise itself. It only
	// provides (ε, δ) differential privacy with δ > 0.
	BoundedNoise
)

var variantNames = []string{"Laplace", "TruncatedLaplace", "FoldedLaplace", "BoundedDomainLaplace", "BoundedNoiseLaplace"}

func (v Variant) String() string {
	if v < Plain || v > BoundedNoise {
		return fmt.Sprintf("Variant(%d)", int(v))
	}
	return variantNames[v]
}

// hasDomain reports whether mechanisms of this variant need bounds.
func (v Variant) hasDomain() bool {
	return v == Truncated || v == Folded || v == BoundedDomain
}

// Builder accumulates the parameters of a mechanism.
//
// Each setter validates its arguments and returns the builder for chaining.
// The first failing setter records its error and leaves the configuration
// untouched; every later setter is then a no-op and Build returns that error.
type Builder struct {
	variant     Variant
	sensitivity float64
	epsilon     float64
	delta       float64
	bounds      domain.Bounds
	src         rand.Source

	sensitivitySet bool
	epsilonSet     bool
	boundsSet      bool

	err error
}

// NewLaplace returns a Builder for the classic Laplace mechanism.
func NewLaplace() *Builder {
	return &Builder{variant: Plain}
}

// NewTruncatedLaplace returns a Builder for the Laplace mechanism whose
// outputs outside the domain are mapped to the closest bound.
func NewTruncatedLaplace() *Builder {
	return &Builder{variant: Truncated}
}

// NewFoldedLaplace returns a Builder for the Laplace mechanism whose outputs
// outside the domain are folded back into it.
func NewFoldedLaplace() *Builder {
	return &Builder{variant: Folded}
}

// NewBoundedDomainLaplace returns a Builder for the Laplace mechanism that
// draws its outputs directly from the domain, without post-processing.
func NewBoundedDomainLaplace() *Builder {
	return &Builder{variant: BoundedDomain}
}

// NewBoundedNoiseLaplace returns a Builder for the Laplace mechanism with
// bounded noise. It requires δ in (0, 0.5).
func NewBoundedNoiseLaplace() *Builder {
	return &Builder{variant: BoundedNoise}
}

// SetSensitivity sets the sensitivity of the function being randomised. It
// must be strictly positive and finite.
func (b *Builder) SetSensitivity(sensitivity float64) *Builder {
	if b.err != nil {
		return b
	}
	if err := checks.CheckSensitivity(sensitivity); err != nil {
		b.err = err
		return b
	}
	b.sensitivity = sensitivity
	b.sensitivitySet = true
	return b
}

// SetEpsilon sets the privacy parameter ε with δ = 0.
func (b *Builder) SetEpsilon(epsilon float64) *Builder {
	return b.SetEpsilonDelta(epsilon, 0)
}

// SetEpsilonDelta sets the privacy parameters ε and δ. ε must be strictly
// positive; +∞ is allowed and disables the noise. δ must be 0, except for
// the bounded-noise mechanism where it must lie strictly within (0, 0.5).
func (b *Builder) SetEpsilonDelta(epsilon, delta float64) *Builder {
	if b.err != nil {
		return b
	}
	if err := checks.CheckEpsilon(epsilon); err != nil {
		b.err = err
		return b
	}
	var err error
	if b.variant == BoundedNoise {
		err = checks.CheckBoundedNoiseDelta(delta)
	} else {
		err = checks.CheckNoDelta(delta)
	}
	if err != nil {
		b.err = fmt.Errorf("%v: %w", b.variant, err)
		return b
	}
	b.epsilon, b.delta = epsilon, delta
	b.epsilonSet = true
	return b
}

// SetBounds sets the domain [lower, upper] of the truncated, folded and
// bounded-domain mechanisms. lower must be strictly smaller than upper.
func (b *Builder) SetBounds(lower, upper float64) *Builder {
	if b.err != nil {
		return b
	}
	if !b.variant.hasDomain() {
		b.err = checks.Unsupported("SetBounds", b.variant.String())
		return b
	}
	bounds, err := domain.NewBounds(lower, upper)
	if err != nil {
		b.err = err
		return b
	}
	b.bounds = bounds
	b.boundsSet = true
	return b
}

// SetSource sets the source of uniform randomness of the mechanism. A nil
// source selects the default, rand.Secure().
func (b *Builder) SetSource(src rand.Source) *Builder {
	if b.err != nil {
		return b
	}
	b.src = src
	return b
}

// Err returns the error recorded by the first failing setter, if any.
func (b *Builder) Err() error {
	return b.err
}

// Build validates that the configuration is complete and returns the
// mechanism.
func (b *Builder) Build() (*Mechanism, error) {
	if b.err != nil {
		return nil, b.err
	}
	if !b.epsilonSet {
		return nil, checks.NotConfigured("Epsilon")
	}
	if !b.sensitivitySet {
		return nil, checks.NotConfigured("Sensitivity")
	}
	if b.variant.hasDomain() && !b.boundsSet {
		return nil, checks.NotConfigured("Bounds")
	}
	src := b.src
	if src == nil {
		src = rand.Secure()
	}
	m := &Mechanism{
		variant:     b.variant,
		sensitivity: b.sensitivity,
		epsilon:     b.epsilon,
		delta:       b.delta,
		bounds:      b.bounds,
		src:         src,
		scale:       noise.Scale(b.sensitivity, b.epsilon),
	}
	switch b.variant {
	case BoundedDomain:
		if b.sensitivity > b.bounds.Diameter() {
			log.Warningf("Sensitivity %f exceeds the diameter %f of the domain %v, the diameter is used instead", b.sensitivity, b.bounds.Diameter(), b.bounds)
		}
		m.scale = newScaleSolver(m.epsilon, m.delta, m.bounds.Diameter(), m.sensitivity).solve()
	case BoundedNoise:
		m.noiseBound = noiseBound(m.scale, m.epsilon, m.delta)
	}
	return m, nil
}

// Mechanism is a configured Laplace mechanism. It is immutable and safe for
// concurrent use whenever its rand.Source is.
type Mechanism struct {
	variant     Variant
	sensitivity float64
	epsilon     float64
	delta       float64
	bounds      domain.Bounds
	src         rand.Source

	// scale is sensitivity/ε, or the effective scale b* for BoundedDomain.
	scale float64
	// noiseBound is only used by BoundedNoise; -1 means unbounded.
	noiseBound float64
}

// Variant returns the kind of the mechanism.
func (m *Mechanism) Variant() Variant { return m.variant }

// Sensitivity returns the sensitivity of the mechanism.
func (m *Mechanism) Sensitivity() float64 { return m.sensitivity }

// Epsilon returns the privacy parameter ε of the mechanism.
func (m *Mechanism) Epsilon() float64 { return m.epsilon }

// Delta returns the privacy parameter δ of the mechanism.
func (m *Mechanism) Delta() float64 { return m.delta }

// Bounds returns the domain of the mechanism, and false if it has none.
func (m *Mechanism) Bounds() (domain.Bounds, bool) {
	return m.bounds, m.variant.hasDomain()
}

// Scale returns the scale of the Laplace distribution the mechanism samples
// from: sensitivity/ε, or the effective scale for the bounded-domain
// mechanism.
func (m *Mechanism) Scale() float64 { return m.scale }

func (m *Mechanism) String() string {
	s := fmt.Sprintf("%v(epsilon=%v, delta=%v, sensitivity=%v", m.variant, m.epsilon, m.delta, m.sensitivity)
	if m.variant.hasDomain() {
		s += fmt.Sprintf(", bounds=%v", m.bounds)
	}
	return s + ")"
}
