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

package mechanism

import (
	"math"

	log "github.com/golang/glog"
	"github.com/google/differential-privacy/mechanisms/checks"
	"github.com/google/differential-privacy/mechanisms/noise"
)

// maxSolverIterations bounds the bisection in scaleSolver.solve. Halving an
// interval of float64 values collapses it long before this many steps.
const maxSolverIterations = 2100

// scaleSolver finds the effective scale b* of the bounded-domain mechanism.
//
// Sampling from the Laplace distribution conditioned on a domain of diameter
// d changes the privacy loss by the ratio of the conditional masses of two
// neighbouring centres. The worst-case ratio at scale b is
//
//	δc(b) = (2 - exp(-Δ/b) - exp(-(d-Δ)/b)) / (1 - exp(-d/b)),
//
// and b* is the fixed point of f(b) = Δ/(ε - ln δc(b) - ln(1-δ)).
type scaleSolver struct {
	epsilon, delta, diameter, sensitivity float64
}

func newScaleSolver(epsilon, delta, diameter, sensitivity float64) scaleSolver {
	// Centres are clamped into the domain before sampling, so two
	// neighbouring centres are never further apart than the diameter.
	return scaleSolver{
		epsilon:     epsilon,
		delta:       delta,
		diameter:    diameter,
		sensitivity: math.Min(sensitivity, diameter),
	}
}

func (s scaleSolver) deltaC(b float64) float64 {
	if b == 0 {
		return 2
	}
	// 1 - exp(-x) is computed as -expm1(-x) to keep precision for large b.
	return (-math.Expm1(-s.sensitivity/b) - math.Expm1(-(s.diameter-s.sensitivity)/b)) / -math.Expm1(-s.diameter/b)
}

func (s scaleSolver) f(b float64) float64 {
	return s.sensitivity / (s.epsilon - math.Log(s.deltaC(b)) - math.Log(1-s.delta))
}

// solve bisects [Δ/(ε - ln(1-δ)), f(Δ/(ε - ln(1-δ)))] towards the fixed point
// of f until the interval stops shrinking.
func (s scaleSolver) solve() float64 {
	left := s.sensitivity / (s.epsilon - math.Log(1-s.delta))
	right := s.f(left)
	oldIntervalSize := (right - left) * 2
	for i := 0; oldIntervalSize > right-left; i++ {
		if i == maxSolverIterations {
			log.Warningf("Effective scale search did not converge after %d iterations, stopping at [%e, %e]", i, left, right)
			break
		}
		oldIntervalSize = right - left
		middle := (right + left) / 2
		fMiddle := s.f(middle)
		if fMiddle >= middle {
			left = middle
		}
		if fMiddle <= middle {
			right = middle
		}
	}
	return (right + left) / 2
}

// EffectiveEpsilon returns the privacy parameter ε actually delivered by the
// bounded-domain mechanism, which samples at the widened scale b*. It returns
// an error wrapping checks.ErrUnsupported for every other mechanism.
func (m *Mechanism) EffectiveEpsilon() (float64, error) {
	if m.variant != BoundedDomain {
		return 0, checks.Unsupported("EffectiveEpsilon", m.variant.String())
	}
	return math.Min(m.sensitivity, m.bounds.Diameter()) / m.scale, nil
}

// centre clamps value into the domain the mechanism conditions on.
func (m *Mechanism) centre(value float64) float64 {
	c := m.bounds.Truncate(value)
	if c != value && log.V(1) {
		log.Infof("%v: value %f lies outside %v and was clamped to %f", m.variant, value, m.bounds, c)
	}
	return c
}

func (m *Mechanism) randomiseBoundedDomain(value float64) float64 {
	c := m.centre(value)
	if m.scale == 0 {
		return c
	}
	y := noise.SampleConditional(m.src.Uniform(), m.scale, m.bounds.Lower-c, m.bounds.Upper-c)
	return m.bounds.Truncate(c + y)
}

// boundedDomainBias returns the bias at value. The output is distributed as
// the Laplace distribution centred at the clamped value conditioned on the
// domain, so the bias also accounts for the clamping.
func (m *Mechanism) boundedDomainBias(value float64) float64 {
	c := m.bounds.Truncate(value)
	b := m.scale
	if b == 0 {
		return c - value
	}
	lower, upper := m.bounds.Lower, m.bounds.Upper
	lowerTail, upperTail := m.tailMasses(c, b)
	bias := (b-lower+c)/2*lowerTail - (b+upper-c)/2*upperTail
	bias /= 1 - lowerTail/2 - upperTail/2
	return bias + c - value
}

func (m *Mechanism) boundedDomainVariance(value float64) float64 {
	c := m.bounds.Truncate(value)
	b := m.scale
	if b == 0 {
		return 0
	}
	lower, upper := m.bounds.Lower, m.bounds.Upper
	lowerTail, upperTail := m.tailMasses(c, b)
	secondMoment := c * c
	secondMoment -= (lowerTail*lower*lower + upperTail*upper*upper) / 2
	secondMoment += b * (lower*lowerTail - upper*upperTail)
	secondMoment += b * b * (2 - lowerTail - upperTail)
	secondMoment /= 1 - (lowerTail+upperTail)/2
	mean := m.boundedDomainBias(value) + value
	return secondMoment - mean*mean
}
