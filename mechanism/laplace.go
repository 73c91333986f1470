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
	"fmt"
	"math"

	"github.com/google/differential-privacy/mechanisms/checks"
	"github.com/google/differential-privacy/mechanisms/noise"
)

// Randomise returns value randomised by the mechanism. It draws at most one
// uniform variate from the mechanism's source.
func (m *Mechanism) Randomise(value float64) (float64, error) {
	if err := checks.CheckValue(value); err != nil {
		return 0, err
	}
	switch m.variant {
	case Plain:
		return m.addLaplace(value), nil
	case Truncated:
		return m.bounds.Truncate(m.addLaplace(value)), nil
	case Folded:
		return m.bounds.Fold(m.addLaplace(value)), nil
	case BoundedDomain:
		return m.randomiseBoundedDomain(value), nil
	case BoundedNoise:
		return m.randomiseBoundedNoise(value), nil
	}
	return 0, fmt.Errorf("unknown mechanism variant %v", m.variant)
}

// Bias returns the bias of the mechanism at value, that is the expected
// output minus value.
func (m *Mechanism) Bias(value float64) (float64, error) {
	if err := checks.CheckValue(value); err != nil {
		return 0, err
	}
	switch m.variant {
	case Plain, BoundedNoise:
		// The noise is symmetric around zero.
		return 0, nil
	case Truncated:
		return m.truncatedBias(value), nil
	case Folded:
		return m.foldedBias(value), nil
	case BoundedDomain:
		return m.boundedDomainBias(value), nil
	}
	return 0, fmt.Errorf("unknown mechanism variant %v", m.variant)
}

// Variance returns the variance of the mechanism's output at value. It is
// not defined in closed form for the folded and bounded-noise mechanisms,
// for which it returns an error wrapping checks.ErrUnsupported.
func (m *Mechanism) Variance(value float64) (float64, error) {
	if err := checks.CheckValue(value); err != nil {
		return 0, err
	}
	switch m.variant {
	case Plain:
		return 2 * m.scale * m.scale, nil
	case Truncated:
		return m.truncatedVariance(value), nil
	case BoundedDomain:
		return m.boundedDomainVariance(value), nil
	case Folded, BoundedNoise:
		return 0, checks.Unsupported("Variance", m.variant.String())
	}
	return 0, fmt.Errorf("unknown mechanism variant %v", m.variant)
}

// addLaplace returns value - scale·sign(u)·ln(1-2|u|) for u uniform in
// (-0.5, 0.5].
func (m *Mechanism) addLaplace(value float64) float64 {
	return value + noise.Sample(m.src.Uniform()-0.5, m.scale)
}

// tailMasses returns exp((lower-value)/s) and exp((value-upper)/s), twice the
// Laplace probability mass centred at value that lies below lower and above
// upper respectively, for value within the bounds.
func (m *Mechanism) tailMasses(value, s float64) (lowerTail, upperTail float64) {
	return math.Exp((m.bounds.Lower - value) / s), math.Exp((value - m.bounds.Upper) / s)
}

func (m *Mechanism) truncatedBias(value float64) float64 {
	bias, _ := m.truncatedMoments(value)
	return bias
}

func (m *Mechanism) truncatedVariance(value float64) float64 {
	_, variance := m.truncatedMoments(value)
	return variance
}

// truncatedMoments returns the bias and the variance of Truncate(value+N) for
// N Laplace distributed with the mechanism's scale. Moments are taken
// relative to the point of the domain closest to value, so they stay finite
// for values far outside it.
func (m *Mechanism) truncatedMoments(value float64) (bias, variance float64) {
	s := m.scale
	if s == 0 {
		return m.bounds.Truncate(value) - value, 0
	}
	lower, upper := m.bounds.Lower, m.bounds.Upper
	switch {
	case value < lower:
		near, far := math.Exp((value-lower)/s), math.Exp((value-upper)/s)
		offset := s / 2 * (near - far)
		secondMoment := s*s*near - s*(upper-lower+s)*far
		return lower - value + offset, secondMoment - offset*offset
	case value > upper:
		near, far := math.Exp((upper-value)/s), math.Exp((lower-value)/s)
		offset := -s / 2 * (near - far)
		secondMoment := s*s*near - s*(upper-lower+s)*far
		return upper - value + offset, secondMoment - offset*offset
	}
	lowerTail, upperTail := m.tailMasses(value, s)
	bias = s / 2 * (lowerTail - upperTail)
	secondMoment := s*((lower-value)*lowerTail-(upper-value)*upperTail) + s*s*(2-lowerTail-upperTail)
	return bias, secondMoment - bias*bias
}

// foldedBias uses that the output distribution at value equals the one at
// Fold(value): the Laplace density is symmetric and folding is periodic.
func (m *Mechanism) foldedBias(value float64) float64 {
	folded := m.bounds.Fold(value)
	s := m.scale
	if s == 0 {
		return folded - value
	}
	lower, upper := m.bounds.Lower, m.bounds.Upper
	bias := s * (math.Exp((lower-folded)/s) - math.Exp((folded-upper)/s))
	return bias/(1+math.Exp((lower-upper)/s)) + folded - value
}
