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

	"github.com/google/differential-privacy/mechanisms/checks"
	"github.com/google/differential-privacy/mechanisms/noise"
)

// noiseBound returns the half-width shape·ln(1 + (e^ε - 1)/(2δ)) of the
// interval the bounded-noise mechanism draws its noise from, or -1 if the
// shape is 0 and no noise is added.
func noiseBound(shape, epsilon, delta float64) float64 {
	if shape == 0 {
		return -1
	}
	if epsilon <= 1 {
		return shape * math.Log1p(math.Expm1(epsilon)/(2*delta))
	}
	// ln(1 + (e^ε-1)/(2δ)) = ε + ln(e^-ε + (1-e^-ε)/(2δ)), finite for large ε.
	return shape * (epsilon + math.Log(math.Exp(-epsilon)-math.Expm1(-epsilon)/(2*delta)))
}

// NoiseBound returns the largest magnitude of noise the bounded-noise
// mechanism adds, or -1 if it adds none. It returns an error wrapping
// checks.ErrUnsupported for every other mechanism.
func (m *Mechanism) NoiseBound() (float64, error) {
	if m.variant != BoundedNoise {
		return 0, checks.Unsupported("NoiseBound", m.variant.String())
	}
	return m.noiseBound, nil
}

func (m *Mechanism) randomiseBoundedNoise(value float64) float64 {
	if m.noiseBound < 0 {
		return value
	}
	return value + noise.SampleConditional(m.src.Uniform(), m.scale, -m.noiseBound, m.noiseBound)
}
