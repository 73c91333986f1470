//
// Copyright 2020 Google LLC
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

// Package noise contains the zero-centred Laplace distribution primitives
// used by the mechanisms: the distribution function and the
// inverse-transform samplers.
//
// Samplers take their uniform variate as an argument so that the sampled
// value is a pure function of the randomness, which callers draw from a
// rand.Source of their choosing.
package noise

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Scale returns the scale b = sensitivity/ε of the Laplace mechanism. For
// ε = +∞ the scale is 0.
func Scale(sensitivity, epsilon float64) float64 {
	return sensitivity / epsilon
}

// CDF returns Pr[Y <= x] for Y Laplace distributed with mean zero and the
// given scale. A scale of 0 is the point mass at zero, whose CDF is the step
// function at 0.
func CDF(x, scale float64) float64 {
	if scale == 0 {
		if x < 0 {
			return 0
		}
		return 1
	}
	return distuv.Laplace{Mu: 0, Scale: scale}.CDF(x)
}

// Sample maps u in [-0.5, 0.5] to a zero-centred Laplace variate of the given
// scale, that is -scale·sign(u)·ln(1-2|u|). At |u| = 0.5 the logarithm is -∞
// and the result is ±∞. A scale of 0 always yields 0.
func Sample(u, scale float64) float64 {
	if scale == 0 {
		return 0
	}
	return -scale * sign(u) * math.Log(1-2*math.Abs(u))
}

// sign mirrors the usual signum: it is 0 for ±0.
func sign(u float64) float64 {
	switch {
	case u > 0:
		return 1
	case u < 0:
		return -1
	}
	return 0
}

// ConditionalVariate rescales u in (0, 1] into [CDF(lo), CDF(hi)] and shifts
// it to [-0.5, 0.5], so that Sample with the result draws from the Laplace
// distribution conditioned on [lo, hi].
func ConditionalVariate(u, scale, lo, hi float64) float64 {
	cdfLo := CDF(lo, scale)
	return u*(CDF(hi, scale)-cdfLo) + cdfLo - 0.5
}

// SampleConditional returns a zero-centred Laplace variate of the given scale
// conditioned on lying within [lo, hi], using u in (0, 1]. The result is
// clamped to [lo, hi] to absorb rounding in the logarithm.
func SampleConditional(u, scale, lo, hi float64) float64 {
	if scale == 0 {
		return math.Min(math.Max(0, lo), hi)
	}
	y := Sample(ConditionalVariate(u, scale, lo, hi), scale)
	return math.Min(math.Max(y, lo), hi)
}
