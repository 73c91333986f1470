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

package noise

import (
	"math"
	"testing"

	"github.com/google/differential-privacy/mechanisms/rand"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/grd/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

var ln3 = math.Log(3)

func approxEqual(a, b float64) bool {
	return cmp.Equal(a, b, cmpopts.EquateApprox(1e-6, 1e-9))
}

func nearEqual(a, b, maxError float64) bool {
	return math.Abs(a-b) < maxError
}

func TestScale(t *testing.T) {
	if got := Scale(2, 4); got != 0.5 {
		t.Errorf("Scale(2, 4): got %v, want 0.5", got)
	}
	if got := Scale(1, math.Inf(1)); got != 0 {
		t.Errorf("Scale(1, +Inf): got %v, want 0", got)
	}
}

func TestCDF(t *testing.T) {
	for _, tc := range []struct {
		x, scale float64
	}{
		{-3, 1}, {-0.1, 2.5}, {0, 1}, {0.7, 0.3}, {12, 4},
	} {
		want := distuv.Laplace{Mu: 0, Scale: tc.scale}.CDF(tc.x)
		if got := CDF(tc.x, tc.scale); !approxEqual(got, want) {
			t.Errorf("CDF(%v, %v): got %v, want %v", tc.x, tc.scale, got, want)
		}
	}
	if got := CDF(0, 1); got != 0.5 {
		t.Errorf("CDF(0, 1): got %v, want 0.5", got)
	}
}

func TestCDFZeroScaleIsStep(t *testing.T) {
	for _, tc := range []struct {
		x, want float64
	}{
		{-1e-300, 0},
		{-5, 0},
		{0, 1},
		{3, 1},
	} {
		if got := CDF(tc.x, 0); got != tc.want {
			t.Errorf("CDF(%v, 0): got %v, want %v", tc.x, got, tc.want)
		}
	}
}

// Sample(p-0.5, scale) is the p-quantile of the Laplace distribution.
func TestSampleQuantiles(t *testing.T) {
	for _, tc := range []struct {
		desc              string
		scale, prob, want float64
	}{
		{
			desc:  "Arbitrary test",
			scale: 4.0,
			prob:  0.78754042,
			want:  3.4234254,
		},
		{
			desc:  "Arbitrary test",
			scale: 2.0,
			prob:  0.14796856,
			want:  -2.4352165,
		},
		// For a probability of 0.5, the result should be the zero regardless of scale.
		{
			desc:  "0.5 Probability, output is zero",
			scale: 5.0,
			prob:  0.5,
			want:  0,
		},
		// Tests for convergence to infinities with low and high probabilities.
		{
			desc:  "Low probability",
			scale: 3.0,
			prob:  1.2375736e-10,
			want:  -66.358653,
		},
		{
			desc:  "High probability",
			scale: 3.0,
			prob:  1 - 1.237574e-10,
			want:  66.358653,
		},
	} {
		got := Sample(tc.prob-0.5, tc.scale)
		if !approxEqual(got, tc.want) {
			t.Errorf("Sample(%f-0.5,%f)=%0.12f, want %0.12f, desc: %s", tc.prob, tc.scale, got, tc.want, tc.desc)
		}
	}
}

func TestSampleInvertsCDF(t *testing.T) {
	for _, x := range []float64{-7.5, -1, -0.01, 0.2, 3} {
		if got := Sample(CDF(x, 1.7)-0.5, 1.7); !approxEqual(got, x) {
			t.Errorf("Sample(CDF(%v)-0.5): got %v", x, got)
		}
	}
}

func TestSample(t *testing.T) {
	scale := 1 / ln3
	for _, tc := range []struct {
		desc string
		u    float64
		want float64
	}{
		{"centre", 0, 0},
		{"negative quarter", -0.25, scale * math.Log(0.5)},
		{"positive quarter", 0.25, -scale * math.Log(0.5)},
		{"lower limit", -0.5, math.Inf(-1)},
		{"upper limit", 0.5, math.Inf(1)},
	} {
		if got := Sample(tc.u, scale); got != tc.want {
			t.Errorf("Sample(%v, %v) when %s: got %v, want %v", tc.u, scale, tc.desc, got, tc.want)
		}
	}
	if got := Sample(-0.25, scale); !nearEqual(got, -0.6309297535714574, 1e-15) {
		t.Errorf("Sample(-0.25, 1/ln3): got %v, want -0.6309297535714574", got)
	}
}

func TestSampleZeroScale(t *testing.T) {
	for _, u := range []float64{-0.5, -0.1, 0, 0.3, 0.5} {
		if got := Sample(u, 0); got != 0 {
			t.Errorf("Sample(%v, 0): got %v, want 0", u, got)
		}
	}
}

func TestConditionalVariate(t *testing.T) {
	// With an unbounded interval the rescaling is a plain shift.
	for _, u := range []float64{0.1, 0.5, 1} {
		if got := ConditionalVariate(u, 2, math.Inf(-1), math.Inf(1)); got != u-0.5 {
			t.Errorf("ConditionalVariate(%v, unbounded): got %v, want %v", u, got, u-0.5)
		}
	}
	// The endpoints of (0, 1] map to the CDF values of the interval endpoints.
	lo, hi, scale := -1.0, 2.0, 0.8
	if got, want := ConditionalVariate(1, scale, lo, hi), CDF(hi, scale)-0.5; !approxEqual(got, want) {
		t.Errorf("ConditionalVariate(1): got %v, want %v", got, want)
	}
}

func TestSampleConditionalInRange(t *testing.T) {
	for _, tc := range []struct {
		scale, lo, hi float64
	}{
		{1, -1, 1},
		{0.01, -3, 0.5},
		{100, -0.2, 0.1},
		{2, 0, 5},
		{2, -5, 0},
	} {
		for _, u := range []float64{1e-300, 1e-12, 0.01, 0.25, 0.5, 0.75, 0.999999, 1} {
			got := SampleConditional(u, tc.scale, tc.lo, tc.hi)
			if got < tc.lo || got > tc.hi {
				t.Errorf("SampleConditional(%v, %v, %v, %v): got %v, want a value in [%v, %v]", u, tc.scale, tc.lo, tc.hi, got, tc.lo, tc.hi)
			}
		}
	}
}

func TestSampleConditionalZeroScale(t *testing.T) {
	for _, tc := range []struct {
		lo, hi, want float64
	}{
		{-1, 1, 0},
		{0.5, 2, 0.5},
		{-3, -1, -1},
	} {
		if got := SampleConditional(0.3, 0, tc.lo, tc.hi); got != tc.want {
			t.Errorf("SampleConditional(0.3, 0, %v, %v): got %v, want %v", tc.lo, tc.hi, got, tc.want)
		}
	}
}

func TestSampleStatistics(t *testing.T) {
	const numberOfSamples = 125000
	src := rand.NewSeeded(1)
	for _, tc := range []struct {
		scale, variance float64
	}{
		{1, 2},
		{1 / ln3, 2 / (ln3 * ln3)},
		{2 / ln3, 8 / (ln3 * ln3)},
	} {
		samples := make(stat.Float64Slice, numberOfSamples)
		for i := range samples {
			samples[i] = Sample(src.Uniform()-0.5, tc.scale)
		}
		sampleMean, sampleVariance := stat.Mean(samples), stat.Variance(samples)
		// The meanErrorTolerance and varianceErrorTolerance are set to the 99.9995%
		// quantile of the anticipated distributions of the sample mean and variance.
		meanErrorTolerance := 4.41717 * math.Sqrt(tc.variance/float64(numberOfSamples))
		varianceErrorTolerance := 4.41717 * math.Sqrt(5.0) * tc.variance / math.Sqrt(float64(numberOfSamples))
		if !nearEqual(sampleMean, 0, meanErrorTolerance) {
			t.Errorf("got mean = %f, want 0 (scale %f)", sampleMean, tc.scale)
		}
		if !nearEqual(sampleVariance, tc.variance, varianceErrorTolerance) {
			t.Errorf("got variance = %f, want %f (scale %f)", sampleVariance, tc.variance, tc.scale)
		}
	}
}
