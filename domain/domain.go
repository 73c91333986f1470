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

// Package domain provides the bounded output domain used by the truncated,
// folded and bounded-domain Laplace mechanisms.
package domain

import (
	"fmt"
	"math"

	"github.com/google/differential-privacy/mechanisms/checks"
)

// Bounds is a closed interval [Lower, Upper] with Lower < Upper.
type Bounds struct {
	Lower, Upper float64
}

// NewBounds returns the interval [lower, upper], or an error if the bounds
// are NaN, infinite, or lower is not strictly smaller than upper.
func NewBounds(lower, upper float64) (Bounds, error) {
	if err := checks.CheckBounds(lower, upper); err != nil {
		return Bounds{}, err
	}
	return Bounds{Lower: lower, Upper: upper}, nil
}

// Diameter returns Upper - Lower.
func (b Bounds) Diameter() float64 {
	return b.Upper - b.Lower
}

// Contains reports whether x lies within the bounds.
func (b Bounds) Contains(x float64) bool {
	return b.Lower <= x && x <= b.Upper
}

// Truncate maps x to the closest point within the bounds.
func (b Bounds) Truncate(x float64) float64 {
	if x > b.Upper {
		return b.Upper
	}
	if x < b.Lower {
		return b.Lower
	}
	return x
}

// Fold reflects x off the bounds until it lies within them. Reflection
// preserves density: a point at distance d beyond a bound lands at distance
// d inside it.
//
// ±∞ has no finite reflection and is mapped to the nearer bound.
func (b Bounds) Fold(x float64) float64 {
	if math.IsInf(x, 0) {
		return b.Truncate(x)
	}
	// Reflection off both bounds is periodic with period twice the diameter.
	// Removing whole periods first keeps the loop below short for points
	// far outside the domain.
	period := 2 * b.Diameter()
	if x < b.Lower-period || x > b.Upper+period {
		offset := math.Mod(x-b.Lower, period)
		if offset < 0 {
			offset += period
		}
		x = b.Lower + offset
	}
	for !b.Contains(x) {
		if x < b.Lower {
			x = 2*b.Lower - x
		}
		if x > b.Upper {
			x = 2*b.Upper - x
		}
	}
	return x
}

func (b Bounds) String() string {
	return fmt.Sprintf("[%v, %v]", b.Lower, b.Upper)
}
