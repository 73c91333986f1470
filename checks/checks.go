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

// Package checks contains parameter checks for the Laplace mechanisms.
//
// Every error returned by this package wraps one of the sentinel errors below,
// so callers can classify failures with errors.Is.
package checks

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrNotANumber is returned when a parameter or an input value is NaN.
	ErrNotANumber = errors.New("not a number")
	// ErrOutOfRange is returned when a parameter lies outside its valid range.
	ErrOutOfRange = errors.New("out of range")
	// ErrNotConfigured is returned when a required parameter was never set.
	ErrNotConfigured = errors.New("not configured")
	// ErrUnsupported is returned when an operation is not defined for a mechanism.
	ErrUnsupported = errors.New("unsupported")
)

const (
	sensitivityName = "Sensitivity"
	epsilonName     = "Epsilon"
	deltaName       = "Delta"
	valueName       = "Value"
)

func checkNotNaN(x float64, name string) error {
	if math.IsNaN(x) {
		return fmt.Errorf("%s cannot be NaN: %w", name, ErrNotANumber)
	}
	return nil
}

// CheckSensitivity returns an error if sensitivity is NaN, nonpositive or +∞.
func CheckSensitivity(sensitivity float64) error {
	if err := checkNotNaN(sensitivity, sensitivityName); err != nil {
		return err
	}
	if sensitivity <= 0 || math.IsInf(sensitivity, 0) {
		return fmt.Errorf("%s is %f, must be strictly positive and finite: %w", sensitivityName, sensitivity, ErrOutOfRange)
	}
	return nil
}

// CheckEpsilon returns an error if ε is NaN or nonpositive. An ε of +∞ is
// accepted and corresponds to adding no noise at all.
func CheckEpsilon(epsilon float64) error {
	if err := checkNotNaN(epsilon, epsilonName); err != nil {
		return err
	}
	if epsilon <= 0 {
		return fmt.Errorf("%s is %f, must be strictly positive: %w", epsilonName, epsilon, ErrOutOfRange)
	}
	return nil
}

// CheckNoDelta returns an error if δ is non-zero.
func CheckNoDelta(delta float64) error {
	if err := checkNotNaN(delta, deltaName); err != nil {
		return err
	}
	if delta != 0 {
		return fmt.Errorf("%s is %e, must be 0: %w", deltaName, delta, ErrOutOfRange)
	}
	return nil
}

// CheckBoundedNoiseDelta returns an error if δ is not strictly within (0, 0.5).
func CheckBoundedNoiseDelta(delta float64) error {
	if err := checkNotNaN(delta, deltaName); err != nil {
		return err
	}
	if delta <= 0 {
		return fmt.Errorf("%s is %e, must be strictly positive: %w", deltaName, delta, ErrOutOfRange)
	}
	if delta >= 0.5 {
		return fmt.Errorf("%s is %e, must be strictly less than 0.5: %w", deltaName, delta, ErrOutOfRange)
	}
	return nil
}

// CheckBounds returns an error if either bound is NaN or ±∞, or if lower is
// not strictly smaller than upper.
func CheckBounds(lower, upper float64) error {
	if math.IsNaN(lower) {
		return fmt.Errorf("Lower bound cannot be NaN: %w", ErrNotANumber)
	}
	if math.IsNaN(upper) {
		return fmt.Errorf("Upper bound cannot be NaN: %w", ErrNotANumber)
	}
	if math.IsInf(lower, 0) {
		return fmt.Errorf("Lower bound cannot be infinity: %w", ErrOutOfRange)
	}
	if math.IsInf(upper, 0) {
		return fmt.Errorf("Upper bound cannot be infinity: %w", ErrOutOfRange)
	}
	if lower >= upper {
		return fmt.Errorf("Upper bound (%f) must be strictly larger than lower bound (%f): %w", upper, lower, ErrOutOfRange)
	}
	return nil
}

// CheckValue returns an error if the value to be randomised is NaN.
func CheckValue(value float64) error {
	return checkNotNaN(value, valueName)
}

// NotConfigured returns an error reporting that the named parameter is unset.
func NotConfigured(name string) error {
	return fmt.Errorf("%s must be set: %w", name, ErrNotConfigured)
}

// Unsupported returns an error reporting that op is not defined for mechanism.
func Unsupported(op, mechanism string) error {
	return fmt.Errorf("%s is not defined for %s: %w", op, mechanism, ErrUnsupported)
}
