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

// Package rand provides sources of uniform randomness for the Laplace
// mechanisms.
//
// Sources are values rather than package state: every mechanism owns its own
// Source, so mechanisms never contend on a shared generator and tests can
// inject a deterministic one.
package rand

import (
	"bufio"
	cryptorand "crypto/rand"
	"encoding/binary"
	"io"
	"math"
	"math/bits"
	mathrand "math/rand"
	"sync"

	log "github.com/golang/glog"
)

// Source produces uniformly distributed float64 values.
type Source interface {
	// Uniform returns a float64 from the interval (0,1].
	Uniform() float64
}

type secureSource struct {
	mu  sync.Mutex
	buf io.Reader
}

// Secure returns a Source backed by crypto/rand. Each call returns an
// independent source with its own buffer. It is safe for concurrent use.
func Secure() Source {
	return newSecureSource(bufio.NewReaderSize(cryptorand.Reader, 4096))
}

func newSecureSource(r io.Reader) *secureSource {
	return &secureSource{buf: r}
}

func (s *secureSource) read(b []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := io.ReadFull(s.buf, b); err != nil {
		log.Fatalf("out of randomness, should never happen: %v", err)
	}
}

func (s *secureSource) u64() uint64 {
	var r [8]uint8
	s.read(r[:])
	return binary.LittleEndian.Uint64(r[:])
}

func (s *secureSource) u8() uint8 {
	var r [1]uint8
	s.read(r[:])
	return r[0]
}

// geometric counts the number of Bernoulli trials until the first success
// for a success probability of 0.5.
func (s *secureSource) geometric() float64 {
	// 1 plus the number of leading zeros from an infinite stream of random bits
	// follows the desired geometric distribution.
	b := 1
	var r uint8
	for r == 0 {
		r = s.u8()
		b += bits.LeadingZeros8(r)
	}
	return float64(b)
}

// Uniform returns a float64 from (0,1] such that each float in the interval
// is returned with positive probability.
func (s *secureSource) Uniform() float64 {
	i := s.u64() % (1 << 53)
	r := (1 + float64(i)/(1<<53)) / math.Pow(2, s.geometric())
	if r == 0 {
		return 1
	}
	return r
}

type seededSource struct {
	mu  sync.Mutex
	rng *mathrand.Rand
}

// NewSeeded returns a deterministic Source seeded with seed. It is intended
// for simulations and reproducible tests and must not be used to protect
// real data. It is safe for concurrent use.
func NewSeeded(seed int64) Source {
	return &seededSource{rng: mathrand.New(mathrand.NewSource(seed))}
}

func (s *seededSource) Uniform() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Float64 is in [0,1).
	return 1 - s.rng.Float64()
}
