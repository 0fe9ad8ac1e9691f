package core

import (
	"hash/fnv"
	"math/rand"
	"strconv"
)

// PathRNG seeds a *rand.Rand deterministically from the indices that identify
// a single sub-path, so that a given (iteration, pixel, sample, ray) tuple
// always draws the same sequence of random numbers regardless of which
// worker goroutine processes it or in what order tiles are scheduled.
func PathRNG(iteration, pixelID, sampleID, rayID int) *rand.Rand {
	h := fnv.New64a()
	h.Write(strconv.AppendInt(nil, int64(iteration), 10))
	h.Write([]byte{0})
	h.Write(strconv.AppendInt(nil, int64(pixelID), 10))
	h.Write([]byte{0})
	h.Write(strconv.AppendInt(nil, int64(sampleID), 10))
	h.Write([]byte{0})
	h.Write(strconv.AppendInt(nil, int64(rayID), 10))

	seed := int64(h.Sum64())
	if seed == 0 {
		seed = 1
	}
	return rand.New(rand.NewSource(seed))
}
