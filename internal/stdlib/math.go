package stdlib

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"iron/internal/runtime"
	"math"
)

// MathModule is std::math.
func MathModule[T any]() *runtime.Module[T] {
	return runtime.NewModule[T]().
		MustRegister("abs", func(n int32) int32 {
			if n < 0 {
				return -n
			}
			return n
		}).
		MustRegister("abs", func(f float32) float32 { return float32(math.Abs(float64(f))) }).
		MustRegister("min", func(a, b int32) int32 { return min(a, b) }).
		MustRegister("min", func(a, b float32) float32 { return min(a, b) }).
		MustRegister("max", func(a, b int32) int32 { return max(a, b) }).
		MustRegister("max", func(a, b float32) float32 { return max(a, b) }).
		MustRegister("sqrt", func(f float32) float32 { return float32(math.Sqrt(float64(f))) }).
		MustRegister("pow", func(a, b float32) float32 { return float32(math.Pow(float64(a), float64(b))) }).
		MustRegister("floor", func(f float32) int32 { return int32(math.Floor(float64(f))) }).
		MustRegister("ceil", func(f float32) int32 { return int32(math.Ceil(float64(f))) }).
		MustRegister("to_float", func(n int32) float32 { return float32(n) }).
		MustRegister("rnd_range", rndRange)
}

// rndRange returns a random integer in [lo, hi).
func rndRange(lo, hi int32) (int32, error) {
	if lo >= hi {
		return 0, fmt.Errorf("invalid range: min (%d) must be less than max (%d)", lo, hi)
	}
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("failed to generate random number: %w", err)
	}
	size := uint64(int64(hi) - int64(lo))
	return lo + int32(binary.BigEndian.Uint64(b[:])%size), nil
}
