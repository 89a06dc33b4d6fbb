package stdlib

import (
	"fmt"
	"iron/internal/runtime"
	"time"
)

// Instant is a point in time. Scripts only have 32-bit integers, so clock
// values stay host-side and scripts get durations and formatted text.
type Instant struct {
	t time.Time
}

func (i Instant) String() string {
	return i.t.Format(time.RFC3339Nano)
}

// TimeModule is std::time.
func TimeModule[T any]() *runtime.Module[T] {
	return runtime.NewModule[T]().
		MustRegister("now", func() Instant { return Instant{t: time.Now()} }).
		MustRegister("elapsed_ms", func(i Instant) int32 {
			return int32(time.Since(i.t).Milliseconds())
		}).
		MustRegister("between_ms", func(from, to Instant) int32 {
			return int32(to.t.Sub(from.t).Milliseconds())
		}).
		MustRegister("unix", func(i Instant) int32 { return int32(i.t.Unix()) }).
		MustRegister("format", func(i Instant, layout string) string {
			return i.t.Format(layout)
		}).
		MustRegister("parse", func(layout, value string) (Instant, error) {
			t, err := time.Parse(layout, value)
			if err != nil {
				return Instant{}, fmt.Errorf("parse time %q: %w", value, err)
			}
			return Instant{t: t}, nil
		}).
		MustRegister("sleep", func(ms int32) error {
			if ms < 0 {
				return fmt.Errorf("sleep: negative duration %d", ms)
			}
			time.Sleep(time.Duration(ms) * time.Millisecond)
			return nil
		})
}
