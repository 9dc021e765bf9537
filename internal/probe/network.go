package probe

import (
	"context"
	"math"
)

// BatteryReading is the normalized battery probe result. Level is an integer
// percentage 0-100.
type BatteryReading struct {
	Level    int
	Charging bool
}

// Battery reads the battery status API. The second return value is false
// when the API is unsupported or the call failed; absence is not an error.
func Battery(ctx context.Context, env BatteryEnv) (BatteryReading, bool) {
	state, err := env.Battery(ctx)
	if err != nil {
		return BatteryReading{}, false
	}
	return BatteryReading{
		Level:    int(math.Round(state.Level * 100)),
		Charging: state.Charging,
	}, true
}
