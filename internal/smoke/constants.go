package smoke

import "time"

// Generator defaults.
const (
	DefaultPlayers = 300
	DefaultTeams   = 20
	DefaultEvents  = 3
)

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
)

// Runner configuration constants.
const (
	HealthCheckTimeout   = 2 * time.Minute
	HealthCheckInterval  = 500 * time.Millisecond
	PercentageMultiplier = 100
	playersPageLimit     = 1000
	scoreTolerance       = 1e-9
)

const (
	directoryPermission = 0o755
	dataFilePermission  = 0o600
)
