package domain

// UnitStatus is the lifecycle state of a style unit within one build.
type UnitStatus string

const (
	// UnitStatusPending means the unit has not been scheduled yet.
	UnitStatusPending UnitStatus = "pending"
	// UnitStatusRunning means the unit is being transformed.
	UnitStatusRunning UnitStatus = "running"
	// UnitStatusCompleted means the unit compiled successfully.
	UnitStatusCompleted UnitStatus = "completed"
	// UnitStatusFailed means the unit has a compile error attached.
	UnitStatusFailed UnitStatus = "failed"
	// UnitStatusCached means the unit was restored from the unit store.
	UnitStatusCached UnitStatus = "cached"
)

// IsTerminal reports whether the status is final for the current build.
func (s UnitStatus) IsTerminal() bool {
	switch s {
	case UnitStatusCompleted, UnitStatusFailed, UnitStatusCached:
		return true
	case UnitStatusPending, UnitStatusRunning:
		return false
	default:
		return false
	}
}

// LogLevel is the severity of a message written to a telemetry vertex.
type LogLevel int

const (
	// LogLevelDebug represents debug-level verbosity.
	LogLevelDebug LogLevel = -4
	// LogLevelInfo represents informational verbosity.
	LogLevelInfo LogLevel = 0
	// LogLevelWarn represents warning verbosity.
	LogLevelWarn LogLevel = 4
	// LogLevelError represents error verbosity.
	LogLevelError LogLevel = 8
)

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	case LogLevelInfo:
		return "INFO"
	default:
		return "INFO"
	}
}
