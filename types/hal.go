package types

// HALState is retained on hal/state. Level moves idle -> ready once config/hal
// has been applied, and to stopped when the HAL exits.
type HALState struct {
	Level  string `json:"level"`
	Status string `json:"status"` // e.g. "context_cancelled"
	TS     int64  `json:"ts_ns"`
}

// Link is the retained health of one codec capability.
type Link string

const (
	LinkUp       Link = "up"
	LinkDown     Link = "down"
	LinkDegraded Link = "degraded" // bring-up failed; registers still readable
)

// CapabilityStatus is retained on .../status.
type CapabilityStatus struct {
	Link  Link   `json:"link"`
	TS    int64  `json:"ts_ns"`
	Error string `json:"error,omitempty"` // errcode, e.g. "device_failed"
}

// PollStart is the payload of control/poll_start. Each tick sends Verb to the
// device as if it were a control.
type PollStart struct {
	Verb       string `json:"verb"` // "" means "read"
	IntervalMs uint32 `json:"interval_ms"`
	JitterMs   uint16 `json:"jitter_ms"`
}

type PollStop struct {
	Verb string `json:"verb,omitempty"`
}

// PollSpec declares a poller in config/hal, e.g. a periodic "read" of
// audio/codec/main.
type PollSpec struct {
	Domain     string `json:"domain"`
	Kind       Kind   `json:"kind"`
	Name       string `json:"name"`
	Verb       string `json:"verb"`
	IntervalMs uint32 `json:"interval_ms"`
	JitterMs   uint16 `json:"jitter_ms"`
}

// HALConfig is the config/hal document.
type HALConfig struct {
	Devices []HALDevice `json:"devices"`
	Pollers []PollSpec  `json:"pollers,omitempty"`
}

// HALDevice names a builder by Type; Params may be the typed struct or the
// decoded JSON map.
type HALDevice struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Params any    `json:"params"`
}

type OKReply struct {
	OK bool `json:"ok"`
}

type ErrorReply struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// Info is retained on .../info; Detail carries CodecInfo.
type Info struct {
	SchemaVersion int    `json:"schema_version"`
	Driver        string `json:"driver"`
	Detail        any    `json:"detail,omitempty"`
}
