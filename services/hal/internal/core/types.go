package core

import (
	"context"

	"audiocodec-go/errcode"
	"audiocodec-go/types"
)

// ---- Capability & device model ----

// CapAddr is the public address of one capability:
// hal/cap/<Domain>/<Kind>/<Name>/...
type CapAddr struct {
	Domain string
	Kind   types.Kind
	Name   string
}

type CapabilitySpec struct {
	Domain string // "" => defaultDomainFor(Kind)
	Kind   types.Kind
	Name   string // "" => device id
	Info   types.Info
}

// EnqueueResult is the synchronous answer to a control. OK means the request
// was accepted; the outcome is published later as a value, event or status.
type EnqueueResult struct {
	OK    bool
	Error errcode.Code
}

// Device is a HAL-managed device. Control must not block.
type Device interface {
	ID() string
	Capabilities() []CapabilitySpec
	Init(ctx context.Context) error
	Control(addr CapAddr, verb string, payload any) (EnqueueResult, error)
	Close() error // release claimed resources
}

// ---- Device → HAL telemetry (single shape) ----
// By default, an Event represents a "value-like" update for a capability that
// HAL should publish to .../value (retained). If IsEvent is true, HAL instead
// publishes to .../event (non-retained). Err, when non-empty, causes HAL to
// publish only .../status=degraded (retained).

type Event struct {
	Addr     CapAddr
	Payload  any    // typed value payload (e.g. types.CodecValue)
	TS       int64  // Unix ns
	Err      string // errcode string
	IsEvent  bool   // true => publish to .../event (non-retained)
	EventTag string // optional subtopic tag for events (e.g. "dump")
}

// EventEmitter must be non-blocking; false indicates a drop under pressure.
type EventEmitter interface {
	Emit(ev Event) bool
}

// ---- HAL-injected resources ----

type Resources struct {
	Reg ResourceRegistry
	Pub EventEmitter // provided by HAL
}

// Builder input
type BuilderInput struct {
	ID, Type string
	Params   any
	Res      Resources
}

type Builder interface {
	Build(ctx context.Context, in BuilderInput) (Device, error)
}

// ---- Shared hardware ----

type ResourceID string // "i2c0"

// I2COwner runs one transaction at a time on a bus. Tx may be called from
// any goroutine and blocks until the transaction completes or times out.
// timeoutMS 0 selects the owner's default.
type I2COwner interface {
	Tx(addr uint16, w []byte, r []byte, timeoutMS int) error
}

// ResourceRegistry hands out exclusive bus claims to devices.
type ResourceRegistry interface {
	ClaimI2C(devID string, id ResourceID) (I2COwner, error)
	ReleaseI2C(devID string, id ResourceID)
}
