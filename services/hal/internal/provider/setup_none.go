//go:build !(rp2040 || rp2350)

package provider

import "audiocodec-go/services/hal/internal/provider/setups"

// Host builds have no platform buses; callers add their own.
func addPlatformBuses(*Registry, setups.Board) {}
