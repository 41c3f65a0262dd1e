package provider

import "audiocodec-go/services/hal/internal/provider/setups"

// Board is set by the build-tagged platform file; host builds leave it empty.
var Board setups.Board

// NewResources returns a registry holding the buses of Board.
func NewResources() *Registry {
	reg := NewRegistry()
	addPlatformBuses(reg, Board)
	return reg
}
