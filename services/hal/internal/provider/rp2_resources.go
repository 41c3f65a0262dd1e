//go:build rp2040 || rp2350

package provider

import (
	"machine"

	"audiocodec-go/services/hal/internal/core"
	"audiocodec-go/services/hal/internal/provider/setups"
)

func init() { Board = setups.PicoAudio }

var i2cControllers = map[string]*machine.I2C{
	"i2c0": machine.I2C0,
	"i2c1": machine.I2C1,
}

// addPlatformBuses configures each planned controller and hands it to reg.
// A bus that fails to configure is skipped; devices on it fail to claim.
func addPlatformBuses(reg *Registry, b setups.Board) {
	for _, p := range b.I2C {
		hw, ok := i2cControllers[p.ID]
		if !ok {
			println("[hal]", b.Name, "unknown i2c controller", p.ID)
			continue
		}
		sda, scl := machine.Pin(p.SDA), machine.Pin(p.SCL)
		sda.Configure(machine.PinConfig{Mode: machine.PinI2C})
		scl.Configure(machine.PinConfig{Mode: machine.PinI2C})
		if err := hw.Configure(machine.I2CConfig{SDA: sda, SCL: scl, Frequency: p.Hz}); err != nil {
			println("[hal]", b.Name, p.ID, "configure failed:", err.Error())
			continue
		}
		reg.AddI2C(core.ResourceID(p.ID), hw)
	}
}
