//go:build !rp2040 && !rp2350

package integration

import (
	"context"
	"testing"
	"time"

	"audiocodec-go/bus"
	"audiocodec-go/drivers/ac101"
	"audiocodec-go/drivers/ac101/ac101test"
	"audiocodec-go/services/hal"
	"audiocodec-go/types"
)

const waitFor = 3 * time.Second

func startCodecHAL(t *testing.T, chip *ac101test.Chip) *bus.Connection {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	b := bus.NewBus(64)
	conn := b.NewConnection("test")
	t.Cleanup(conn.Disconnect)

	go hal.Run(ctx, b.NewConnection("hal"), hal.WithoutPlatformBuses(), hal.WithI2C("i2c0", chip))

	// Same shape the config service publishes from embedded JSON.
	conn.Publish(conn.NewMessage(bus.T("config", "hal"), map[string]any{
		"devices": []any{map[string]any{
			"id":   "codec0",
			"type": "ac101",
			"params": map[string]any{
				"bus": "i2c0", "name": "main",
				"sample_rate_hz": float64(44100), "bits": float64(16), "volume": 0.5,
			},
		}},
	}, true))
	return conn
}

func waitValue(t *testing.T, sub *bus.Subscription, keep func(types.CodecValue) bool) types.CodecValue {
	t.Helper()
	m, err := recvMatching(sub.Channel(), waitFor, func(m *bus.Message) bool {
		v, ok := m.Payload.(types.CodecValue)
		return ok && keep(v)
	})
	if err != nil {
		t.Fatalf("value not observed: %v", err)
	}
	return m.Payload.(types.CodecValue)
}

func control(t *testing.T, conn *bus.Connection, verb string, payload any) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), waitFor)
	defer cancel()
	rep, err := conn.RequestWait(ctx, conn.NewMessage(capTopic("main", "control", verb), payload, false))
	if err != nil {
		t.Fatalf("%s: %v", verb, err)
	}
	if e, ok := rep.Payload.(types.ErrorReply); ok {
		t.Fatalf("%s rejected: %s", verb, e.Error)
	}
}

func TestHAL_EndToEnd_AC101(t *testing.T) {
	chip := ac101test.New(ac101.AddressDefault)
	conn := startCodecHAL(t, chip)

	info := conn.Subscribe(capTopic("main", "info"))
	m, err := recvOrTimeout(info.Channel(), waitFor)
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	if i, ok := m.Payload.(types.Info); !ok || i.Driver != "ac101" {
		t.Fatalf("info payload: %#v", m.Payload)
	}

	value := conn.Subscribe(capTopic("main", "value"))
	v := waitValue(t, value, func(v types.CodecValue) bool { return v.Status == "ready" })
	if v.SampleRateHz != 44100 || v.Bits != 16 || v.Headphone != 32 {
		t.Fatalf("after init: %+v", v)
	}
	if got := chip.Reg(uint8(ac101.RegI2S1LCKCtrl)); got != 0x8850 {
		t.Fatalf("I2S1LCK_CTRL = %#04x", got)
	}

	control(t, conn, "set_volume", map[string]any{"volume": 1.0})
	waitValue(t, value, func(v types.CodecValue) bool { return v.Headphone == 63 })
	if got := chip.Reg(uint8(ac101.RegSpkOutCtrl)) & 0x1F; got != 31 {
		t.Fatalf("speaker field = %d", got)
	}

	control(t, conn, "set_mute", map[string]any{"on": true})
	waitValue(t, value, func(v types.CodecValue) bool { return v.Muted })

	status := conn.Subscribe(capTopic("main", "status"))
	m, err = recvOrTimeout(status.Channel(), waitFor)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if st, _ := m.Payload.(types.CapabilityStatus); st.Link != types.LinkUp {
		t.Fatalf("status: %#v", m.Payload)
	}

	dump := conn.Subscribe(capTopic("main", "event", "dump"))
	control(t, conn, "dump", nil)
	m, err = recvOrTimeout(dump.Channel(), waitFor)
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	if d, ok := m.Payload.(types.CodecDump); !ok || len(d.Registers) != ac101.NumRegisters || d.Error != "" {
		t.Fatalf("dump payload: %#v", m.Payload)
	}
}

func TestHAL_EndToEnd_AC101_ResetFailure(t *testing.T) {
	chip := ac101test.New(ac101.AddressDefault)
	chip.SetResetReadback(0xFFFF)
	conn := startCodecHAL(t, chip)

	failed := conn.Subscribe(capTopic("main", "event", "init_failed"))
	m, err := recvOrTimeout(failed.Channel(), waitFor)
	if err != nil {
		t.Fatalf("init_failed: %v", err)
	}
	if p, _ := m.Payload.(types.CodecInitFailed); p.Step != "reset" {
		t.Fatalf("init_failed payload: %#v", m.Payload)
	}

	status := conn.Subscribe(capTopic("main", "status"))
	m, err = recvMatching(status.Channel(), waitFor, func(m *bus.Message) bool {
		st, _ := m.Payload.(types.CapabilityStatus)
		return st.Link == types.LinkDegraded
	})
	if err != nil {
		t.Fatalf("degraded status: %v", err)
	}
	if st := m.Payload.(types.CapabilityStatus); st.Error != "device_failed" {
		t.Fatalf("status error: %q", st.Error)
	}

	ctx, cancel := context.WithTimeout(context.Background(), waitFor)
	defer cancel()
	rep, err := conn.RequestWait(ctx, conn.NewMessage(capTopic("main", "control", "set_volume"), map[string]any{"volume": 0.2}, false))
	if err != nil {
		t.Fatal(err)
	}
	if e, ok := rep.Payload.(types.ErrorReply); !ok || e.Error != "device_failed" {
		t.Fatalf("set_volume on failed codec: %#v", rep.Payload)
	}
}
