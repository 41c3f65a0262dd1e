package config

import (
	"context"
	"testing"
	"time"

	"audiocodec-go/bus"
)

func TestConfig_PublishEmbedded_RetainedPerKey(t *testing.T) {
	oldLookup := EmbeddedConfigLookup
	EmbeddedConfigLookup = func(device string) ([]byte, bool) {
		if device != "pico-audio" {
			return nil, false
		}
		return []byte(`{
			"mode": "dev",
			"debug": true,
			"hal": {"devices": [{"id": "codec0", "type": "ac101"}]}
		}`), true
	}
	t.Cleanup(func() { EmbeddedConfigLookup = oldLookup })

	b := bus.NewBus(16)
	conn := b.NewConnection("test-config")
	svc := NewConfigService()

	ctx := context.WithValue(context.Background(), CtxDeviceKey, "pico-audio")
	svc.Start(ctx, conn)

	// Retained messages arrive whether the subscription lands before or after.
	sub := conn.Subscribe(bus.T(configPrefix, "#"))

	got := map[string]any{}
	deadline := time.Now().Add(600 * time.Millisecond)
	for len(got) < 3 && time.Now().Before(deadline) {
		select {
		case m := <-sub.Channel():
			if m.Topic.Len() != 2 || m.Topic.At(0) != configPrefix {
				t.Fatalf("unexpected topic: %s", m.Topic.String())
			}
			if !m.Retained {
				t.Fatalf("%s not retained", m.Topic.String())
			}
			key, ok := m.Topic.At(1).(string)
			if !ok {
				t.Fatalf("topic[1] type %T, want string", m.Topic.At(1))
			}
			got[key] = m.Payload
		case <-time.After(10 * time.Millisecond):
		}
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 retained messages, got %d (%v)", len(got), got)
	}

	if s, ok := got["mode"].(string); !ok || s != "dev" {
		t.Fatalf("mode payload = %#v", got["mode"])
	}
	if v, ok := got["debug"].(bool); !ok || !v {
		t.Fatalf("debug payload = %#v", got["debug"])
	}
	hal, ok := got["hal"].(map[string]any)
	if !ok {
		t.Fatalf("hal payload type = %T", got["hal"])
	}
	devs, ok := hal["devices"].([]any)
	if !ok || len(devs) != 1 {
		t.Fatalf("hal.devices = %#v", hal["devices"])
	}
	if d, _ := devs[0].(map[string]any); d["type"] != "ac101" {
		t.Fatalf("device = %#v", devs[0])
	}
}

func TestConfig_DefaultEmbeddedHasCodec(t *testing.T) {
	raw, ok := EmbeddedConfigLookup("pico-audio")
	if !ok {
		t.Fatal("no embedded config for pico-audio")
	}
	m, err := parse(raw)
	if err != nil {
		t.Fatal(err)
	}
	hal, _ := m["hal"].(map[string]any)
	devs, _ := hal["devices"].([]any)
	if len(devs) != 1 {
		t.Fatalf("devices: %#v", hal["devices"])
	}
	params, _ := devs[0].(map[string]any)["params"].(map[string]any)
	if params["bus"] != "i2c0" {
		t.Fatalf("params: %#v", params)
	}
	pollers, _ := hal["pollers"].([]any)
	if len(pollers) != 1 {
		t.Fatalf("pollers: %#v", hal["pollers"])
	}
}

func TestConfig_PublishConfig_MissingDevice(t *testing.T) {
	b := bus.NewBus(4)
	conn := b.NewConnection("test-missing-device")
	svc := NewConfigService()

	if err := svc.publishConfig(context.Background(), conn); err != errNoDevice {
		t.Fatalf("got %v, want errNoDevice", err)
	}
}

func TestConfig_PublishConfig_NoConfigFound(t *testing.T) {
	oldLookup := EmbeddedConfigLookup
	EmbeddedConfigLookup = func(device string) ([]byte, bool) { return nil, false }
	t.Cleanup(func() { EmbeddedConfigLookup = oldLookup })

	b := bus.NewBus(4)
	conn := b.NewConnection("test-no-config")
	svc := NewConfigService()

	ctx := context.WithValue(context.Background(), CtxDeviceKey, "unknown-device")
	if err := svc.publishConfig(ctx, conn); err == nil {
		t.Fatal("expected error for missing embedded config, got nil")
	}
}

func TestConfig_PublishConfig_NotObject(t *testing.T) {
	oldLookup := EmbeddedConfigLookup
	EmbeddedConfigLookup = func(string) ([]byte, bool) { return []byte(`[1, 2]`), true }
	t.Cleanup(func() { EmbeddedConfigLookup = oldLookup })

	conn := bus.NewBus(4).NewConnection("test-array")
	ctx := context.WithValue(context.Background(), CtxDeviceKey, "pico-audio")
	if err := NewConfigService().publishConfig(ctx, conn); err != errNotObject {
		t.Fatalf("got %v, want errNotObject", err)
	}
}
