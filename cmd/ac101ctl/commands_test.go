//go:build !rp2040 && !rp2350

package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"audiocodec-go/drivers/ac101"
	"audiocodec-go/drivers/ac101/ac101test"
)

func newTestDevice(t *testing.T) (*ac101.Device, *ac101test.Chip) {
	t.Helper()
	chip := ac101test.New(ac101.AddressDefault)
	cfg := ac101.DefaultConfig()
	cfg.Sleep = func(time.Duration) {}
	return ac101.New(chip, cfg), chip
}

func runLine(t *testing.T, dev *ac101.Device, line string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(dev, strings.Fields(line), &out)
	return out.String(), err
}

func TestRun_InitVolumeMute(t *testing.T) {
	dev, chip := newTestDevice(t)

	out, err := runLine(t, dev, "init")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "ready addr=0x1A rate=16000 bits=16") {
		t.Fatalf("init output %q", out)
	}

	out, err = runLine(t, dev, "volume 0.5")
	if err != nil {
		t.Fatal(err)
	}
	if out != "volume=0.51 headphone=32/63 speaker=16/31\n" {
		t.Fatalf("volume output %q", out)
	}

	if _, err := runLine(t, dev, "mute on"); err != nil || !dev.IsMuted() {
		t.Fatalf("mute on: %v muted=%v", err, dev.IsMuted())
	}
	if _, err := runLine(t, dev, "mute off"); err != nil || dev.IsMuted() {
		t.Fatalf("mute off: %v", err)
	}
	if got := chip.Reg(uint8(ac101.RegHPOutCtrl)) >> 4 & 0x3F; got != 32 {
		t.Fatalf("hp field %d", got)
	}
}

func TestRun_FormatBeforeAndAfterInit(t *testing.T) {
	dev, chip := newTestDevice(t)
	out, err := runLine(t, dev, "format 48000 24")
	if err != nil || out != "written rate=48000 bits=24; init applies it again\n" {
		t.Fatalf("pre-init format: %q %v", out, err)
	}
	if hz, _ := dev.I2sSampleRate(); hz != 48000 {
		t.Fatalf("rate before init %d", hz)
	}
	if ws, _ := dev.I2sWordSize(); ac101.ResolutionOf(ws) != ac101.Resolution24 {
		t.Fatalf("word size before init %d", ws)
	}
	if _, err := runLine(t, dev, "init"); err != nil {
		t.Fatal(err)
	}
	if hz, _ := dev.I2sSampleRate(); hz != 48000 {
		t.Fatalf("rate after init %d", hz)
	}
	chip.ClearLog()
	if out, err = runLine(t, dev, "format 8000"); err != nil || out != "" {
		t.Fatalf("format: %q %v", out, err)
	}
	if len(chip.Writes()) == 0 {
		t.Fatal("format on a ready codec wrote nothing")
	}
	if _, err := runLine(t, dev, "format 8000 12"); !errors.Is(err, ac101.ErrInvalidRes) {
		t.Fatalf("bad bits: %v", err)
	}
}

func TestRun_FormatOneShot(t *testing.T) {
	// Each invocation starts from a fresh driver over the same chip.
	chip := ac101test.New(ac101.AddressDefault)
	cfg := ac101.DefaultConfig()
	cfg.Sleep = func(time.Duration) {}
	if _, err := runLine(t, ac101.New(chip, cfg), "format 44100"); err != nil {
		t.Fatal(err)
	}
	if got := chip.Reg(uint8(ac101.RegI2SSRCtrl)); got != 0x7000 {
		t.Fatalf("I2S_SR_CTRL = %#04x", got)
	}
	out, err := runLine(t, ac101.New(chip, cfg), "status")
	if err != nil || !strings.HasPrefix(out, "status=uninitialised") {
		t.Fatalf("status: %q %v", out, err)
	}
}

func TestConfigFromFlags(t *testing.T) {
	cfg, err := configFromFlags(0x1A, 44100, 16)
	if err != nil || cfg.Address != 0x1A || cfg.SampleRateHz != 44100 || cfg.Resolution != ac101.Resolution16 {
		t.Fatalf("cfg %+v, %v", cfg, err)
	}
	for _, c := range []struct{ addr, rate, bits uint }{
		{0x1001A, 16000, 16}, // would truncate to 0x1A
		{0x80, 16000, 16},
		{0x1A, 16000, 272}, // would truncate to 16
		{0x1A, 16000, 12},
	} {
		if _, err := configFromFlags(c.addr, c.rate, c.bits); err == nil {
			t.Errorf("configFromFlags(%#x, %d, %d) accepted", c.addr, c.rate, c.bits)
		}
	}
}

func TestRun_Registers(t *testing.T) {
	dev, chip := newTestDevice(t)
	out, err := runLine(t, dev, "reg spkout_ctrl 0xEABD")
	if err != nil {
		t.Fatal(err)
	}
	if out != "0x58 SPKOUT_CTRL = 0xEABD\n" {
		t.Fatalf("reg output %q", out)
	}
	if chip.Reg(0x58) != 0xEABD {
		t.Fatalf("register not written")
	}
	if out, err = runLine(t, dev, "reg 0x58"); err != nil || out != "0x58 SPKOUT_CTRL = 0xEABD\n" {
		t.Fatalf("numeric read: %q %v", out, err)
	}
	if _, err := runLine(t, dev, "reg NOPE"); err == nil {
		t.Fatal("expected unknown register")
	}

	chip.FailRead(0x58, ac101test.ErrNACK)
	out, err = runLine(t, dev, "dump")
	if err == nil {
		t.Fatal("dump should report the failed read")
	}
	if lines := strings.Count(out, "\n"); lines != ac101.NumRegisters {
		t.Fatalf("dump printed %d lines", lines)
	}
	if !strings.Contains(out, "SPKOUT_CTRL") || !strings.Contains(out, "<read failed>") {
		t.Fatalf("dump output %q", out)
	}
}

func TestRun_Errors(t *testing.T) {
	dev, _ := newTestDevice(t)
	for _, line := range []string{"mute", "mute maybe", "volume 1 2", "format", "reg"} {
		if _, err := runLine(t, dev, line); !errors.Is(err, errUsage) {
			t.Errorf("%q: want usage error, got %v", line, err)
		}
	}
	for _, line := range []string{"mode loud", "volume x", "warp"} {
		if _, err := runLine(t, dev, line); err == nil || errors.Is(err, errUsage) {
			t.Errorf("%q: want a specific error, got %v", line, err)
		}
	}
}

func TestShell(t *testing.T) {
	dev, _ := newTestDevice(t)
	in := strings.NewReader("init\n'mode' \"adcdac\"\nmute\nbogus\nquit\nvolume 0\n")
	var out bytes.Buffer
	if err := shell(dev, in, &out); err != nil {
		t.Fatal(err)
	}
	s := out.String()
	if !strings.Contains(s, "ready addr=0x1A") {
		t.Fatalf("shell did not run init: %q", s)
	}
	if !strings.Contains(s, "commands:") {
		t.Fatal("usage error should print help")
	}
	if !strings.Contains(s, `error: unknown command "bogus"`) {
		t.Fatalf("missing error line: %q", s)
	}
	if v, _ := dev.Volume(); v == 0 {
		t.Fatal("commands after quit must not run")
	}
}
