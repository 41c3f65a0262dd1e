//go:build !rp2040 && !rp2350

// Command ac101ctl drives an AC101 codec from a host, either through
// /dev/i2c-N or through an MCP2221A USB bridge.
//
//	ac101ctl -transport mcp2221a init
//	ac101ctl -bus 1 volume 0.4
//	ac101ctl shell
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"math"
	"os"

	"audiocodec-go/drivers/ac101"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("ac101ctl: ")

	var (
		transport = flag.String("transport", "linux", "linux or mcp2221a")
		busNum    = flag.Int("bus", 1, "i2c bus number (linux) or device index (mcp2221a)")
		baud      = flag.Uint("baud", 400_000, "i2c clock for mcp2221a")
		addr      = flag.Uint("addr", ac101.AddressDefault, "codec address")
		rate      = flag.Uint("rate", uint(ac101.DefaultSampleRateHz), "sample rate in Hz applied by init")
		bits      = flag.Uint("bits", 16, "word size applied by init")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: ac101ctl [flags] <command> [args] | shell\n\nflags:\n")
		flag.PrintDefaults()
		fmt.Fprint(flag.CommandLine.Output(), "\n"+helpText)
	}
	flag.Parse()

	cfg, err := configFromFlags(*addr, *rate, *bits)
	if err != nil {
		log.Fatal(err)
	}
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	b, err := openBus(*transport, *busNum, uint32(*baud))
	if err != nil {
		log.Fatal(err)
	}
	defer b.Close()
	dev := ac101.New(b, cfg)

	if flag.Arg(0) == "shell" {
		err = shell(dev, os.Stdin, os.Stdout)
	} else {
		err = run(dev, flag.Args(), os.Stdout)
	}
	if errors.Is(err, errUsage) {
		flag.Usage()
		b.Close()
		os.Exit(2)
	}
	if err != nil {
		b.Close()
		log.Fatal(err)
	}
}

// configFromFlags range-checks the raw flag values before narrowing them.
func configFromFlags(addr, rate, bits uint) (ac101.Config, error) {
	if addr > 0x7F {
		return ac101.Config{}, fmt.Errorf("-addr %#x: %w", addr, errAddr)
	}
	if rate > math.MaxUint32 {
		return ac101.Config{}, fmt.Errorf("-rate %d out of range", rate)
	}
	if bits > math.MaxUint8 {
		return ac101.Config{}, fmt.Errorf("-bits %d: %w", bits, ac101.ErrInvalidRes)
	}
	cfg := ac101.Config{
		Address:      uint16(addr),
		Resolution:   ac101.Resolution(bits),
		SampleRateHz: uint32(rate),
	}
	return cfg, cfg.Validate()
}
