//go:build !rp2040 && !rp2350

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"audiocodec-go/drivers/ac101"

	"github.com/google/shlex"
)

var errUsage = errors.New("usage")

const helpText = `commands:
  init                     reset and configure the codec
  status                   driver state and current format
  volume [0..1]            show or set the unified volume
  mute on|off              mute or unmute both outputs
  mode adc|dac|adcdac|line enable signal paths
  format <hz> [bits]       write sample rate and optionally word size
  dump                     print every known register
  reg <name|0xNN> [value]  read or write one register
  help
`

// run runs one command against dev and writes its output to out.
func run(dev *ac101.Device, args []string, out io.Writer) error {
	if len(args) == 0 {
		return nil
	}
	cmd, args := args[0], args[1:]
	switch cmd {
	case "init":
		if err := dev.Init(); err != nil {
			return err
		}
		fmt.Fprintf(out, "ready addr=0x%02X rate=%d bits=%d\n", dev.Address(), dev.SampleFrequency(), dev.Resolution())
		return nil

	case "status":
		fmt.Fprintf(out, "status=%s addr=0x%02X rate=%d bits=%d muted=%v\n",
			dev.Status(), dev.Address(), dev.SampleFrequency(), dev.Resolution(), dev.IsMuted())
		return nil

	case "volume":
		if len(args) > 1 {
			return errUsage
		}
		if len(args) == 1 {
			v, err := strconv.ParseFloat(args[0], 32)
			if err != nil {
				return fmt.Errorf("volume %q: %w", args[0], err)
			}
			if err := dev.SetVolume(float32(v)); err != nil {
				return err
			}
		}
		return printVolume(dev, out)

	case "mute":
		if len(args) != 1 {
			return errUsage
		}
		switch args[0] {
		case "on":
			return dev.MuteOn()
		case "off":
			return dev.MuteOff()
		}
		return errUsage

	case "mode":
		if len(args) != 1 {
			return errUsage
		}
		m, ok := ac101.ParseMode(args[0])
		if !ok {
			return fmt.Errorf("unknown mode %q", args[0])
		}
		return dev.SetMode(m)

	case "format":
		if len(args) < 1 || len(args) > 2 {
			return errUsage
		}
		hz, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			return fmt.Errorf("rate %q: %w", args[0], err)
		}
		r := dev.Resolution()
		if len(args) == 2 {
			bits, err := strconv.ParseUint(args[1], 10, 8)
			if err != nil {
				return fmt.Errorf("bits %q: %w", args[1], err)
			}
			r = ac101.Resolution(bits)
			if err := dev.SetBitsPerSample(r); err != nil {
				return err
			}
		}
		if err := dev.SetSampleFrequency(uint32(hz)); err != nil {
			return err
		}
		if dev.Status() == ac101.StatusReady {
			return nil
		}
		// Not initialised yet: write the fields too; init rewrites them.
		if err := dev.SetI2sSampleRate(uint32(hz)); err != nil {
			return err
		}
		if err := dev.SetI2sWordSize(ac101.ResolutionField(r)); err != nil {
			return err
		}
		fmt.Fprintf(out, "written rate=%d bits=%d; init applies it again\n", hz, r)
		return nil

	case "dump":
		regs, err := dev.Dump(make([]ac101.RegisterValue, 0, ac101.NumRegisters))
		for _, r := range regs {
			if r.OK {
				fmt.Fprintf(out, "0x%02X %-18s 0x%04X\n", uint8(r.Reg), r.Reg, r.Value)
			} else {
				fmt.Fprintf(out, "0x%02X %-18s <read failed>\n", uint8(r.Reg), r.Reg)
			}
		}
		return err

	case "reg":
		if len(args) < 1 || len(args) > 2 {
			return errUsage
		}
		reg, err := parseRegister(args[0])
		if err != nil {
			return err
		}
		if len(args) == 2 {
			v, err := strconv.ParseUint(args[1], 0, 16)
			if err != nil {
				return fmt.Errorf("value %q: %w", args[1], err)
			}
			if err := dev.WriteRegister(reg, uint16(v)); err != nil {
				return err
			}
		}
		v, err := dev.ReadRegister(reg)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "0x%02X %s = 0x%04X\n", uint8(reg), reg, v)
		return nil

	case "help":
		io.WriteString(out, helpText)
		return nil
	}
	return fmt.Errorf("unknown command %q (try help)", cmd)
}

func printVolume(dev *ac101.Device, out io.Writer) error {
	hp, err := dev.HeadphoneVolume()
	if err != nil {
		return err
	}
	spk, err := dev.SpeakerVolume()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "volume=%.2f headphone=%d/%d speaker=%d/%d\n",
		ac101.VolumeFromHeadphone(hp), hp, ac101.MaxHeadphoneLevel, spk, ac101.MaxSpeakerLevel)
	return nil
}

// parseRegister accepts a datasheet name (case-insensitive) or a number.
func parseRegister(s string) (ac101.Register, error) {
	if r, ok := ac101.RegisterByName(strings.ToUpper(s)); ok {
		return r, nil
	}
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("unknown register %q", s)
	}
	return ac101.Register(v), nil
}

// shell reads commands line by line until EOF or "quit".
func shell(dev *ac101.Device, in io.Reader, out io.Writer) error {
	sc := bufio.NewScanner(in)
	for {
		io.WriteString(out, "ac101> ")
		if !sc.Scan() {
			io.WriteString(out, "\n")
			return sc.Err()
		}
		args, err := shlex.Split(sc.Text())
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		if len(args) > 0 && (args[0] == "quit" || args[0] == "exit") {
			return nil
		}
		if err := run(dev, args, out); err != nil {
			if errors.Is(err, errUsage) {
				io.WriteString(out, helpText)
				continue
			}
			fmt.Fprintf(out, "error: %v\n", err)
		}
	}
}
