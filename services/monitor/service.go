// Package monitor prints HAL traffic and a periodic heartbeat on the console.
package monitor

import (
	"context"
	"time"

	"audiocodec-go/bus"
	"audiocodec-go/types"
	"audiocodec-go/x/conv"
)

var topicConfigMonitor = bus.T("config", "monitor")

const defaultInterval = 10 * time.Second

type Service struct {
	// Out receives one line per call; nil prints to the console.
	Out func(line string)
}

func (s *Service) emit(line string) {
	if s.Out != nil {
		s.Out(line)
		return
	}
	println(line)
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection) {
	cfgSub := conn.Subscribe(topicConfigMonitor)
	defer conn.Unsubscribe(cfgSub)
	halSub := conn.Subscribe(bus.T("hal", "#"))
	defer conn.Unsubscribe(halSub)

	tick := time.NewTicker(defaultInterval)
	defer tick.Stop()
	start := time.Now()

	for {
		select {
		case <-ctx.Done():
			s.emit("[monitor] stopping")
			return
		case <-tick.C:
			var b [20]byte
			s.emit("[monitor] heartbeat uptime_s=" + string(conv.Utoa(b[:], uint64(time.Since(start)/time.Second))))
		case msg := <-cfgSub.Channel():
			// {"interval": seconds}
			if m, ok := msg.Payload.(map[string]any); ok {
				if iv, ok := m["interval"].(float64); ok && iv > 0 {
					tick.Reset(time.Duration(iv * float64(time.Second)))
					s.emit("[monitor] heartbeat interval updated")
				}
			}
		case msg := <-halSub.Channel():
			s.describe(msg)
		}
	}
}

// describe renders one HAL message. Unknown payloads print the topic only.
func (s *Service) describe(msg *bus.Message) {
	head := "[monitor] " + msg.Topic.String()
	switch p := msg.Payload.(type) {
	case types.HALState:
		line := head + " level=" + p.Level
		if p.Status != "" {
			line += " status=" + p.Status
		}
		s.emit(line)
	case types.CapabilityStatus:
		line := head + " link=" + string(p.Link)
		if p.Error != "" {
			line += " error=" + p.Error
		}
		s.emit(line)
	case types.CodecValue:
		s.emit(head + codecValueLine(p))
	case types.CodecInitFailed:
		s.emit(head + " step=" + p.Step + " error=" + p.Error)
	case types.CodecDump:
		s.emit(head + " registers=" + utoa(uint64(len(p.Registers))))
		for _, r := range p.Registers {
			s.emit(registerLine(r))
		}
		if p.Error != "" {
			s.emit("[monitor] dump error=" + p.Error)
		}
	default:
		s.emit(head)
	}
}

func codecValueLine(v types.CodecValue) string {
	line := " status=" + v.Status +
		" hp=" + utoa(uint64(v.Headphone)) +
		" spk=" + utoa(uint64(v.Speaker)) +
		" rate=" + utoa(uint64(v.SampleRateHz)) +
		" bits=" + utoa(uint64(v.Bits))
	if v.Muted {
		line += " muted"
	}
	if v.Mode != "" {
		line += " mode=" + v.Mode
	}
	return line
}

func registerLine(r types.CodecRegister) string {
	var rb [2]byte
	var vb [4]byte
	line := "  0x" + string(conv.U8Hex(rb[:], r.Reg)) + " " + r.Name
	if !r.OK {
		return line + " <read failed>"
	}
	return line + " = 0x" + string(conv.U16Hex(vb[:], r.Value))
}

func utoa(n uint64) string {
	var b [20]byte
	return string(conv.Utoa(b[:], n))
}

// Start runs the monitor until ctx is cancelled.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	go s.serviceLoop(ctx, conn)
	return nil
}
