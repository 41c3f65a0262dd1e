// Package integration holds end-to-end tests that drive the HAL over the bus.
package integration

import (
	"context"
	"time"

	"audiocodec-go/bus"
)

func recvOrTimeout(ch <-chan *bus.Message, d time.Duration) (*bus.Message, error) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case m := <-ch:
		return m, nil
	case <-timer.C:
		return nil, context.DeadlineExceeded
	}
}

// recvMatching skips messages until keep accepts one.
func recvMatching(ch <-chan *bus.Message, d time.Duration, keep func(*bus.Message) bool) (*bus.Message, error) {
	deadline := time.Now().Add(d)
	for {
		left := time.Until(deadline)
		if left <= 0 {
			return nil, context.DeadlineExceeded
		}
		m, err := recvOrTimeout(ch, left)
		if err != nil {
			return nil, err
		}
		if keep(m) {
			return m, nil
		}
	}
}

func capTopic(name string, tail ...bus.Token) bus.Topic {
	return bus.T("hal", "cap", "audio", "codec", name).Append(tail...)
}
