package provider

import (
	"time"

	"audiocodec-go/errcode"
	"audiocodec-go/services/hal/internal/core"

	"tinygo.org/x/drivers"
)

const defaultTimeout = 250 * time.Millisecond

type i2cReq struct {
	addr uint16
	w, r []byte
	done chan error // buffered(1); worker replies best-effort
}

// per-bus owner that hosts a single worker goroutine
type i2cOwner struct {
	id   core.ResourceID
	hw   drivers.I2C
	reqs chan i2cReq
	quit chan struct{}
}

func newI2COwner(id core.ResourceID, hw drivers.I2C) *i2cOwner {
	o := &i2cOwner{
		id:   id,
		hw:   hw,
		reqs: make(chan i2cReq, 16),
		quit: make(chan struct{}),
	}
	go o.loop()
	return o
}

func (o *i2cOwner) loop() {
	for {
		select {
		case req := <-o.reqs:
			err := o.hw.Tx(req.addr, req.w, req.r)
			// best-effort reply; do not block the worker
			select {
			case req.done <- err:
			default:
			}
		case <-o.quit:
			return
		}
	}
}

func (o *i2cOwner) stop() { close(o.quit) }

var _ core.I2COwner = (*i2cOwner)(nil)

// Tx posts a request to the worker. timeoutMS bounds both the enqueue and
// the completion; 0 selects the provider default.
func (o *i2cOwner) Tx(addr uint16, w, r []byte, timeoutMS int) error {
	timeout := defaultTimeout
	if timeoutMS > 0 {
		timeout = time.Duration(timeoutMS) * time.Millisecond
	}
	select {
	case <-o.quit:
		return errcode.Unavailable
	default:
	}
	req := i2cReq{addr: addr, w: w, r: r, done: make(chan error, 1)}

	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case o.reqs <- req:
	case <-t.C:
		return errcode.Busy
	case <-o.quit:
		return errcode.Unavailable
	}

	select {
	case err := <-req.done:
		return err
	case <-t.C:
		return errcode.Timeout
	}
}
