//go:build rp2040 || rp2350

package main

import (
	"context"
	"runtime"
	"time"

	"audiocodec-go/bus"
	"audiocodec-go/services/config"
	"audiocodec-go/services/hal"
	"audiocodec-go/services/monitor"
	"audiocodec-go/types"
)

const deviceID = "pico-audio"

var codec = bus.T("hal", "cap", "audio", "codec", "main")

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(3 * time.Second)
	ctx := context.WithValue(context.Background(), config.CtxDeviceKey, deviceID)

	println("[main] bootstrapping bus …")
	b := bus.NewBus(8)
	uiConn := b.NewConnection("ui")

	mon := &monitor.Service{}
	_ = mon.Start(ctx, b.NewConnection("monitor"))

	println("[main] starting hal.Run …")
	go hal.Run(ctx, b.NewConnection("hal"))

	println("[main] publishing embedded config …")
	config.NewConfigService().Start(ctx, b.NewConnection("config"))

	waitReady(uiConn)

	// Bring the output up gently, then show the register file once.
	request(ctx, uiConn, "set_volume", types.CodecSetVolume{Volume: 0.6, FadeMs: 1500})
	request(ctx, uiConn, "dump", nil)

	for {
		printMem()
		time.Sleep(30 * time.Second)
	}
}

func waitReady(conn *bus.Connection) {
	sub := conn.Subscribe(bus.T("hal", "state"))
	defer conn.Unsubscribe(sub)
	for m := range sub.Channel() {
		if st, ok := m.Payload.(types.HALState); ok && st.Level == "ready" {
			return
		}
	}
}

func request(ctx context.Context, conn *bus.Connection, verb string, payload any) {
	rctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	reply, err := conn.RequestWait(rctx, conn.NewMessage(codec.Append("control", verb), payload, false))
	if err != nil {
		println("[main]", verb, "error:", err.Error())
		return
	}
	if e, ok := reply.Payload.(types.ErrorReply); ok {
		println("[main]", verb, "rejected:", e.Error)
	}
}

// printMem prints a compact snapshot of TinyGo runtime memory stats.
func printMem() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	println(
		"[mem]",
		"alloc:", uint32(ms.Alloc),
		"heapInuse:", uint32(ms.HeapInuse),
		"heapSys:", uint32(ms.HeapSys),
		"mallocs:", uint32(ms.Mallocs),
		"frees:", uint32(ms.Frees),
	)
}
