//go:build !linux && !rp2040 && !rp2350

package main

import "errors"

func openLinux(int) (hostBus, error) {
	return nil, errors.New("linux transport is only available on linux")
}
