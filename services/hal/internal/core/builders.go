package core

import (
	"sort"
	"sync"
)

// builders maps a config device "type" to its Builder. Device packages
// register from init and the set is read-only afterwards.
var builders struct {
	sync.Mutex
	m map[string]Builder
}

// RegisterBuilder panics when typ is already taken.
func RegisterBuilder(typ string, b Builder) {
	builders.Lock()
	defer builders.Unlock()
	if builders.m == nil {
		builders.m = map[string]Builder{}
	}
	if _, dup := builders.m[typ]; dup {
		panic("hal: device type registered twice: " + typ)
	}
	builders.m[typ] = b
}

func lookupBuilder(typ string) (Builder, bool) {
	builders.Lock()
	defer builders.Unlock()
	b, ok := builders.m[typ]
	return b, ok
}

// BuilderTypes lists the registered device types in order.
func BuilderTypes() []string {
	builders.Lock()
	defer builders.Unlock()
	out := make([]string, 0, len(builders.m))
	for t := range builders.m {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
