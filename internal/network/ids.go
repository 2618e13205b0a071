package network

import (
	"crypto/rand"
	"fmt"
	"sync/atomic"

	"github.com/mr-tron/base58"
)

// ID is an opaque entity address. Ids are unique across entity kinds; the
// prefix only aids debugging.
type ID string

const (
	prefixContact = "ct"
	prefixWire    = "wr"
	prefixGroup   = "grp"
	prefixGadget  = "gd"
)

// IDGenerator mints fresh entity ids. Injectable so replays and tests can
// produce stable ids; the default draws from crypto/rand.
type IDGenerator func(prefix string) ID

// RandomIDs is the production generator: prefix + base58 of 12 random bytes.
func RandomIDs(prefix string) ID {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		// rand.Read failing means the platform RNG is broken; there is
		// no sensible degraded mode for identity generation.
		panic(fmt.Sprintf("network: id generation failed: %v", err))
	}
	return ID(prefix + "_" + base58.Encode(buf))
}

// SequentialIDs returns a deterministic generator for replay and tests.
func SequentialIDs() IDGenerator {
	var n atomic.Int64
	return func(prefix string) ID {
		return ID(fmt.Sprintf("%s_%06d", prefix, n.Add(1)))
	}
}
