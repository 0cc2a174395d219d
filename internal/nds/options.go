package nds

import (
	"github.com/thelolagemann/dsrtc/internal/types"
	"github.com/thelolagemann/dsrtc/pkg/log"
)

// Opt is a function that modifies an NDS instance during construction.
type Opt func(n *NDS)

func AsModel(m types.Model) Opt {
	return func(n *NDS) {
		if m != types.Unset {
			n.model = m
		}
	}
}

func WithLogger(l log.Logger) Opt {
	return func(n *NDS) {
		n.Logger = l
	}
}

// WithState restores the system from raw (already decoded) state
// bytes, and suppresses the host-clock seeding.
func WithState(b []byte) Opt {
	return func(n *NDS) {
		n.Load(types.StateFromBytes(b))
		n.loadedFromState = true
	}
}

// NoSync leaves the calendar at the chip's power-on default instead of
// seeding it from the host clock.
func NoSync() Opt {
	return func(n *NDS) {
		n.noSync = true
	}
}
