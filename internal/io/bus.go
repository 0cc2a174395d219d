// Package io dispatches ARM7 memory-mapped IO accesses to the
// peripherals mounted on the bus.
package io

import (
	"github.com/thelolagemann/dsrtc/internal/rtc"
	"github.com/thelolagemann/dsrtc/internal/types"
	"github.com/thelolagemann/dsrtc/pkg/log"
)

// Bus routes IO register accesses by address. Unmapped reads return 0
// and unmapped writes are dropped; both are logged at debug level.
type Bus struct {
	rtc *rtc.RTC

	log.Logger
}

func NewBus(chip *rtc.RTC, l log.Logger) *Bus {
	return &Bus{
		rtc:    chip,
		Logger: l,
	}
}

// RTC returns the clock chip mounted on the bus.
func (b *Bus) RTC() *rtc.RTC {
	return b.rtc
}

func (b *Bus) Read16(addr types.HardwareAddress) uint16 {
	switch addr {
	case types.RTC:
		return b.rtc.Read()
	}

	b.Debugf("io: unmapped read16 %08X", addr)
	return 0
}

func (b *Bus) Read8(addr types.HardwareAddress) uint8 {
	switch addr {
	case types.RTC:
		return uint8(b.rtc.Read())
	}

	b.Debugf("io: unmapped read8 %08X", addr)
	return 0
}

func (b *Bus) Write16(addr types.HardwareAddress, v uint16) {
	switch addr {
	case types.RTC:
		b.rtc.Write(v, false)
		return
	}

	b.Debugf("io: unmapped write16 %08X <- %04X", addr, v)
}

// Write8 performs a byte-granular write. The RTC register only honours
// its low half this way; the upper byte is preserved from the mirror.
func (b *Bus) Write8(addr types.HardwareAddress, v uint8) {
	switch addr {
	case types.RTC:
		b.rtc.Write(uint16(v), true)
		return
	}

	b.Debugf("io: unmapped write8 %08X <- %02X", addr, v)
}
