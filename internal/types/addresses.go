package types

// HardwareAddress represents the address of a memory-mapped hardware
// register on the ARM7 bus. The IO registers are mapped into the
// 0x04000000 region.
type HardwareAddress = uint32

// ARM7 IO register addresses.
const (
	IOBase HardwareAddress = 0x04000000 // IOBase - start of the IO register region
	RTC    HardwareAddress = 0x04000138 // RTC - real-time clock serial interface
)
