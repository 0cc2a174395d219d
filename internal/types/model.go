package types

import "strings"

type Model int // The Model used in emulation.

const (
	Unset Model = iota // Unset - Model hasn't been set - behaves as DS
	DS                 // DS - original Nintendo DS (and DS Lite)
	DSi                // DSi - exposes the extended RTC register set
)

var ModelNames = map[Model]string{
	Unset: "Unset",
	DS:    "DS",
	DSi:   "DSI",
}

// StringToModel converts a string to a Model.
func StringToModel(s string) Model {
	for m, n := range ModelNames {
		if n == strings.ToUpper(s) {
			return m
		}
	}

	return Unset
}

func (m Model) String() string {
	return ModelNames[m]
}
