package device

import (
	"context"

	"github.com/muurk/tp90x/internal/session"
)

// SearchMode is how a model variant is located during discovery.
type SearchMode int

const (
	// SearchByAddress locates the device by its fixed BLE address.
	SearchByAddress SearchMode = iota

	// SearchByName locates the device by its advertised local name.
	SearchByName
)

func (m SearchMode) String() string {
	switch m {
	case SearchByAddress:
		return "address"
	case SearchByName:
		return "name"
	default:
		return "unknown"
	}
}

// Model describes a product variant. The frame grammar and command catalog
// are identical across the family; variants differ only in probe count and
// how they are discovered.
type Model struct {
	Name       string
	Probes     int
	Search     SearchMode
	NamePrefix string // advertised-name match for SearchByName models
}

// The supported variants. A closed set: the protocol engine serves both with
// the same catalog and session machinery.
var (
	// TP902 has six probe channels and does not advertise a usable name;
	// it is found by its fixed BLE address.
	TP902 = Model{Name: "TP902", Probes: 6, Search: SearchByAddress}

	// TP904 has two probe channels and advertises its model name.
	TP904 = Model{Name: "TP904", Probes: 2, Search: SearchByName, NamePrefix: "TP904"}
)

// Models lists all supported variants, keyed for CLI lookup.
var Models = map[string]Model{
	TP902.Name: TP902,
	TP904.Name: TP904,
}

// Finder locates a device and establishes its transport. Implementations
// wrap the platform BLE stack; one exists per search mode.
type Finder interface {
	// Find scans for the device matching identifier (an address or a name
	// prefix, per the model's search mode), connects, and returns the
	// transport ready for session use.
	Find(ctx context.Context, identifier string) (session.Transport, error)
}
