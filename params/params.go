// Package params holds the user tunable parameters of the bike controller and keeps them on the
// flash file system as JSON documents.
package params

import (
	"github.com/kostiamol/spinparams/log"
	"github.com/kostiamol/spinparams/metric"
	"github.com/kostiamol/spinparams/store"
	"github.com/pkg/errors"
)

// Power correction factor bounds. Loaded values outside of them are replaced by 1.
const (
	MinPCF = 0.5
	MaxPCF = 2.5
)

// Fixed document locations.
const (
	UserSettingsPath = "/userconfig.txt"
	PowerCurvePath   = "/userPWC.txt"
)

// Serialized size limits in bytes.
const (
	UserSettingsSize = 1024
	DebugLogSize     = 2048
	PowerCurveSize   = 500
)

// FirmwareVersion is reported as firmwareVersion. Set with -ldflags "-X".
var FirmwareVersion = "dev"

// Error taxonomy of the persistence layer. Use errors.Cause to classify a returned error.
var (
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrDocumentTooLarge   = errors.New("document too large")
	ErrMalformedDocument  = errors.New("malformed document")
	ErrOutOfRange         = errors.New("value out of range")
)

// LoadState is the terminal state of a Load call.
type LoadState int

const (
	// Defaulted means the record was reset to its defaults.
	Defaulted LoadState = iota
	// Loaded means the stored document was overlaid on the record.
	Loaded
)

func (s LoadState) String() string {
	if s == Loaded {
		return "loaded"
	}
	return "defaulted"
}

type (
	// DebugSource hands out the recent log lines and forgets them.
	DebugSource interface {
		Drain() []string
	}

	// Cfg is used to initialize a record.
	Cfg struct {
		Store  store.FS
		Log    log.Logger
		Metric *metric.Metric
		// Debug feeds the debug field of UserSettings. Optional.
		Debug DebugSource
	}
)
