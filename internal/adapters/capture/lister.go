// Package capture enumerates local capture devices through pion/mediadevices.
package capture

import (
	"context"

	"github.com/dkeye/MillenniumEye/internal/domain"
	"github.com/dkeye/MillenniumEye/internal/media"
	"github.com/pion/mediadevices"
	"github.com/rs/zerolog/log"
)

// Lister reports the devices registered by the mediadevices drivers linked
// into the binary.
type Lister struct {
	enumerate func() []mediadevices.MediaDeviceInfo
}

var _ media.DeviceLister = (*Lister)(nil)

func NewLister() *Lister {
	return &Lister{enumerate: mediadevices.EnumerateDevices}
}

// ListDevices returns input devices in driver order. Outputs are skipped.
func (l *Lister) ListDevices(ctx context.Context) ([]domain.Device, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	infos := l.enumerate()
	out := make([]domain.Device, 0, len(infos))
	for _, info := range infos {
		var kind domain.DeviceKind
		switch info.Kind {
		case mediadevices.AudioInput:
			kind = domain.KindAudioInput
		case mediadevices.VideoInput:
			kind = domain.KindVideoInput
		default:
			continue
		}
		out = append(out, domain.Device{DeviceID: info.DeviceID, Kind: kind, Label: info.Label})
	}
	log.Debug().Str("module", "capture").Int("found", len(infos)).Int("inputs", len(out)).Msg("devices enumerated")
	return out, nil
}
