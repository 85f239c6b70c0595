package media

import (
	"context"

	"github.com/dkeye/MillenniumEye/internal/domain"
)

// DeviceLister enumerates capture devices in platform order.
type DeviceLister interface {
	ListDevices(ctx context.Context) ([]domain.Device, error)
}

// FilterDevices drops the reserved communications pseudo-device and splits
// the rest by kind, keeping the original order.
func FilterDevices(all []domain.Device) (mics, cams []domain.Device) {
	for _, d := range all {
		if d.DeviceID == domain.CommunicationsDeviceID {
			continue
		}
		switch d.Kind {
		case domain.KindAudioInput:
			mics = append(mics, d)
		case domain.KindVideoInput:
			cams = append(cams, d)
		}
	}
	return mics, cams
}

// FindDevice returns the device with id, or nil when id is empty or unknown.
func FindDevice(list []domain.Device, id string) *domain.Device {
	if id == "" {
		return nil
	}
	for i := range list {
		if list[i].DeviceID == id {
			d := list[i]
			return &d
		}
	}
	return nil
}
