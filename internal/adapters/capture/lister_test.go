package capture

import (
	"context"
	"testing"

	"github.com/dkeye/MillenniumEye/internal/domain"
	"github.com/dkeye/MillenniumEye/internal/media"
	"github.com/pion/mediadevices"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListDevices(t *testing.T) {
	l := &Lister{enumerate: func() []mediadevices.MediaDeviceInfo {
		return []mediadevices.MediaDeviceInfo{
			{DeviceID: "video0", Kind: mediadevices.VideoInput, Label: "USB cam"},
			{DeviceID: "speaker", Kind: mediadevices.AudioOutput, Label: "Speaker"},
			{DeviceID: domain.CommunicationsDeviceID, Kind: mediadevices.AudioInput, Label: "Communications"},
			{DeviceID: "mic0", Kind: mediadevices.AudioInput, Label: "Headset"},
		}
	}}

	devices, err := l.ListDevices(context.Background())
	require.NoError(t, err)
	assert.Len(t, devices, 3)

	mics, cams := media.FilterDevices(devices)
	assert.Equal(t, []domain.Device{{DeviceID: "mic0", Kind: domain.KindAudioInput, Label: "Headset"}}, mics)
	assert.Equal(t, []domain.Device{{DeviceID: "video0", Kind: domain.KindVideoInput, Label: "USB cam"}}, cams)
}

func TestListDevicesCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLister().ListDevices(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
