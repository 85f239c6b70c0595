package media

import (
	"testing"

	"github.com/dkeye/MillenniumEye/internal/domain"
	"github.com/pion/mediadevices"
	"github.com/pion/mediadevices/pkg/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildWithoutMicrophoneDisablesAudio(t *testing.T) {
	cam := &domain.Device{DeviceID: "cam-1", Kind: domain.KindVideoInput}
	c := Build(domain.DeviceSelection{Camera: cam})

	assert.False(t, c.AudioEnabled())
	require.True(t, c.VideoEnabled())
	assert.Equal(t, "cam-1", c.Video.DeviceID)
	assert.Equal(t, Range{Min: 24, Max: 24}, c.Video.FrameRate)
	assert.Equal(t, VideoAspectRatio, c.Video.AspectRatio)

	sc := c.StreamConstraints(nil)
	assert.Nil(t, sc.Audio)
	assert.NotNil(t, sc.Video)
}

func TestBuildEmptySelection(t *testing.T) {
	c := Build(domain.DeviceSelection{})
	assert.Nil(t, c.Audio)
	assert.Nil(t, c.Video)

	sc := c.StreamConstraints(nil)
	assert.Nil(t, sc.Audio)
	assert.Nil(t, sc.Video)
}

func TestBuildPinsMicrophone(t *testing.T) {
	mic := &domain.Device{DeviceID: "mic-7", Kind: domain.KindAudioInput}
	c := Build(domain.DeviceSelection{Microphone: mic})

	require.NotNil(t, c.Audio)
	assert.Equal(t, "mic-7", c.Audio.DeviceID)
	assert.True(t, c.Audio.EchoCancellation)
	assert.True(t, c.Audio.NoiseSuppression)
	assert.Nil(t, c.Video)

	var track mediadevices.MediaTrackConstraints
	c.StreamConstraints(nil).Audio(&track)
	assert.Equal(t, prop.StringExact("mic-7"), track.DeviceID)
}

func TestStreamConstraintsPinVideoBand(t *testing.T) {
	cam := &domain.Device{DeviceID: "camA", Kind: domain.KindVideoInput}
	c := Build(domain.DeviceSelection{Camera: cam})

	var track mediadevices.MediaTrackConstraints
	c.StreamConstraints(nil).Video(&track)
	assert.Equal(t, prop.StringExact("camA"), track.DeviceID)
	assert.Equal(t, prop.IntRanged{Min: VideoWidth, Max: VideoWidth}, track.Width)
	assert.Equal(t, prop.IntRanged{Min: VideoHeight, Max: VideoHeight}, track.Height)
	assert.Equal(t, prop.FloatRanged{Min: VideoFrameRate, Max: VideoFrameRate}, track.FrameRate)
	assert.InDelta(t, VideoAspectRatio, float64(VideoWidth)/VideoHeight, 0.001)
}

func TestFilterDevices(t *testing.T) {
	all := []domain.Device{
		{DeviceID: "communications", Kind: domain.KindAudioInput, Label: "Communications"},
		{DeviceID: "m1", Kind: domain.KindAudioInput},
		{DeviceID: "c1", Kind: domain.KindVideoInput},
		{DeviceID: "m2", Kind: domain.KindAudioInput},
		{DeviceID: "o1", Kind: "audiooutput"},
	}
	mics, cams := FilterDevices(all)
	assert.Equal(t, []string{"m1", "m2"}, ids(mics))
	assert.Equal(t, []string{"c1"}, ids(cams))

	assert.Nil(t, FindDevice(mics, ""))
	assert.Nil(t, FindDevice(mics, "c1"))
	assert.Equal(t, "m2", FindDevice(mics, "m2").DeviceID)
}

func ids(ds []domain.Device) []string {
	out := make([]string, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.DeviceID)
	}
	return out
}
