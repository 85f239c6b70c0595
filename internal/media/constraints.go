// Package media turns device selections into capture constraints.
package media

import (
	"github.com/dkeye/MillenniumEye/internal/domain"
	"github.com/pion/mediadevices"
	"github.com/pion/mediadevices/pkg/prop"
)

// Video band pinned for every selected camera.
const (
	VideoWidth       = 640
	VideoHeight      = 360
	VideoFrameRate   = 24
	VideoAspectRatio = 1.77778
)

// AudioConstraints pins one microphone and its processing hints.
type AudioConstraints struct {
	DeviceID                     string `json:"deviceId"`
	EchoCancellation             bool   `json:"echoCancellation"`
	ExperimentalEchoCancellation bool   `json:"experimentalEchoCancellation"`
	AutoGainControl              bool   `json:"autoGainControl"`
	NoiseSuppression             bool   `json:"noiseSuppression"`
	HighpassFilter               bool   `json:"highpassFilter"`
	AudioMirroring               bool   `json:"audioMirroring"`
}

// Range is an inclusive numeric band.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// VideoConstraints pins one camera to a fixed resolution and frame-rate band.
type VideoConstraints struct {
	DeviceID    string  `json:"deviceId"`
	Width       Range   `json:"width"`
	Height      Range   `json:"height"`
	FrameRate   Range   `json:"frameRate"`
	AspectRatio float64 `json:"aspectRatio"`
}

// Constraints is the capture configuration for one channel.
// A nil kind is disabled entirely; it never falls back to a default device.
type Constraints struct {
	Audio *AudioConstraints `json:"audio"`
	Video *VideoConstraints `json:"video"`
}

func (c Constraints) AudioEnabled() bool { return c.Audio != nil }
func (c Constraints) VideoEnabled() bool { return c.Video != nil }

// Build maps a device selection to capture constraints.
func Build(sel domain.DeviceSelection) Constraints {
	var c Constraints
	if sel.Microphone != nil {
		c.Audio = &AudioConstraints{
			DeviceID:                     sel.Microphone.DeviceID,
			EchoCancellation:             true,
			ExperimentalEchoCancellation: true,
			AutoGainControl:              true,
			NoiseSuppression:             true,
			HighpassFilter:               true,
			AudioMirroring:               true,
		}
	}
	if sel.Camera != nil {
		c.Video = &VideoConstraints{
			DeviceID:    sel.Camera.DeviceID,
			Width:       Range{Min: VideoWidth, Max: VideoWidth},
			Height:      Range{Min: VideoHeight, Max: VideoHeight},
			FrameRate:   Range{Min: VideoFrameRate, Max: VideoFrameRate},
			AspectRatio: VideoAspectRatio,
		}
	}
	return c
}

// StreamConstraints translates c for mediadevices.GetUserMedia. Disabled
// kinds keep a nil option so the device is never opened.
//
// mediadevices has no props for aspect ratio or audio processing, so
// AspectRatio and the audio hints only travel in the JSON form of c. The
// aspect ratio still holds since width and height are pinned.
func (c Constraints) StreamConstraints(codec *mediadevices.CodecSelector) mediadevices.MediaStreamConstraints {
	out := mediadevices.MediaStreamConstraints{Codec: codec}
	if a := c.Audio; a != nil {
		out.Audio = func(t *mediadevices.MediaTrackConstraints) {
			t.DeviceID = prop.StringExact(a.DeviceID)
		}
	}
	if v := c.Video; v != nil {
		out.Video = func(t *mediadevices.MediaTrackConstraints) {
			t.DeviceID = prop.StringExact(v.DeviceID)
			t.Width = prop.IntRanged{Min: int(v.Width.Min), Max: int(v.Width.Max)}
			t.Height = prop.IntRanged{Min: int(v.Height.Min), Max: int(v.Height.Max)}
			t.FrameRate = prop.FloatRanged{Min: float32(v.FrameRate.Min), Max: float32(v.FrameRate.Max)}
		}
	}
	return out
}
