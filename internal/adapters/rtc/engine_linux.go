//go:build linux

package rtc

import (
	"github.com/dkeye/MillenniumEye/internal/media"
	"github.com/pion/interceptor"
	"github.com/pion/mediadevices"
	"github.com/pion/mediadevices/pkg/codec/opus"
	"github.com/pion/mediadevices/pkg/codec/vpx"
	"github.com/pion/webrtc/v4"
)

const videoBitRate = 1_000_000

// newEngine registers VP8 and Opus encoders so captured tracks can be sent.
func newEngine() (*webrtc.API, *mediadevices.CodecSelector, error) {
	vpxParams, err := vpx.NewVP8Params()
	if err != nil {
		return nil, nil, err
	}
	vpxParams.BitRate = videoBitRate

	opusParams, err := opus.NewParams()
	if err != nil {
		return nil, nil, err
	}

	codec := mediadevices.NewCodecSelector(
		mediadevices.WithVideoEncoders(&vpxParams),
		mediadevices.WithAudioEncoders(&opusParams),
	)

	mediaEngine := &webrtc.MediaEngine{}
	codec.Populate(mediaEngine)

	registry := &interceptor.Registry{}
	if err := webrtc.RegisterDefaultInterceptors(mediaEngine, registry); err != nil {
		return nil, nil, err
	}
	api := webrtc.NewAPI(
		webrtc.WithMediaEngine(mediaEngine),
		webrtc.WithInterceptorRegistry(registry),
	)
	return api, codec, nil
}

// capture opens exactly the devices c names. A disabled kind is never opened.
func capture(c media.Constraints, codec *mediadevices.CodecSelector) ([]mediadevices.Track, error) {
	if !c.AudioEnabled() && !c.VideoEnabled() {
		return nil, nil
	}
	stream, err := mediadevices.GetUserMedia(c.StreamConstraints(codec))
	if err != nil {
		return nil, err
	}
	return stream.GetTracks(), nil
}
