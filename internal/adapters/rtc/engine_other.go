//go:build !linux

package rtc

import (
	"github.com/dkeye/MillenniumEye/internal/media"
	"github.com/pion/interceptor"
	"github.com/pion/mediadevices"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
)

// newEngine builds a receive-only engine; capture drivers are linux only.
func newEngine() (*webrtc.API, *mediadevices.CodecSelector, error) {
	mediaEngine := &webrtc.MediaEngine{}
	if err := mediaEngine.RegisterDefaultCodecs(); err != nil {
		return nil, nil, err
	}
	registry := &interceptor.Registry{}
	if err := webrtc.RegisterDefaultInterceptors(mediaEngine, registry); err != nil {
		return nil, nil, err
	}
	api := webrtc.NewAPI(
		webrtc.WithMediaEngine(mediaEngine),
		webrtc.WithInterceptorRegistry(registry),
	)
	return api, nil, nil
}

func capture(c media.Constraints, _ *mediadevices.CodecSelector) ([]mediadevices.Track, error) {
	if c.AudioEnabled() || c.VideoEnabled() {
		log.Warn().Str("module", "webrtc").Msg("local capture unsupported on this platform, receive-only")
	}
	return nil, nil
}
