package rtc

import (
	"context"
	"fmt"
	"sync"

	"github.com/dkeye/MillenniumEye/internal/adapters/janus"
	"github.com/dkeye/MillenniumEye/internal/core"
	"github.com/dkeye/MillenniumEye/internal/media"
	"github.com/pion/mediadevices"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func DefaultWebRTCConfig() webrtc.Configuration {
	return webrtc.Configuration{
		ICEServers: []webrtc.ICEServer{
			{
				URLs: []string{"stun:stun.l.google.com:19302"},
			},
		},
	}
}

// Config builds a peer configuration from STUN/TURN urls; empty means default.
func Config(iceServers []string) webrtc.Configuration {
	if len(iceServers) == 0 {
		return DefaultWebRTCConfig()
	}
	return webrtc.Configuration{ICEServers: []webrtc.ICEServer{{URLs: iceServers}}}
}

// API creates peer connections sharing one media engine.
type API struct {
	api   *webrtc.API
	codec *mediadevices.CodecSelector
	cfg   webrtc.Configuration
}

var _ janus.PeerFactory = (*API)(nil)

func NewAPI(cfg webrtc.Configuration) (*API, error) {
	api, codec, err := newEngine()
	if err != nil {
		return nil, fmt.Errorf("media engine: %w", err)
	}
	return &API{api: api, codec: codec, cfg: cfg}, nil
}

func (a *API) NewPeer(name string) (janus.Peer, error) {
	return a.NewConnection(name)
}

func (a *API) NewConnection(name string) (*Connection, error) {
	pc, err := a.api.NewPeerConnection(a.cfg)
	if err != nil {
		return nil, err
	}
	c := &Connection{
		pc:     pc,
		codec:  a.codec,
		logger: log.With().Str("module", "webrtc").Str("peer", name).Logger(),
	}
	c.start()
	return c, nil
}

// Connection is one pion PeerConnection plus the local tracks it sends.
type Connection struct {
	pc     *webrtc.PeerConnection
	codec  *mediadevices.CodecSelector
	logger zerolog.Logger

	mu       sync.Mutex
	local    []mediadevices.Track
	onRemote func(core.MediaStream)
	onClosed func()
	closed   bool
}

var _ janus.Peer = (*Connection)(nil)

func (c *Connection) start() {
	c.pc.OnICEConnectionStateChange(func(s webrtc.ICEConnectionState) {
		c.logger.Info().Str("ice_state", s.String()).Msg("ICE state")
	})

	c.pc.OnConnectionStateChange(func(s webrtc.PeerConnectionState) {
		c.logger.Info().Str("peer_connection_state", s.String()).Msg("Peer state")
		if s == webrtc.PeerConnectionStateFailed ||
			s == webrtc.PeerConnectionStateClosed {
			c.mu.Lock()
			fn := c.onClosed
			c.mu.Unlock()
			if fn != nil {
				fn()
			}
		}
	})

	c.pc.OnTrack(func(track *webrtc.TrackRemote, _ *webrtc.RTPReceiver) {
		c.logger.Info().
			Str("kind", track.Kind().String()).
			Str("track_id", track.ID()).
			Str("stream_id", track.StreamID()).
			Msg("OnTrack received")
		c.mu.Lock()
		fn := c.onRemote
		c.mu.Unlock()
		if fn != nil {
			fn(core.MediaStream{
				ID:     track.StreamID(),
				Tracks: []core.MediaTrack{{ID: track.ID(), Kind: track.Kind().String()}},
			})
		}
		go drain(track)
	})
}

// drain keeps RTCP and interceptors flowing for tracks nobody renders.
func drain(track *webrtc.TrackRemote) {
	buf := make([]byte, 1500)
	for {
		if _, _, err := track.Read(buf); err != nil {
			return
		}
	}
}

// AddLocalMedia captures per c and adds the tracks. Kinds that are disabled
// or cannot be captured get a receive-only transceiver instead.
func (c *Connection) AddLocalMedia(cons media.Constraints) (core.MediaStream, error) {
	tracks, err := capture(cons, c.codec)
	if err != nil {
		return core.MediaStream{}, err
	}
	stream := core.MediaStream{ID: "local"}
	sending := map[webrtc.RTPCodecType]bool{}
	for _, t := range tracks {
		if _, err := c.pc.AddTrack(t); err != nil {
			closeTracks(tracks)
			return core.MediaStream{}, fmt.Errorf("add %s track: %w", t.Kind(), err)
		}
		sending[t.Kind()] = true
		stream.Tracks = append(stream.Tracks, core.MediaTrack{ID: t.ID(), Kind: t.Kind().String()})
	}
	for _, kind := range []webrtc.RTPCodecType{webrtc.RTPCodecTypeAudio, webrtc.RTPCodecTypeVideo} {
		if sending[kind] {
			continue
		}
		if _, err := c.pc.AddTransceiverFromKind(kind, webrtc.RTPTransceiverInit{
			Direction: webrtc.RTPTransceiverDirectionRecvonly,
		}); err != nil {
			closeTracks(tracks)
			return core.MediaStream{}, fmt.Errorf("add %s transceiver: %w", kind, err)
		}
	}

	c.mu.Lock()
	c.local = append(c.local, tracks...)
	c.mu.Unlock()
	c.logger.Info().Int("tracks", len(tracks)).Bool("audio", cons.AudioEnabled()).Bool("video", cons.VideoEnabled()).Msg("local media added")
	return stream, nil
}

// CreateOffer returns the offer once ICE gathering completes.
func (c *Connection) CreateOffer(ctx context.Context) (core.SessionDescriptor, error) {
	offer, err := c.pc.CreateOffer(nil)
	if err != nil {
		return core.SessionDescriptor{}, err
	}
	return c.setLocal(ctx, offer)
}

func (c *Connection) ApplyOfferAndCreateAnswer(ctx context.Context, offer core.SessionDescriptor) (core.SessionDescriptor, error) {
	if err := c.pc.SetRemoteDescription(offer); err != nil {
		return core.SessionDescriptor{}, err
	}
	answer, err := c.pc.CreateAnswer(nil)
	if err != nil {
		return core.SessionDescriptor{}, err
	}
	return c.setLocal(ctx, answer)
}

func (c *Connection) setLocal(ctx context.Context, d webrtc.SessionDescription) (core.SessionDescriptor, error) {
	gatherComplete := webrtc.GatheringCompletePromise(c.pc)
	if err := c.pc.SetLocalDescription(d); err != nil {
		return core.SessionDescriptor{}, err
	}
	select {
	case <-gatherComplete:
	case <-ctx.Done():
		return core.SessionDescriptor{}, ctx.Err()
	}
	return *c.pc.LocalDescription(), nil
}

func (c *Connection) ApplyAnswer(answer core.SessionDescriptor) error {
	return c.pc.SetRemoteDescription(answer)
}

func (c *Connection) AddICECandidate(ci webrtc.ICECandidateInit) error {
	return c.pc.AddICECandidate(ci)
}

// OnRemoteStream sets the callback for remote tracks.
func (c *Connection) OnRemoteStream(fn func(core.MediaStream)) {
	c.mu.Lock()
	c.onRemote = fn
	c.mu.Unlock()
}

// OnClosed sets the callback for a failed or closed peer connection.
func (c *Connection) OnClosed(fn func()) {
	c.mu.Lock()
	c.onClosed = fn
	c.mu.Unlock()
}

func (c *Connection) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	tracks := c.local
	c.local = nil
	c.mu.Unlock()

	closeTracks(tracks)
	if err := c.pc.Close(); err != nil {
		c.logger.Error().Err(err).Msg("close error")
	} else {
		c.logger.Info().Msg("closed")
	}
}

func closeTracks(tracks []mediadevices.Track) {
	for _, t := range tracks {
		if err := t.Close(); err != nil {
			log.Debug().Err(err).Str("module", "webrtc").Str("track", t.ID()).Msg("close track")
		}
	}
}
