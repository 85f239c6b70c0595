package janus

import (
	"context"
	"fmt"
	"sync"

	"github.com/dkeye/MillenniumEye/internal/core"
	"github.com/dkeye/MillenniumEye/internal/media"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Handle is one attached plugin handle with at most one live Peer.
type Handle struct {
	id       uint64
	client   *Client
	obs      core.HandleObserver
	opaqueID string

	mu   sync.Mutex
	peer Peer
	// epoch counts local teardowns; a peer prepared across one is discarded.
	epoch uint64
}

var _ core.GatewayHandle = (*Handle)(nil)

func (h *Handle) ID() uint64 { return h.id }

func (h *Handle) Send(ctx context.Context, env core.Envelope) error {
	_, err := h.client.request(ctx, request{
		Janus:     verbMessage,
		SessionID: h.client.sessionID,
		HandleID:  h.id,
		Body:      env.Message,
		JSEP:      env.JSEP,
	})
	return err
}

func (h *Handle) CreateOffer(ctx context.Context, c media.Constraints, onSuccess func(core.SessionDescriptor), onError func(error)) {
	epoch := h.currentEpoch()
	go func() {
		p, err := h.preparePeer(c, epoch)
		if err != nil {
			onError(err)
			return
		}
		offer, err := p.CreateOffer(ctx)
		if err != nil {
			onError(fmt.Errorf("create offer: %w", err))
			return
		}
		onSuccess(offer)
	}()
}

func (h *Handle) CreateAnswer(ctx context.Context, remote core.SessionDescriptor, c media.Constraints, onSuccess func(core.SessionDescriptor), onError func(error)) {
	epoch := h.currentEpoch()
	go func() {
		p, err := h.preparePeer(c, epoch)
		if err != nil {
			onError(err)
			return
		}
		answer, err := p.ApplyOfferAndCreateAnswer(ctx, remote)
		if err != nil {
			onError(fmt.Errorf("create answer: %w", err))
			return
		}
		onSuccess(answer)
	}()
}

func (h *Handle) HandleRemoteJSEP(_ context.Context, remote core.SessionDescriptor) error {
	h.mu.Lock()
	p := h.peer
	h.mu.Unlock()
	if p == nil {
		return ErrNoPeer
	}
	return p.ApplyAnswer(remote)
}

// Hangup closes local media and cancels any offer or answer still being
// prepared. The plugin is told separately by a hangup request.
func (h *Handle) Hangup() {
	if h.closePeer() {
		h.obs.OnCleanup()
	}
}

// preparePeer replaces the current peer with a fresh one carrying local media.
// It fails with ErrPeerCancelled when the handle was torn down after epoch.
func (h *Handle) preparePeer(c media.Constraints, epoch uint64) (Peer, error) {
	h.dropPeer()

	p, err := h.client.peers.NewPeer(h.opaqueID)
	if err != nil {
		return nil, fmt.Errorf("new peer: %w", err)
	}
	p.OnRemoteStream(h.obs.OnRemoteStream)
	p.OnClosed(func() { h.peerClosed(p) })

	stream, err := p.AddLocalMedia(c)
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("local media: %w", err)
	}

	h.mu.Lock()
	if h.epoch != epoch {
		h.mu.Unlock()
		p.Close()
		return nil, ErrPeerCancelled
	}
	h.peer = p
	h.mu.Unlock()

	if len(stream.Tracks) > 0 {
		h.obs.OnLocalStream(stream)
	}
	return p, nil
}

func (h *Handle) currentEpoch() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.epoch
}

// closePeer is a local teardown: it also cancels peers still being prepared.
func (h *Handle) closePeer() bool {
	h.mu.Lock()
	h.epoch++
	h.mu.Unlock()
	return h.dropPeer()
}

// dropPeer closes the installed peer only.
func (h *Handle) dropPeer() bool {
	h.mu.Lock()
	p := h.peer
	h.peer = nil
	h.mu.Unlock()
	if p == nil {
		return false
	}
	p.Close()
	return true
}

// peerClosed handles a transport failure of p. Peers already replaced or
// closed by us are ignored.
func (h *Handle) peerClosed(p Peer) {
	h.mu.Lock()
	current := h.peer == p
	if current {
		h.peer = nil
	}
	h.mu.Unlock()
	if !current {
		return
	}
	log.Warn().Str("module", "janus").Uint64("handle", h.id).Msg("peer connection lost")
	p.Close()
	h.obs.OnWebRTCState(false)
	h.obs.OnCleanup()
}

func (h *Handle) destroyed() {
	h.closePeer()
	h.obs.OnDestroyed()
}

func (h *Handle) debug() *zerolog.Event {
	return log.Debug().Str("module", "janus").Uint64("handle", h.id)
}

// dispatch runs on the read loop, so one handle's events stay ordered.
func (h *Handle) dispatch(resp response) {
	switch resp.Janus {
	case verbEvent:
		msg, err := resp.inbound()
		if err != nil {
			log.Error().Err(err).Str("module", "janus").Uint64("handle", h.id).Msg("bad plugin event")
			return
		}
		h.obs.OnMessage(msg, resp.JSEP)
	case verbWebRTCUp:
		h.obs.OnWebRTCState(true)
	case verbHangup:
		log.Info().Str("module", "janus").Uint64("handle", h.id).Str("reason", resp.Reason).Msg("peer connection hung up")
		h.obs.OnWebRTCState(false)
		h.dropPeer()
		h.obs.OnCleanup()
	case verbDetached:
		h.client.detach(h.id)
		h.destroyed()
	case verbTrickle:
		h.trickle(resp.Candidate)
	case verbMedia, verbSlowLink:
		h.debug().Str("janus", resp.Janus).Str("type", resp.Type).Msg("media report")
	default:
		h.debug().Str("janus", resp.Janus).Msg("handle event ignored")
	}
}

func (h *Handle) trickle(c *trickleCandidate) {
	if c == nil || c.Completed {
		return
	}
	h.mu.Lock()
	p := h.peer
	h.mu.Unlock()
	if p == nil {
		h.debug().Msg("trickle without peer")
		return
	}
	if err := p.AddICECandidate(c.ICECandidateInit); err != nil {
		log.Warn().Err(err).Str("module", "janus").Uint64("handle", h.id).Msg("add remote candidate")
	}
}
