package signaling

import (
	"github.com/dkeye/MillenniumEye/internal/core"
	"github.com/dkeye/MillenniumEye/internal/domain"
	"github.com/dkeye/MillenniumEye/internal/media"
	"github.com/dkeye/MillenniumEye/internal/metrics"
)

// Outcome says what a gateway message did to the session.
type Outcome int

const (
	// Applied: the message matched a transition for the current state.
	Applied Outcome = iota
	// Discarded: the message is known but has no edge from the current state.
	Discarded
	// Unmapped: no transition exists for this event or error code at all.
	Unmapped
)

func (o Outcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case Discarded:
		return "discarded"
	case Unmapped:
		return "unmapped"
	}
	return "unknown"
}

// HandleMessage applies one plugin message and reports what it did.
func (s *Session) HandleMessage(msg core.InboundMessage, jsep *core.SessionDescriptor) Outcome {
	switch msg.EventName() {
	case core.EventRegistered:
		return s.fire(TriggerRegistered, func() {
			s.identity = s.pendingIdentity
		})
	case core.EventCalling:
		return s.fire(TriggerCallingAck, nil)
	case core.EventIncomingCall:
		return s.onIncomingCall(jsep, msg.Result.Username)
	case core.EventAccepted:
		return s.onAccepted(jsep)
	case core.EventHangup:
		return s.fire(TriggerRemoteHangup, func() {
			s.pendingRemote = nil
			s.armed = nil
		})
	}

	if code := msg.ErrorCode; code != 0 {
		metrics.GatewayErrorsTotal.WithLabelValues(code.String()).Inc()
		if code.Drives() {
			return s.onErrorCode(code)
		}
		metrics.UnmappedMessagesTotal.WithLabelValues(string(s.name), "error").Inc()
		s.logger.Warn().
			Int("error_code", int(code)).
			Str("error_name", code.String()).
			Str("error", msg.Error).
			Str("state", s.State().String()).
			Msg("NOT IMPLEMENTED: gateway error")
		return Unmapped
	}

	metrics.UnmappedMessagesTotal.WithLabelValues(string(s.name), "event").Inc()
	s.logger.Warn().
		Str("event", string(msg.EventName())).
		Bool("jsep", jsep != nil).
		Str("state", s.State().String()).
		Msg("NOT IMPLEMENTED: gateway event")
	return Unmapped
}

func (s *Session) onErrorCode(code core.ErrorCode) Outcome {
	if code == core.ErrUsernameTaken {
		return s.fire(TriggerUsernameTaken, func() {
			s.pendingIdentity = ""
		})
	}
	return s.fire(TriggerNoSuchUsername, nil)
}

func (s *Session) onIncomingCall(jsep *core.SessionDescriptor, from string) Outcome {
	var armed *media.Constraints
	out := s.fire(TriggerIncomingCall, func() {
		if jsep != nil {
			d := *jsep
			s.pendingRemote = &d
		}
		s.peer = from
		armed, s.armed = s.armed, nil
	})
	if out != Applied {
		return out
	}
	s.logger.Info().Str("from", from).Bool("jsep", jsep != nil).Msg("incoming call")
	if armed != nil {
		s.mu.Lock()
		ctx := s.ctx
		s.mu.Unlock()
		if err := s.Accept(ctx, *armed); err != nil {
			s.logger.Warn().Err(err).Msg("armed accept failed")
		}
	}
	return Applied
}

// onAccepted applies the remote answer when we are the caller. The callee
// also receives "accepted" once its own answer went through; there is
// nothing to apply then.
func (s *Session) onAccepted(jsep *core.SessionDescriptor) Outcome {
	var (
		remote *core.SessionDescriptor
		gen    uint64
		h      core.GatewayHandle
		state  domain.CallState
	)
	out := s.fire(TriggerAccepted, func() {
		if s.state == domain.StateCalling {
			if jsep != nil {
				d := *jsep
				s.pendingRemote = &d
			}
			remote, s.pendingRemote = s.pendingRemote, nil
		}
		gen, h, state = s.generation, s.handle, s.state
	})
	if out != Applied {
		return out
	}
	if remote == nil {
		s.logger.Debug().Str("state", state.String()).Msg("accepted without remote description")
		return Applied
	}
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	if err := h.HandleRemoteJSEP(ctx, *remote); err != nil {
		s.fail(gen, TriggerOfferFailed, err)
	}
	return Applied
}

func (s *Session) OnMessage(msg core.InboundMessage, jsep *core.SessionDescriptor) {
	s.HandleMessage(msg, jsep)
}

func (s *Session) OnWebRTCState(up bool) {
	if up {
		s.fire(TriggerMediaUp, nil)
		return
	}
	s.fire(TriggerMediaDown, nil)
}

func (s *Session) OnLocalStream(stream core.MediaStream) {
	s.emitMedia(MediaLocal, stream)
}

func (s *Session) OnRemoteStream(stream core.MediaStream) {
	s.emitMedia(MediaRemote, stream)
}

func (s *Session) OnCleanup() {
	s.fire(TriggerCleanup, func() {
		s.pendingRemote = nil
		s.peer = ""
		s.armed = nil
	})
}

func (s *Session) OnConnectionFailed(err error) {
	s.logger.Error().Err(err).Msg("gateway connection failed")
	s.fire(TriggerConnectionFailed, nil)
}

func (s *Session) OnDestroyed() {
	s.logger.Info().Msg("gateway session destroyed")
	s.fire(TriggerDestroyed, nil)
}

func (s *Session) emitMedia(kind MediaKind, stream core.MediaStream) {
	s.logger.Info().Str("kind", string(kind)).Str("stream", stream.ID).Int("tracks", len(stream.Tracks)).Msg("stream attached")

	s.listenerMu.RLock()
	listeners := make([]func(MediaEvent), len(s.mediaListeners))
	copy(listeners, s.mediaListeners)
	s.listenerMu.RUnlock()

	ev := MediaEvent{Channel: s.name, Kind: kind, Stream: stream}
	for _, fn := range listeners {
		fn(ev)
	}
}
