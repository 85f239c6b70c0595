// Package signaling drives one gateway handle through the register / call /
// answer / hangup lifecycle.
package signaling

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dkeye/MillenniumEye/internal/core"
	"github.com/dkeye/MillenniumEye/internal/domain"
	"github.com/dkeye/MillenniumEye/internal/media"
	"github.com/dkeye/MillenniumEye/internal/metrics"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	ErrInvalidTransition = errors.New("invalid transition")
	ErrNoRemoteOffer     = errors.New("no remote offer cached")
	ErrNotAttached       = errors.New("no gateway handle")
)

// Change describes one applied state change.
type Change struct {
	Channel domain.ChannelName
	From    domain.CallState
	To      domain.CallState
	Trigger Trigger
}

type MediaKind string

const (
	MediaLocal  MediaKind = "local"
	MediaRemote MediaKind = "remote"
)

// MediaEvent reports a stream attached to the channel.
type MediaEvent struct {
	Channel domain.ChannelName
	Kind    MediaKind
	Stream  core.MediaStream
}

// Status is a read-only view of a session.
type Status struct {
	Channel  domain.ChannelName `json:"channel"`
	Identity string             `json:"identity,omitempty"`
	Peer     string             `json:"peer,omitempty"`
	State    domain.CallState   `json:"state"`
}

// Session owns one gateway handle. Its state only changes through the
// transition table, from its own commands and its own handle callbacks.
type Session struct {
	name   domain.ChannelName
	logger zerolog.Logger

	mu              sync.Mutex
	ctx             context.Context
	state           domain.CallState
	identity        string
	pendingIdentity string
	peer            string
	pendingRemote   *core.SessionDescriptor
	handle          core.GatewayHandle
	generation      uint64
	armed           *media.Constraints

	listenerMu     sync.RWMutex
	stateListeners []func(Change)
	mediaListeners []func(MediaEvent)
}

var _ core.HandleObserver = (*Session)(nil)

func NewSession(name domain.ChannelName) *Session {
	return &Session{
		name:   name,
		ctx:    context.Background(),
		state:  domain.StateOff,
		logger: log.With().Str("module", "signaling").Str("channel", string(name)).Logger(),
	}
}

func (s *Session) Name() domain.ChannelName { return s.name }

func (s *Session) State() domain.CallState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Identity is the registered username; empty until registration succeeds.
func (s *Session) Identity() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

// PendingRemote returns a copy of the cached remote descriptor, if any.
func (s *Session) PendingRemote() *core.SessionDescriptor {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pendingRemote == nil {
		return nil
	}
	d := *s.pendingRemote
	return &d
}

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{Channel: s.name, Identity: s.identity, Peer: s.peer, State: s.state}
}

// OnStateChange registers fn for every applied change of state.
func (s *Session) OnStateChange(fn func(Change)) {
	s.listenerMu.Lock()
	s.stateListeners = append(s.stateListeners, fn)
	s.listenerMu.Unlock()
}

// OnMedia registers fn for local and remote stream attachment.
func (s *Session) OnMedia(fn func(MediaEvent)) {
	s.listenerMu.Lock()
	s.mediaListeners = append(s.mediaListeners, fn)
	s.listenerMu.Unlock()
}

// Connect attaches the session's handle. ctx bounds the session lifetime and
// is used for requests the session issues on its own.
func (s *Session) Connect(ctx context.Context, client core.GatewayClient, req core.AttachRequest) error {
	s.mu.Lock()
	ch, err := s.transitionLocked(TriggerGatewayReady)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.ctx = ctx
	s.mu.Unlock()
	s.notify(ch)

	h, err := client.Attach(ctx, req, s)
	if err != nil {
		s.logger.Error().Err(err).Str("plugin", req.Plugin).Msg("attach failed")
		s.fire(TriggerAttachFailed, nil)
		return fmt.Errorf("attach %s: %w", req.Plugin, err)
	}

	s.mu.Lock()
	s.handle = h
	s.logger = s.logger.With().Uint64("handle", h.ID()).Logger()
	s.mu.Unlock()
	s.fire(TriggerAttachSucceeded, nil)
	return nil
}

// Register asks the gateway to bind name to this handle.
func (s *Session) Register(ctx context.Context, name string) error {
	s.mu.Lock()
	ch, err := s.transitionLocked(TriggerRegister)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.pendingIdentity = name
	s.generation++
	gen, h := s.generation, s.handle
	s.mu.Unlock()
	s.notify(ch)

	env := core.Envelope{Message: core.Message{Request: core.RequestRegister, Username: name}}
	if err := s.send(ctx, h, env); err != nil {
		s.fail(gen, TriggerSendFailed, err)
	}
	return nil
}

// Call creates an offer with constraints and sends it to opponent.
func (s *Session) Call(ctx context.Context, opponent string, constraints media.Constraints) error {
	s.mu.Lock()
	ch, err := s.transitionLocked(TriggerCall)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.peer = opponent
	s.pendingRemote = nil
	s.generation++
	gen, h := s.generation, s.handle
	s.mu.Unlock()
	s.notify(ch)

	if h == nil {
		s.fail(gen, TriggerOfferFailed, ErrNotAttached)
		return nil
	}
	h.CreateOffer(ctx, constraints,
		func(offer core.SessionDescriptor) { s.onOfferCreated(ctx, gen, opponent, offer) },
		func(err error) { s.fail(gen, TriggerOfferFailed, err) },
	)
	return nil
}

func (s *Session) onOfferCreated(ctx context.Context, gen uint64, opponent string, offer core.SessionDescriptor) {
	s.mu.Lock()
	if gen != s.generation || s.state != domain.StateCalling {
		s.mu.Unlock()
		s.discardStale("offer")
		return
	}
	h := s.handle
	s.mu.Unlock()

	env := core.Envelope{
		Message: core.Message{Request: core.RequestCall, Username: opponent},
		JSEP:    &offer,
	}
	if err := s.send(ctx, h, env); err != nil {
		s.fail(gen, TriggerSendFailed, err)
	}
}

// Accept answers the cached remote offer.
func (s *Session) Accept(ctx context.Context, constraints media.Constraints) error {
	s.mu.Lock()
	ch, err := s.transitionLocked(TriggerAccept)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	remote := s.pendingRemote
	s.pendingRemote = nil
	s.armed = nil
	s.generation++
	gen, h := s.generation, s.handle
	s.mu.Unlock()
	s.notify(ch)

	if remote == nil || h == nil {
		cause := ErrNoRemoteOffer
		if h == nil {
			cause = ErrNotAttached
		}
		s.fail(gen, TriggerAnswerFailed, cause)
		return nil
	}
	h.CreateAnswer(ctx, *remote, constraints,
		func(answer core.SessionDescriptor) { s.onAnswerCreated(ctx, gen, answer) },
		func(err error) { s.fail(gen, TriggerAnswerFailed, err) },
	)
	return nil
}

func (s *Session) onAnswerCreated(ctx context.Context, gen uint64, answer core.SessionDescriptor) {
	s.mu.Lock()
	if gen != s.generation || s.state != domain.StateAnswering {
		s.mu.Unlock()
		s.discardStale("answer")
		return
	}
	h := s.handle
	s.mu.Unlock()

	env := core.Envelope{Message: core.Message{Request: core.RequestAccept}, JSEP: &answer}
	if err := s.send(ctx, h, env); err != nil {
		s.fail(gen, TriggerSendFailed, err)
	}
}

// ArmAccept accepts now when ringing, otherwise answers the next incoming
// call on this channel as soon as it arrives.
func (s *Session) ArmAccept(ctx context.Context, constraints media.Constraints) error {
	s.mu.Lock()
	switch {
	case s.state == domain.StateRinging:
		s.mu.Unlock()
		return s.Accept(ctx, constraints)
	case s.state.IsRegistered() && !s.state.InCallView():
		c := constraints
		s.armed = &c
		s.mu.Unlock()
		s.logger.Info().Msg("accept armed until incoming call")
		return nil
	}
	state := s.state
	s.mu.Unlock()
	return fmt.Errorf("%w: arm accept in state %s", ErrInvalidTransition, state)
}

// Hangup ends whatever call the session is in and returns it to REGISTERED.
// It is idempotent and a no-op before registration.
func (s *Session) Hangup(ctx context.Context) {
	s.mu.Lock()
	s.armed = nil
	prev := s.state
	ch, err := s.transitionLocked(TriggerHangup)
	if err != nil {
		s.mu.Unlock()
		s.logger.Debug().Str("state", prev.String()).Msg("hangup: nothing to tear down")
		return
	}
	if prev == domain.StateRegistered {
		s.mu.Unlock()
		return
	}
	s.pendingRemote = nil
	s.peer = ""
	s.generation++
	h := s.handle
	s.mu.Unlock()
	s.notify(ch)

	if err := s.send(ctx, h, core.Envelope{Message: core.Message{Request: core.RequestHangup}}); err != nil {
		s.logger.Warn().Err(err).Msg("hangup request failed")
	}
	if h != nil {
		h.Hangup()
	}
}

func (s *Session) send(ctx context.Context, h core.GatewayHandle, env core.Envelope) error {
	if h == nil {
		return ErrNotAttached
	}
	metrics.GatewayRequestsTotal.WithLabelValues(string(env.Message.Request)).Inc()
	if err := h.Send(ctx, env); err != nil {
		return fmt.Errorf("send %s: %w", env.Message.Request, err)
	}
	s.logger.Debug().Str("request", string(env.Message.Request)).Bool("jsep", env.JSEP != nil).Msg("request sent")
	return nil
}

// fail applies a failure trigger unless the operation that produced it has
// been superseded.
func (s *Session) fail(gen uint64, t Trigger, cause error) {
	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		s.discardStale(string(t))
		return
	}
	ch, err := s.transitionLocked(t)
	s.mu.Unlock()
	if err != nil {
		s.discardStale(string(t))
		return
	}
	s.logger.Warn().Err(cause).Str("trigger", string(t)).Msg("operation failed")
	s.notify(ch)
}

// fire applies t with mutate run under the lock before the state changes.
func (s *Session) fire(t Trigger, mutate func()) Outcome {
	s.mu.Lock()
	ch, err := s.transitionLocked(t)
	if err != nil {
		state := s.state
		s.mu.Unlock()
		s.logger.Debug().Str("trigger", string(t)).Str("state", state.String()).Msg("trigger discarded")
		return Discarded
	}
	if mutate != nil {
		mutate()
	}
	s.mu.Unlock()
	s.notify(ch)
	return Applied
}

func (s *Session) transitionLocked(t Trigger) (Change, error) {
	next, ok := Next(s.state, t)
	if !ok {
		return Change{}, fmt.Errorf("%w: %s in state %s", ErrInvalidTransition, t, s.state)
	}
	ch := Change{Channel: s.name, From: s.state, To: next, Trigger: t}
	s.state = next
	if invalidating[t] {
		s.generation++
	}
	return ch, nil
}

func (s *Session) discardStale(what string) {
	metrics.StaleCallbacksTotal.WithLabelValues(string(s.name)).Inc()
	s.logger.Info().Str("result", what).Msg("stale result discarded")
}

func (s *Session) notify(ch Change) {
	if ch.From == ch.To {
		return
	}
	metrics.StateTransitionsTotal.WithLabelValues(string(ch.Channel), string(ch.To)).Inc()
	if ch.To == domain.StateInCall {
		metrics.ActiveCalls.Inc()
	}
	if ch.From == domain.StateInCall {
		metrics.ActiveCalls.Dec()
	}
	s.logger.Info().
		Str("from", ch.From.String()).
		Str("to", ch.To.String()).
		Str("trigger", string(ch.Trigger)).
		Msg("state changed")

	s.listenerMu.RLock()
	listeners := make([]func(Change), len(s.stateListeners))
	copy(listeners, s.stateListeners)
	s.listenerMu.RUnlock()
	for _, fn := range listeners {
		fn(ch)
	}
}
