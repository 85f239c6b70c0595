// Package orch fans user call commands out to one or two signaling channels
// and reports a single reconciled call state.
package orch

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dkeye/MillenniumEye/internal/app/signaling"
	"github.com/dkeye/MillenniumEye/internal/core"
	"github.com/dkeye/MillenniumEye/internal/domain"
	"github.com/dkeye/MillenniumEye/internal/media"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	DefaultPlugin      = "janus.plugin.videocall"
	DefaultFieldSuffix = "-field"
)

var (
	// ErrNotReady rejects a command whose channel preconditions do not hold.
	ErrNotReady = errors.New("channels not ready")
	// ErrCallInProgress rejects device changes once call setup started.
	ErrCallInProgress = errors.New("call in progress")
)

type Options struct {
	Plugin   string
	OpaqueID string
	// Dual adds the secondary "field" channel.
	Dual        bool
	FieldSuffix string
	Policy      Policy
}

type channel struct {
	session *signaling.Session
	suffix  string
	devices domain.DeviceSelection
}

// Status is the reconciled view published to callers.
type Status struct {
	State    domain.CallState   `json:"state"`
	Username string             `json:"username,omitempty"`
	Opponent string             `json:"opponent,omitempty"`
	Channels []signaling.Status `json:"channels"`
}

type Orchestrator struct {
	client core.GatewayClient
	opts   Options

	// channels[0] is primary; the slice is fixed after New.
	channels []*channel

	mu       sync.RWMutex
	username string
	opponent string

	feed *feed
}

func New(client core.GatewayClient, opts Options) *Orchestrator {
	if opts.Plugin == "" {
		opts.Plugin = DefaultPlugin
	}
	if opts.FieldSuffix == "" {
		opts.FieldSuffix = DefaultFieldSuffix
	}
	if opts.OpaqueID == "" {
		opts.OpaqueID = "eye-" + uuid.NewString()
	}
	if opts.Policy == nil {
		opts.Policy = DropPolicy{}
	}

	o := &Orchestrator{client: client, opts: opts, feed: newFeed(opts.Policy)}
	o.channels = append(o.channels, &channel{session: signaling.NewSession(domain.ChannelFace)})
	if opts.Dual {
		o.channels = append(o.channels, &channel{
			session: signaling.NewSession(domain.ChannelField),
			suffix:  opts.FieldSuffix,
		})
	}
	for _, ch := range o.channels {
		ch.session.OnStateChange(o.onChange)
	}
	return o
}

// Start attaches every channel. Attach failures leave the channel in
// CONNECTION_FAILED; the joined error is returned for logging only.
func (o *Orchestrator) Start(ctx context.Context) error {
	var errs []error
	for _, ch := range o.channels {
		req := core.AttachRequest{
			Plugin:   o.opts.Plugin,
			OpaqueID: fmt.Sprintf("%s-%s", o.opts.OpaqueID, ch.session.Name()),
		}
		if err := ch.session.Connect(ctx, o.client, req); err != nil {
			errs = append(errs, fmt.Errorf("channel %s: %w", ch.session.Name(), err))
		}
	}
	return errors.Join(errs...)
}

func (o *Orchestrator) primary() *signaling.Session { return o.channels[0].session }

// Session returns the channel's session, or nil when it does not exist.
func (o *Orchestrator) Session(name domain.ChannelName) *signaling.Session {
	for _, ch := range o.channels {
		if ch.session.Name() == name {
			return ch.session
		}
	}
	return nil
}

// Sessions lists channels, primary first.
func (o *Orchestrator) Sessions() []*signaling.Session {
	out := make([]*signaling.Session, 0, len(o.channels))
	for _, ch := range o.channels {
		out = append(out, ch.session)
	}
	return out
}

// SetDevices selects capture devices per channel. field is ignored in
// single-channel mode.
func (o *Orchestrator) SetDevices(face, field domain.DeviceSelection) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, ch := range o.channels {
		if st := ch.session.State(); st.InCallView() {
			return fmt.Errorf("%w: channel %s is %s", ErrCallInProgress, ch.session.Name(), st)
		}
	}
	o.channels[0].devices = face
	if len(o.channels) > 1 {
		o.channels[1].devices = field
	}
	return nil
}

// RegisterUsername registers name on the primary and name+suffix on the
// secondary channel.
func (o *Orchestrator) RegisterUsername(ctx context.Context, name string) error {
	return o.register(ctx, name, nil)
}

// RegisterWithDevices selects devices and registers in one step. A rejected
// register keeps the previous selection.
func (o *Orchestrator) RegisterWithDevices(ctx context.Context, name string, face, field domain.DeviceSelection) error {
	return o.register(ctx, name, []domain.DeviceSelection{face, field})
}

func (o *Orchestrator) register(ctx context.Context, name string, sels []domain.DeviceSelection) error {
	name, err := domain.NormalizeUsername(name)
	if err != nil {
		return err
	}
	if err := o.require(func(s domain.CallState) bool { return s.CanRegister() }); err != nil {
		return err
	}

	o.mu.Lock()
	o.username = name
	for i, ch := range o.channels {
		if i < len(sels) {
			ch.devices = sels[i]
		}
	}
	o.mu.Unlock()

	for _, ch := range o.channels {
		if err := ch.session.Register(ctx, name+ch.suffix); err != nil {
			o.logDispatch(ch, "register", err)
		}
	}
	return nil
}

// TryCall calls opponent on every channel with that channel's devices.
func (o *Orchestrator) TryCall(ctx context.Context, opponent string) error {
	opponent, err := domain.NormalizeUsername(opponent)
	if err != nil {
		return err
	}
	if err := o.require(func(s domain.CallState) bool { return s.CanCall() }); err != nil {
		return err
	}

	o.mu.Lock()
	o.opponent = opponent
	sels := make([]domain.DeviceSelection, len(o.channels))
	for i, ch := range o.channels {
		sels[i] = ch.devices
	}
	o.mu.Unlock()

	for i, ch := range o.channels {
		if err := ch.session.Call(ctx, opponent+ch.suffix, media.Build(sels[i])); err != nil {
			o.logDispatch(ch, "call", err)
		}
	}
	return nil
}

// AcceptIncomingCall answers on the primary channel. Secondary channels
// answer now when ringing, or as soon as their own incoming call arrives.
func (o *Orchestrator) AcceptIncomingCall(ctx context.Context) error {
	if st := o.primary().State(); st != domain.StateRinging {
		return fmt.Errorf("%w: primary is %s", ErrNotReady, st)
	}

	o.mu.RLock()
	sels := make([]domain.DeviceSelection, len(o.channels))
	for i, ch := range o.channels {
		sels[i] = ch.devices
	}
	o.mu.RUnlock()

	for i, ch := range o.channels {
		c := media.Build(sels[i])
		var err error
		if i == 0 {
			err = ch.session.Accept(ctx, c)
		} else {
			err = ch.session.ArmAccept(ctx, c)
		}
		if err != nil {
			o.logDispatch(ch, "accept", err)
		}
	}
	return nil
}

// Hangup ends the call on every channel and forgets the opponent.
func (o *Orchestrator) Hangup(ctx context.Context) error {
	if st := o.primary().State(); st == domain.StateOff {
		return fmt.Errorf("%w: primary is %s", ErrNotReady, st)
	}

	o.mu.Lock()
	o.opponent = ""
	o.mu.Unlock()

	for _, ch := range o.channels {
		ch.session.Hangup(ctx)
	}
	// opponent is derived data; publish even when no channel moved
	o.feed.broadcast(o.Snapshot())
	return nil
}

// State is the reported call state: the primary channel's state.
func (o *Orchestrator) State() domain.CallState { return o.primary().State() }

func (o *Orchestrator) Snapshot() Status {
	o.mu.RLock()
	st := Status{Username: o.username, Opponent: o.opponent}
	o.mu.RUnlock()

	st.Channels = make([]signaling.Status, 0, len(o.channels))
	for _, ch := range o.channels {
		st.Channels = append(st.Channels, ch.session.Status())
	}
	st.State = st.Channels[0].State
	return st
}

// Subscribe returns a feed of snapshots, one per channel state change.
func (o *Orchestrator) Subscribe() (<-chan Status, func()) {
	return o.feed.subscribe()
}

func (o *Orchestrator) require(ok func(domain.CallState) bool) error {
	for _, ch := range o.channels {
		if st := ch.session.State(); !ok(st) {
			return fmt.Errorf("%w: channel %s is %s", ErrNotReady, ch.session.Name(), st)
		}
	}
	return nil
}

func (o *Orchestrator) onChange(c signaling.Change) {
	if c.Channel == domain.ChannelFace && c.To == domain.StateRegisterFailed {
		o.mu.Lock()
		o.username = ""
		o.mu.Unlock()
	}
	o.feed.broadcast(o.Snapshot())
}

func (o *Orchestrator) logDispatch(ch *channel, cmd string, err error) {
	log.Warn().
		Str("module", "orch").
		Str("channel", string(ch.session.Name())).
		Str("command", cmd).
		Err(err).
		Msg("channel skipped command")
}
