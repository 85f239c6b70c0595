// Package coretest provides in-memory gateway fakes for tests.
package coretest

import (
	"context"
	"sync"

	"github.com/dkeye/MillenniumEye/internal/core"
	"github.com/dkeye/MillenniumEye/internal/media"
	"github.com/pion/webrtc/v4"
)

var (
	Offer  = core.SessionDescriptor{Type: webrtc.SDPTypeOffer, SDP: "v=0 offer"}
	Answer = core.SessionDescriptor{Type: webrtc.SDPTypeAnswer, SDP: "v=0 answer"}
)

// Client hands out Handles and remembers every attach.
type Client struct {
	mu        sync.Mutex
	AttachErr error
	// Manual makes handles hold offer/answer callbacks until resolved.
	Manual    bool
	Handles   []*Handle
	Reqs      []core.AttachRequest
	nextID    uint64
}

func (c *Client) Attach(_ context.Context, req core.AttachRequest, obs core.HandleObserver) (core.GatewayHandle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Reqs = append(c.Reqs, req)
	if c.AttachErr != nil {
		return nil, c.AttachErr
	}
	c.nextID++
	h := &Handle{id: c.nextID, Obs: obs, Manual: c.Manual}
	c.Handles = append(c.Handles, h)
	return h, nil
}

// Handle returns the i-th attached handle.
func (c *Client) Handle(i int) *Handle {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Handles[i]
}

type pending struct {
	onSuccess func(core.SessionDescriptor)
	onError   func(error)
}

// Handle records requests and media calls. Unless Manual is set, offers and
// answers resolve synchronously with Offer / Answer.
type Handle struct {
	id     uint64
	Obs    core.HandleObserver
	Manual bool

	mu         sync.Mutex
	SendErr    error
	RemoteErr  error
	OfferErr   error
	AnswerErr  error
	sent       []core.Envelope
	offerCons  []media.Constraints
	answerCons []media.Constraints
	remotes    []core.SessionDescriptor
	hangups    int
	offerWait  []pending
	answerWait []pending
}

func (h *Handle) ID() uint64 { return h.id }

func (h *Handle) Send(_ context.Context, env core.Envelope) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.SendErr != nil {
		return h.SendErr
	}
	h.sent = append(h.sent, env)
	return nil
}

func (h *Handle) CreateOffer(_ context.Context, c media.Constraints, onSuccess func(core.SessionDescriptor), onError func(error)) {
	h.mu.Lock()
	h.offerCons = append(h.offerCons, c)
	err, manual := h.OfferErr, h.Manual
	if manual {
		h.offerWait = append(h.offerWait, pending{onSuccess, onError})
	}
	h.mu.Unlock()
	if manual {
		return
	}
	if err != nil {
		onError(err)
		return
	}
	onSuccess(Offer)
}

func (h *Handle) CreateAnswer(_ context.Context, remote core.SessionDescriptor, c media.Constraints, onSuccess func(core.SessionDescriptor), onError func(error)) {
	h.mu.Lock()
	h.answerCons = append(h.answerCons, c)
	h.remotes = append(h.remotes, remote)
	err, manual := h.AnswerErr, h.Manual
	if manual {
		h.answerWait = append(h.answerWait, pending{onSuccess, onError})
	}
	h.mu.Unlock()
	if manual {
		return
	}
	if err != nil {
		onError(err)
		return
	}
	onSuccess(Answer)
}

func (h *Handle) HandleRemoteJSEP(_ context.Context, remote core.SessionDescriptor) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.RemoteErr != nil {
		return h.RemoteErr
	}
	h.remotes = append(h.remotes, remote)
	return nil
}

func (h *Handle) Hangup() {
	h.mu.Lock()
	h.hangups++
	h.mu.Unlock()
}

// ResolveOffer completes the oldest held CreateOffer. It reports false when
// none is held.
func (h *Handle) ResolveOffer(d core.SessionDescriptor, err error) bool {
	return resolve(h.pop(&h.offerWait), d, err)
}

// ResolveAnswer completes the oldest held CreateAnswer.
func (h *Handle) ResolveAnswer(d core.SessionDescriptor, err error) bool {
	return resolve(h.pop(&h.answerWait), d, err)
}

func (h *Handle) pop(q *[]pending) *pending {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(*q) == 0 {
		return nil
	}
	p := (*q)[0]
	*q = (*q)[1:]
	return &p
}

func resolve(p *pending, d core.SessionDescriptor, err error) bool {
	if p == nil {
		return false
	}
	if err != nil {
		p.onError(err)
	} else {
		p.onSuccess(d)
	}
	return true
}

func (h *Handle) Sent() []core.Envelope {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]core.Envelope(nil), h.sent...)
}

// LastSent returns the most recent request, or the zero envelope.
func (h *Handle) LastSent() core.Envelope {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.sent) == 0 {
		return core.Envelope{}
	}
	return h.sent[len(h.sent)-1]
}

func (h *Handle) OfferConstraints() []media.Constraints {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]media.Constraints(nil), h.offerCons...)
}

func (h *Handle) AnswerConstraints() []media.Constraints {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]media.Constraints(nil), h.answerCons...)
}

// Remotes lists descriptors passed to CreateAnswer and HandleRemoteJSEP.
func (h *Handle) Remotes() []core.SessionDescriptor {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]core.SessionDescriptor(nil), h.remotes...)
}

func (h *Handle) Hangups() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.hangups
}

func (h *Handle) SetSendErr(err error) {
	h.mu.Lock()
	h.SendErr = err
	h.mu.Unlock()
}

// Event builds a plugin result message.
func Event(ev core.Event, username string) core.InboundMessage {
	return core.InboundMessage{Result: &core.Result{Event: ev, Username: username}}
}

// Failure builds a plugin error message.
func Failure(code core.ErrorCode) core.InboundMessage {
	return core.InboundMessage{ErrorCode: code, Error: code.String()}
}
