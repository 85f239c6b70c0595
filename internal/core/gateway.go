package core

import (
	"context"

	"github.com/dkeye/MillenniumEye/internal/media"
)

//go:generate mockgen -source=gateway.go -destination=mock_core/gateway_mock.go -package=mock_core

// AttachRequest selects the plugin a handle is bound to.
type AttachRequest struct {
	Plugin   string
	OpaqueID string
}

// GatewayClient is the connection to the signaling gateway.
type GatewayClient interface {
	// Attach binds a new plugin handle; obs receives every event for it.
	Attach(ctx context.Context, req AttachRequest, obs HandleObserver) (GatewayHandle, error)
}

// GatewayHandle is one attached plugin handle. It is owned by exactly one
// signaling session.
type GatewayHandle interface {
	ID() uint64
	// Send delivers one request to the plugin.
	Send(ctx context.Context, env Envelope) error
	// CreateOffer captures local media per constraints and produces an offer.
	// Exactly one of onSuccess / onError is invoked, possibly from another goroutine.
	CreateOffer(ctx context.Context, constraints media.Constraints, onSuccess func(SessionDescriptor), onError func(error))
	// CreateAnswer answers remote with local media per constraints.
	CreateAnswer(ctx context.Context, remote SessionDescriptor, constraints media.Constraints, onSuccess func(SessionDescriptor), onError func(error))
	// HandleRemoteJSEP applies a remote answer to the local peer connection.
	HandleRemoteJSEP(ctx context.Context, remote SessionDescriptor) error
	// Hangup tears down local media without signaling the plugin.
	Hangup()
}

// HandleObserver receives the asynchronous callbacks of one handle. Calls for
// the same handle are delivered in arrival order.
type HandleObserver interface {
	OnMessage(msg InboundMessage, jsep *SessionDescriptor)
	OnWebRTCState(up bool)
	OnLocalStream(stream MediaStream)
	OnRemoteStream(stream MediaStream)
	OnCleanup()
	OnConnectionFailed(err error)
	OnDestroyed()
}
