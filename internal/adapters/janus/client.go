// Package janus implements core.GatewayClient over the Janus WebSocket API.
package janus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dkeye/MillenniumEye/internal/core"
	"github.com/dkeye/MillenniumEye/internal/media"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
)

const (
	Subprotocol = "janus-protocol"

	defaultKeepalive      = 25 * time.Second
	defaultRequestTimeout = 10 * time.Second
	writeTimeout          = 5 * time.Second
	sendBuffer            = 64
)

var (
	ErrSessionClosed = errors.New("janus session closed")
	ErrNoPeer        = errors.New("no peer connection")
	ErrPeerCancelled = errors.New("peer cancelled by hangup")
)

// Peer is the media side of one handle.
type Peer interface {
	AddLocalMedia(c media.Constraints) (core.MediaStream, error)
	CreateOffer(ctx context.Context) (core.SessionDescriptor, error)
	ApplyOfferAndCreateAnswer(ctx context.Context, offer core.SessionDescriptor) (core.SessionDescriptor, error)
	ApplyAnswer(answer core.SessionDescriptor) error
	AddICECandidate(c webrtc.ICECandidateInit) error
	OnRemoteStream(fn func(core.MediaStream))
	// OnClosed fires when the connection fails or closes.
	OnClosed(fn func())
	Close()
}

// PeerFactory creates a fresh Peer for every offer or answer.
type PeerFactory interface {
	NewPeer(name string) (Peer, error)
}

type Config struct {
	URL             string
	KeepalivePeriod time.Duration
	RequestTimeout  time.Duration
}

// Client is one Janus session over one WebSocket.
type Client struct {
	cfg   Config
	conn  *websocket.Conn
	peers PeerFactory

	sessionID uint64
	send      chan []byte
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once

	mu      sync.Mutex
	pending map[string]chan response
	handles map[uint64]*Handle
	err     error
}

var _ core.GatewayClient = (*Client)(nil)

// Dial connects to the gateway and creates a Janus session.
func Dial(ctx context.Context, cfg Config, peers PeerFactory) (*Client, error) {
	if cfg.KeepalivePeriod <= 0 {
		cfg.KeepalivePeriod = defaultKeepalive
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}

	dialer := websocket.Dialer{
		Subprotocols:     []string{Subprotocol},
		HandshakeTimeout: cfg.RequestTimeout,
	}
	conn, _, err := dialer.DialContext(ctx, cfg.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", cfg.URL, err)
	}

	cctx, cancel := context.WithCancel(context.Background())
	c := &Client{
		cfg:     cfg,
		conn:    conn,
		peers:   peers,
		send:    make(chan []byte, sendBuffer),
		ctx:     cctx,
		cancel:  cancel,
		pending: make(map[string]chan response),
		handles: make(map[uint64]*Handle),
	}
	go c.writePump()
	go c.readPump()

	resp, err := c.request(ctx, request{Janus: verbCreate})
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("create session: %w", err)
	}
	if resp.Data == nil {
		c.Close()
		return nil, errors.New("create session: no session id")
	}
	c.sessionID = resp.Data.ID
	log.Info().Str("module", "janus").Str("url", cfg.URL).Uint64("session", c.sessionID).Msg("session created")

	go c.keepalive()
	return c, nil
}

func (c *Client) SessionID() uint64 { return c.sessionID }

// Done is closed once the session is gone.
func (c *Client) Done() <-chan struct{} { return c.ctx.Done() }

// Attach binds a plugin handle; obs receives all of its events in arrival order.
func (c *Client) Attach(ctx context.Context, req core.AttachRequest, obs core.HandleObserver) (core.GatewayHandle, error) {
	resp, err := c.request(ctx, request{
		Janus:     verbAttach,
		SessionID: c.sessionID,
		Plugin:    req.Plugin,
		OpaqueID:  req.OpaqueID,
	})
	if err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, errors.New("attach: no handle id")
	}
	h := &Handle{id: resp.Data.ID, client: c, obs: obs, opaqueID: req.OpaqueID}

	c.mu.Lock()
	c.handles[h.id] = h
	c.mu.Unlock()
	log.Info().Str("module", "janus").Uint64("handle", h.id).Str("plugin", req.Plugin).Msg("plugin attached")
	return h, nil
}

// Close destroys the session and the socket. Handles get no callbacks.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		if c.sessionID != 0 {
			ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
			if _, err := c.request(ctx, request{Janus: verbDestroy, SessionID: c.sessionID}); err != nil {
				log.Debug().Err(err).Str("module", "janus").Msg("destroy session")
			}
			cancel()
		}
		c.mu.Lock()
		handles := c.handles
		c.handles = map[uint64]*Handle{}
		c.mu.Unlock()
		for _, h := range handles {
			h.closePeer()
		}
		c.shutdown(ErrSessionClosed)
	})
}

func (c *Client) shutdown(cause error) {
	c.mu.Lock()
	if c.err == nil {
		c.err = cause
	}
	for tx, ch := range c.pending {
		close(ch)
		delete(c.pending, tx)
	}
	c.mu.Unlock()
	c.cancel()
	_ = c.conn.Close()
}

// request sends req and waits for its success/error/ack.
func (c *Client) request(ctx context.Context, req request) (response, error) {
	req.Transaction = uuid.NewString()
	data, err := json.Marshal(req)
	if err != nil {
		return response{}, fmt.Errorf("encode %s: %w", req.Janus, err)
	}

	wait := make(chan response, 1)
	c.mu.Lock()
	if c.err != nil {
		err := c.err
		c.mu.Unlock()
		return response{}, err
	}
	c.pending[req.Transaction] = wait
	c.mu.Unlock()
	defer c.forget(req.Transaction)

	ctx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	select {
	case c.send <- data:
	case <-ctx.Done():
		return response{}, fmt.Errorf("%s: %w", req.Janus, ctx.Err())
	case <-c.ctx.Done():
		return response{}, ErrSessionClosed
	}

	select {
	case resp, ok := <-wait:
		if !ok {
			return response{}, ErrSessionClosed
		}
		if resp.Janus == verbError {
			if resp.Error == nil {
				return resp, fmt.Errorf("%s: unknown error", req.Janus)
			}
			return resp, fmt.Errorf("%s: %w", req.Janus, resp.Error)
		}
		return resp, nil
	case <-ctx.Done():
		return response{}, fmt.Errorf("%s: %w", req.Janus, ctx.Err())
	}
}

func (c *Client) forget(tx string) {
	c.mu.Lock()
	delete(c.pending, tx)
	c.mu.Unlock()
}

func (c *Client) writePump() {
	for {
		select {
		case <-c.ctx.Done():
			return
		case data := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
				log.Error().Err(err).Str("module", "janus").Msg("writePump set deadline")
				c.fail(err)
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "janus").Msg("writePump write error")
				c.fail(err)
				return
			}
		}
	}
}

func (c *Client) readPump() {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.ctx.Done():
				log.Info().Str("module", "janus").Msg("readPump closing")
			default:
				log.Error().Err(err).Str("module", "janus").Msg("readPump read error")
				c.fail(err)
			}
			return
		}
		var resp response
		if err := json.Unmarshal(data, &resp); err != nil {
			log.Error().Err(err).Str("module", "janus").Msg("bad json")
			continue
		}
		c.dispatch(resp)
	}
}

func (c *Client) dispatch(resp response) {
	if resp.transactional() {
		c.mu.Lock()
		wait, ok := c.pending[resp.Transaction]
		if ok {
			delete(c.pending, resp.Transaction)
		}
		c.mu.Unlock()
		if ok {
			wait <- resp
			return
		}
	}

	if resp.Janus == verbTimeout {
		log.Warn().Str("module", "janus").Uint64("session", c.sessionID).Msg("session timed out")
		c.mu.Lock()
		handles := c.handles
		c.handles = map[uint64]*Handle{}
		c.mu.Unlock()
		for _, h := range handles {
			h.destroyed()
		}
		c.shutdown(ErrSessionClosed)
		return
	}

	if resp.Sender == 0 {
		log.Debug().Str("module", "janus").Str("janus", resp.Janus).Msg("session event ignored")
		return
	}
	c.mu.Lock()
	h, ok := c.handles[resp.Sender]
	c.mu.Unlock()
	if !ok {
		log.Warn().Str("module", "janus").Uint64("handle", resp.Sender).Str("janus", resp.Janus).Msg("event for unknown handle")
		return
	}
	h.dispatch(resp)
}

// fail tears the session down after a transport error and tells every handle.
func (c *Client) fail(err error) {
	c.mu.Lock()
	if c.err != nil {
		c.mu.Unlock()
		return
	}
	handles := c.handles
	c.handles = map[uint64]*Handle{}
	c.mu.Unlock()

	c.shutdown(err)
	for _, h := range handles {
		h.closePeer()
		h.obs.OnConnectionFailed(err)
	}
}

func (c *Client) keepalive() {
	t := time.NewTicker(c.cfg.KeepalivePeriod)
	defer t.Stop()
	for {
		select {
		case <-c.ctx.Done():
			return
		case <-t.C:
			if _, err := c.request(c.ctx, request{Janus: verbKeepalive, SessionID: c.sessionID}); err != nil {
				log.Warn().Err(err).Str("module", "janus").Msg("keepalive failed")
			}
		}
	}
}

func (c *Client) detach(id uint64) {
	c.mu.Lock()
	delete(c.handles, id)
	c.mu.Unlock()
}
