package janus

import (
	"encoding/json"
	"fmt"

	"github.com/dkeye/MillenniumEye/internal/core"
	"github.com/pion/webrtc/v4"
)

// Janus API verbs, both directions.
const (
	verbCreate    = "create"
	verbAttach    = "attach"
	verbDestroy   = "destroy"
	verbMessage   = "message"
	verbKeepalive = "keepalive"
	verbTrickle   = "trickle"

	verbSuccess  = "success"
	verbError    = "error"
	verbAck      = "ack"
	verbEvent    = "event"
	verbWebRTCUp = "webrtcup"
	verbMedia    = "media"
	verbSlowLink = "slowlink"
	verbHangup   = "hangup"
	verbDetached = "detached"
	verbTimeout  = "timeout"
)

type request struct {
	Janus       string                  `json:"janus"`
	Transaction string                  `json:"transaction"`
	SessionID   uint64                  `json:"session_id,omitempty"`
	HandleID    uint64                  `json:"handle_id,omitempty"`
	Plugin      string                  `json:"plugin,omitempty"`
	OpaqueID    string                  `json:"opaque_id,omitempty"`
	Body        any                     `json:"body,omitempty"`
	JSEP        *core.SessionDescriptor `json:"jsep,omitempty"`
}

type idData struct {
	ID uint64 `json:"id"`
}

type apiError struct {
	Code   int    `json:"code"`
	Reason string `json:"reason"`
}

func (e *apiError) Error() string { return fmt.Sprintf("janus error %d: %s", e.Code, e.Reason) }

type pluginData struct {
	Plugin string          `json:"plugin"`
	Data   json.RawMessage `json:"data"`
}

// trickleCandidate is either one candidate or {"completed": true}.
type trickleCandidate struct {
	webrtc.ICECandidateInit
	Completed bool `json:"completed,omitempty"`
}

type response struct {
	Janus       string                  `json:"janus"`
	Transaction string                  `json:"transaction,omitempty"`
	SessionID   uint64                  `json:"session_id,omitempty"`
	Sender      uint64                  `json:"sender,omitempty"`
	Data        *idData                 `json:"data,omitempty"`
	Error       *apiError               `json:"error,omitempty"`
	PluginData  *pluginData             `json:"plugindata,omitempty"`
	JSEP        *core.SessionDescriptor `json:"jsep,omitempty"`
	Candidate   *trickleCandidate       `json:"candidate,omitempty"`
	Reason      string                  `json:"reason,omitempty"`
	Type        string                  `json:"type,omitempty"`
	Receiving   *bool                   `json:"receiving,omitempty"`
}

// transactional reports responses that complete a pending request.
func (r response) transactional() bool {
	switch r.Janus {
	case verbSuccess, verbError, verbAck:
		return r.Transaction != ""
	}
	return false
}

// inbound decodes the plugin payload of an event.
func (r response) inbound() (core.InboundMessage, error) {
	var msg core.InboundMessage
	if r.PluginData == nil || len(r.PluginData.Data) == 0 {
		return msg, nil
	}
	if err := json.Unmarshal(r.PluginData.Data, &msg); err != nil {
		return msg, fmt.Errorf("decode plugindata: %w", err)
	}
	return msg, nil
}
