package core

import "github.com/pion/webrtc/v4"

// SessionDescriptor is an SDP offer or answer as carried in a gateway jsep.
type SessionDescriptor = webrtc.SessionDescription

type Request string

const (
	RequestRegister Request = "register"
	RequestCall     Request = "call"
	RequestAccept   Request = "accept"
	RequestHangup   Request = "hangup"
)

// Message is the body of an outbound plugin request.
type Message struct {
	Request  Request `json:"request"`
	Username string  `json:"username,omitempty"`
}

// Envelope is one outbound signaling request.
type Envelope struct {
	Message Message            `json:"message"`
	JSEP    *SessionDescriptor `json:"jsep,omitempty"`
}

type Event string

const (
	EventRegistered   Event = "registered"
	EventCalling      Event = "calling"
	EventIncomingCall Event = "incomingcall"
	EventAccepted     Event = "accepted"
	EventHangup       Event = "hangup"
)

type Result struct {
	Event    Event  `json:"event"`
	Username string `json:"username,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// InboundMessage is the plugin payload of an asynchronous gateway event.
type InboundMessage struct {
	Result    *Result   `json:"result,omitempty"`
	ErrorCode ErrorCode `json:"error_code,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// EventName returns the result event, or "" when the message carries none.
func (m InboundMessage) EventName() Event {
	if m.Result == nil {
		return ""
	}
	return m.Result.Event
}

// MediaTrack describes one track of a stream.
type MediaTrack struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
}

// MediaStream is what local/remote stream callbacks report.
type MediaStream struct {
	ID     string       `json:"id"`
	Tracks []MediaTrack `json:"tracks"`
}
