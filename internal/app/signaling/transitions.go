package signaling

import "github.com/dkeye/MillenniumEye/internal/domain"

// Trigger is anything that can move a session: a local command, a gateway
// event, or a collaborator callback.
type Trigger string

const (
	TriggerGatewayReady     Trigger = "gateway-ready"
	TriggerAttachSucceeded  Trigger = "attach-succeeded"
	TriggerAttachFailed     Trigger = "attach-failed"
	TriggerConnectionFailed Trigger = "connection-failed"
	TriggerRegister         Trigger = "register"
	TriggerRegistered       Trigger = "registered"
	TriggerUsernameTaken    Trigger = "username-taken"
	TriggerCall             Trigger = "call"
	TriggerCallingAck       Trigger = "calling-ack"
	TriggerOfferFailed      Trigger = "offer-failed"
	TriggerNoSuchUsername   Trigger = "no-such-username"
	TriggerIncomingCall     Trigger = "incoming-call"
	TriggerAccept           Trigger = "accept"
	TriggerAnswerFailed     Trigger = "answer-failed"
	TriggerAccepted         Trigger = "accepted"
	TriggerSendFailed       Trigger = "send-failed"
	TriggerRemoteHangup     Trigger = "remote-hangup"
	TriggerMediaUp          Trigger = "media-up"
	TriggerMediaDown        Trigger = "media-down"
	TriggerHangup           Trigger = "hangup"
	TriggerCleanup          Trigger = "cleanup"
	TriggerDestroyed        Trigger = "destroyed"
)

type edges map[domain.CallState]domain.CallState

func allTo(from []domain.CallState, to domain.CallState) edges {
	e := make(edges, len(from))
	for _, s := range from {
		e[s] = to
	}
	return e
}

var (
	registeredStates = []domain.CallState{
		domain.StateRegistered, domain.StateCalling, domain.StateRinging, domain.StateAnswering,
		domain.StateInCall, domain.StateCallFailed, domain.StateCallHungup,
	}
	liveStates = []domain.CallState{
		domain.StateOff, domain.StateConnecting, domain.StateConnected, domain.StateRegistering,
		domain.StateRegistered, domain.StateRegisterFailed, domain.StateCalling, domain.StateRinging,
		domain.StateAnswering, domain.StateInCall, domain.StateCallFailed, domain.StateCallHungup,
	}
	mediaStates = []domain.CallState{domain.StateCalling, domain.StateAnswering, domain.StateInCall}
)

var transitions = map[Trigger]edges{
	TriggerGatewayReady:     {domain.StateOff: domain.StateConnecting},
	TriggerAttachSucceeded:  {domain.StateConnecting: domain.StateConnected},
	TriggerAttachFailed:     {domain.StateConnecting: domain.StateConnectionFailed},
	TriggerConnectionFailed: allTo(liveStates, domain.StateConnectionFailed),

	TriggerRegister: {
		domain.StateConnected:      domain.StateRegistering,
		domain.StateRegisterFailed: domain.StateRegistering,
	},
	TriggerRegistered:    {domain.StateRegistering: domain.StateRegistered},
	TriggerUsernameTaken: {domain.StateRegistering: domain.StateRegisterFailed},

	TriggerCall: {
		domain.StateRegistered: domain.StateCalling,
		domain.StateCallFailed: domain.StateCalling,
	},
	TriggerCallingAck:     {domain.StateCalling: domain.StateCalling},
	TriggerOfferFailed:    {domain.StateCalling: domain.StateCallFailed},
	TriggerNoSuchUsername: {domain.StateCalling: domain.StateCallFailed},

	// A second offer while ringing replaces the cached one. Offers during
	// CALLING, ANSWERING or IN_CALL have no edge: one call at a time.
	TriggerIncomingCall: allTo([]domain.CallState{
		domain.StateRegistered, domain.StateCallFailed, domain.StateCallHungup, domain.StateRinging,
	}, domain.StateRinging),
	TriggerAccept:       {domain.StateRinging: domain.StateAnswering},
	TriggerAnswerFailed: {domain.StateAnswering: domain.StateCallFailed},
	TriggerAccepted: {
		domain.StateCalling:   domain.StateCalling,
		domain.StateAnswering: domain.StateAnswering,
	},
	TriggerSendFailed: {
		domain.StateRegistering: domain.StateRegisterFailed,
		domain.StateCalling:     domain.StateCallFailed,
		domain.StateAnswering:   domain.StateCallFailed,
	},
	TriggerRemoteHangup: allTo([]domain.CallState{
		domain.StateCalling, domain.StateRinging, domain.StateAnswering, domain.StateInCall,
	}, domain.StateCallHungup),

	TriggerMediaUp:   allTo(mediaStates, domain.StateInCall),
	TriggerMediaDown: allTo(mediaStates, domain.StateCallHungup),

	TriggerHangup:    allTo(registeredStates, domain.StateRegistered),
	TriggerCleanup:   allTo(registeredStates, domain.StateRegistered),
	TriggerDestroyed: allTo(liveStates, domain.StateDisconnected),
}

// invalidating triggers end whatever offer/answer is in flight.
var invalidating = map[Trigger]bool{
	TriggerConnectionFailed: true,
	TriggerUsernameTaken:    true,
	TriggerNoSuchUsername:   true,
	TriggerRemoteHangup:     true,
	TriggerMediaDown:        true,
	TriggerCleanup:          true,
	TriggerDestroyed:        true,
}

// Next returns the state t leads to from cur. ok is false when the table has
// no edge for the pair; terminal states have none.
func Next(cur domain.CallState, t Trigger) (next domain.CallState, ok bool) {
	if cur.IsTerminal() {
		return cur, false
	}
	next, ok = transitions[t][cur]
	if !ok {
		return cur, false
	}
	return next, true
}
