package domain

// CallState is the lifecycle state of one signaling channel.
type CallState string

const (
	StateOff              CallState = "OFF"
	StateConnecting       CallState = "CONNECTING"
	StateConnected        CallState = "CONNECTED"
	StateConnectionFailed CallState = "CONNECTION_FAILED"
	StateRegistering      CallState = "REGISTERING"
	StateRegistered       CallState = "REGISTERED"
	StateRegisterFailed   CallState = "REGISTER_FAILED"
	StateCalling          CallState = "CALLING"
	StateRinging          CallState = "RINGING"
	StateAnswering        CallState = "ANSWERING"
	StateInCall           CallState = "IN_CALL"
	StateCallFailed       CallState = "CALL_FAILED"
	StateCallHungup       CallState = "CALL_HUNGUP"
	StateDisconnected     CallState = "DISCONNECTED"
)

// AllStates lists every state in lifecycle order.
var AllStates = []CallState{
	StateOff,
	StateConnecting,
	StateConnected,
	StateConnectionFailed,
	StateRegistering,
	StateRegistered,
	StateRegisterFailed,
	StateCalling,
	StateRinging,
	StateAnswering,
	StateInCall,
	StateCallFailed,
	StateCallHungup,
	StateDisconnected,
}

func (s CallState) String() string { return string(s) }

// IsTerminal reports states nothing can leave.
func (s CallState) IsTerminal() bool {
	return s == StateConnectionFailed || s == StateDisconnected
}

// CanRegister reports whether a register request may be issued.
func (s CallState) CanRegister() bool {
	return s == StateConnected || s == StateRegisterFailed
}

// CanCall reports whether a new outgoing call may be placed.
func (s CallState) CanCall() bool {
	return s == StateRegistered || s == StateCallFailed
}

// IsRegistered reports states in which the gateway knows our identity.
func (s CallState) IsRegistered() bool {
	switch s {
	case StateRegistered, StateCalling, StateRinging, StateAnswering,
		StateInCall, StateCallFailed, StateCallHungup:
		return true
	}
	return false
}

// InCallView reports states where a call is being set up or is live.
func (s CallState) InCallView() bool {
	switch s {
	case StateCalling, StateRinging, StateAnswering, StateInCall:
		return true
	}
	return false
}

// ChannelName identifies one signaling channel of a call.
type ChannelName string

const (
	ChannelFace  ChannelName = "face"
	ChannelField ChannelName = "field"
)
