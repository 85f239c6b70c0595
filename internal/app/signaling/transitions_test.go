package signaling

import (
	"context"
	"testing"

	"github.com/dkeye/MillenniumEye/internal/core"
	"github.com/dkeye/MillenniumEye/internal/core/mock_core"
	"github.com/dkeye/MillenniumEye/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestNext(t *testing.T) {
	tests := []struct {
		from    domain.CallState
		trigger Trigger
		want    domain.CallState
		ok      bool
	}{
		{domain.StateOff, TriggerGatewayReady, domain.StateConnecting, true},
		{domain.StateConnecting, TriggerAttachFailed, domain.StateConnectionFailed, true},
		{domain.StateConnected, TriggerRegister, domain.StateRegistering, true},
		{domain.StateRegisterFailed, TriggerRegister, domain.StateRegistering, true},
		{domain.StateRegistering, TriggerUsernameTaken, domain.StateRegisterFailed, true},
		{domain.StateCallFailed, TriggerCall, domain.StateCalling, true},
		{domain.StateCallHungup, TriggerIncomingCall, domain.StateRinging, true},
		{domain.StateRinging, TriggerIncomingCall, domain.StateRinging, true},
		{domain.StateAnswering, TriggerMediaUp, domain.StateInCall, true},
		{domain.StateInCall, TriggerRemoteHangup, domain.StateCallHungup, true},
		{domain.StateCallHungup, TriggerCleanup, domain.StateRegistered, true},
		{domain.StateRegistering, TriggerDestroyed, domain.StateDisconnected, true},

		{domain.StateOff, TriggerRegister, domain.StateOff, false},
		{domain.StateCallHungup, TriggerCall, domain.StateCallHungup, false},
		{domain.StateInCall, TriggerIncomingCall, domain.StateInCall, false},
		{domain.StateRegistered, TriggerMediaUp, domain.StateRegistered, false},
		{domain.StateConnected, TriggerHangup, domain.StateConnected, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"/"+string(tt.trigger), func(t *testing.T) {
			got, ok := Next(tt.from, tt.trigger)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTerminalStatesHaveNoEdges(t *testing.T) {
	for trigger := range transitions {
		for _, s := range []domain.CallState{domain.StateConnectionFailed, domain.StateDisconnected} {
			_, ok := Next(s, trigger)
			assert.False(t, ok, "%s leaves %s", trigger, s)
		}
	}
}

func TestTableTargetsAreKnownStates(t *testing.T) {
	known := make(map[domain.CallState]bool, len(domain.AllStates))
	for _, s := range domain.AllStates {
		known[s] = true
	}
	for trigger, e := range transitions {
		for from, to := range e {
			assert.True(t, known[from], "%s: unknown source %s", trigger, from)
			assert.True(t, known[to], "%s: unknown target %s", trigger, to)
		}
	}
}

func TestRegisterThroughMockGateway(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mock_core.NewMockGatewayClient(ctrl)
	handle := mock_core.NewMockGatewayHandle(ctrl)

	s := NewSession(domain.ChannelField)
	handle.EXPECT().ID().Return(uint64(7)).AnyTimes()
	client.EXPECT().Attach(gomock.Any(), attachReq, s).Return(handle, nil)
	handle.EXPECT().Send(gomock.Any(), core.Envelope{
		Message: core.Message{Request: core.RequestRegister, Username: "alice-field"},
	}).Return(nil)

	require.NoError(t, s.Connect(context.Background(), client, attachReq))
	require.NoError(t, s.Register(context.Background(), "alice-field"))
	s.OnMessage(core.InboundMessage{Result: &core.Result{Event: core.EventRegistered}}, nil)

	assert.Equal(t, domain.StateRegistered, s.State())
	assert.Equal(t, "alice-field", s.Identity())
}
