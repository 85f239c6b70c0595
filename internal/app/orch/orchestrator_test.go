package orch

import (
	"context"
	"errors"
	"testing"

	"github.com/dkeye/MillenniumEye/internal/core"
	"github.com/dkeye/MillenniumEye/internal/core/coretest"
	"github.com/dkeye/MillenniumEye/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	mic    = &domain.Device{DeviceID: "mic1", Kind: domain.KindAudioInput, Label: "Mic"}
	camA   = &domain.Device{DeviceID: "camA", Kind: domain.KindVideoInput, Label: "Face cam"}
	camB   = &domain.Device{DeviceID: "camB", Kind: domain.KindVideoInput, Label: "Field cam"}
	faceHW = domain.DeviceSelection{Microphone: mic, Camera: camA}
	field  = domain.DeviceSelection{Camera: camB}
)

func started(t *testing.T, dual bool) (*Orchestrator, *coretest.Client) {
	t.Helper()
	client := &coretest.Client{}
	o := New(client, Options{OpaqueID: "eye-test", Dual: dual})
	require.NoError(t, o.Start(context.Background()))
	return o, client
}

func deliver(client *coretest.Client, i int, msg core.InboundMessage, jsep *core.SessionDescriptor) {
	client.Handle(i).Obs.OnMessage(msg, jsep)
}

func registeredPair(t *testing.T) (*Orchestrator, *coretest.Client) {
	t.Helper()
	o, client := started(t, true)
	require.NoError(t, o.RegisterUsername(context.Background(), "alice"))
	deliver(client, 0, coretest.Event(core.EventRegistered, "alice"), nil)
	deliver(client, 1, coretest.Event(core.EventRegistered, "alice-field"), nil)
	require.Equal(t, domain.StateRegistered, o.State())
	return o, client
}

func TestStartAttachesEveryChannel(t *testing.T) {
	o, client := started(t, true)

	assert.Equal(t, domain.StateConnected, o.State())
	require.Len(t, client.Reqs, 2)
	assert.Equal(t, core.AttachRequest{Plugin: DefaultPlugin, OpaqueID: "eye-test-face"}, client.Reqs[0])
	assert.Equal(t, "eye-test-field", client.Reqs[1].OpaqueID)
	assert.Len(t, o.Sessions(), 2)
	assert.Nil(t, New(client, Options{}).Session(domain.ChannelField))
}

func TestStartReportsAttachFailure(t *testing.T) {
	client := &coretest.Client{AttachErr: errors.New("gateway gone")}
	o := New(client, Options{})

	assert.Error(t, o.Start(context.Background()))
	assert.Equal(t, domain.StateConnectionFailed, o.State())
}

func TestRegisterDerivesFieldIdentity(t *testing.T) {
	o, client := registeredPair(t)

	assert.Equal(t, "alice", client.Handle(0).Sent()[0].Message.Username)
	assert.Equal(t, "alice-field", client.Handle(1).Sent()[0].Message.Username)
	snap := o.Snapshot()
	assert.Equal(t, "alice", snap.Username)
	assert.Equal(t, "alice-field", snap.Channels[1].Identity)
}

func TestRegisterRejectedBeforeConnected(t *testing.T) {
	client := &coretest.Client{}
	o := New(client, Options{Dual: true})

	err := o.RegisterUsername(context.Background(), "alice")
	assert.ErrorIs(t, err, ErrNotReady)
	assert.Empty(t, client.Handles)
}

func TestRegisterRejectsBadName(t *testing.T) {
	o, client := started(t, false)

	assert.ErrorIs(t, o.RegisterUsername(context.Background(), "   "), domain.ErrUsernameEmpty)
	assert.Empty(t, client.Handle(0).Sent())
}

func TestRegisterNeedsEveryChannel(t *testing.T) {
	o, client := started(t, true)
	client.Handle(1).Obs.OnDestroyed()

	assert.ErrorIs(t, o.RegisterUsername(context.Background(), "alice"), ErrNotReady)
	assert.Empty(t, client.Handle(0).Sent())
}

func TestTryCallFansOutWithChannelDevices(t *testing.T) {
	o, client := registeredPair(t)
	require.NoError(t, o.SetDevices(faceHW, field))

	require.NoError(t, o.TryCall(context.Background(), "bob"))

	assert.Equal(t, domain.StateCalling, o.State())
	assert.Equal(t, "bob", client.Handle(0).LastSent().Message.Username)
	assert.Equal(t, "bob-field", client.Handle(1).LastSent().Message.Username)

	faceCons := client.Handle(0).OfferConstraints()
	require.Len(t, faceCons, 1)
	assert.True(t, faceCons[0].AudioEnabled())
	assert.Equal(t, "camA", faceCons[0].Video.DeviceID)

	fieldCons := client.Handle(1).OfferConstraints()
	require.Len(t, fieldCons, 1)
	assert.False(t, fieldCons[0].AudioEnabled())
	assert.Equal(t, "camB", fieldCons[0].Video.DeviceID)
	assert.Equal(t, "bob", o.Snapshot().Opponent)
}

func TestTryCallRejectedWhileRegistering(t *testing.T) {
	o, client := started(t, true)
	require.NoError(t, o.RegisterUsername(context.Background(), "alice"))
	deliver(client, 0, coretest.Event(core.EventRegistered, "alice"), nil)

	err := o.TryCall(context.Background(), "bob")
	assert.ErrorIs(t, err, ErrNotReady)
	assert.Len(t, client.Handle(0).Sent(), 1)
}

func TestReportedStateFollowsPrimary(t *testing.T) {
	o, client := registeredPair(t)
	require.NoError(t, o.TryCall(context.Background(), "bob"))

	client.Handle(0).Obs.OnWebRTCState(true)
	deliver(client, 1, coretest.Failure(core.ErrNoSuchUsername), nil)

	assert.Equal(t, domain.StateInCall, o.State())
	snap := o.Snapshot()
	assert.Equal(t, domain.StateInCall, snap.State)
	assert.Equal(t, domain.StateCallFailed, snap.Channels[1].State)
}

func TestSecondaryFailureDoesNotGatePrimary(t *testing.T) {
	o, client := registeredPair(t)
	client.Handle(1).Obs.OnConnectionFailed(errors.New("field socket closed"))

	deliver(client, 0, coretest.Event(core.EventIncomingCall, "bob"), &coretest.Offer)
	require.NoError(t, o.AcceptIncomingCall(context.Background()))
	assert.Equal(t, domain.StateAnswering, o.State())
}

func TestAcceptWhenSecondaryLags(t *testing.T) {
	o, client := registeredPair(t)
	offer := coretest.Offer

	deliver(client, 0, coretest.Event(core.EventIncomingCall, "bob"), &offer)
	require.NoError(t, o.AcceptIncomingCall(context.Background()))
	assert.Equal(t, domain.StateAnswering, o.State())
	assert.Equal(t, domain.StateRegistered, o.Session(domain.ChannelField).State())

	deliver(client, 1, coretest.Event(core.EventIncomingCall, "bob-field"), &offer)
	assert.Equal(t, domain.StateAnswering, o.Session(domain.ChannelField).State())
	assert.Equal(t, core.RequestAccept, client.Handle(1).LastSent().Message.Request)
}

func TestAcceptBothRinging(t *testing.T) {
	o, client := registeredPair(t)
	offer := coretest.Offer
	deliver(client, 1, coretest.Event(core.EventIncomingCall, "bob-field"), &offer)
	deliver(client, 0, coretest.Event(core.EventIncomingCall, "bob"), &offer)

	require.NoError(t, o.AcceptIncomingCall(context.Background()))
	for i := range 2 {
		assert.Equal(t, core.RequestAccept, client.Handle(i).LastSent().Message.Request)
	}
}

func TestAcceptRejectedWhenNotRinging(t *testing.T) {
	o, client := registeredPair(t)

	assert.ErrorIs(t, o.AcceptIncomingCall(context.Background()), ErrNotReady)
	assert.Equal(t, domain.StateRegistered, o.State())
	assert.Len(t, client.Handle(0).Sent(), 1)
}

func TestHangupIsIdempotentAndClearsOpponent(t *testing.T) {
	o, client := registeredPair(t)
	require.NoError(t, o.TryCall(context.Background(), "bob"))
	client.Handle(0).Obs.OnWebRTCState(true)

	require.NoError(t, o.Hangup(context.Background()))
	require.NoError(t, o.Hangup(context.Background()))

	assert.Equal(t, domain.StateRegistered, o.State())
	assert.Empty(t, o.Snapshot().Opponent)
	for i := range 2 {
		assert.Equal(t, 1, client.Handle(i).Hangups())
	}
}

func TestHangupRejectedWhenOff(t *testing.T) {
	o := New(&coretest.Client{}, Options{})
	assert.ErrorIs(t, o.Hangup(context.Background()), ErrNotReady)
}

func TestSetDevicesLockedDuringCall(t *testing.T) {
	o, _ := registeredPair(t)
	require.NoError(t, o.TryCall(context.Background(), "bob"))

	assert.ErrorIs(t, o.SetDevices(faceHW, field), ErrCallInProgress)
}

func TestRejectedRegisterKeepsDevices(t *testing.T) {
	o, client := started(t, true)
	require.NoError(t, o.RegisterWithDevices(context.Background(), "alice", faceHW, field))
	deliver(client, 0, coretest.Event(core.EventRegistered, "alice"), nil)
	deliver(client, 1, coretest.Event(core.EventRegistered, "alice-field"), nil)

	swapped := domain.DeviceSelection{Microphone: mic, Camera: camB}
	assert.ErrorIs(t, o.RegisterWithDevices(context.Background(), "alice", swapped, field), ErrNotReady)

	require.NoError(t, o.TryCall(context.Background(), "bob"))
	faceCons := client.Handle(0).OfferConstraints()
	require.Len(t, faceCons, 1)
	assert.Equal(t, "camA", faceCons[0].Video.DeviceID)
}

func TestSubscribeReceivesChanges(t *testing.T) {
	o, client := started(t, false)
	updates, cancel := o.Subscribe()
	defer cancel()

	require.NoError(t, o.RegisterUsername(context.Background(), "alice"))
	deliver(client, 0, coretest.Event(core.EventRegistered, "alice"), nil)

	first := <-updates
	assert.Equal(t, domain.StateRegistering, first.State)
	second := <-updates
	assert.Equal(t, domain.StateRegistered, second.State)
	assert.Equal(t, "alice", second.Channels[0].Identity)

	cancel()
	_, open := <-updates
	assert.False(t, open)
}

func TestUsernameClearedOnRegisterFailure(t *testing.T) {
	o, client := started(t, false)
	require.NoError(t, o.RegisterUsername(context.Background(), "alice"))
	deliver(client, 0, coretest.Failure(core.ErrUsernameTaken), nil)

	assert.Equal(t, domain.StateRegisterFailed, o.State())
	assert.Empty(t, o.Snapshot().Username)
}
