package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dkeye/MillenniumEye/internal/app/orch"
	"github.com/dkeye/MillenniumEye/internal/config"
	"github.com/dkeye/MillenniumEye/internal/core"
	"github.com/dkeye/MillenniumEye/internal/core/coretest"
	"github.com/dkeye/MillenniumEye/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticDevices struct {
	list []domain.Device
	err  error
}

func (s staticDevices) ListDevices(context.Context) ([]domain.Device, error) {
	return s.list, s.err
}

var testDevices = staticDevices{list: []domain.Device{
	{DeviceID: domain.CommunicationsDeviceID, Kind: domain.KindAudioInput, Label: "Communications"},
	{DeviceID: "mic1", Kind: domain.KindAudioInput, Label: "Mic"},
	{DeviceID: "camA", Kind: domain.KindVideoInput, Label: "Face cam"},
	{DeviceID: "camB", Kind: domain.KindVideoInput, Label: "Field cam"},
}}

type fixture struct {
	router *gin.Engine
	orch   *orch.Orchestrator
	client *coretest.Client
}

func newFixture(t *testing.T, limit int, devices staticDevices) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	client := &coretest.Client{}
	o := orch.New(client, orch.Options{OpaqueID: "eye-test", Dual: true})
	require.NoError(t, o.Start(context.Background()))

	cfg := &config.Config{
		Mode:       "test",
		StaticPath: t.TempDir(),
		Secret:     "secret",
		ReadLimit:  4096,
		PingPeriod: time.Second,
		HTTP:       config.HTTPConfig{CommandLimit: limit, CommandWindow: time.Minute},
	}
	return &fixture{router: SetupRouter(context.Background(), cfg, o, devices), orch: o, client: client}
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: clientTokenCookie, Value: "client-1"})
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *fixture) registered(t *testing.T) {
	t.Helper()
	w := f.do(http.MethodPost, "/api/register", `{"username":"alice","microphone":"mic1","camera":"camA","fieldCamera":"camB"}`)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	f.client.Handle(0).Obs.OnMessage(coretest.Event(core.EventRegistered, "alice"), nil)
	f.client.Handle(1).Obs.OnMessage(coretest.Event(core.EventRegistered, "alice-field"), nil)
	require.Equal(t, domain.StateRegistered, f.orch.State())
}

func decodeStatus(t *testing.T, body []byte) orch.Status {
	t.Helper()
	var st orch.Status
	require.NoError(t, json.Unmarshal(body, &st))
	return st
}

func TestStateEndpoint(t *testing.T) {
	f := newFixture(t, 0, testDevices)

	w := f.do(http.MethodGet, "/api/state", "")
	require.Equal(t, http.StatusOK, w.Code)
	st := decodeStatus(t, w.Body.Bytes())
	assert.Equal(t, domain.StateConnected, st.State)
	assert.Len(t, st.Channels, 2)
}

func TestClientTokenCookieIssued(t *testing.T) {
	f := newFixture(t, 0, testDevices)

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/state", nil))
	assert.Contains(t, w.Header().Get("Set-Cookie"), clientTokenCookie+"=")
}

func TestDevicesEndpointFiltersCommunications(t *testing.T) {
	f := newFixture(t, 0, testDevices)

	w := f.do(http.MethodGet, "/api/devices", "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp devicesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Microphones, 1)
	assert.Equal(t, "mic1", resp.Microphones[0].DeviceID)
	assert.Len(t, resp.Cameras, 2)
}

func TestDevicesEndpointError(t *testing.T) {
	f := newFixture(t, 0, staticDevices{err: errors.New("no drivers")})

	w := f.do(http.MethodGet, "/api/devices", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRegisterAndCallUseSelectedDevices(t *testing.T) {
	f := newFixture(t, 0, testDevices)
	f.registered(t)

	assert.Equal(t, "alice", f.client.Handle(0).Sent()[0].Message.Username)
	assert.Equal(t, "alice-field", f.client.Handle(1).Sent()[0].Message.Username)

	w := f.do(http.MethodPost, "/api/call", `{"opponent":"bob"}`)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	assert.Equal(t, domain.StateCalling, decodeStatus(t, w.Body.Bytes()).State)

	face := f.client.Handle(0).OfferConstraints()
	require.Len(t, face, 1)
	assert.True(t, face[0].AudioEnabled())
	assert.True(t, face[0].VideoEnabled())
	fieldCons := f.client.Handle(1).OfferConstraints()
	require.Len(t, fieldCons, 1)
	assert.False(t, fieldCons[0].AudioEnabled())
	assert.True(t, fieldCons[0].VideoEnabled())
	assert.Equal(t, "bob-field", f.client.Handle(1).LastSent().Message.Username)
}

func TestRegisterBadRequests(t *testing.T) {
	f := newFixture(t, 0, testDevices)

	cases := map[string]string{
		"malformed":      `{"username":`,
		"blank username": `{"username":"   "}`,
		"too long":       `{"username":"` + strings.Repeat("x", domain.MaxUsernameLen+1) + `"}`,
		"unknown camera": `{"username":"alice","camera":"nope"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			w := f.do(http.MethodPost, "/api/register", body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
	assert.Empty(t, f.client.Handle(0).Sent())
}

func TestPreconditionFailureIsConflict(t *testing.T) {
	f := newFixture(t, 0, testDevices)

	w := f.do(http.MethodPost, "/api/accept", "")
	require.Equal(t, http.StatusConflict, w.Code)
	var body struct {
		Error string      `json:"error"`
		State orch.Status `json:"state"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Error)
	assert.Equal(t, domain.StateConnected, body.State.State)

	w = f.do(http.MethodPost, "/api/call", `{"opponent":"bob"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestDeviceChangeDuringCallIsConflict(t *testing.T) {
	f := newFixture(t, 0, testDevices)
	f.registered(t)
	require.Equal(t, http.StatusAccepted, f.do(http.MethodPost, "/api/call", `{"opponent":"bob"}`).Code)

	w := f.do(http.MethodPost, "/api/register", `{"username":"alice","camera":"camB"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestConflictingRegisterKeepsDevices(t *testing.T) {
	f := newFixture(t, 0, testDevices)
	f.registered(t)

	w := f.do(http.MethodPost, "/api/register", `{"username":"alice","microphone":"mic1","camera":"camB"}`)
	require.Equal(t, http.StatusConflict, w.Code)

	require.Equal(t, http.StatusAccepted, f.do(http.MethodPost, "/api/call", `{"opponent":"bob"}`).Code)
	face := f.client.Handle(0).OfferConstraints()
	require.Len(t, face, 1)
	assert.Equal(t, "camA", face[0].Video.DeviceID)
}

func TestHangupReturnsToRegistered(t *testing.T) {
	f := newFixture(t, 0, testDevices)
	f.registered(t)
	require.Equal(t, http.StatusAccepted, f.do(http.MethodPost, "/api/call", `{"opponent":"bob"}`).Code)

	w := f.do(http.MethodPost, "/api/hangup", "")
	require.Equal(t, http.StatusAccepted, w.Code)
	st := decodeStatus(t, w.Body.Bytes())
	assert.Equal(t, domain.StateRegistered, st.State)
	assert.Empty(t, st.Opponent)
}

func TestCommandsAreRateLimited(t *testing.T) {
	f := newFixture(t, 1, testDevices)

	assert.Equal(t, http.StatusAccepted, f.do(http.MethodPost, "/api/hangup", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, f.do(http.MethodPost, "/api/hangup", "").Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/api/state", "").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t, 0, testDevices)

	w := f.do(http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "eye_active_calls")
}

func TestStateFeedPushesSnapshots(t *testing.T) {
	f := newFixture(t, 0, testDevices)
	srv := httptest.NewServer(f.router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws/state"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer ws.Close()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(5*time.Second)))

	var st orch.Status
	require.NoError(t, ws.ReadJSON(&st))
	assert.Equal(t, domain.StateConnected, st.State)

	require.NoError(t, f.orch.RegisterUsername(context.Background(), "alice"))
	for st.State != domain.StateRegistering {
		require.NoError(t, ws.ReadJSON(&st))
	}
	assert.Equal(t, "alice", st.Username)
}
