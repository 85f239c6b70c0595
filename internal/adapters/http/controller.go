package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dkeye/MillenniumEye/internal/app/orch"
	"github.com/dkeye/MillenniumEye/internal/domain"
	"github.com/dkeye/MillenniumEye/internal/media"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

var errUnknownDevice = errors.New("unknown device")

type controller struct {
	ctx        context.Context
	orch       *orch.Orchestrator
	devices    media.DeviceLister
	pingPeriod time.Duration
	readLimit  int64
}

type registerRequest struct {
	Username    string `json:"username"`
	Microphone  string `json:"microphone"`
	Camera      string `json:"camera"`
	FieldCamera string `json:"fieldCamera"`
}

type callRequest struct {
	Opponent string `json:"opponent"`
}

type devicesResponse struct {
	Microphones []domain.Device `json:"microphones"`
	Cameras     []domain.Device `json:"cameras"`
}

func rateLimit(l *CommandLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(c.GetString("client_token")) {
			log.Warn().Str("module", "adapters.http").Str("sid", c.GetString("client_token")).Str("path", c.FullPath()).Msg("command rate limited")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many commands"})
			return
		}
		c.Next()
	}
}

func (ctl *controller) state(c *gin.Context) {
	c.JSON(http.StatusOK, ctl.orch.Snapshot())
}

func (ctl *controller) listDevices(c *gin.Context) {
	mics, cams, err := ctl.inputs(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("list devices")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, devicesResponse{Microphones: mics, Cameras: cams})
}

func (ctl *controller) inputs(ctx context.Context) (mics, cams []domain.Device, err error) {
	all, err := ctl.devices.ListDevices(ctx)
	if err != nil {
		return nil, nil, err
	}
	mics, cams = media.FilterDevices(all)
	if mics == nil {
		mics = []domain.Device{}
	}
	if cams == nil {
		cams = []domain.Device{}
	}
	return mics, cams, nil
}

func (ctl *controller) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	face, field, err := ctl.selection(c.Request.Context(), req)
	if err != nil {
		ctl.reply(c, err)
		return
	}
	ctl.reply(c, ctl.orch.RegisterWithDevices(ctl.ctx, req.Username, face, field))
}

// selection resolves device ids against the current device list. The field
// channel only carries video.
func (ctl *controller) selection(ctx context.Context, req registerRequest) (face, field domain.DeviceSelection, err error) {
	if req.Microphone == "" && req.Camera == "" && req.FieldCamera == "" {
		return face, field, nil
	}
	mics, cams, err := ctl.inputs(ctx)
	if err != nil {
		return face, field, err
	}
	pick := func(list []domain.Device, id string) (*domain.Device, error) {
		d := media.FindDevice(list, id)
		if d == nil && id != "" {
			return nil, errUnknownDevice
		}
		return d, nil
	}
	if face.Microphone, err = pick(mics, req.Microphone); err != nil {
		return face, field, err
	}
	if face.Camera, err = pick(cams, req.Camera); err != nil {
		return face, field, err
	}
	field.Camera, err = pick(cams, req.FieldCamera)
	return face, field, err
}

func (ctl *controller) call(c *gin.Context) {
	var req callRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	ctl.reply(c, ctl.orch.TryCall(ctl.ctx, req.Opponent))
}

func (ctl *controller) accept(c *gin.Context) {
	ctl.reply(c, ctl.orch.AcceptIncomingCall(ctl.ctx))
}

func (ctl *controller) hangup(c *gin.Context) {
	ctl.reply(c, ctl.orch.Hangup(ctl.ctx))
}

// reply answers 202 with the snapshot once a command was dispatched; the
// outcome arrives later on the state feed.
func (ctl *controller) reply(c *gin.Context, err error) {
	switch {
	case err == nil:
		c.JSON(http.StatusAccepted, ctl.orch.Snapshot())
	case errors.Is(err, orch.ErrNotReady), errors.Is(err, orch.ErrCallInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "state": ctl.orch.Snapshot()})
	case errors.Is(err, domain.ErrUsernameEmpty), errors.Is(err, domain.ErrUsernameTooLong),
		errors.Is(err, errUnknownDevice):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Error().Err(err).Str("module", "adapters.http").Str("path", c.FullPath()).Msg("command failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
