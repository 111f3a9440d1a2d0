package router

import (
	"context"
	"encoding/json"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Goden-Gun/ota-server/pkg/logger"
)

// EventFirmwareDownloaded is published after each successful download.
const EventFirmwareDownloaded = "firmware.downloaded"

// FirmwareEvent is the payload published to the event topic.
type FirmwareEvent struct {
	Event     string    `json:"event"`
	Filename  string    `json:"filename"`
	Size      int       `json:"size"`
	ClientIP  string    `json:"client_ip"`
	RequestID string    `json:"request_id,omitempty"`
	At        time.Time `json:"at"`
}

// ErrorResponse is the body of non-2xx JSON replies.
type ErrorResponse struct {
	Error string `json:"error"`
}

func (h *handlers) firmware(c *gin.Context) {
	ctx := c.Request.Context()
	image, err := h.opts.Firmware.Load(ctx)
	if err != nil {
		logger.EntryWithTrace(logger.Named(logger.SourceFirmware), ctx).
			WithError(err).Error("firmware load failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "firmware unavailable"})
		return
	}

	c.Header("Content-Disposition", contentDisposition(h.opts.FirmwareFilename))
	c.Header("Content-Length", strconv.Itoa(len(image)))
	c.Data(http.StatusOK, "application/octet-stream", image)

	if h.opts.Events == nil {
		return
	}
	ev := FirmwareEvent{
		Event:     EventFirmwareDownloaded,
		Filename:  h.opts.FirmwareFilename,
		Size:      len(image),
		ClientIP:  c.ClientIP(),
		RequestID: c.GetString(requestIDKey),
		At:        time.Now().UTC(),
	}
	// The response is already written; publishing must not hold it up or
	// die with the request context.
	go h.publish(context.WithoutCancel(ctx), ev)
}

func (h *handlers) publish(ctx context.Context, ev FirmwareEvent) {
	entry := logger.EntryWithTrace(logger.Named(logger.SourceEvents), ctx)
	body, err := json.Marshal(ev)
	if err != nil {
		entry.WithError(err).Error("encode firmware event")
		return
	}
	if err := h.opts.Events.Publish(ctx, h.opts.EventTopic, []byte(ev.Filename), body); err != nil {
		entry.WithError(err).Warn("publish firmware event")
		return
	}
	entry.WithField("event", ev.Event).Debug("firmware event published")
}

// contentDisposition quotes and escapes filename as needed.
func contentDisposition(filename string) string {
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": filename}); v != "" {
		return v
	}
	return "attachment"
}
