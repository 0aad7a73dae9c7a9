package httpapi

import (
	"encoding/base64"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/yahya12213/certgen/doctpl"
)

// WebSocket event names.
const (
	EventProgress = "progress"
	EventDone     = "done"
	EventError    = "error"
)

// WSEvent is a message sent to a batch WebSocket client.
type WSEvent struct {
	Event string `json:"event"`
	Done  int    `json:"done,omitempty"`
	Total int    `json:"total,omitempty"`
	Pages int    `json:"pages,omitempty"`
	PDF   string `json:"pdf,omitempty"` // base64
	Error string `json:"error,omitempty"`
}

// handleBatchWS renders one batch per connection. The client sends a single
// batch request; the server answers with a progress event per record, then a
// done event carrying the document, and closes.
func (s *Server) handleBatchWS(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	send := func(ev WSEvent) bool {
		if err := conn.WriteJSON(ev); err != nil {
			s.log.Warn("websocket write failed", "err", err)
			return false
		}
		return true
	}
	sendError := func(err error) {
		send(WSEvent{Event: EventError, Error: err.Error()})
	}

	var req batchRequest
	if err := conn.ReadJSON(&req); err != nil {
		sendError(err)
		return
	}
	if req.Template == nil {
		sendError(errMissingTemplate)
		return
	}
	if err := s.checkBatch(len(req.Records)); err != nil {
		sendError(err)
		return
	}

	comp := s.composer(doctpl.WithProgress(func(done, total int) {
		send(WSEvent{Event: EventProgress, Done: done, Total: total})
	}))
	pdf, err := comp.RenderBatch(c.Request.Context(), req.Template, req.Records)
	if err != nil {
		sendError(err)
		return
	}
	data, err := pdf.Bytes()
	if err != nil {
		sendError(err)
		return
	}
	if send(WSEvent{Event: EventDone, Pages: pdf.PageCount(), PDF: base64.StdEncoding.EncodeToString(data)}) {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}
}
