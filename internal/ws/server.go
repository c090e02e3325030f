package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/pmoralis/go-ai-chat/internal/services"
)

// Event types exchanged over the push transport.
const (
	TypeChatMessage  = "chat_message"
	TypeChatResponse = "chat_response"
	TypeError        = "error"
)

// Submitter runs the ingestion pipeline for one submission. It is satisfied
// by services.ChatService.
type Submitter interface {
	Submit(ctx context.Context, userID, content string) (*services.Pair, error)
}

// baseEvent carries the discriminator common to every inbound frame.
type baseEvent struct {
	Type string `json:"type"`
}

// chatMessageEvent is the inbound submission frame.
type chatMessageEvent struct {
	Type    string `json:"type"`
	OwnerID string `json:"owner_id"`
	Content string `json:"content"`
}

// chatResponseEvent is the outbound confirmation frame. Ack is always true;
// it doubles as the application-level acknowledgment for the submission.
type chatResponseEvent struct {
	Type        string          `json:"type"`
	UserMessage json.RawMessage `json:"user_message"`
	AIMessage   json.RawMessage `json:"ai_message"`
	Ack         bool            `json:"ack"`
}

// errorEvent is the outbound failure frame.
type errorEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Options tunes connection lifetime management.
type Options struct {
	// ReadLimit caps inbound frame size in bytes. Zero means 64 KiB.
	ReadLimit int64
	// PongWait is how long a connection may stay silent before the read
	// side gives up. Zero means 60s.
	PongWait time.Duration
	// WriteWait bounds each write. Zero means 10s.
	WriteWait time.Duration
	// SubmitTimeout bounds one pipeline run triggered by a frame. Zero
	// means 60s.
	SubmitTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.ReadLimit <= 0 {
		o.ReadLimit = 64 << 10
	}
	if o.PongWait <= 0 {
		o.PongWait = 60 * time.Second
	}
	if o.WriteWait <= 0 {
		o.WriteWait = 10 * time.Second
	}
	if o.SubmitTimeout <= 0 {
		o.SubmitTimeout = 60 * time.Second
	}
	return o
}

// Server upgrades HTTP requests and speaks the chat event protocol.
type Server struct {
	hub      *Hub
	chat     Submitter
	opts     Options
	upgrader websocket.Upgrader
}

// NewServer creates a WebSocket server that drives submissions through chat.
func NewServer(h *Hub, chat Submitter, opts Options) *Server {
	return &Server{
		hub:  h,
		chat: chat,
		opts: opts.withDefaults(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// CORS policy is enforced by the HTTP layer; the socket
				// endpoint accepts any origin that got this far.
				return true
			},
		},
	}
}

// HandleWS upgrades the request and runs the connection's read/write pumps.
// When the request context already carries an authenticated user id the
// connection is bound to that owner up front.
func (s *Server) HandleWS(c *gin.Context) {
	sock, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("ws upgrade failed")
		return
	}

	conn := s.hub.NewConnection(sock)
	if v, ok := c.Get("userID"); ok {
		if uid, ok := v.(string); ok && uid != "" {
			conn.OwnerID = uid
		}
	}
	s.hub.Register(conn)

	sock.SetReadLimit(s.opts.ReadLimit)

	go s.writePump(conn)
	go s.readPump(conn)
}

// readPump reads frames until the connection dies, dispatching each one.
func (s *Server) readPump(conn *Connection) {
	defer func() {
		s.hub.Unregister(conn)
		conn.Close()
	}()

	conn.SetReadDeadline(time.Now().Add(s.opts.PongWait))
	conn.Conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(s.opts.PongWait))
		return nil
	})

	for {
		_, message, err := conn.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("conn_id", conn.ID).Msg("ws read error")
			}
			break
		}
		s.handleFrame(conn, message)
	}
}

// writePump drains the Send channel and keeps the connection alive with pings.
func (s *Server) writePump(conn *Connection) {
	ticker := time.NewTicker(s.opts.PongWait * 9 / 10)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			conn.SetWriteDeadline(time.Now().Add(s.opts.WriteWait))
			if !ok {
				// Hub closed the channel.
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(s.opts.WriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleFrame dispatches one inbound frame by its type discriminator.
func (s *Server) handleFrame(conn *Connection, data []byte) {
	var base baseEvent
	if err := json.Unmarshal(data, &base); err != nil {
		s.sendError(conn, "invalid JSON frame", err.Error())
		return
	}

	switch base.Type {
	case TypeChatMessage:
		s.handleChatMessage(conn, data)
	default:
		s.sendError(conn, "unknown event type: "+base.Type, "")
	}
}

// handleChatMessage runs the ingestion pipeline for one submission frame.
//
// The pipeline runs in its own goroutine with a detached context so a
// disconnecting client never aborts a run already in progress; the user
// message stays persisted regardless of whether the response frame can still
// be delivered.
func (s *Server) handleChatMessage(conn *Connection, data []byte) {
	var ev chatMessageEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		s.sendError(conn, "invalid chat_message frame", err.Error())
		return
	}

	ownerID := strings.TrimSpace(ev.OwnerID)
	if ownerID == "" {
		ownerID = conn.OwnerID
	}
	if ownerID == "" {
		s.sendError(conn, "owner_id is required", "")
		return
	}
	if conn.OwnerID == "" {
		s.hub.BindOwner(conn, ownerID)
	} else if conn.OwnerID != ownerID {
		s.sendError(conn, "owner_id does not match this connection", "")
		return
	}

	if strings.TrimSpace(ev.Content) == "" {
		s.sendError(conn, "content is required", "")
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.opts.SubmitTimeout)
		defer cancel()

		pair, err := s.chat.Submit(ctx, ownerID, strings.TrimSpace(ev.Content))
		if err != nil {
			log.Error().Err(err).Str("owner_id", ownerID).Msg("ws submission failed")
			s.sendError(conn, "Sorry, something went wrong.", err.Error())
			return
		}

		um, err := json.Marshal(pair.UserMessage)
		if err != nil {
			s.sendError(conn, "Sorry, something went wrong.", err.Error())
			return
		}
		am, err := json.Marshal(pair.AIMessage)
		if err != nil {
			s.sendError(conn, "Sorry, something went wrong.", err.Error())
			return
		}

		resp := chatResponseEvent{
			Type:        TypeChatResponse,
			UserMessage: um,
			AIMessage:   am,
			Ack:         true,
		}
		if err := s.hub.SendJSONToConnection(conn, resp); err != nil {
			log.Warn().Err(err).Str("conn_id", conn.ID).Msg("ws response dropped")
		}
	}()
}

// sendError queues a failure frame on one connection, best effort.
func (s *Server) sendError(conn *Connection, message, details string) {
	_ = s.hub.SendJSONToConnection(conn, errorEvent{
		Type:    TypeError,
		Message: message,
		Details: details,
	})
}
