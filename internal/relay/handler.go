// Package relay manages the persistent bidirectional connection for one call:
// accept, configuration, heartbeats, inbound event dispatch, and ordered
// teardown.
package relay

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/drew-ai/voice-relay/internal/model"
	"github.com/drew-ai/voice-relay/internal/session"
	"github.com/drew-ai/voice-relay/pkg/logger"
	"github.com/drew-ai/voice-relay/pkg/metrics"
)

// Publisher receives call lifecycle notifications. Implementations must not
// block the connection paths; failures are theirs to log.
type Publisher interface {
	CallStarted(ctx context.Context, callID string)
	CallEnded(ctx context.Context, callID string)
}

// SessionFactory builds a fresh session for one accepted connection.
type SessionFactory func() *session.Session

// Config bounds the connection's liveness behavior.
type Config struct {
	HeartbeatInterval time.Duration
	ReceiveTimeout    time.Duration
}

const cleanupTimeout = 30 * time.Second

// Handler serves the call websocket endpoint.
type Handler struct {
	cfg      Config
	sessions SessionFactory
	events   Publisher
	upgrader websocket.Upgrader
	logger   *logger.Logger
}

// NewHandler creates the websocket handler. events may be nil when no
// lifecycle publisher is configured.
func NewHandler(cfg Config, sessions SessionFactory, events Publisher, log *logger.Logger) *Handler {
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = 20 * time.Second
	}
	if cfg.ReceiveTimeout <= 0 {
		cfg.ReceiveTimeout = 30 * time.Second
	}
	return &Handler{
		cfg:      cfg,
		sessions: sessions,
		events:   events,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: log,
	}
}

// HandleCall upgrades the request and runs the connection until teardown.
func (h *Handler) HandleCall(w http.ResponseWriter, r *http.Request) {
	callID := chi.URLParam(r, "call_id")
	log := h.logger.WithCall(callID)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	metrics.CallConnectionsActive.Inc()
	defer metrics.CallConnectionsActive.Dec()

	c := &connection{
		cfg:     h.cfg,
		peer:    newPeer(conn),
		session: h.sessions(),
		events:  h.events,
		logger:  log,
	}
	c.run(callID)
}

// connection is the per-call task group: receive loop, heartbeat loop, and
// in-flight generation tasks.
type connection struct {
	cfg     Config
	peer    *peer
	session *session.Session
	events  Publisher
	logger  *logger.Logger

	generations sync.WaitGroup
	teardown    sync.Once
}

func (c *connection) run(callID string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer c.close(cancel, callID)

	if err := c.peer.Send(model.NewConfigFrame()); err != nil {
		c.logger.Error("sending config frame failed", zap.Error(err))
		return
	}

	go c.heartbeatLoop(ctx, cancel)
	c.receiveLoop(ctx)
}

// heartbeatLoop emits a ping frame at a fixed interval for the life of the
// connection. A failed send means the transport is gone.
func (c *connection) heartbeatLoop(ctx context.Context, cancel context.CancelFunc) {
	ticker := time.NewTicker(c.cfg.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.peer.Send(model.NewPingPong(time.Now().UnixMilli())); err != nil {
				c.logger.Warn("heartbeat send failed", zap.Error(err))
				cancel()
				return
			}
			metrics.HeartbeatsTotal.Inc()
		}
	}
}

// receiveLoop reads inbound frames with a bounded timeout. On a read
// timeout the peer is probed with a ping; only a failed probe or a fatal
// read error ends the loop.
func (c *connection) receiveLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		c.peer.conn.SetReadDeadline(time.Now().Add(c.cfg.ReceiveTimeout))

		var event model.InboundEvent
		if err := c.peer.conn.ReadJSON(&event); err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				if probeErr := c.peer.Send(model.NewPingPong(time.Now().UnixMilli())); probeErr != nil {
					c.logger.Warn("liveness probe failed", zap.Error(probeErr))
					return
				}
				continue
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Warn("connection read failed", zap.Error(err))
			}
			return
		}

		c.dispatch(ctx, &event)
	}
}

// dispatch classifies one inbound event. Generation triggers run in their
// own task so the receive loop keeps reading.
func (c *connection) dispatch(ctx context.Context, event *model.InboundEvent) {
	metrics.InboundEventsTotal.WithLabelValues(string(event.InteractionType)).Inc()

	switch event.InteractionType {
	case model.InteractionCallDetails:
		c.session.SetMetadata(event.Call)
		greeting := c.session.DraftBeginMessage()
		if err := c.peer.Send(greeting); err != nil {
			c.logger.Warn("sending greeting failed", zap.Error(err))
			return
		}
		metrics.RecordFragment(true)
		if c.events != nil {
			c.events.CallStarted(ctx, c.session.CallID())
		}

	case model.InteractionPingPong:
		if err := c.peer.Send(model.NewPingPong(event.Timestamp)); err != nil {
			c.logger.Warn("ping echo failed", zap.Error(err))
		}

	case model.InteractionUpdateOnly:
		// No reply.

	case model.InteractionResponseRequired, model.InteractionReminderRequired:
		req := &model.InteractionRequest{
			InteractionType: event.InteractionType,
			ResponseID:      event.ResponseID,
			Transcript:      event.Transcript,
		}
		c.generations.Add(1)
		go c.handleGeneration(ctx, req)

	default:
		c.logger.Warn("unrecognized interaction type",
			zap.String("interaction_type", string(event.InteractionType)),
		)
	}
}

// handleGeneration runs one generation cycle. A panic while handling the
// frame is converted into an apologetic terminal response instead of
// crashing the connection.
func (c *connection) handleGeneration(ctx context.Context, req *model.InteractionRequest) {
	defer c.generations.Done()
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("generation handler panicked", zap.Any("panic", r))
			c.peer.Send(model.NewResponseFrame(req.ResponseID,
				"I apologize, but I encountered an unexpected error. Could you please try again? ",
				true, false))
		}
	}()

	c.session.HandleInteraction(ctx, req, func(frame model.ResponseFrame) error {
		return c.peer.Send(frame)
	})
}

// close performs ordered teardown: stop the heartbeat, cancel and await
// in-flight generations, flush the session, notify, then close the socket.
// Idempotent; errors are logged only.
func (c *connection) close(cancel context.CancelFunc, callID string) {
	c.teardown.Do(func() {
		cancel()
		c.generations.Wait()

		cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), cleanupTimeout)
		defer cleanupCancel()
		c.session.Cleanup(cleanupCtx)

		if c.events != nil {
			if id := c.session.CallID(); id != "" {
				c.events.CallEnded(cleanupCtx, id)
			} else {
				c.events.CallEnded(cleanupCtx, callID)
			}
		}

		if err := c.peer.Close(); err != nil {
			c.logger.Debug("closing connection", zap.Error(err))
		}
		c.logger.Info("call connection closed")
	})
}
