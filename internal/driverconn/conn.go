package driverconn

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/heartscore/internal/decision"
)

const (
	writeDeadline = 10 * time.Second
	pongDeadline  = 60 * time.Second
	pingInterval  = (pongDeadline * 9) / 10
	maxFrameBytes = 8192
)

// ErrConnectionClosed mirrors the teacher's sentinel for a send against
// an already-closed connection.
var ErrConnectionClosed = websocket.ErrCloseSent

// Conn wraps one WebSocket connection to an external game driver,
// routing its frames to a single decision.Bot instance. One Conn
// serves exactly one seat for exactly one round's lifetime, matching
// the decision core's single-threaded-per-instance invariant (§5).
type Conn struct {
	conn   *websocket.Conn
	send   chan *Message
	bot    *decision.Bot
	logger *log.Logger

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// New wraps conn around bot, deriving a "driverconn"-prefixed logger
// from base (which may be nil).
func New(conn *websocket.Conn, bot *decision.Bot, base *log.Logger) *Conn {
	if base == nil {
		base = log.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Conn{
		conn:   conn,
		send:   make(chan *Message, 16),
		bot:    bot,
		logger: base.WithPrefix("driverconn"),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start launches the read and write pumps in their own goroutines.
func (c *Conn) Start() {
	go c.writePump()
	go c.readPump()
}

// Done returns a channel closed once the connection has torn down, so
// callers bookkeeping live connections can be notified without polling.
func (c *Conn) Done() <-chan struct{} {
	return c.ctx.Done()
}

// Close tears the connection down, safe to call more than once.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.send)
		err = c.conn.Close()
	})
	return err
}

// SendMessage enqueues msg for delivery, closing the connection if the
// outgoing buffer is full rather than blocking indefinitely.
func (c *Conn) SendMessage(msg *Message) error {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Debug("send on closed connection", "error", r)
		}
	}()

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		c.logger.Warn("outgoing queue saturated, dropping connection")
		_ = c.Close()
		return ErrConnectionClosed
	}
}

func (c *Conn) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxFrameBytes)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongDeadline))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongDeadline))
		return nil
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("unexpected disconnect", "error", err)
			}
			return
		}
		c.handleMessage(&msg)
	}
}

func (c *Conn) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				c.logger.Error("write failed, tearing down connection", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

func (c *Conn) handleMessage(msg *Message) {
	switch msg.Type {
	case MessageTypeInitBeliefs:
		c.handleInitBeliefs(msg)
	case MessageTypePlayCard:
		c.handlePlayCard(msg)
	case MessageTypeObservePlay:
		c.handleObservePlay(msg)
	case MessageTypeObserveTrickComplete:
		c.handleObserveTrickComplete(msg)
	default:
		c.sendError("unknown_message_type", fmt.Sprintf("unknown message type: %s", msg.Type))
	}
}

func (c *Conn) sendError(code, message string) {
	errMsg, err := NewMessage(MessageTypeError, ErrorData{Code: code, Message: message})
	if err != nil {
		c.logger.Error("failed to build error message", "error", err)
		return
	}
	_ = c.SendMessage(errMsg)
}
