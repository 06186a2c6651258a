package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/voxelgameslib/voxelgameslib"
	"github.com/voxelgameslib/voxelgameslib/pkg/command"
	"github.com/voxelgameslib/voxelgameslib/pkg/domain"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 4096
	sendBuffer     = 256
)

// Client message types.
const (
	MsgTypeLogin = "login"
	MsgTypeJoin  = "join"
	MsgTypeLeave = "leave"
	MsgTypeChat  = "chat"
)

// Server message types. Player sinks add domain.MessageChat,
// domain.MessageScoreboard and domain.MessageState.
const (
	MsgTypeWelcome = "welcome"
	MsgTypeError   = "error"
)

// ClientMessage represents a message from client to server.
type ClientMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// ServerMessage represents a message from server to client.
type ServerMessage = domain.Message

type LoginData struct {
	Name string `json:"name"`
}

// GameData names a game by id, or a mode to create a new game of.
type GameData struct {
	Game string `json:"game"`
}

type ChatData struct {
	Text string `json:"text"`
}

type WelcomeData struct {
	UUID    uuid.UUID `json:"uuid"`
	Name    string    `json:"name"`
	Version string    `json:"version"`
}

// isValidOrigin checks if the origin is allowed to connect.
func isValidOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		// non-browser client
		return true
	}
	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if r.Host == originURL.Host {
		return true
	}
	host := originURL.Hostname()
	return host == "localhost" || host == "127.0.0.1"
}

var upgrader = websocket.Upgrader{
	CheckOrigin:       isValidOrigin,
	EnableCompression: true,
}

// client is one websocket connection, optionally logged in as a user.
type client struct {
	server *Server
	conn   *websocket.Conn
	send   chan ServerMessage
	done   chan struct{}
	once   sync.Once

	mu   sync.Mutex
	user *domain.User
}

// HandleWebSocket upgrades GET /ws and serves the connection until it closes.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("WebSocket upgrade failed", "error", err)
		return
	}
	c := &client{
		server: s,
		conn:   conn,
		send:   make(chan ServerMessage, sendBuffer),
		done:   make(chan struct{}),
	}
	go c.writePump()
	c.readPump(r.Context())
}

// deliver queues msg without blocking; a full buffer drops it.
func (c *client) deliver(msg ServerMessage) {
	select {
	case <-c.done:
	case c.send <- msg:
	default:
		c.server.logger.Warn("WebSocket send buffer full, dropping message", "type", msg.Type)
	}
}

func (c *client) fail(err error) {
	c.deliver(ServerMessage{Type: MsgTypeError, Data: err.Error()})
}

func (c *client) current() *domain.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.user
}

// readPump handles incoming messages from the client.
func (c *client) readPump(ctx context.Context) {
	defer func() {
		c.once.Do(func() { close(c.done) })
		c.logout()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.server.logger.Debug("WebSocket closed", "error", err)
			}
			return
		}
		c.handleMessage(ctx, msg)
	}
}

// writePump sends messages to the client.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage processes a message from the client.
func (c *client) handleMessage(ctx context.Context, msg ClientMessage) {
	defer func() {
		if r := recover(); r != nil {
			c.server.logger.Error("Panic while handling websocket message", "type", msg.Type, "panic", r)
			c.fail(errors.New("internal error"))
		}
	}()

	var err error
	switch msg.Type {
	case MsgTypeLogin:
		err = c.handleLogin(msg.Data)
	case MsgTypeJoin:
		err = c.handleJoin(ctx, msg.Data)
	case MsgTypeLeave:
		err = c.handleLeave(msg.Data)
	case MsgTypeChat:
		err = c.handleChat(ctx, msg.Data)
	default:
		err = fmt.Errorf("unknown message type %q", msg.Type)
	}
	if err != nil {
		c.fail(err)
	}
}

var errNotLoggedIn = errors.New("login first")

func (c *client) handleLogin(raw json.RawMessage) error {
	var data LoginData
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("invalid login: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.user != nil {
		return errors.New("already logged in")
	}

	u, err := c.server.Backend.Users().Login(data.Name)
	if err != nil {
		return err
	}
	u.Player().Attach(c.deliver)
	c.user = u
	c.deliver(ServerMessage{Type: MsgTypeWelcome, Data: WelcomeData{
		UUID:    u.UUID,
		Name:    u.DisplayName,
		Version: voxelgameslib.Version,
	}})
	return nil
}

func (c *client) logout() {
	c.mu.Lock()
	u := c.user
	c.user = nil
	c.mu.Unlock()
	if u == nil {
		return
	}
	u.Player().Attach(nil)
	if err := c.server.Backend.Users().Logout(u.UUID); err != nil {
		c.server.logger.Warn("Logout failed", "user", u.DisplayName, "error", err)
	}
}

func (c *client) handleJoin(ctx context.Context, raw json.RawMessage) error {
	u := c.current()
	if u == nil {
		return errNotLoggedIn
	}
	var data GameData
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("invalid join: %w", err)
	}

	games := c.server.Backend.Games()
	id, err := uuid.Parse(data.Game)
	if err != nil {
		snap, err := games.Create(ctx, data.Game)
		if err != nil {
			return err
		}
		id = uuid.MustParse(snap.ID)
	}
	if err := games.Join(id, u); err != nil {
		return err
	}
	snap, err := games.Find(id)
	if err != nil {
		return err
	}
	c.deliver(ServerMessage{Type: domain.MessageState, Data: snap})
	return nil
}

func (c *client) handleLeave(raw json.RawMessage) error {
	u := c.current()
	if u == nil {
		return errNotLoggedIn
	}
	var data GameData
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &data); err != nil {
			return fmt.Errorf("invalid leave: %w", err)
		}
	}
	if data.Game == "" {
		c.server.Backend.Games().LeaveAll(u)
		return nil
	}
	id, err := uuid.Parse(data.Game)
	if err != nil {
		return fmt.Errorf("invalid game id %q", data.Game)
	}
	return c.server.Backend.Games().Leave(id, u)
}

// handleChat runs commands and broadcasts everything else to online users.
func (c *client) handleChat(ctx context.Context, raw json.RawMessage) error {
	u := c.current()
	if u == nil {
		return errNotLoggedIn
	}
	var data ChatData
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("invalid chat: %w", err)
	}
	text := strings.TrimSpace(data.Text)
	if text == "" {
		return nil
	}
	if command.IsCommand(text) {
		// the dispatcher already told the sender what went wrong
		_ = c.server.Backend.Commands().Execute(ctx, u, text)
		return nil
	}
	line := fmt.Sprintf("<%s> %s", u.DisplayName, text)
	for _, other := range c.server.Backend.Users().Online() {
		other.SendMessage(line)
	}
	return nil
}
