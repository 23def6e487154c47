package server

import (
	"context"
	"encoding/binary"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"raycast-place/internal/game"
	"raycast-place/internal/render"
)

// Browser frame limits. Frames are sent uncompressed, so the default is small.
const (
	DefaultStreamWidth  = 320
	DefaultStreamHeight = 160
	MaxStreamWidth      = 1280
	MaxStreamHeight     = 720
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSServer streams rendered frames to browsers over websockets.
type WSServer struct {
	gameLoop *game.GameLoop
	assets   *game.Assets
	addr     string
	httpSrv  *http.Server
}

// NewWSServer creates a websocket server bound to addr.
func NewWSServer(addr string, gl *game.GameLoop, assets *game.Assets) *WSServer {
	s := &WSServer{gameLoop: gl, assets: assets, addr: addr}
	s.httpSrv = &http.Server{Addr: addr, Handler: s.Handler()}
	return s
}

// Handler serves /ws?name=NAME&w=WIDTH&h=HEIGHT.
func (s *WSServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	return mux
}

// Start listens until Shutdown.
func (s *WSServer) Start() error {
	log.Printf("Websocket server listening on %s", s.addr)
	if err := s.httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections.
func (s *WSServer) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

func (s *WSServer) handleWS(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	name := q.Get("name")
	if name == "" {
		name = "Anonymous"
	}
	width := queryInt(q.Get("w"), DefaultStreamWidth, MaxStreamWidth)
	height := queryInt(q.Get("h"), DefaultStreamHeight, MaxStreamHeight)

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Failed to upgrade connection: %v", err)
		return
	}

	playerID, _, renderCh := s.gameLoop.AddPlayer(name)
	log.Printf("Player connected: %s (%s) via websocket", name, playerID)
	defer func() {
		s.gameLoop.RemovePlayer(playerID)
		log.Printf("Player disconnected: %s (%s)", name, playerID)
	}()

	conn := NewConnection(ws)
	go conn.WritePump()
	defer conn.Close()

	quitCh := make(chan struct{})
	go func() {
		conn.ReadPump(func(message []byte) bool {
			action, ok := parseCommand(string(message))
			if !ok {
				return true
			}
			if action == game.ActionQuit {
				return false
			}
			select {
			case s.gameLoop.InputChan() <- game.InputEvent{PlayerID: playerID, Action: action}:
			default:
			}
			return true
		})
		close(quitCh)
	}()

	display := &streamDisplay{conn: conn, width: width, height: height}
	if err := game.Watch(quitCh, renderCh, playerID, s.assets, s.gameLoop.World(), display); err != nil {
		log.Printf("Session %s ended: %v", playerID, err)
	}
}

func queryInt(v string, def, limit int) int {
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return min(n, limit)
}

// parseCommand maps a text message from the browser to an action.
func parseCommand(msg string) (game.Action, bool) {
	switch strings.ToLower(strings.TrimSpace(msg)) {
	case "left":
		return game.ActionTurnLeft, true
	case "right":
		return game.ActionTurnRight, true
	case "forward":
		return game.ActionForward, true
	case "back":
		return game.ActionBack, true
	case "textures":
		return game.ActionToggleTextures, true
	case "quit":
		return game.ActionQuit, true
	default:
		return game.ActionNone, false
	}
}

// EncodeFrame packs fb as little-endian uint32 width, height, then
// width*height packed RGB pixels in row-major order.
func EncodeFrame(fb *render.Framebuffer) []byte {
	buf := make([]byte, 0, 8+len(fb.Pix)*4)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(fb.Width))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(fb.Height))
	for _, p := range fb.Pix {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(p))
	}
	return buf
}

// streamDisplay sends each frame as one binary websocket message.
type streamDisplay struct {
	conn          *Connection
	width, height int
}

func (d *streamDisplay) FrameSize() (int, int) {
	return d.width, d.height
}

func (d *streamDisplay) Show(fb *render.Framebuffer, _ game.GameState, _ game.PlayerSnapshot) error {
	return d.conn.Present(fb)
}

// Connection wraps the websocket with a buffered outgoing frame queue.
type Connection struct {
	ws   *websocket.Conn
	send chan []byte

	closeOnce sync.Once
}

// NewConnection creates a new connection wrapper.
func NewConnection(ws *websocket.Conn) *Connection {
	return &Connection{
		ws:   ws,
		send: make(chan []byte, 4),
	}
}

// ReadPump reads text messages until the socket closes or handle
// returns false.
func (c *Connection) ReadPump(handle func(message []byte) bool) {
	defer c.ws.Close()

	for {
		kind, message, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("Error reading message: %v", err)
			}
			return
		}
		if kind != websocket.TextMessage {
			continue
		}
		if !handle(message) {
			return
		}
	}
}

// WritePump writes queued frames until Close.
func (c *Connection) WritePump() {
	defer c.ws.Close()

	for message := range c.send {
		if err := c.ws.WriteMessage(websocket.BinaryMessage, message); err != nil {
			// Keep draining so Present never blocks.
			for range c.send {
			}
			return
		}
	}
	c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// Present implements render.FrameSink. Frames are dropped while the client
// is behind.
func (c *Connection) Present(fb *render.Framebuffer) error {
	select {
	case c.send <- EncodeFrame(fb):
	default:
	}
	return nil
}

// Close stops the write pump after queued frames are flushed.
func (c *Connection) Close() {
	c.closeOnce.Do(func() { close(c.send) })
}
