package server

import (
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"unicode/utf8"

	"github.com/gliderlabs/ssh"

	"raycast-place/internal/game"
	"raycast-place/internal/render"
)

// SSHServer wraps the SSH listener and game loop integration.
type SSHServer struct {
	gameLoop *game.GameLoop
	assets   *game.Assets
	addr     string
	hostKey  string
	server   *ssh.Server
}

// NewSSHServer creates a new SSH server bound to the given address.
func NewSSHServer(addr string, hostKey string, gl *game.GameLoop, assets *game.Assets) *SSHServer {
	s := &SSHServer{
		gameLoop: gl,
		assets:   assets,
		addr:     addr,
		hostKey:  hostKey,
	}
	s.server = &ssh.Server{
		Addr: addr,
		Handler: func(sess ssh.Session) {
			s.handleSession(sess)
		},
	}
	return s
}

// Start begins listening for SSH connections. It blocks until Close.
func (s *SSHServer) Start() error {
	// Set host key
	if err := s.server.SetOption(ssh.HostKeyFile(s.hostKey)); err != nil {
		return fmt.Errorf("set host key: %w", err)
	}

	log.Printf("SSH server listening on %s", s.addr)
	err := s.server.ListenAndServe()
	if errors.Is(err, ssh.ErrServerClosed) {
		return nil
	}
	return err
}

// Close stops the listener and drops open sessions.
func (s *SSHServer) Close() error {
	return s.server.Close()
}

// terminalDisplay presents frames as half-block art sized to the client's PTY.
type terminalDisplay struct {
	sink     *render.ANSISink
	gameLoop *game.GameLoop
	textures bool // atlas available

	mu         sync.Mutex
	cols, rows int
}

func (d *terminalDisplay) resize(cols, rows int) {
	d.mu.Lock()
	d.cols, d.rows = cols, rows
	d.mu.Unlock()
	d.sink.Resize(cols, rows)
}

// FrameSize maps each cell to one pixel wide and two tall.
func (d *terminalDisplay) FrameSize() (int, int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cols, max(d.rows-render.HUDRows, 0) * 2
}

func (d *terminalDisplay) Show(fb *render.Framebuffer, _ game.GameState, me game.PlayerSnapshot) error {
	d.sink.SetHUD(render.HUD{
		Name:     me.Name,
		MapName:  me.MapName,
		Pose:     me.Pose,
		Players:  d.gameLoop.PlayerCount(),
		Textures: d.textures && me.Textures,
	})
	return d.sink.Present(fb)
}

func (s *SSHServer) handleSession(sess ssh.Session) {
	// Require PTY
	ptyReq, winCh, ok := sess.Pty()
	if !ok {
		fmt.Fprintln(sess, "Error: PTY required. Use: ssh -t ...")
		return
	}

	username := sess.User()
	if username == "" {
		username = "Anonymous"
	}

	// Register with game loop (username = identity)
	playerID, _, renderCh := s.gameLoop.AddPlayer(username)

	log.Printf("Player connected: %s (%s)", username, playerID)
	defer func() {
		s.gameLoop.RemovePlayer(playerID)
		log.Printf("Player disconnected: %s (%s)", username, playerID)
	}()

	display := &terminalDisplay{
		sink:     render.NewANSISink(sess, ptyReq.Window.Width, ptyReq.Window.Height),
		gameLoop: s.gameLoop,
		textures: s.assets.Atlas != nil,
		cols:     ptyReq.Window.Width,
		rows:     ptyReq.Window.Height,
	}

	// Setup terminal
	io.WriteString(sess, render.EnableAltScreen())
	io.WriteString(sess, render.HideCursor())
	io.WriteString(sess, render.ClearScreen())
	defer func() {
		io.WriteString(sess, render.ShowCursor())
		io.WriteString(sess, render.DisableAltScreen())
	}()

	inputCh := s.gameLoop.InputChan()
	quitCh := make(chan struct{})

	// Goroutine: read input
	go func() {
		buf := make([]byte, 64)
		for {
			n, err := sess.Read(buf)
			if err != nil {
				close(quitCh)
				return
			}
			actions := parseInput(buf[:n])
			for _, action := range actions {
				if action == game.ActionQuit {
					close(quitCh)
					return
				}
				select {
				case inputCh <- game.InputEvent{PlayerID: playerID, Action: action}:
				default:
				}
			}
		}
	}()

	// Goroutine: handle window resizes
	go func() {
		for win := range winCh {
			display.resize(win.Width, win.Height)
		}
	}()

	if err := game.Watch(quitCh, renderCh, playerID, s.assets, s.gameLoop.World(), display); err != nil {
		log.Printf("Session %s ended: %v", playerID, err)
	}
}

// parseInput converts raw bytes into player actions.
// Handles WASD, arrow key escape sequences, T, Q, and Ctrl-C.
func parseInput(data []byte) []game.Action {
	var actions []game.Action
	i := 0
	for i < len(data) {
		// Check for escape sequences (arrow keys)
		if i+2 < len(data) && data[i] == 0x1b && data[i+1] == '[' {
			switch data[i+2] {
			case 'A':
				actions = append(actions, game.ActionForward)
			case 'B':
				actions = append(actions, game.ActionBack)
			case 'C':
				actions = append(actions, game.ActionTurnRight)
			case 'D':
				actions = append(actions, game.ActionTurnLeft)
			}
			i += 3
			continue
		}

		// Single byte inputs
		r, size := utf8.DecodeRune(data[i:])
		switch r {
		case 'w', 'W':
			actions = append(actions, game.ActionForward)
		case 's', 'S':
			actions = append(actions, game.ActionBack)
		case 'a', 'A':
			actions = append(actions, game.ActionTurnLeft)
		case 'd', 'D':
			actions = append(actions, game.ActionTurnRight)
		case 't', 'T':
			actions = append(actions, game.ActionToggleTextures)
		case 'q', 'Q':
			actions = append(actions, game.ActionQuit)
		case 3: // Ctrl-C
			actions = append(actions, game.ActionQuit)
		}
		i += size
	}
	return actions
}
