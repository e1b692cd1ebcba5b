package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/coreman2200/funtimes-demosync/internal/app"
	diag "github.com/coreman2200/funtimes-demosync/internal/diagnostics"
	"github.com/coreman2200/funtimes-demosync/internal/render"
)

const (
	writeWait = 200 * time.Millisecond
	// editor messages are single edits; anything larger is dropped with the connection
	maxMessageSize = 64 << 10
)

// Message is an editor request. Which fields matter depends on Type:
//
//	set_key     track, row, value, law (0=step 1=linear 2=smooth 3=ramp)
//	delete_key  track, row
//	set_row     row
//	pause       paused
type Message struct {
	Type   string  `json:"type"`
	Track  int     `json:"track"`
	Row    uint32  `json:"row"`
	Value  float32 `json:"value"`
	Law    int     `json:"law"`
	Paused bool    `json:"paused"`
}

// Event is sent to editors.
type Event struct {
	Type   string           `json:"type"` // "row" | "diag"
	Row    uint32           `json:"row"`
	Paused bool             `json:"paused"`
	Diag   *diag.Diagnostic `json:"diag,omitempty"`
}

type client struct {
	conn *websocket.Conn
	mu   sync.Mutex // one writer at a time
}

func (c *client) send(b []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, b)
}

// Server speaks the editor protocol against a Core.
type Server struct {
	core *app.Core
	log  zerolog.Logger

	mu        sync.RWMutex
	clients   map[*client]bool
	lastRow   uint32
	sentRow   bool
	startTime time.Time
	frames    uint64

	upgrader websocket.Upgrader
}

func NewServer(core *app.Core, log zerolog.Logger) *Server {
	return &Server{
		core:      core,
		log:       log,
		clients:   map[*client]bool{},
		startTime: time.Now(),
		upgrader:  websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
}

// Routes mounts the editor socket and the health endpoint.
func (s *Server) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/editor", s.HandleEditorWS)
	mux.HandleFunc("/health", s.HandleHealth)
}

func (s *Server) HandleEditorWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug().Err(err).Msg("editor upgrade")
		return
	}
	conn.SetReadLimit(maxMessageSize)
	c := &client{conn: conn}
	s.mu.Lock()
	s.clients[c] = true
	s.mu.Unlock()
	s.log.Info().Str("remote", r.RemoteAddr).Msg("editor connected")

	defer func() {
		s.mu.Lock()
		delete(s.clients, c)
		s.mu.Unlock()
		conn.Close()
		s.log.Info().Str("remote", r.RemoteAddr).Msg("editor disconnected")
	}()

	s.sendEvent(c, Event{Type: "row", Row: s.core.Row(), Paused: s.core.Paused()})
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			s.sendDiag(c, diag.Diagnostic{Severity: diag.Warn, Code: "MSG.MALFORMED", Summary: "Malformed message", Detail: err.Error()})
			continue
		}
		s.apply(c, msg)
	}
}

func (s *Server) apply(c *client, msg Message) {
	switch msg.Type {
	case "set_key":
		code := uint8(255)
		if msg.Law >= 0 && msg.Law <= 255 {
			code = uint8(msg.Law)
		}
		if err := s.core.SetKey(msg.Track, msg.Row, msg.Value, code); err != nil {
			s.reject(c, err, msg)
		}
	case "delete_key":
		if err := s.core.DeleteKey(msg.Track, msg.Row); err != nil {
			s.reject(c, err, msg)
		}
	case "set_row":
		s.core.SetRow(msg.Row)
		s.broadcastRow(msg.Row)
	case "pause":
		s.core.SetPaused(msg.Paused)
		s.broadcastRow(s.core.Row())
	default:
		s.sendDiag(c, diag.Diagnostic{
			Severity: diag.Warn, Code: "MSG.UNKNOWN", Summary: "Unknown message type",
			Evidence: map[string]any{"type": msg.Type},
		})
	}
}

func (s *Server) reject(c *client, err error, msg Message) {
	s.log.Warn().Err(err).Str("type", msg.Type).Int("track", msg.Track).Uint32("row", msg.Row).Msg("editor request rejected")
	d := diag.FromError(err, map[string]any{"type": msg.Type, "track": msg.Track, "row": msg.Row})
	s.sendDiag(c, d)
}

func (s *Server) sendDiag(c *client, d diag.Diagnostic) {
	s.sendEvent(c, Event{Type: "diag", Diag: &d})
}

func (s *Server) sendEvent(c *client, ev Event) {
	b, _ := json.Marshal(ev)
	if err := c.send(b); err != nil {
		s.log.Debug().Err(err).Msg("write event")
	}
}

func (s *Server) broadcastRow(row uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sendRowLocked(row)
}

// sendRowLocked records row as the last one sent and pushes it to every
// editor. s.mu must be held.
func (s *Server) sendRowLocked(row uint32) {
	b, _ := json.Marshal(Event{Type: "row", Row: row, Paused: s.core.Paused()})
	s.lastRow, s.sentRow = row, true
	for c := range s.clients {
		if err := c.send(b); err != nil {
			s.log.Debug().Err(err).Msg("write row")
		}
	}
}

// Submit lets the server sit in the frame path: while playing, editors are
// told whenever the row changes. A frame whose row no longer matches the core
// was overtaken by a seek and is not sent.
func (s *Server) Submit(f *render.Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = f.Seq
	if s.sentRow && s.lastRow == f.Row {
		return nil
	}
	if s.core.Paused() || s.core.Row() != f.Row {
		return nil
	}
	s.sendRowLocked(f.Row)
	return nil
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	resp := map[string]any{
		"frame":    s.frames,
		"uptime_s": time.Since(s.startTime).Seconds(),
		"editors":  len(s.clients),
		"row":      s.core.Row(),
		"paused":   s.core.Paused(),
		"tracks":   s.core.TrackCount(),
	}
	s.mu.RUnlock()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

var _ render.Sink = (*Server)(nil)
