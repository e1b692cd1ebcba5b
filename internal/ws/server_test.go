package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-demosync/internal/app"
	"github.com/coreman2200/funtimes-demosync/internal/automation"
	"github.com/coreman2200/funtimes-demosync/internal/render"
	"github.com/coreman2200/funtimes-demosync/internal/variables"
)

func newTestServer(t *testing.T) (*Server, *app.Core, *httptest.Server) {
	t.Helper()
	dev := automation.NewDevice(120, 4, 2)
	vars := variables.NewTable()
	vars.AddTracksUpTo(int(variables.BuiltinCount) + 2)
	core, err := app.NewCore(dev, vars, nil, []int{int(variables.Custom(0)), int(variables.Custom(1))})
	require.NoError(t, err)

	s := NewServer(core, zerolog.Nop())
	mux := http.NewServeMux()
	s.Routes(mux)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return s, core, ts
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/editor"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	// greeting with the current row
	ev := readEvent(t, conn)
	require.Equal(t, "row", ev.Type)
	return conn
}

func send(t *testing.T, conn *websocket.Conn, msg any) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(msg))
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev Event
	require.NoError(t, conn.ReadJSON(&ev))
	return ev
}

func TestSetKeyThenSeek(t *testing.T) {
	_, core, ts := newTestServer(t)
	conn := dial(t, ts)

	send(t, conn, Message{Type: "set_key", Track: 1, Row: 0, Value: 0, Law: 1})
	send(t, conn, Message{Type: "set_key", Track: 1, Row: 8, Value: 4, Law: 1})
	send(t, conn, Message{Type: "set_row", Row: 4})

	ev := readEvent(t, conn)
	assert.Equal(t, "row", ev.Type)
	assert.Equal(t, uint32(4), ev.Row)

	var f render.Frame
	require.NoError(t, core.Build(&f))
	assert.Equal(t, uint32(4), f.Row)
	assert.Equal(t, 2.0, f.Vars[variables.Custom(1)])
	assert.InDelta(t, 500.0, f.TimeMS, 1e-9)

	send(t, conn, Message{Type: "delete_key", Track: 1, Row: 8})
	send(t, conn, Message{Type: "set_row", Row: 4})
	readEvent(t, conn)
	require.NoError(t, core.Build(&f))
	assert.Equal(t, 0.0, f.Vars[variables.Custom(1)])
}

func TestRejectedEditsProduceDiagnostics(t *testing.T) {
	_, _, ts := newTestServer(t)
	conn := dial(t, ts)

	send(t, conn, Message{Type: "set_key", Track: 5, Row: 0, Law: 1})
	ev := readEvent(t, conn)
	require.Equal(t, "diag", ev.Type)
	assert.Equal(t, "TRACK.NOT_EXIST", ev.Diag.Code)

	send(t, conn, Message{Type: "set_key", Track: 0, Row: 0, Law: 7})
	ev = readEvent(t, conn)
	assert.Equal(t, "KEY.INVALID_LAW", ev.Diag.Code)

	send(t, conn, Message{Type: "set_key", Track: 0, Row: 0, Law: 1000})
	ev = readEvent(t, conn)
	assert.Equal(t, "KEY.INVALID_LAW", ev.Diag.Code)

	send(t, conn, Message{Type: "warp"})
	ev = readEvent(t, conn)
	assert.Equal(t, "MSG.UNKNOWN", ev.Diag.Code)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{nope")))
	ev = readEvent(t, conn)
	assert.Equal(t, "MSG.MALFORMED", ev.Diag.Code)
}

func TestPauseAndPlaybackRows(t *testing.T) {
	s, core, ts := newTestServer(t)
	conn := dial(t, ts)

	send(t, conn, Message{Type: "pause", Paused: true})
	ev := readEvent(t, conn)
	assert.True(t, ev.Paused)
	assert.True(t, core.Paused())

	send(t, conn, Message{Type: "pause", Paused: false})
	ev = readEvent(t, conn)
	assert.False(t, ev.Paused)

	// playing: a row change in the frame path is pushed to editors
	core.SetRow(12)
	require.NoError(t, s.Submit(&render.Frame{Seq: 1, Row: 12}))
	ev = readEvent(t, conn)
	assert.Equal(t, uint32(12), ev.Row)

	// same row again is not re-sent; the next change is
	require.NoError(t, s.Submit(&render.Frame{Seq: 2, Row: 12}))
	core.SetRow(13)
	require.NoError(t, s.Submit(&render.Frame{Seq: 3, Row: 13}))
	ev = readEvent(t, conn)
	assert.Equal(t, uint32(13), ev.Row)
}

func TestFrameOlderThanSeekIsDropped(t *testing.T) {
	s, _, ts := newTestServer(t)
	conn := dial(t, ts)

	send(t, conn, Message{Type: "set_row", Row: 20})
	ev := readEvent(t, conn)
	require.Equal(t, uint32(20), ev.Row)

	// built before the seek landed
	require.NoError(t, s.Submit(&render.Frame{Seq: 1, Row: 3}))
	require.NoError(t, s.Submit(&render.Frame{Seq: 2, Row: 20}))

	// the next event is the pause reply, still at the seek row
	send(t, conn, Message{Type: "pause", Paused: false})
	ev = readEvent(t, conn)
	assert.Equal(t, "row", ev.Type)
	assert.Equal(t, uint32(20), ev.Row)
}

func TestOversizedMessageClosesEditor(t *testing.T) {
	_, core, ts := newTestServer(t)
	conn := dial(t, ts)

	big := `{"type":"set_row","row":9,"pad":"` + strings.Repeat("x", maxMessageSize) + `"}`
	// the server may hang up before the write finishes
	_ = conn.WriteMessage(websocket.TextMessage, []byte(big))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
	assert.Equal(t, uint32(0), core.Row())
}

func TestHealth(t *testing.T) {
	_, _, ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 2.0, body["tracks"])
	assert.Equal(t, false, body["paused"])
}
