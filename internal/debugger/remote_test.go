package debugger

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"morpho/internal/interp"
)

// TestServeRemoteDrivesSessionOverWebsocket upgrades a real HTTP
// connection, attaches a Debugger to a paused VM over it, and confirms a
// client-sent "continue" frame resumes execution to completion, the same
// round trip a remote IDE client would make.
func TestServeRemoteDrivesSessionOverWebsocket(t *testing.T) {
	b := buildCounter(t)
	vm := interp.New(b.Program())

	ready := make(chan *Debugger, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d, err := ServeRemote(vm, b.Program(), w, r)
		if err != nil {
			t.Errorf("ServeRemote: %v", err)
			return
		}
		d.BreakAtFunction("", "main")
		ready <- d
		if _, err := vm.Run(); err != nil {
			t.Errorf("Run over remote session: %v", err)
		}
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/debug"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	<-ready
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage (prompt): %v", err)
	}
	if !strings.Contains(string(msg), "breakpoint") {
		t.Fatalf("first message = %q, want a breakpoint notice", msg)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte("continue")); err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}
}
