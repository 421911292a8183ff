package debugger

import (
	"bytes"
	"io"
	"net/http"

	"github.com/gorilla/websocket"

	"morpho/internal/interp"
	"morpho/internal/program"
)

// wsConn adapts a *websocket.Conn to io.Reader/io.Writer so the same
// command loop that drives a local terminal session can drive a remote
// one. Each write is sent as one text frame; each Read drains the
// current inbound frame into a buffer, blocking for the next frame once
// it's exhausted.
type wsConn struct {
	conn *websocket.Conn
	buf  bytes.Buffer
}

func (w *wsConn) Read(p []byte) (int, error) {
	for w.buf.Len() == 0 {
		_, data, err := w.conn.ReadMessage()
		if err != nil {
			return 0, err
		}
		w.buf.Write(data)
		w.buf.WriteByte('\n')
	}
	return w.buf.Read(p)
}

func (w *wsConn) Write(p []byte) (int, error) {
	if err := w.conn.WriteMessage(websocket.TextMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ServeRemote upgrades an HTTP connection to a websocket and attaches a
// Debugger to vm over it, for a remote debugging session. The caller is
// expected to register this as an http.HandlerFunc and start (or have
// already started) running vm's program on a compatible goroutine;
// ServeRemote only wires the transport.
func ServeRemote(vm *interp.VM, prog *program.Program, w http.ResponseWriter, r *http.Request) (*Debugger, error) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}
	rw := &wsConn{conn: conn}
	var reader io.Reader = rw
	var writer io.Writer = rw
	return New(vm, prog, reader, writer), nil
}
