package shared

import (
	"encoding/binary"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/xtaci/smux"
)

func TestDialUnknownProtocol(t *testing.T) {
	if _, err := Dial("carrier-pigeon", "localhost:8080"); err == nil {
		t.Fatal("expected an error for an unknown protocol")
	}
}

func TestStreamConnFraming(t *testing.T) {
	clientRaw, serverRaw := net.Pipe()
	defer clientRaw.Close()
	defer serverRaw.Close()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- func() error {
			session, err := smux.Server(serverRaw, smux.DefaultConfig())
			if err != nil {
				return err
			}
			stream, err := session.AcceptStream()
			if err != nil {
				return err
			}

			// read one frame by hand to check the 2-byte big-endian
			// length prefix
			var sizeBytes [2]byte
			if _, err := io.ReadFull(stream, sizeBytes[:]); err != nil {
				return err
			}
			payload := make([]byte, binary.BigEndian.Uint16(sizeBytes[:]))
			if _, err := io.ReadFull(stream, payload); err != nil {
				return err
			}
			msg, err := DecodeMessage(payload)
			if err != nil {
				return err
			}

			// echo the ping back as a pong with the same send time
			reply, err := EncodeMessage(&Message{Action: ActionPong, SentAt: msg.SentAt})
			if err != nil {
				return err
			}
			frame := make([]byte, 2+len(reply))
			binary.BigEndian.PutUint16(frame[:2], uint16(len(reply)))
			copy(frame[2:], reply)
			_, err = stream.Write(frame)
			return err
		}()
	}()

	conn, err := newStreamConn(clientRaw)
	if err != nil {
		t.Fatalf("opening stream conn: %v", err)
	}
	defer conn.Close()

	sent := PingMessage(time.Unix(0, 1234567890))
	if err := conn.SendMessage(sent); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	got, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	if got.Action != ActionPong || got.SentAt != sent.SentAt {
		t.Errorf("round trip = %+v, want pong echoing %d", got, sent.SentAt)
	}
	if err := <-serverErr; err != nil {
		t.Fatalf("server side: %v", err)
	}
}

func TestDialWebsocket(t *testing.T) {
	var upgrader websocket.Upgrader
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ws" {
			http.NotFound(w, r)
			return
		}
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()
		kind, data, err := ws.ReadMessage()
		if err != nil {
			return
		}
		if kind != websocket.TextMessage {
			t.Errorf("frame kind = %d, want text", kind)
		}
		msg, err := DecodeMessage(data)
		if err != nil {
			t.Errorf("decoding client frame: %v", err)
			return
		}
		reply, _ := EncodeMessage(&Message{Action: ActionPong, SentAt: msg.SentAt})
		ws.WriteMessage(websocket.TextMessage, reply)
	}))
	defer srv.Close()

	addr := strings.TrimPrefix(srv.URL, "http://")
	conn, err := Dial(ProtocolWS, addr)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	sent := PingMessage(time.Now())
	if err := conn.SendMessage(sent); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	got, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	if got.Action != ActionPong || got.SentAt != sent.SentAt {
		t.Errorf("round trip = %+v, want pong echoing %d", got, sent.SentAt)
	}
}
