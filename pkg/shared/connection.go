package shared

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	kcp "github.com/xtaci/kcp-go/v5"
	"github.com/xtaci/smux"
)

// Supported transport protocols. All of them present the same
// reliable-ordered message stream to the client.
const (
	ProtocolWS  = "ws"
	ProtocolTCP = "tcp"
	ProtocolKCP = "kcp"
)

const writeWait = 5 * time.Second

// Conn is a message-oriented duplex connection to the server. One
// decoded message per read, one serialized message per send. Sends
// are fire-and-forget; ordering matches call order.
type Conn interface {
	ReadMessage() (*Message, error)
	SendMessage(*Message) error
	Close() error
}

// Dial connects to addr over the named protocol and returns a
// message connection. tcp and kcp carry a single smux stream with
// length-prefixed frames; ws carries one JSON message per text frame.
func Dial(protocol, addr string) (Conn, error) {
	switch protocol {
	case ProtocolWS:
		ws, _, err := websocket.DefaultDialer.Dial(fmt.Sprintf("ws://%s/ws", addr), nil)
		if err != nil {
			return nil, errors.Wrapf(err, "dialing ws %s", addr)
		}
		return &wsConn{ws: ws}, nil
	case ProtocolTCP:
		raw, err := net.Dial("tcp", addr)
		if err != nil {
			return nil, errors.Wrapf(err, "dialing tcp %s", addr)
		}
		return newStreamConn(raw)
	case ProtocolKCP:
		raw, err := kcp.Dial(addr)
		if err != nil {
			return nil, errors.Wrapf(err, "dialing kcp %s", addr)
		}
		return newStreamConn(raw)
	}
	return nil, fmt.Errorf("unknown protocol %q", protocol)
}

// wsConn sends one JSON message per websocket text frame.
type wsConn struct {
	ws *websocket.Conn
}

func (c *wsConn) ReadMessage() (*Message, error) {
	_, data, err := c.ws.ReadMessage()
	if err != nil {
		return nil, err
	}
	return DecodeMessage(data)
}

func (c *wsConn) SendMessage(m *Message) error {
	data, err := EncodeMessage(m)
	if err != nil {
		return err
	}
	c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

func (c *wsConn) Close() error {
	return c.ws.Close()
}

// streamConn frames JSON messages over a raw reliable stream with a
// 2-byte big-endian length prefix. The stream is a single smux
// stream opened over the dialed connection.
type streamConn struct {
	session *smux.Session
	stream  net.Conn
}

func newStreamConn(raw net.Conn) (*streamConn, error) {
	session, err := smux.Client(raw, smux.DefaultConfig())
	if err != nil {
		return nil, errors.Wrap(err, "opening smux session")
	}
	stream, err := session.OpenStream()
	if err != nil {
		session.Close()
		return nil, errors.Wrap(err, "opening smux stream")
	}
	return &streamConn{session: session, stream: stream}, nil
}

func (c *streamConn) ReadMessage() (*Message, error) {
	var sizeBytes [2]byte
	if _, err := io.ReadFull(c.stream, sizeBytes[:]); err != nil {
		return nil, err
	}
	size := binary.BigEndian.Uint16(sizeBytes[:])
	data := make([]byte, size)
	if _, err := io.ReadFull(c.stream, data); err != nil {
		return nil, err
	}
	return DecodeMessage(data)
}

func (c *streamConn) SendMessage(m *Message) error {
	data, err := EncodeMessage(m)
	if err != nil {
		return err
	}
	if len(data) > int(^uint16(0)) {
		return fmt.Errorf("message size too large: %v", len(data))
	}
	buf := make([]byte, 2+len(data))
	binary.BigEndian.PutUint16(buf[:2], uint16(len(data)))
	copy(buf[2:], data)
	c.stream.SetWriteDeadline(time.Now().Add(writeWait))
	_, err = c.stream.Write(buf)
	return err
}

func (c *streamConn) Close() error {
	c.stream.Close()
	return c.session.Close()
}
