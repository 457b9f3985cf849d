package ws

import (
	"context"

	"github.com/coder/websocket"
	"lol.mleku.dev/errorf"
)

// Client is a minimal relay client over coder/websocket, enough for the
// integration tests and simple tooling.
type Client struct {
	conn *websocket.Conn
}

// Dial connects to a relay websocket URL.
func Dial(ctx context.Context, u string) (c *Client, err error) {
	var conn *websocket.Conn
	if conn, _, err = websocket.Dial(ctx, u, nil); err != nil {
		return
	}
	conn.SetReadLimit(1 << 20)
	c = &Client{conn: conn}
	return
}

// Send writes one text frame.
func (c *Client) Send(ctx context.Context, b []byte) (err error) {
	return c.conn.Write(ctx, websocket.MessageText, b)
}

// Recv reads the next text frame.
func (c *Client) Recv(ctx context.Context) (b []byte, err error) {
	var typ websocket.MessageType
	if typ, b, err = c.conn.Read(ctx); err != nil {
		return
	}
	if typ != websocket.MessageText {
		err = errorf.E("unexpected %v frame", typ)
	}
	return
}

// Close performs a normal closure handshake.
func (c *Client) Close() error {
	return c.conn.Close(websocket.StatusNormalClosure, "")
}
