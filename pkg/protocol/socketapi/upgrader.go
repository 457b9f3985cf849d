package socketapi

import (
	"net/http"

	"github.com/fasthttp/websocket"

	"lore.lol/pkg/utils/units"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  16 * units.Kb,
	WriteBufferSize: 16 * units.Kb,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Upgrade negotiates the websocket handshake.
func Upgrade(w http.ResponseWriter, r *http.Request) (conn *websocket.Conn, err error) {
	return upgrader.Upgrade(w, r, nil)
}

// IsUpgrade reports whether the request asks for a websocket.
func IsUpgrade(r *http.Request) bool {
	return websocket.IsWebSocketUpgrade(r)
}
