package websocket

import (
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// ServeWs registers the connection with hub and blocks until it closes.
func ServeWs(hub *Hub, conn *websocket.Conn) {
	client := &Client{ID: uuid.New(), Hub: hub, Conn: conn, Send: make(chan []byte, 256)}
	if !hub.join(client) {
		conn.Close()
		return
	}

	go client.writePump()
	client.readPump()
}
