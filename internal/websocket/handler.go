package websocket

import (
	"github.com/gofiber/websocket/v2"
)

// ServeWs attaches an authenticated dashboard connection to the hub.
func ServeWs(hub *Hub, c *websocket.Conn, adminEmail string) {
	client := &Client{Hub: hub, Conn: c, AdminEmail: adminEmail, Send: make(chan []byte, 256)}
	client.Hub.register <- client

	go client.writePump()
	client.readPump() // Run readPump in current goroutine (handler)
}
