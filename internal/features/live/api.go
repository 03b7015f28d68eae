package live

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

type LiveApi struct {
	Hub *Hub
}

func NewLiveApi(hub *Hub) *LiveApi {
	return &LiveApi{Hub: hub}
}

func (h *LiveApi) Setup(app *fiber.App) {
	app.Get("/ws/refresh", websocket.New(h.handle))
}

// handle keeps the connection registered until the client goes away.
// Inbound messages are ignored; this channel is broadcast-only.
func (h *LiveApi) handle(c *websocket.Conn) {
	h.Hub.add(c)
	defer h.Hub.remove(c)

	for {
		if _, _, err := c.ReadMessage(); err != nil {
			break
		}
	}
}
