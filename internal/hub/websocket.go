package hub

import (
	"context"
	"io"
	"log/slog"

	"github.com/coder/websocket"
	"github.com/labstack/echo/v4"
)

// wsTransport adapts a coder/websocket connection to the hub's Transport.
type wsTransport struct {
	conn *websocket.Conn
}

func (t wsTransport) Write(ctx context.Context, payload []byte) error {
	return t.conn.Write(ctx, websocket.MessageText, payload)
}

func (t wsTransport) Close() error {
	return t.conn.Close(websocket.StatusNormalClosure, "server-side cleanup")
}

// Handler returns the echo handler that upgrades a request to a websocket
// connection on the given channel. Viewers are write-mostly: the read side
// only exists to detect disconnects.
func (h *Hub) Handler(channel ChannelType) echo.HandlerFunc {
	return func(c echo.Context) error {
		conn, err := websocket.Accept(c.Response(), c.Request(), &websocket.AcceptOptions{
			InsecureSkipVerify: true, // Viewers are local; origin checks add nothing here.
		})
		if err != nil {
			slog.Error("Failed to upgrade connection to WebSocket", "channel", channel, "error", err)
			return err
		}

		client := h.AddClient(channel, c.RealIP(), wsTransport{conn: conn})
		go h.readPump(client, conn)
		return nil
	}
}

// readPump drains inbound frames until the connection ends, then removes the
// client from the registry before the transport handle is discarded.
func (h *Hub) readPump(client *Client, conn *websocket.Conn) {
	defer h.RemoveClient(client)

	for {
		_, _, err := conn.Read(context.Background())
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				slog.Info("WebSocket closed by client", "client", client.ID())
			} else if err != io.EOF {
				slog.Debug("WebSocket read ended", "client", client.ID(), "error", err)
			}
			return
		}
	}
}
