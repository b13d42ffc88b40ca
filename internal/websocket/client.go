package websocket

import (
	"context"
	"encoding/json"
	"time"

	ws "github.com/coder/websocket"
)

const (
	sendBufferSize = 16
	pingInterval   = 30 * time.Second
	writeTimeout   = 10 * time.Second
	// Menu screens only listen; anything they send is discarded.
	readLimit = 512
)

// Client is one visitor's open menu screen.
type Client struct {
	hub        *Hub
	conn       *ws.Conn
	businessID int64
	send       chan []byte
}

// NewClient creates a Client watching businessID's menu.
func NewClient(hub *Hub, conn *ws.Conn, businessID int64) *Client {
	return &Client{
		hub:        hub,
		conn:       conn,
		businessID: businessID,
		send:       make(chan []byte, sendBufferSize),
	}
}

// hello is the first frame a screen receives, so it knows the feed is live.
func (c *Client) hello() []byte {
	msg := NewMessage("menu", "connected", c.businessID, map[string]any{
		"watchers": c.hub.Watchers(c.businessID),
	})
	data, _ := json.Marshal(msg)
	return data
}

// Run registers the client and pumps messages until the screen disconnects
// or ctx ends.
func (c *Client) Run(ctx context.Context) {
	c.hub.Register(c)
	defer c.hub.Unregister(c)
	defer c.conn.CloseNow()

	c.conn.SetReadLimit(readLimit)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := c.write(ctx, c.hello()); err != nil {
		return
	}

	go func() {
		c.writePump(ctx)
		cancel()
	}()
	c.readPump(ctx)
}

func (c *Client) readPump(ctx context.Context) {
	for {
		if _, _, err := c.conn.Read(ctx); err != nil {
			return
		}
	}
}

func (c *Client) write(ctx context.Context, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return c.conn.Write(ctx, ws.MessageText, data)
}

// writePump forwards hub messages and pings so stale screens are dropped.
func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.write(ctx, msg); err != nil {
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
