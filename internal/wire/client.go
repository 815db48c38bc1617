package wire

import (
	"context"
	"fmt"
	"net"
)

// Client renders Markdown through a daemon reachable on a unix socket.
// One connection carries one request.
type Client struct {
	socketPath string
}

func NewClient(socketPath string) *Client {
	return &Client{socketPath: socketPath}
}

// Render sends src to the daemon and returns the rendered fragment.
// Failures the daemon reported come back as *RemoteError; the context
// deadline, when set, bounds the whole exchange.
func (c *Client) Render(ctx context.Context, src []byte) ([]byte, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", c.socketPath, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return nil, fmt.Errorf("set deadline: %w", err)
		}
	}

	if err := WritePayload(conn, src); err != nil {
		return nil, err
	}
	return ReadPayload(conn, 0)
}
