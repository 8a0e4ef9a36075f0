package ipc

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"

	"station/internal/settings"
)

// Client provides RPC access to the daemon.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, err
	}
	rpcClient := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rpcClient}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Get retrieves the current settings, reloading them from disk first.
func (c *Client) Get() (*GetResponse, error) {
	var resp GetResponse
	if err := c.client.Call(serviceName+".Get", GetRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Update merges p into the daemon's settings and saves them.
func (c *Client) Update(p settings.Partial) (*UpdateResponse, error) {
	var resp UpdateResponse
	if err := c.client.Call(serviceName+".Update", UpdateRequest{Settings: p}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Status reports the daemon PID and settings file location.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.client.Call(serviceName+".Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
