package ipc

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
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
		_ = c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Ping checks that the daemon is reachable.
func (c *Client) Ping() (*PingResponse, error) {
	var resp PingResponse
	if err := c.client.Call("Bricsview.Ping", PingRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Status retrieves daemon and display status.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.client.Call("Bricsview.Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Sessions lists every browsable session in the library.
func (c *Client) Sessions() (*SessionsResponse, error) {
	var resp SessionsResponse
	if err := c.client.Call("Bricsview.Sessions", SessionsRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Sequences lists sequences for one capture date.
func (c *Client) Sequences(date string) (*SequencesResponse, error) {
	var resp SequencesResponse
	if err := c.client.Call("Bricsview.Sequences", SequencesRequest{Date: date}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Select switches the displayed session.
func (c *Client) Select(date, sequence string) (*SelectResponse, error) {
	var resp SelectResponse
	req := SelectRequest{Date: date, Sequence: sequence}
	if err := c.client.Call("Bricsview.Select", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Refresh forces a library rescan.
func (c *Client) Refresh() (*RefreshResponse, error) {
	var resp RefreshResponse
	if err := c.client.Call("Bricsview.Refresh", RefreshRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// LogTail returns log lines from the daemon.
func (c *Client) LogTail(req LogTailRequest) (*LogTailResponse, error) {
	var resp LogTailResponse
	if err := c.client.Call("Bricsview.LogTail", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Stop shuts the daemon down.
func (c *Client) Stop() (*StopResponse, error) {
	var resp StopResponse
	if err := c.client.Call("Bricsview.Stop", StopRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
