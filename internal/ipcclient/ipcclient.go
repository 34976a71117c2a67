// Package ipcclient is the small counterpart to internal/ipcserver: dial
// the socket, send one framed JSON request, read one framed JSON response.
package ipcclient

import (
	"encoding/json"
	"net"
	"time"

	"ugdb/internal/ipcframe"
)

// Client holds an open connection to an ugdb IPC socket.
type Client struct {
	conn net.Conn
}

// Dial connects to the Unix domain socket at path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 3*time.Second)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error { return c.conn.Close() }

// request is the wire shape of every IPC request (spec.md §6).
type request struct {
	Function   string `json:"function"`
	Parameters any    `json:"parameters"`
}

// Call sends one request and decodes the raw response payload into out.
func (c *Client) Call(function string, parameters any, out any) error {
	payload, err := json.Marshal(request{Function: function, Parameters: parameters})
	if err != nil {
		return err
	}
	if err := ipcframe.WriteFrame(c.conn, payload); err != nil {
		return err
	}
	respPayload, err := ipcframe.ReadFrame(c.conn)
	if err != nil {
		return err
	}
	return json.Unmarshal(respPayload, out)
}

// SetBreakpointParams mirrors ipcserver.SetBreakpointParams for callers
// that don't want to import the server package just for the parameter shape.
type SetBreakpointParams struct {
	File string `json:"file"`
	Line int    `json:"line"`
}

// Response is the generic envelope every IPC reply carries: Type is
// "success" or "error".
type Response struct {
	Type    string          `json:"type"`
	Result  json.RawMessage `json:"result,omitempty"`
	Reason  string          `json:"reason,omitempty"`
	Details string          `json:"details,omitempty"`
}

// SetBreakpoint issues a set_breakpoint request and returns the server's
// confirmation message.
func (c *Client) SetBreakpoint(file string, line int) (string, error) {
	var resp Response
	if err := c.Call("set_breakpoint", SetBreakpointParams{File: file, Line: line}, &resp); err != nil {
		return "", err
	}
	if resp.Type != "success" {
		return "", &RequestError{Reason: resp.Reason, Details: resp.Details}
	}
	var msg string
	if err := json.Unmarshal(resp.Result, &msg); err != nil {
		return "", err
	}
	return msg, nil
}

// InstanceInfo issues a get_instance_info request.
func (c *Client) InstanceInfo() (workingDirectory string, err error) {
	var resp Response
	if err := c.Call("get_instance_info", struct{}{}, &resp); err != nil {
		return "", err
	}
	if resp.Type != "success" {
		return "", &RequestError{Reason: resp.Reason, Details: resp.Details}
	}
	var info struct {
		WorkingDirectory string `json:"working_directory"`
	}
	if err := json.Unmarshal(resp.Result, &info); err != nil {
		return "", err
	}
	return info.WorkingDirectory, nil
}

// RequestError reports a server-side "type":"error" response.
type RequestError struct {
	Reason  string
	Details string
}

func (e *RequestError) Error() string {
	if e.Details == "" {
		return e.Reason
	}
	return e.Reason + ": " + e.Details
}
