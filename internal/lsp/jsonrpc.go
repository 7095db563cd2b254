package lsp

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
)

// JSON-RPC and protocol error codes.
const (
	CodeParseError           = -32700
	CodeInvalidRequest       = -32600
	CodeMethodNotFound       = -32601
	CodeInvalidParams        = -32602
	CodeInternalError        = -32603
	CodeServerNotInitialized = -32002
)

// maxContentLength bounds a single message body.
const maxContentLength = 64 << 20

// Message is a JSON-RPC 2.0 request, response or notification.
type Message struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *ResponseError  `json:"error,omitempty"`
}

// IsRequest reports whether the message expects a response.
func (m *Message) IsRequest() bool {
	return m.Method != "" && len(m.ID) > 0 && string(m.ID) != "null"
}

// IsResponse reports whether the message answers a request.
func (m *Message) IsResponse() bool {
	return m.Method == "" && len(m.ID) > 0
}

// ResponseError is a JSON-RPC 2.0 error object.
type ResponseError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("jsonrpc error %d: %s", e.Code, e.Message)
}

// Errorf builds a ResponseError.
func Errorf(code int, format string, args ...any) *ResponseError {
	return &ResponseError{Code: code, Message: fmt.Sprintf(format, args...)}
}

type resultResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result"`
}

type errorResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Error   *ResponseError  `json:"error"`
}

type notification struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Method  string          `json:"method"`
	Params  any             `json:"params,omitempty"`
}

// Conn reads and writes Content-Length framed JSON-RPC messages. Writes
// are serialized, so replies and notifications from different goroutines
// never interleave.
type Conn struct {
	reader *bufio.Reader
	w      io.Writer
	mu     sync.Mutex
}

// NewConn creates a connection reading from r and writing to w.
func NewConn(r io.Reader, w io.Writer) *Conn {
	return &Conn{reader: bufio.NewReaderSize(r, 64*1024), w: w}
}

// Read reads one message. It returns io.EOF when the stream ends between
// messages.
func (c *Conn) Read() (*Message, error) {
	body, err := c.readFrame()
	if err != nil {
		return nil, err
	}
	var msg Message
	if err := json.Unmarshal(body, &msg); err != nil {
		return nil, &ResponseError{Code: CodeParseError, Message: err.Error()}
	}
	return &msg, nil
}

// Reply answers the request with the given id. A nil result is sent as
// JSON null.
func (c *Conn) Reply(id json.RawMessage, result any) error {
	return c.write(resultResponse{JSONRPC: "2.0", ID: id, Result: result})
}

// ReplyError answers the request with the given id with an error.
func (c *Conn) ReplyError(id json.RawMessage, rerr *ResponseError) error {
	if len(id) == 0 {
		id = json.RawMessage("null")
	}
	return c.write(errorResponse{JSONRPC: "2.0", ID: id, Error: rerr})
}

// Notify sends a notification.
func (c *Conn) Notify(method string, params any) error {
	return c.write(notification{JSONRPC: "2.0", Method: method, Params: params})
}

// Call sends a request without waiting for its response.
func (c *Conn) Call(id int, method string, params any) error {
	return c.write(request{JSONRPC: "2.0", ID: json.RawMessage(strconv.Itoa(id)), Method: method, Params: params})
}

func (c *Conn) write(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := fmt.Fprintf(c.w, "Content-Length: %d\r\n\r\n", len(data)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if _, err := c.w.Write(data); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	return nil
}

func (c *Conn) readFrame() ([]byte, error) {
	contentLength := -1
	first := true
	for {
		line, err := c.reader.ReadString('\n')
		if err != nil {
			if first && errors.Is(err, io.EOF) && line == "" {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("read header: %w", err)
		}
		first = false
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		key, val, ok := strings.Cut(line, ":")
		if !ok || !strings.EqualFold(strings.TrimSpace(key), "Content-Length") {
			// Content-Type and unknown headers are ignored.
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil || n < 0 || n > maxContentLength {
			return nil, fmt.Errorf("invalid Content-Length %q", strings.TrimSpace(val))
		}
		contentLength = n
	}

	if contentLength < 0 {
		return nil, errors.New("missing Content-Length header")
	}

	body := make([]byte, contentLength)
	if _, err := io.ReadFull(c.reader, body); err != nil {
		return nil, fmt.Errorf("read body (%d bytes): %w", contentLength, err)
	}
	return body, nil
}
