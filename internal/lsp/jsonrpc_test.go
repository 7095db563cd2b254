package lsp_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gosage/internal/lsp"
)

func frame(body string) string {
	return "Content-Length: " + strconv.Itoa(len(body)) + "\r\n\r\n" + body
}

func TestConnRead(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		input      string
		wantMethod string
		wantReq    bool
		wantErr    bool
		wantCode   int
	}{
		{
			name:       "request",
			input:      frame(`{"jsonrpc":"2.0","id":1,"method":"shutdown"}`),
			wantMethod: "shutdown",
			wantReq:    true,
		},
		{
			name:       "notification with content type",
			input:      "Content-Type: application/vscode-jsonrpc; charset=utf-8\r\n" + frame(`{"jsonrpc":"2.0","method":"exit"}`),
			wantMethod: "exit",
		},
		{
			name:     "malformed body",
			input:    frame(`{"jsonrpc":`),
			wantErr:  true,
			wantCode: lsp.CodeParseError,
		},
		{
			name:    "missing length",
			input:   "Content-Type: x\r\n\r\n{}",
			wantErr: true,
		},
		{
			name:    "truncated body",
			input:   "Content-Length: 50\r\n\r\n{}",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			msg, err := lsp.NewConn(strings.NewReader(tt.input), io.Discard).Read()
			if tt.wantErr {
				require.Error(t, err)
				var rerr *lsp.ResponseError
				if tt.wantCode != 0 {
					require.True(t, errors.As(err, &rerr))
					assert.Equal(t, tt.wantCode, rerr.Code)
				} else {
					assert.False(t, errors.As(err, &rerr))
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantMethod, msg.Method)
			assert.Equal(t, tt.wantReq, msg.IsRequest())
		})
	}
}

func TestConnReadEOF(t *testing.T) {
	t.Parallel()

	conn := lsp.NewConn(strings.NewReader(frame(`{"jsonrpc":"2.0","method":"exit"}`)), io.Discard)
	_, err := conn.Read()
	require.NoError(t, err)
	_, err = conn.Read()
	assert.ErrorIs(t, err, io.EOF)
}

func TestConnWrite(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	conn := lsp.NewConn(strings.NewReader(""), &buf)
	require.NoError(t, conn.Reply(json.RawMessage("7"), nil))
	require.NoError(t, conn.ReplyError(nil, lsp.Errorf(lsp.CodeMethodNotFound, "method not found: %s", "x")))
	require.NoError(t, conn.Notify("window/logMessage", map[string]any{"type": 3, "message": "hi"}))

	reader := lsp.NewConn(&buf, io.Discard)

	msg, err := reader.Read()
	require.NoError(t, err)
	assert.True(t, msg.IsResponse())
	assert.Equal(t, json.RawMessage("7"), msg.ID)
	assert.Equal(t, json.RawMessage("null"), msg.Result)

	msg, err = reader.Read()
	require.NoError(t, err)
	require.NotNil(t, msg.Error)
	assert.Equal(t, lsp.CodeMethodNotFound, msg.Error.Code)
	assert.Equal(t, "method not found: x", msg.Error.Message)

	msg, err = reader.Read()
	require.NoError(t, err)
	assert.Equal(t, "window/logMessage", msg.Method)
	assert.False(t, msg.IsRequest())
}
