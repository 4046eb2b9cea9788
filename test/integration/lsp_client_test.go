package integration_test

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// LSPClient talks to a `dtsc serve` process over stdio
type LSPClient struct {
	cmd       *exec.Cmd
	stdin     io.WriteCloser
	reader    *bufio.Reader
	msgID     int
	responses map[int]chan json.RawMessage
	// diagnostics receives every textDocument/publishDiagnostics
	diagnostics chan protocol.PublishDiagnosticsParams
	mu          sync.Mutex
	writeMu     sync.Mutex
	closeOnce   sync.Once
	t           *testing.T
}

var (
	buildOnce sync.Once
	binary    string
	buildErr  error
	buildOut  []byte
)

// serverBinary builds cmd/dtsc once per test run
func serverBinary(t *testing.T) string {
	t.Helper()
	buildOnce.Do(func() {
		cwd, err := os.Getwd()
		if err != nil {
			buildErr = err
			return
		}
		dir, err := os.MkdirTemp("", "dtsc-integration")
		if err != nil {
			buildErr = err
			return
		}
		binary = filepath.Join(dir, "dtsc")
		cmd := exec.Command("go", "build", "-o", binary, "./cmd/dtsc")
		cmd.Dir = filepath.Join(cwd, "..", "..")
		buildOut, buildErr = cmd.CombinedOutput()
	})
	require.NoError(t, buildErr, "failed to build server: %s", string(buildOut))
	return binary
}

// NewLSPClient starts `dtsc serve` in workspace, which is also the
// directory its config is read from
func NewLSPClient(t *testing.T, workspace string) *LSPClient {
	t.Helper()

	serverCmd := exec.Command(serverBinary(t), "serve", "--log-level", "debug")
	serverCmd.Dir = workspace
	stdin, err := serverCmd.StdinPipe()
	require.NoError(t, err)
	stdout, err := serverCmd.StdoutPipe()
	require.NoError(t, err)
	stderr, err := serverCmd.StderrPipe()
	require.NoError(t, err)
	require.NoError(t, serverCmd.Start())

	go func() {
		scanner := bufio.NewScanner(stderr)
		for scanner.Scan() {
			t.Logf("[SERVER] %s", scanner.Text())
		}
	}()

	client := &LSPClient{
		cmd:         serverCmd,
		stdin:       stdin,
		reader:      bufio.NewReader(stdout),
		responses:   make(map[int]chan json.RawMessage),
		diagnostics: make(chan protocol.PublishDiagnosticsParams, 64),
		t:           t,
	}
	go client.readMessages()
	t.Cleanup(client.Close)
	return client
}

// Close shuts the server down and waits for it to exit
func (c *LSPClient) Close() {
	c.closeOnce.Do(func() {
		c.Shutdown()
		_ = c.stdin.Close()
		_ = c.cmd.Wait()
	})
}

func (c *LSPClient) sendRequest(method string, params any) int {
	c.mu.Lock()
	c.msgID++
	id := c.msgID
	c.responses[id] = make(chan json.RawMessage, 1)
	c.mu.Unlock()

	c.sendMessage(map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"method":  method,
		"params":  params,
	})
	return id
}

func (c *LSPClient) sendNotification(method string, params any) {
	c.sendMessage(map[string]any{
		"jsonrpc": "2.0",
		"method":  method,
		"params":  params,
	})
}

func (c *LSPClient) sendMessage(msg any) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.t.Errorf("marshaling message: %v", err)
		return
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if _, err := fmt.Fprintf(c.stdin, "Content-Length: %d\r\n\r\n%s", len(data), data); err != nil {
		c.t.Logf("write failed: %v", err)
	}
}

func (c *LSPClient) waitForResponse(id int, timeout time.Duration) (json.RawMessage, error) {
	c.mu.Lock()
	ch, ok := c.responses[id]
	c.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("no response channel for message ID %d", id)
	}

	select {
	case response := <-ch:
		return response, nil
	case <-time.After(timeout):
		return nil, fmt.Errorf("timeout waiting for response to message %d", id)
	}
}

// readMessages routes responses to their requests and diagnostics to the
// diagnostics channel. Server requests are answered with null.
func (c *LSPClient) readMessages() {
	for {
		line, err := c.reader.ReadString('\n')
		if err != nil {
			return
		}
		var contentLength int
		if _, err := fmt.Sscanf(line, "Content-Length: %d", &contentLength); err != nil {
			continue
		}
		if _, err := c.reader.ReadString('\n'); err != nil {
			return
		}
		content := make([]byte, contentLength)
		if _, err := io.ReadFull(c.reader, content); err != nil {
			return
		}

		var message struct {
			ID     *int            `json:"id"`
			Method *string         `json:"method"`
			Params json.RawMessage `json:"params"`
			Result json.RawMessage `json:"result"`
			Error  json.RawMessage `json:"error"`
		}
		if err := json.Unmarshal(content, &message); err != nil {
			continue
		}

		if message.Method != nil {
			switch {
			case message.ID != nil:
				id := *message.ID
				go c.sendMessage(map[string]any{"jsonrpc": "2.0", "id": id, "result": nil})
			case *message.Method == protocol.ServerTextDocumentPublishDiagnostics:
				var params protocol.PublishDiagnosticsParams
				if err := json.Unmarshal(message.Params, &params); err == nil {
					c.diagnostics <- params
				}
			}
			continue
		}

		if message.ID != nil {
			c.mu.Lock()
			if ch, ok := c.responses[*message.ID]; ok {
				if message.Error != nil {
					ch <- message.Error
				} else {
					ch <- message.Result
				}
			}
			c.mu.Unlock()
		}
	}
}

// Initialize performs the initialize handshake
func (c *LSPClient) Initialize(rootURI string) (protocol.InitializeResult, error) {
	var result protocol.InitializeResult
	id := c.sendRequest("initialize", map[string]any{
		"rootUri":      rootURI,
		"capabilities": map[string]any{},
	})
	response, err := c.waitForResponse(id, 5*time.Second)
	if err != nil {
		return result, err
	}
	if err := json.Unmarshal(response, &result); err != nil {
		return result, err
	}
	c.sendNotification("initialized", map[string]any{})
	return result, nil
}

// Shutdown sends shutdown and exit
func (c *LSPClient) Shutdown() {
	id := c.sendRequest("shutdown", nil)
	_, _ = c.waitForResponse(id, 2*time.Second)
	c.sendNotification("exit", nil)
}

func (c *LSPClient) DidOpen(uri, text string) {
	c.sendNotification("textDocument/didOpen", map[string]any{
		"textDocument": map[string]any{
			"uri":        uri,
			"languageId": "scss",
			"version":    1,
			"text":       text,
		},
	})
}

func (c *LSPClient) DidChange(uri string, version int, text string) {
	c.sendNotification("textDocument/didChange", map[string]any{
		"textDocument":   map[string]any{"uri": uri, "version": version},
		"contentChanges": []map[string]any{{"text": text}},
	})
}

func (c *LSPClient) DidChangeWatchedFiles(uris ...string) {
	changes := make([]map[string]any, len(uris))
	for i, uri := range uris {
		changes[i] = map[string]any{"uri": uri, "type": protocol.FileChangeTypeChanged}
	}
	c.sendNotification("workspace/didChangeWatchedFiles", map[string]any{"changes": changes})
}

// DocumentColor requests the colours of a document
func (c *LSPClient) DocumentColor(uri string) ([]protocol.ColorInformation, error) {
	id := c.sendRequest("textDocument/documentColor", map[string]any{
		"textDocument": map[string]any{"uri": uri},
	})
	response, err := c.waitForResponse(id, 2*time.Second)
	if err != nil {
		return nil, err
	}
	var colors []protocol.ColorInformation
	if err := json.Unmarshal(response, &colors); err != nil {
		return nil, err
	}
	return colors, nil
}

// WaitForDiagnostics returns the next diagnostics published for uri
func (c *LSPClient) WaitForDiagnostics(uri string, timeout time.Duration) (protocol.PublishDiagnosticsParams, error) {
	deadline := time.After(timeout)
	for {
		select {
		case params := <-c.diagnostics:
			if params.URI == uri {
				return params, nil
			}
		case <-deadline:
			return protocol.PublishDiagnosticsParams{}, fmt.Errorf("timeout waiting for diagnostics for %s", uri)
		}
	}
}
