package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	a2av1 "github.com/jllopis/mealmesh/pkg/a2a/types"
)

type echoExecutor struct {
	fail bool
}

func (e *echoExecutor) Run(ctx context.Context, message *a2av1.Message) (any, []*a2av1.Artifact, error) {
	if e.fail {
		return nil, nil, fmt.Errorf("executor exploded")
	}
	return "echo: " + message.TextContent(), nil, nil
}

func newHandler(exec Executor) *SimpleHandler {
	return &SimpleHandler{
		Store: NewMemoryTaskStore(),
		Exec:  exec,
		Card:  &a2av1.AgentCard{Name: "echo", Version: "0.1.0"},
	}
}

func TestSendMessageCompletesTask(t *testing.T) {
	h := newHandler(&echoExecutor{})
	req := &a2av1.SendMessageRequest{
		Request: a2av1.NewTextMessage(a2av1.RoleUser, "hello", "", ""),
	}
	task, err := h.SendMessage(context.Background(), req)
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if task.Status == nil || task.Status.State != a2av1.TaskStateCompleted {
		t.Fatalf("expected completed task, got %+v", task.Status)
	}
	if got := task.Status.Message.TextContent(); got != "echo: hello" {
		t.Errorf("expected echoed text, got %q", got)
	}
}

func TestSendMessageExecutorFailureYieldsFailedTask(t *testing.T) {
	h := newHandler(&echoExecutor{fail: true})
	req := &a2av1.SendMessageRequest{
		Request: a2av1.NewTextMessage(a2av1.RoleUser, "hello", "", ""),
	}
	task, err := h.SendMessage(context.Background(), req)
	if err != nil {
		t.Fatalf("executor failure must not surface as an RPC error: %v", err)
	}
	if task.Status == nil || task.Status.State != a2av1.TaskStateFailed {
		t.Fatalf("expected failed task, got %+v", task.Status)
	}
	if !strings.Contains(task.Status.Message.TextContent(), "executor exploded") {
		t.Errorf("failed status should carry the cause")
	}
}

type flakyStore struct {
	TaskStore
}

func (s *flakyStore) UpdateStatus(ctx context.Context, taskID string, status *a2av1.TaskStatus) error {
	return fmt.Errorf("disk full")
}

func TestSendMessagePersistenceFailureIsLogged(t *testing.T) {
	var buf bytes.Buffer
	h := &SimpleHandler{
		Store:  &flakyStore{TaskStore: NewMemoryTaskStore()},
		Exec:   &echoExecutor{},
		Card:   &a2av1.AgentCard{Name: "echo", Version: "0.1.0"},
		Logger: slog.New(slog.NewTextHandler(&buf, nil)),
	}
	task, err := h.SendMessage(context.Background(), &a2av1.SendMessageRequest{
		Request: a2av1.NewTextMessage(a2av1.RoleUser, "hello", "", ""),
	})
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	// Caller still sees the completed in-memory task.
	if task.Status == nil || task.Status.State != a2av1.TaskStateCompleted {
		t.Fatalf("expected completed task, got %+v", task.Status)
	}
	if !strings.Contains(buf.String(), "failed to persist task") {
		t.Errorf("store failure must be logged, got: %s", buf.String())
	}
	if !strings.Contains(buf.String(), "disk full") {
		t.Errorf("log should carry the cause, got: %s", buf.String())
	}
}

func TestSendMessageRejectsEmptyMessage(t *testing.T) {
	h := newHandler(&echoExecutor{})
	if _, err := h.SendMessage(context.Background(), &a2av1.SendMessageRequest{}); err == nil {
		t.Fatalf("expected validation error for missing message")
	}
}

func TestGetTaskRoundTrip(t *testing.T) {
	h := newHandler(&echoExecutor{})
	task, err := h.SendMessage(context.Background(), &a2av1.SendMessageRequest{
		Request: a2av1.NewTextMessage(a2av1.RoleUser, "hi", "", ""),
	})
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	got, err := h.GetTask(context.Background(), &a2av1.GetTaskRequest{Name: TaskName(task.ID)})
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	if got.ID != task.ID {
		t.Errorf("expected task %q, got %q", task.ID, got.ID)
	}
}

func TestJSONRPCSendMessage(t *testing.T) {
	h := newHandler(&echoExecutor{})
	ts := httptest.NewServer(NewJSONRPC(h))
	defer ts.Close()

	body := `{"jsonrpc":"2.0","id":"1","method":"SendMessage","params":{"request":{"messageId":"m-1","role":"user","parts":[{"kind":"text","text":"ping"}]}}}`
	resp, err := http.Post(ts.URL, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post failed: %v", err)
	}
	defer resp.Body.Close()

	var decoded struct {
		Result a2av1.Task `json:"result"`
		Error  *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if decoded.Error != nil {
		t.Fatalf("unexpected rpc error: %+v", decoded.Error)
	}
	if decoded.Result.Status == nil || decoded.Result.Status.State != a2av1.TaskStateCompleted {
		t.Fatalf("expected completed task, got %+v", decoded.Result.Status)
	}
	if got := decoded.Result.Status.Message.TextContent(); got != "echo: ping" {
		t.Errorf("expected echoed text, got %q", got)
	}
}

func TestJSONRPCRejectsLegacyPartDiscriminator(t *testing.T) {
	h := newHandler(&echoExecutor{})
	ts := httptest.NewServer(NewJSONRPC(h))
	defer ts.Close()

	body := `{"jsonrpc":"2.0","id":"1","method":"SendMessage","params":{"request":{"messageId":"m-1","role":"user","parts":[{"type":"text","text":"ping"}]}}}`
	resp, err := http.Post(ts.URL, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post failed: %v", err)
	}
	defer resp.Body.Close()

	var decoded struct {
		Error *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if decoded.Error == nil {
		t.Fatalf("expected rpc error for legacy discriminator")
	}
	if decoded.Error.Code != -32602 {
		t.Errorf("expected invalid params code, got %d", decoded.Error.Code)
	}
}

func TestJSONRPCUnknownMethod(t *testing.T) {
	ts := httptest.NewServer(NewJSONRPC(newHandler(&echoExecutor{})))
	defer ts.Close()

	body := `{"jsonrpc":"2.0","id":"1","method":"Nope","params":{}}`
	resp, err := http.Post(ts.URL, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post failed: %v", err)
	}
	defer resp.Body.Close()

	var decoded struct {
		Error *struct {
			Code int `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if decoded.Error == nil || decoded.Error.Code != -32601 {
		t.Fatalf("expected method-not-found, got %+v", decoded.Error)
	}
}

func TestParseTaskName(t *testing.T) {
	id, err := ParseTaskName("tasks/abc")
	if err != nil || id != "abc" {
		t.Errorf("expected abc, got %q err=%v", id, err)
	}
	if _, err := ParseTaskName(""); err == nil {
		t.Errorf("expected error for empty name")
	}
	if _, err := ParseTaskName("tasks/a/b"); err == nil {
		t.Errorf("expected error for nested name")
	}
}
