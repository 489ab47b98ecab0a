package server

import (
	"encoding/json"
	"net/http"

	a2av1 "github.com/jllopis/mealmesh/pkg/a2a/types"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// JSONRPCServer exposes the JSON-RPC binding for A2A handlers.
type JSONRPCServer struct {
	Handler Handler
}

// NewJSONRPC creates a new JSON-RPC server wrapper.
func NewJSONRPC(handler Handler) *JSONRPCServer {
	return &JSONRPCServer{Handler: handler}
}

// ServeHTTP handles JSON-RPC 2.0 requests.
func (s *JSONRPCServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if s.Handler == nil {
		writeError(w, nil, rpcError{Code: -32001, Message: "handler not configured"})
		return
	}
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, nil, rpcError{Code: -32700, Message: "invalid json"})
		return
	}
	if req.JSONRPC != "2.0" || req.Method == "" {
		writeError(w, req.ID, rpcError{Code: -32600, Message: "invalid request"})
		return
	}
	switch req.Method {
	case "SendMessage":
		s.handleSendMessage(w, r, req)
	case "GetTask":
		s.handleGetTask(w, r, req)
	case "CancelTask":
		s.handleCancelTask(w, r, req)
	default:
		writeError(w, req.ID, rpcError{Code: -32601, Message: "method not found"})
	}
}

func (s *JSONRPCServer) handleSendMessage(w http.ResponseWriter, r *http.Request, req rpcRequest) {
	payload := &a2av1.SendMessageRequest{}
	if err := decodeParams(req.Params, payload); err != nil {
		writeError(w, req.ID, rpcError{Code: -32602, Message: err.Error()})
		return
	}
	resp, err := s.Handler.SendMessage(r.Context(), payload)
	if err != nil {
		writeRPCError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, resp)
}

func (s *JSONRPCServer) handleGetTask(w http.ResponseWriter, r *http.Request, req rpcRequest) {
	payload := &a2av1.GetTaskRequest{}
	if err := decodeParams(req.Params, payload); err != nil {
		writeError(w, req.ID, rpcError{Code: -32602, Message: err.Error()})
		return
	}
	resp, err := s.Handler.GetTask(r.Context(), payload)
	if err != nil {
		writeRPCError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, resp)
}

func (s *JSONRPCServer) handleCancelTask(w http.ResponseWriter, r *http.Request, req rpcRequest) {
	payload := &a2av1.CancelTaskRequest{}
	if err := decodeParams(req.Params, payload); err != nil {
		writeError(w, req.ID, rpcError{Code: -32602, Message: err.Error()})
		return
	}
	resp, err := s.Handler.CancelTask(r.Context(), payload)
	if err != nil {
		writeRPCError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, resp)
}

func decodeParams(params json.RawMessage, target any) error {
	if len(params) == 0 {
		return nil
	}
	return json.Unmarshal(params, target)
}

func writeResult(w http.ResponseWriter, id any, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		writeRPCError(w, id, status.Error(codes.Internal, err.Error()))
		return
	}
	writeJSON(w, rpcResponse{
		JSONRPC: "2.0",
		ID:      id,
		Result:  json.RawMessage(raw),
	})
}

func writeRPCError(w http.ResponseWriter, id any, err error) {
	st, ok := status.FromError(err)
	if !ok {
		writeError(w, id, rpcError{Code: -32000, Message: err.Error()})
		return
	}
	code := -32000
	switch st.Code() {
	case codes.InvalidArgument:
		code = -32602
	case codes.NotFound:
		code = -32004
	case codes.Unauthenticated:
		code = -32001
	case codes.PermissionDenied:
		code = -32003
	case codes.Unimplemented:
		code = -32601
	}
	writeError(w, id, rpcError{Code: code, Message: st.Message()})
}

func writeError(w http.ResponseWriter, id any, err rpcError) {
	writeJSON(w, rpcResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &err,
	})
}

func writeJSON(w http.ResponseWriter, payload rpcResponse) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

type rpcResponse struct {
	JSONRPC string    `json:"jsonrpc"`
	ID      any       `json:"id,omitempty"`
	Result  any       `json:"result,omitempty"`
	Error   *rpcError `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
