package types

// GetTaskRequest is the params payload for the GetTask method. Name is the
// task resource name, "tasks/{id}".
type GetTaskRequest struct {
	Name          string `json:"name"`
	HistoryLength int32  `json:"historyLength,omitempty"`
}

// CancelTaskRequest is the params payload for the CancelTask method.
type CancelTaskRequest struct {
	Name string `json:"name"`
}
