package types

// AgentCard is the capability descriptor published by an agent at its
// well-known discovery path. Immutable once fetched.
type AgentCard struct {
	ProtocolVersion    string             `json:"protocolVersion,omitempty"`
	Name               string             `json:"name"`
	Description        string             `json:"description,omitempty"`
	Version            string             `json:"version"`
	URL                string             `json:"url,omitempty"`
	DefaultInputModes  []string           `json:"defaultInputModes,omitempty"`
	DefaultOutputModes []string           `json:"defaultOutputModes,omitempty"`
	Capabilities       *AgentCapabilities `json:"capabilities,omitempty"`
	Skills             []AgentSkill       `json:"skills,omitempty"`
}

// AgentCapabilities flags optional protocol features.
type AgentCapabilities struct {
	Streaming         bool `json:"streaming,omitempty"`
	PushNotifications bool `json:"pushNotifications,omitempty"`
}

// AgentSkill advertises one thing the agent can do.
type AgentSkill struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Examples    []string `json:"examples,omitempty"`
}
