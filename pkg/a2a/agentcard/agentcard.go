package agentcard

import (
	"fmt"
	"strings"

	a2av1 "github.com/jllopis/mealmesh/pkg/a2a/types"
)

// Config describes AgentCard fields that can be derived from runtime settings.
type Config struct {
	ProtocolVersion    string
	Name               string
	Description        string
	Version            string
	URL                string
	Capabilities       *a2av1.AgentCapabilities
	DefaultInputModes  []string
	DefaultOutputModes []string
	Skills             []a2av1.AgentSkill
}

// Build assembles an AgentCard from the provided config.
func Build(cfg Config) *a2av1.AgentCard {
	inputModes := cfg.DefaultInputModes
	if len(inputModes) == 0 {
		inputModes = []string{"text/plain"}
	}
	outputModes := cfg.DefaultOutputModes
	if len(outputModes) == 0 {
		outputModes = []string{"text/plain"}
	}
	return &a2av1.AgentCard{
		ProtocolVersion:    cfg.ProtocolVersion,
		Name:               cfg.Name,
		Description:        cfg.Description,
		Version:            cfg.Version,
		URL:                cfg.URL,
		Capabilities:       cfg.Capabilities,
		DefaultInputModes:  inputModes,
		DefaultOutputModes: outputModes,
		Skills:             cfg.Skills,
	}
}

// Validate checks the minimal fields a descriptor must carry to bind a
// connection against it.
func Validate(card *a2av1.AgentCard) error {
	if card == nil {
		return fmt.Errorf("agent card is nil")
	}
	if strings.TrimSpace(card.Name) == "" {
		return fmt.Errorf("agent card has no name")
	}
	if strings.TrimSpace(card.Version) == "" {
		return fmt.Errorf("agent card %q has no version", card.Name)
	}
	for i, skill := range card.Skills {
		if strings.TrimSpace(skill.ID) == "" {
			return fmt.Errorf("agent card %q: skill %d has no id", card.Name, i)
		}
	}
	return nil
}
