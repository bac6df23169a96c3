package service

import (
	"fmt"

	"github.com/rcliao/specforge/internal/domain"
)

type AgentService struct {
	storage AgentStorage
}

// NewAgentService installs roster as the registry. A nil roster falls back
// to the four default agents.
func NewAgentService(storage AgentStorage, roster []*domain.Agent) (*AgentService, error) {
	if roster == nil {
		roster = domain.DefaultAgents()
	}
	if err := storage.SeedAgents(roster); err != nil {
		return nil, fmt.Errorf("seed agents: %w", err)
	}
	return &AgentService{storage: storage}, nil
}

func (s *AgentService) List() ([]*domain.Agent, error) {
	return s.storage.ListAgents()
}

// Available returns agents eligible for assignment, in registry order.
func (s *AgentService) Available() ([]*domain.Agent, error) {
	agents, err := s.storage.ListAgents()
	if err != nil {
		return nil, err
	}
	result := make([]*domain.Agent, 0, len(agents))
	for _, a := range agents {
		if a.Availability == domain.AvailabilityAvailable {
			result = append(result, a)
		}
	}
	return result, nil
}
