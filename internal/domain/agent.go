package domain

import "time"

type AgentType string

const (
	AgentDeveloper AgentType = "developer"
	AgentDesigner  AgentType = "designer"
	AgentTester    AgentType = "tester"
	AgentReviewer  AgentType = "reviewer"
	AgentArchitect AgentType = "architect"
)

type Availability string

const (
	AvailabilityAvailable Availability = "available"
	AvailabilityBusy      Availability = "busy"
	AvailabilityOffline   Availability = "offline"
)

type Performance struct {
	TasksCompleted int      `json:"tasksCompleted" yaml:"tasks_completed"`
	AverageScore   float64  `json:"averageScore" yaml:"average_score"`
	Specialties    []string `json:"specialties" yaml:"specialties"`
}

type Agent struct {
	ID           string       `json:"id" yaml:"id"`
	Name         string       `json:"name" yaml:"name"`
	Type         AgentType    `json:"type" yaml:"type"`
	Capabilities []string     `json:"capabilities" yaml:"capabilities"`
	Availability Availability `json:"availability" yaml:"availability"`
	Performance  Performance  `json:"performance" yaml:"performance"`
}

func (a *Agent) Clone() *Agent {
	c := *a
	c.Capabilities = append([]string(nil), a.Capabilities...)
	c.Performance.Specialties = append([]string(nil), a.Performance.Specialties...)
	return &c
}

// DefaultAgents returns the seed roster in registry order.
func DefaultAgents() []*Agent {
	return []*Agent{
		{
			ID:           "agent-developer-1",
			Name:         "Full-Stack Developer",
			Type:         AgentDeveloper,
			Capabilities: []string{"api", "backend", "frontend", "database", "authentication", "integration"},
			Availability: AvailabilityAvailable,
			Performance: Performance{
				TasksCompleted: 42,
				AverageScore:   8.7,
				Specialties:    []string{"web development", "REST APIs"},
			},
		},
		{
			ID:           "agent-designer-1",
			Name:         "UX Designer",
			Type:         AgentDesigner,
			Capabilities: []string{"ui", "ux", "interface", "layout", "accessibility", "prototype"},
			Availability: AvailabilityAvailable,
			Performance: Performance{
				TasksCompleted: 18,
				AverageScore:   8.2,
				Specialties:    []string{"user research", "wireframing"},
			},
		},
		{
			ID:           "agent-tester-1",
			Name:         "QA Engineer",
			Type:         AgentTester,
			Capabilities: []string{"test", "performance", "security", "automation", "regression", "load"},
			Availability: AvailabilityAvailable,
			Performance: Performance{
				TasksCompleted: 35,
				AverageScore:   8.9,
				Specialties:    []string{"test automation", "load testing"},
			},
		},
		{
			ID:           "agent-architect-1",
			Name:         "Solutions Architect",
			Type:         AgentArchitect,
			Capabilities: []string{"architecture", "scalability", "infrastructure", "framework", "technology", "review"},
			Availability: AvailabilityAvailable,
			Performance: Performance{
				TasksCompleted: 27,
				AverageScore:   9.1,
				Specialties:    []string{"system design", "cloud infrastructure"},
			},
		},
	}
}

type Assignment struct {
	TaskID     string    `json:"taskId"`
	AgentID    string    `json:"agentId"`
	AgentName  string    `json:"agentName"`
	Confidence float64   `json:"confidence"`
	Reason     string    `json:"reason"`
	AssignedAt time.Time `json:"assignedAt"`
}
