package assistant

import (
	"context"
	"sync"
)

// Role identifies a logical assistant owned by the process. Each role gets at
// most one remote assistant for the lifetime of the coordinator.
type Role string

const (
	RoleVerifier    Role = "verification_agent"
	RoleSearch      Role = "search_tool"
	RoleCredibility Role = "credibility_tool"
)

// Definition is what gets created remotely the first time a role is requested.
type Definition struct {
	Name        string
	Description string
	Tools       []ToolDefinition
}

// Coordinator owns the process-wide assistant ids. Creation is guarded so that
// concurrent first-time requests for the same role create exactly one remote
// assistant; everything downstream takes the coordinator by injection.
type Coordinator struct {
	client Client

	mu  sync.Mutex
	ids map[Role]string
}

func NewCoordinator(client Client) *Coordinator {
	return &Coordinator{client: client, ids: map[Role]string{}}
}

// Client returns the underlying assistant client for thread/message calls.
func (c *Coordinator) Client() Client { return c.client }

// GetOrCreate returns the assistant id for role, creating it remotely on first
// use. The lock is held across the create call so a slow create never races a
// second one for the same role.
func (c *Coordinator) GetOrCreate(ctx context.Context, role Role, def Definition) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id, ok := c.ids[role]; ok {
		return id, nil
	}
	id, err := c.client.CreateAssistant(ctx, def.Name, def.Description, def.Tools)
	if err != nil {
		return "", err
	}
	c.ids[role] = id
	return id, nil
}
