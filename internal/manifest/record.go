// Package manifest tracks resources created in the workspace and cleans
// them up: a ledger of records plus a gateway that dispatches per-type
// remote deletion.
package manifest

import "time"

// Type is the closed enumeration of tracked resource kinds.
type Type string

const (
	TypeDashboard            Type = "dashboard"
	TypeJob                  Type = "job"
	TypePipeline             Type = "pipeline"
	TypeGenieSpace           Type = "genie_space"
	TypeKnowledgeAssistant   Type = "knowledge_assistant"
	TypeMultiAgentSupervisor Type = "multi_agent_supervisor"
	TypeCatalog              Type = "catalog"
	TypeSchema               Type = "schema"
	TypeVolume               Type = "volume"
)

// Types lists every known resource type, in display order.
var Types = []Type{
	TypeDashboard,
	TypeJob,
	TypePipeline,
	TypeGenieSpace,
	TypeKnowledgeAssistant,
	TypeMultiAgentSupervisor,
	TypeCatalog,
	TypeSchema,
	TypeVolume,
}

// KnownType reports whether t names a tracked resource type.
func KnownType(t Type) bool {
	for _, known := range Types {
		if t == known {
			return true
		}
	}
	return false
}

// Record is one tracked resource. Catalogs, schemas, and volumes use their
// fully qualified name as the ID.
type Record struct {
	Type      Type      `json:"type"`
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	URL       string    `json:"url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
