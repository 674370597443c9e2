package knowledge

import "time"

// EventGraphChanged is published after every successful mutation.
const EventGraphChanged = "graph.changed"

// Graph operations reported in GraphChangedEvent and metrics.
const (
	OpAddEntities  = "add_entities"
	OpAddRelations = "add_relations"
	OpBulkUpload   = "bulk_upload"
	OpClear        = "clear"
	OpSeed         = "seed"
)

type GraphChangedEvent struct {
	Operation string    `json:"operation"`
	Entities  int       `json:"entities"`
	Relations int       `json:"relations"`
	Nodes     int       `json:"nodes"`
	Edges     int       `json:"edges"`
	ChangedAt time.Time `json:"changed_at"`
}
