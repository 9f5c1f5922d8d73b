package common

// VisualizationNode is a node of the read-side projection used by graph
// front-ends.
type VisualizationNode struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Group string `json:"group"`
	Color string `json:"color"`
	Title string `json:"title"`
}

// EdgeColor carries the opacity of an edge, which mirrors its confidence.
type EdgeColor struct {
	Opacity float64 `json:"opacity"`
}

// VisualizationEdge is a relationship of the read-side projection.
type VisualizationEdge struct {
	From  string    `json:"from"`
	To    string    `json:"to"`
	Label string    `json:"label"`
	Title string    `json:"title"`
	Width float64   `json:"width"`
	Color EdgeColor `json:"color"`
}

type Visualization struct {
	Nodes []VisualizationNode `json:"nodes"`
	Edges []VisualizationEdge `json:"edges"`
}

// Insights summarizes the graph stored for one session.
type Insights struct {
	TotalEntities       int            `json:"total_entities"`
	TotalRelationships  int            `json:"total_relationships"`
	TotalEvents         int            `json:"total_events"`
	MostConnectedEntity string         `json:"most_connected_entity,omitempty"`
	EntityTypes         map[string]int `json:"entity_types"`
	AvgConfidence       float64        `json:"avg_confidence"`
}

// SimilarEntity is a similarity search hit.
type SimilarEntity struct {
	Name     string     `json:"name"`
	Type     EntityType `json:"type"`
	Distance float64    `json:"distance"`
}
