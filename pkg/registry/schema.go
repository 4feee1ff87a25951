// pkg/registry/schema.go
package registry

// Graph nodes an activity can be bound to.
var GraphNodes = []string{"parse", "source", "score", "gap", "path"}

// ActivityRegistry is the catalogue of career agents exposed as Zeebe
// service tasks.
type ActivityRegistry struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	Activities  []Activity `json:"activities"`
}

// Activity describes one service task: its Zeebe task type, the graph node
// it implements and the variable contract of its jobs.
type Activity struct {
	ID                   string                 `json:"id"`
	DisplayName          string                 `json:"displayName"`
	Description          string                 `json:"description"`
	Category             string                 `json:"category"`
	Version              string                 `json:"version"`
	TaskType             string                 `json:"taskType"`
	Node                 string                 `json:"node,omitempty"`
	ImplementationStatus string                 `json:"implementationStatus"`
	InputSchema          map[string]interface{} `json:"inputSchema"`
	OutputSchema         map[string]interface{} `json:"outputSchema"`
	Cache                *CachePolicy           `json:"cache,omitempty"`
	ErrorCodes           []string               `json:"errorCodes"`
	Timeout              string                 `json:"timeout"`
	Retries              int                    `json:"retries"`
	Processes            []string               `json:"processes"`
	Tags                 []string               `json:"tags"`
}

// CachePolicy documents the Redis namespace an activity reads and writes.
type CachePolicy struct {
	Namespace string `json:"namespace"`
	TTL       string `json:"ttl"`
}
