package hcl_adapter

import (
	"github.com/hashicorp/hcl/v2"
)

// fileRoot decodes every top-level block a graph file may contain.
type fileRoot struct {
	Metadata    map[string]string  `hcl:"metadata,optional"`
	Settings    []*SettingsBlock   `hcl:"settings,block"`
	Nodes       []*NodeBlock       `hcl:"node,block"`
	Connections []*ConnectionBlock `hcl:"connection,block"`
}

// NodeBlock is a `node "<label>" { ... }` block. The label names the node
// within the file and becomes its display label.
type NodeBlock struct {
	Label      string         `hcl:"label,label"`
	Operation  string         `hcl:"operation"`
	Parameters hcl.Expression `hcl:"parameters,optional"`
	Disabled   *bool          `hcl:"disabled,optional"`
}

// ConnectionBlock links "<node>.<output>" to "<node>.<input>".
type ConnectionBlock struct {
	From string `hcl:"from"`
	To   string `hcl:"to"`
}

// SettingsBlock holds run settings. Every attribute is optional; only the
// ones present override anything.
type SettingsBlock struct {
	MemoryLimit   *string `hcl:"memory_limit,optional"`
	TileSize      *int    `hcl:"tile_size,optional"`
	AutoChunk     *bool   `hcl:"auto_chunk,optional"`
	Parallel      *bool   `hcl:"parallel,optional"`
	UseCache      *bool   `hcl:"use_cache,optional"`
	FailurePolicy *string `hcl:"failure_policy,optional"`
	MaxWorkers    *int    `hcl:"max_workers,optional"`
	SkipDisabled  *bool   `hcl:"skip_disabled,optional"`
	NodeTimeout   *string `hcl:"node_timeout,optional"`
}
