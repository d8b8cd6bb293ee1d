package game

import "datacorp/internal/catalog"

// Snapshot is the read-only view handed across the render boundary: the full
// resource aggregate plus the catalogs with ownership flags merged in.
type Snapshot struct {
	Resources  Resources           `json:"resources"`
	Tools      []ToolView          `json:"tools"`
	Upgrades   []UpgradeView       `json:"upgrades"`
	Models     []catalog.Model     `json:"models"`
	Connectors []catalog.Connector `json:"connectors"`
	Policies   []PolicyView        `json:"governance_policies"`
}

type ToolView struct {
	catalog.Tool
	Purchased bool `json:"purchased"`
}

type UpgradeView struct {
	catalog.Upgrade
	Purchased bool `json:"purchased"`
}

type PolicyView struct {
	catalog.Policy
	Active bool `json:"active"`
}
