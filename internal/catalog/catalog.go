// Package catalog holds the static content tables of the game: the tools,
// upgrades, models, connectors and governance policies a player can buy.
// Entries are immutable once loaded; ownership flags (purchased/active) live
// in the game session, not here.
package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	ToolTypeQuality    = "quality"
	ToolTypeCleaning   = "cleaning"
	ToolTypeAutomation = "automation"
)

type Tool struct {
	Name   string  `json:"name" yaml:"name"`
	Type   string  `json:"type" yaml:"type"`
	Cost   float64 `json:"cost" yaml:"cost"`
	Effect float64 `json:"effect" yaml:"effect"`
}

type Upgrade struct {
	Name   string  `json:"name" yaml:"name"`
	Cost   float64 `json:"cost" yaml:"cost"`
	Effect float64 `json:"effect" yaml:"effect"`
}

// Model costs are denominated in clean data; models are repeatable purchases.
type Model struct {
	Name   string  `json:"name" yaml:"name"`
	Cost   float64 `json:"cost" yaml:"cost"`
	Effect float64 `json:"effect" yaml:"effect"`
}

// Connector costs are denominated in raw data; connectors are repeatable.
type Connector struct {
	Name       string  `json:"name" yaml:"name"`
	Cost       float64 `json:"cost" yaml:"cost"`
	Throughput float64 `json:"throughput" yaml:"throughput"`
}

type Policy struct {
	ID              string  `json:"id" yaml:"id"`
	Name            string  `json:"name" yaml:"name"`
	Description     string  `json:"description" yaml:"description"`
	Cost            float64 `json:"cost" yaml:"cost"`
	MonthlyFee      float64 `json:"monthly_fee" yaml:"monthly_fee"`
	ReputationBonus float64 `json:"reputation_bonus" yaml:"reputation_bonus"`
	RiskReduction   float64 `json:"risk_reduction" yaml:"risk_reduction"`
}

type Set struct {
	Tools      []Tool      `json:"tools" yaml:"tools"`
	Upgrades   []Upgrade   `json:"upgrades" yaml:"upgrades"`
	Models     []Model     `json:"models" yaml:"models"`
	Connectors []Connector `json:"connectors" yaml:"connectors"`
	Policies   []Policy    `json:"governance_policies" yaml:"governance_policies"`
}

// Defaults returns the built-in content tables.
func Defaults() Set {
	return Set{
		Tools: []Tool{
			{Name: "Great Expectations", Type: ToolTypeQuality, Cost: 500, Effect: 0.2},
			{Name: "DBT Cloud", Type: ToolTypeCleaning, Cost: 1000, Effect: 2},
			{Name: "Airflow", Type: ToolTypeAutomation, Cost: 2000, Effect: 0.5},
			{Name: "Fivetran", Type: ToolTypeCleaning, Cost: 3000, Effect: 5},
			{Name: "Monte Carlo", Type: ToolTypeQuality, Cost: 5000, Effect: 0.3},
		},
		Upgrades: []Upgrade{
			{Name: "Excel", Cost: 100, Effect: 1},
			{Name: "HubSpot", Cost: 500, Effect: 5},
			{Name: "Google Analytics", Cost: 2000, Effect: 20},
			{Name: "SalesForce", Cost: 10000, Effect: 100},
		},
		Models: []Model{
			{Name: "Linear Regression", Cost: 50, Effect: 1},
			{Name: "Mini Rocket", Cost: 200, Effect: 5},
			{Name: "Keras", Cost: 1000, Effect: 25},
			{Name: "PyCaret", Cost: 5000, Effect: 100},
		},
		Connectors: []Connector{
			{Name: "API Rest", Cost: 100, Throughput: 1},
			{Name: "Mage", Cost: 500, Throughput: 5},
			{Name: "Firebase", Cost: 2000, Throughput: 25},
			{Name: "ClickHouse", Cost: 10000, Throughput: 100},
		},
		Policies: []Policy{
			{ID: "gdpr", Name: "GDPR Compliance", Description: "Compliance with European laws", Cost: 5000, MonthlyFee: 1000, ReputationBonus: 10, RiskReduction: 0.3},
			{ID: "rbac", Name: "RBAC Advanced", Description: "Fine access management", Cost: 2000, MonthlyFee: 500, ReputationBonus: 5, RiskReduction: 0.2},
			{ID: "audit", Name: "Audit Trail", Description: "Lineage & Data Catalog", Cost: 3000, MonthlyFee: 750, ReputationBonus: 7, RiskReduction: 0.25},
		},
	}
}

// Load reads a full catalog set from a YAML file. The file replaces the
// built-in tables wholesale, so a rebalanced catalog must list every section.
func Load(path string) (Set, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Set{}, fmt.Errorf("read catalog: %w", err)
	}
	var set Set
	if err := yaml.Unmarshal(raw, &set); err != nil {
		return Set{}, fmt.Errorf("parse catalog: %w", err)
	}
	if err := set.Validate(); err != nil {
		return Set{}, err
	}
	return set, nil
}

func (s Set) Validate() error {
	if len(s.Tools) == 0 || len(s.Upgrades) == 0 || len(s.Models) == 0 || len(s.Connectors) == 0 || len(s.Policies) == 0 {
		return fmt.Errorf("catalog: every section must have at least one entry")
	}
	for i, t := range s.Tools {
		switch t.Type {
		case ToolTypeQuality, ToolTypeCleaning, ToolTypeAutomation:
		default:
			return fmt.Errorf("catalog: tool %d (%s) has unknown type %q", i, t.Name, t.Type)
		}
		if t.Cost < 0 {
			return fmt.Errorf("catalog: tool %d (%s) has negative cost", i, t.Name)
		}
	}
	for i, u := range s.Upgrades {
		if u.Cost < 0 {
			return fmt.Errorf("catalog: upgrade %d (%s) has negative cost", i, u.Name)
		}
	}
	for i, m := range s.Models {
		if m.Cost <= 0 {
			return fmt.Errorf("catalog: model %d (%s) must cost clean data", i, m.Name)
		}
	}
	for i, c := range s.Connectors {
		if c.Cost <= 0 || c.Throughput <= 0 {
			return fmt.Errorf("catalog: connector %d (%s) needs positive cost and throughput", i, c.Name)
		}
	}
	seen := make(map[string]struct{}, len(s.Policies))
	for i, p := range s.Policies {
		if p.ID == "" {
			return fmt.Errorf("catalog: policy %d (%s) missing id", i, p.Name)
		}
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("catalog: duplicate policy id %q", p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}

// Policy returns the policy with the given id, or false when absent.
func (s Set) Policy(id string) (Policy, bool) {
	for _, p := range s.Policies {
		if p.ID == id {
			return p, true
		}
	}
	return Policy{}, false
}
