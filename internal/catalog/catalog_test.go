package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultsValidate(t *testing.T) {
	if err := Defaults().Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestPolicyLookup(t *testing.T) {
	set := Defaults()
	p, ok := set.Policy("gdpr")
	if !ok || p.Cost != 5000 {
		t.Fatalf("gdpr lookup ok=%v cost=%v", ok, p.Cost)
	}
	if _, ok := set.Policy("nope"); ok {
		t.Fatalf("unknown policy must miss")
	}
}

func TestLoadYAML(t *testing.T) {
	raw := `
tools:
  - name: Lint Bot
    type: quality
    cost: 250
    effect: 0.1
upgrades:
  - name: Notebook
    cost: 50
    effect: 1
models:
  - name: Tiny Net
    cost: 25
    effect: 1
connectors:
  - name: CSV Drop
    cost: 80
    throughput: 1
governance_policies:
  - id: soc2
    name: SOC 2
    cost: 1500
    monthly_fee: 300
`
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	set, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(set.Tools) != 1 || set.Tools[0].Name != "Lint Bot" {
		t.Fatalf("tools=%v", set.Tools)
	}
	if p, ok := set.Policy("soc2"); !ok || p.MonthlyFee != 300 {
		t.Fatalf("soc2 ok=%v fee=%v", ok, p.MonthlyFee)
	}
}

func TestValidateRejectsBadEntries(t *testing.T) {
	set := Defaults()
	set.Tools[0].Type = "magic"
	if err := set.Validate(); err == nil {
		t.Fatalf("unknown tool type must fail")
	}

	set = Defaults()
	set.Policies = append(set.Policies, Policy{ID: "gdpr", Name: "Dup"})
	if err := set.Validate(); err == nil {
		t.Fatalf("duplicate policy id must fail")
	}

	set = Defaults()
	set.Connectors[0].Throughput = 0
	if err := set.Validate(); err == nil {
		t.Fatalf("zero throughput connector must fail")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("missing file must error")
	}
}
