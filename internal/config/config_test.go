package config

import (
	"testing"
	"time"
)

func TestLoadAPIDefaults(t *testing.T) {
	cfg := LoadAPI()
	if cfg.Addr != ":8080" {
		t.Fatalf("addr=%q", cfg.Addr)
	}
	if cfg.TickEvery != time.Second {
		t.Fatalf("tick=%v", cfg.TickEvery)
	}
	if cfg.GameDuration != 30*time.Minute {
		t.Fatalf("duration=%v", cfg.GameDuration)
	}
}

func TestLoadAPIOverrides(t *testing.T) {
	t.Setenv("DATACORP_ADDR", ":9000")
	t.Setenv("DATACORP_TICK_EVERY", "250ms")
	t.Setenv("DATACORP_RAND_SEED", "42")

	cfg := LoadAPI()
	if cfg.Addr != ":9000" || cfg.TickEvery != 250*time.Millisecond || cfg.RandSeed != 42 {
		t.Fatalf("cfg=%+v", cfg)
	}
}

func TestPortOverridesAddr(t *testing.T) {
	t.Setenv("DATACORP_ADDR", ":9000")
	t.Setenv("PORT", "3000")
	if got := LoadAPI().Addr; got != ":3000" {
		t.Fatalf("addr=%q want :3000", got)
	}
}

func TestBadDurationFallsBack(t *testing.T) {
	t.Setenv("DATACORP_TICK_EVERY", "often")
	if got := LoadAPI().TickEvery; got != time.Second {
		t.Fatalf("tick=%v want 1s", got)
	}
}
