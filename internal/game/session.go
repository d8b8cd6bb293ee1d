package game

import (
	"log/slog"
	"math"
	mathrand "math/rand"
	"sync"
	"time"

	"datacorp/internal/catalog"
)

// Navigator is the external-navigation collaborator used by the daily
// meeting. Injected so tests never open anything.
type Navigator interface {
	OpenURL(url string)
}

type logNavigator struct {
	log *slog.Logger
}

func (n logNavigator) OpenURL(url string) {
	n.log.Info("open external url", "url", url)
}

// Options configures a Session. Zero values fall back to defaults.
type Options struct {
	Logger    *slog.Logger
	Rand      *mathrand.Rand // price perturbation source; seeded from clock when nil
	Navigator Navigator
	Duration  int // game length in seconds; GameDurationSeconds when 0

	// OnChange receives a snapshot after every applied mutation and every
	// tick. Must be set before the session starts running.
	OnChange func(Snapshot)
}

// Session owns the resource aggregate and serializes every transition behind
// one mutex: a handler or tick reads the full state, computes, and writes the
// full next state. Nothing ever observes a half-applied update.
type Session struct {
	mu  sync.Mutex
	log *slog.Logger

	cat  catalog.Set
	rand *mathrand.Rand
	nav  Navigator

	res              Resources
	toolPurchased    []bool
	upgradePurchased []bool
	policyActive     map[string]bool

	duration int
	onChange func(Snapshot)
}

func NewSession(cat catalog.Set, opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	rng := opts.Rand
	if rng == nil {
		rng = mathrand.New(mathrand.NewSource(time.Now().UnixNano()))
	}
	nav := opts.Navigator
	if nav == nil {
		nav = logNavigator{log: logger}
	}
	duration := opts.Duration
	if duration <= 0 {
		duration = GameDurationSeconds
	}
	s := &Session{
		log:      logger,
		cat:      cat,
		rand:     rng,
		nav:      nav,
		duration: duration,
		onChange: opts.OnChange,
	}
	s.resetLocked()
	return s
}

// resetLocked restores the initial snapshot wholesale, ownership flags
// included. Callers hold the mutex (or own the session exclusively).
func (s *Session) resetLocked() {
	s.res = initialResources(s.duration)
	s.toolPurchased = make([]bool, len(s.cat.Tools))
	s.upgradePurchased = make([]bool, len(s.cat.Upgrades))
	s.policyActive = make(map[string]bool, len(s.cat.Policies))
}

// Snapshot returns an independent copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		Resources:  s.res.clone(),
		Tools:      make([]ToolView, len(s.cat.Tools)),
		Upgrades:   make([]UpgradeView, len(s.cat.Upgrades)),
		Models:     s.cat.Models,
		Connectors: s.cat.Connectors,
		Policies:   make([]PolicyView, len(s.cat.Policies)),
	}
	for i, t := range s.cat.Tools {
		snap.Tools[i] = ToolView{Tool: t, Purchased: s.toolPurchased[i]}
	}
	for i, u := range s.cat.Upgrades {
		snap.Upgrades[i] = UpgradeView{Upgrade: u, Purchased: s.upgradePurchased[i]}
	}
	for i, p := range s.cat.Policies {
		snap.Policies[i] = PolicyView{Policy: p, Active: s.policyActive[p.ID]}
	}
	return snap
}

// Catalog returns the immutable content tables the session was built with.
func (s *Session) Catalog() catalog.Set {
	return s.cat
}

func (s *Session) notify(snap Snapshot) {
	if s.onChange != nil {
		s.onChange(snap)
	}
}

// apply runs one guarded transition. Once the game is over every handler is a
// silent no-op; a transition that fails its own precondition reports false
// and leaves the state untouched.
func (s *Session) apply(fn func() bool) {
	s.mu.Lock()
	if s.res.GameOver {
		s.mu.Unlock()
		return
	}
	applied := fn()
	var snap Snapshot
	if applied {
		snap = s.snapshotLocked()
	}
	s.mu.Unlock()
	if applied {
		s.notify(snap)
	}
}

// CollectData is the manual click: one batch of raw data, doubled by a lead.
func (s *Session) CollectData() {
	s.apply(func() bool {
		multiplier := 1.0
		if s.res.Employees["lead"] {
			multiplier = 2
		}
		s.res.RawData += s.res.DataPerClick * multiplier
		return true
	})
}

// CleanData is the manual conversion: consumes raw records at the
// quality-dependent ratio and produces clean ones.
func (s *Session) CleanData() {
	s.apply(func() bool {
		engineer := s.res.Employees["engineer"]
		cost := ManualCleaningCost(s.res.DataQuality, engineer)
		if s.res.RawData < cost {
			return false
		}
		s.res.RawData -= cost
		s.res.CleanData += ManualCleaningOutput(cost, engineer)
		return true
	})
}

// TrainModel spends clean data on the indexed model and raises passive
// generation. Models are repeatable.
func (s *Session) TrainModel(index int) {
	s.apply(func() bool {
		if index < 0 || index >= len(s.cat.Models) {
			return false
		}
		m := s.cat.Models[index]
		if s.res.CleanData < m.Cost {
			return false
		}
		s.res.CleanData -= m.Cost
		s.res.Models++
		s.res.DataPerSecond += m.Effect
		return true
	})
}

// PurchaseUpgrade spends raw data on a one-shot click upgrade. The purchased
// lock makes a second call a no-op even with sufficient funds.
func (s *Session) PurchaseUpgrade(index int) {
	s.apply(func() bool {
		if index < 0 || index >= len(s.cat.Upgrades) {
			return false
		}
		u := s.cat.Upgrades[index]
		if s.upgradePurchased[index] || s.res.RawData < u.Cost {
			return false
		}
		s.res.RawData -= u.Cost
		s.res.DataPerClick += u.Effect
		s.upgradePurchased[index] = true
		return true
	})
}

// PurchaseTool spends revenue on a one-shot pipeline tool; the effect lands
// by tool type.
func (s *Session) PurchaseTool(index int) {
	s.apply(func() bool {
		if index < 0 || index >= len(s.cat.Tools) {
			return false
		}
		t := s.cat.Tools[index]
		if s.toolPurchased[index] || s.res.Revenue < t.Cost {
			return false
		}
		s.res.Revenue -= t.Cost
		switch t.Type {
		case catalog.ToolTypeQuality:
			s.res.DataQuality = math.Min(1, s.res.DataQuality+t.Effect)
		case catalog.ToolTypeCleaning:
			s.res.CleaningPerSecond += t.Effect
		case catalog.ToolTypeAutomation:
			s.res.AutoSaleEnabled = true
		}
		s.toolPurchased[index] = true
		return true
	})
}

// BuildConnector spends raw data on the indexed connector. Connectors are
// repeatable; each adds its throughput to passive ingestion.
func (s *Session) BuildConnector(index int) {
	s.apply(func() bool {
		if index < 0 || index >= len(s.cat.Connectors) {
			return false
		}
		c := s.cat.Connectors[index]
		if s.res.RawData < c.Cost {
			return false
		}
		s.res.RawData -= c.Cost
		s.res.Connectors++
		s.res.IngestedPerSecond += c.Throughput
		return true
	})
}

// TogglePolicy flips a governance policy. Activation charges the upfront
// cost; deactivation is free and always allowed.
func (s *Session) TogglePolicy(id string) {
	s.apply(func() bool {
		p, ok := s.cat.Policy(id)
		if !ok {
			return false
		}
		if s.policyActive[id] {
			s.policyActive[id] = false
			return true
		}
		if s.res.Revenue < p.Cost {
			return false
		}
		s.res.Revenue -= p.Cost
		s.policyActive[id] = true
		return true
	})
}

// CreateDashboard builds a one-time dashboard that pays revenuePerTick every
// tick from then on. Analysts boost the stream by 10%.
func (s *Session) CreateDashboard(id string, revenuePerTick float64) {
	s.apply(func() bool {
		cost, ok := DashboardCost(id)
		if !ok {
			return false
		}
		if _, exists := s.res.Dashboards[id]; exists {
			return false
		}
		if s.res.Models < cost {
			return false
		}
		s.res.Models -= cost
		s.res.Revenue -= cost * DashboardBudgetMultiplier
		if s.res.Employees["analyst"] {
			revenuePerTick *= AnalystDashboardBoost
		}
		s.res.Dashboards[id] = revenuePerTick
		return true
	})
}

// SellData sells one block of raw or clean data at the manual market rate.
func (s *Session) SellData(kind string) {
	s.apply(func() bool {
		switch kind {
		case SellRawData:
			if s.res.RawData < RawSaleBlock {
				return false
			}
			s.res.RawData -= RawSaleBlock
			s.res.Revenue += DataSaleRevenue
			return true
		case SellCleanData:
			if s.res.CleanData < CleanSaleBlock {
				return false
			}
			s.res.CleanData -= CleanSaleBlock
			s.res.Revenue += DataSaleRevenue
			return true
		default:
			return false
		}
	})
}

// BuyCleanData exchanges revenue or raw data for clean data at fixed rates.
func (s *Session) BuyCleanData(id string) {
	s.apply(func() bool {
		switch id {
		case BuyClean10:
			if s.res.Revenue < CleanBuySmallFee {
				return false
			}
			s.res.Revenue -= CleanBuySmallFee
			s.res.CleanData += CleanBuySmallQty
			return true
		case BuyClean100:
			if s.res.RawData < CleanBuyBulkRaw {
				return false
			}
			s.res.RawData -= CleanBuyBulkRaw
			s.res.CleanData += CleanBuyBulkQty
			return true
		default:
			return false
		}
	})
}

// HireEmployee hires a role permanently. Each role hires at most once.
func (s *Session) HireEmployee(id string) {
	s.apply(func() bool {
		cost, ok := EmployeeCost(id)
		if !ok || s.res.Employees[id] {
			return false
		}
		if s.res.Revenue < cost {
			return false
		}
		s.res.Revenue -= cost
		s.res.Employees[id] = true
		return true
	})
}

// ActivateBusinessUnit opens a business unit; gated on the head of data.
// Marketing extends the game clock once.
func (s *Session) ActivateBusinessUnit(id string) {
	s.apply(func() bool {
		if s.res.BusinessUnits[id] || !s.res.Employees["head"] {
			return false
		}
		s.res.BusinessUnits[id] = true
		if id == "marketing" {
			s.res.TimeRemaining += MarketingClockBonus
		}
		return true
	})
}

// TradeBitcoin buys or sells at the current spot price. Requires the finance
// unit. Amounts must be positive so balances stay non-negative.
func (s *Session) TradeBitcoin(action string, amount float64) {
	s.apply(func() bool {
		if !s.res.BusinessUnits["finance"] || amount <= 0 {
			return false
		}
		value := amount * s.res.BitcoinPrice
		switch action {
		case "buy":
			if s.res.Revenue < value {
				return false
			}
			s.res.Revenue -= value
			s.res.BitcoinBalance += amount
			return true
		case "sell":
			if s.res.BitcoinBalance < amount {
				return false
			}
			s.res.BitcoinBalance -= amount
			s.res.Revenue += value
			return true
		default:
			return false
		}
	})
}

// AttendDailyMeeting collects the meeting bonus and opens the meeting page
// through the navigator. Only available while the meeting prompt shows.
func (s *Session) AttendDailyMeeting() {
	attended := false
	s.apply(func() bool {
		if !s.res.ShowDailyMeeting {
			return false
		}
		s.res.Revenue += MeetingBonusRevenue
		s.res.ShowDailyMeeting = false
		attended = true
		return true
	})
	if attended {
		s.nav.OpenURL(MeetingURL)
	}
}

// SkipDailyMeeting dismisses the meeting prompt.
func (s *Session) SkipDailyMeeting() {
	s.apply(func() bool {
		if !s.res.ShowDailyMeeting {
			return false
		}
		s.res.ShowDailyMeeting = false
		return true
	})
}

// Restart resets the whole game to the initial snapshot. This is the one
// handler that works after game over.
func (s *Session) Restart() {
	s.mu.Lock()
	s.resetLocked()
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.log.Info("game restarted")
	s.notify(snap)
}
