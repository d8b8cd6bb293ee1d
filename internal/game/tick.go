package game

import (
	"context"
	"math"
	"time"

	"datacorp/internal/catalog"
)

// Tick advances the simulation by one second. All deltas are computed from
// the state as it stood when the tick began and applied in one write, so a
// tick never reacts to its own intermediate results. Returns false once the
// game is over and the tick did nothing.
func (s *Session) Tick() bool {
	s.mu.Lock()
	if s.res.GameOver {
		s.mu.Unlock()
		return false
	}

	prev := s.res

	var active []catalog.Policy
	for _, p := range s.cat.Policies {
		if s.policyActive[p.ID] {
			active = append(active, p)
		}
	}

	governanceCost := 0.0
	for _, p := range active {
		governanceCost += p.MonthlyFee / 30
	}

	policyBonus := 0.0
	if len(active) >= PolicyBonusCount && !prev.SecurityBonusCollected {
		policyBonus = PolicyBonusRevenue
		s.res.SecurityBonusCollected = true
	}

	cleaned := CleaningOutput(prev.RawData, prev.CleaningPerSecond, prev.DataQuality)

	autoSold, autoRevenue := 0.0, 0.0
	if prev.AutoSaleEnabled {
		autoSold, autoRevenue = AutomaticSale(prev.RawData)
	}

	dashboardRevenue := 0.0
	for _, r := range prev.Dashboards {
		dashboardRevenue += r
	}

	storageCost := StorageCost(prev.RawData, prev.CleanData)

	s.res.RawData = math.Max(0, prev.RawData+prev.DataPerSecond+prev.IngestedPerSecond-cleaned-autoSold)
	s.res.CleanData = prev.CleanData + cleaned
	s.res.Revenue = prev.Revenue + autoRevenue + dashboardRevenue + policyBonus - governanceCost - storageCost
	s.res.BitcoinPrice = NextBitcoinPrice(prev.BitcoinPrice, s.rand.Float64())

	s.res.TimeRemaining = prev.TimeRemaining - 1
	if s.res.TimeRemaining <= 0 {
		s.res.TimeRemaining = 0
		s.res.GameOver = true
		s.res.HasWon = prev.Revenue >= WinThresholdRevenue
		s.log.Info("game over", "won", s.res.HasWon, "revenue", prev.Revenue)
	}

	if s.res.TimeRemaining == MeetingTriggerSecond {
		s.res.ShowDailyMeeting = true
	}

	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
	return true
}

// Run drives the tick loop until the context is cancelled. Ticks landing
// after game over do nothing, but the loop keeps going so a restart resumes
// the clock without rewiring anything.
func (s *Session) Run(ctx context.Context, tickEvery time.Duration) {
	ticker := time.NewTicker(tickEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick()
		}
	}
}
