package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"datacorp/internal/catalog"
	"datacorp/internal/game"

	"github.com/fatih/color"
)

var (
	stdinReader = bufio.NewReader(os.Stdin)
	accent      = color.New(color.FgCyan, color.Bold)
	success     = color.New(color.FgGreen, color.Bold)
	warn        = color.New(color.FgYellow, color.Bold)
	danger      = color.New(color.FgRed, color.Bold)
	neutral     = color.New(color.FgHiWhite)
)

func printSuccess(msg string) {
	success.Println(msg)
}

func printWarn(msg string) {
	warn.Println(msg)
}

func printInfo(msg string) {
	neutral.Println(msg)
}

func promptRequired(label string) (string, error) {
	for {
		fmt.Printf("%s: ", label)
		text, err := stdinReader.ReadString('\n')
		if err != nil {
			return "", err
		}
		text = strings.TrimSpace(text)
		if text != "" {
			return text, nil
		}
		printWarn(label + " is required.")
	}
}

func promptChoice(label string, options []string, defaultValue string) (string, error) {
	normalized := make(map[string]struct{}, len(options))
	for _, opt := range options {
		normalized[strings.ToLower(strings.TrimSpace(opt))] = struct{}{}
	}
	for {
		fmt.Printf("%s (%s) [%s]: ", label, strings.Join(options, "/"), defaultValue)
		text, err := stdinReader.ReadString('\n')
		if err != nil {
			return "", err
		}
		text = strings.ToLower(strings.TrimSpace(text))
		if text == "" {
			text = strings.ToLower(strings.TrimSpace(defaultValue))
		}
		if _, ok := normalized[text]; ok {
			return text, nil
		}
		printWarn("Invalid option. Please pick one of the listed values.")
	}
}

func promptFloat(label string, min float64) (float64, error) {
	for {
		text, err := promptRequired(label)
		if err != nil {
			return 0, err
		}
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			printWarn("Enter a valid number.")
			continue
		}
		if v <= min {
			printWarn(fmt.Sprintf("Value must be > %.4f", min))
			continue
		}
		return v, nil
	}
}

func promptInt64(label string, min int64) (int64, error) {
	for {
		text, err := promptRequired(label)
		if err != nil {
			return 0, err
		}
		v, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			printWarn("Enter a whole number.")
			continue
		}
		if v < min {
			printWarn(fmt.Sprintf("Value must be >= %d", min))
			continue
		}
		return v, nil
	}
}

func renderSnapshot(raw map[string]any) error {
	snap, err := decodeInto[game.Snapshot](raw)
	if err != nil {
		return err
	}
	r := snap.Resources

	accent.Println("\n== DATA COMPANY ==")
	fmt.Printf("Time left:     %s\n", formatClock(r.TimeRemaining))
	fmt.Printf("Revenue:       %s\n", colorizeAmount(r.Revenue))
	fmt.Printf("Raw data:      %s\n", formatAmount(r.RawData))
	fmt.Printf("Clean data:    %s (quality %.0f%%)\n", formatAmount(r.CleanData), r.DataQuality*100)
	fmt.Printf("Models:        %s\n", formatAmount(r.Models))
	fmt.Printf("Per click:     %s\n", formatAmount(r.DataPerClick))
	fmt.Printf("Per second:    gen %s, ingest %s, clean %s\n",
		formatAmount(r.DataPerSecond), formatAmount(r.IngestedPerSecond), formatAmount(r.CleaningPerSecond))
	fmt.Printf("Connectors:    %d\n", r.Connectors)
	fmt.Printf("Bitcoin:       %.4f BTC @ %s\n", r.BitcoinBalance, formatAmount(r.BitcoinPrice))

	if len(r.Employees) > 0 {
		fmt.Printf("Employees:     %s\n", joinKeys(r.Employees))
	}
	if len(r.BusinessUnits) > 0 {
		fmt.Printf("Units:         %s\n", joinKeys(r.BusinessUnits))
	}
	if len(r.Dashboards) > 0 {
		keys := make([]string, 0, len(r.Dashboards))
		for k := range r.Dashboards {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fmt.Printf("Dashboards:    %s\n", strings.Join(keys, ", "))
	}
	if r.AutoSaleEnabled {
		printInfo("Auto-sale pipeline active.")
	}
	if r.ShowDailyMeeting {
		printWarn("Daily meeting pending. `dcorp meeting attend` or `dcorp meeting skip`.")
	}
	if r.GameOver {
		if r.HasWon {
			printSuccess("GAME OVER: the company hit its revenue target. You win!")
		} else {
			danger.Println("GAME OVER: time ran out short of the target.")
		}
	}
	fmt.Println()
	return nil
}

// renderSnapshotLine is the compact one-line form used by `dcorp watch`.
func renderSnapshotLine(raw map[string]any) error {
	snap, err := decodeInto[game.Snapshot](raw)
	if err != nil {
		return err
	}
	r := snap.Resources
	fmt.Printf("[%s] revenue=%s raw=%s clean=%s models=%s btc=%.4f@%s\n",
		formatClock(r.TimeRemaining),
		formatAmount(r.Revenue),
		formatAmount(r.RawData),
		formatAmount(r.CleanData),
		formatAmount(r.Models),
		r.BitcoinBalance,
		formatAmount(r.BitcoinPrice),
	)
	if r.GameOver {
		if r.HasWon {
			printSuccess("GAME OVER: you win!")
		} else {
			danger.Println("GAME OVER: you lose.")
		}
	}
	return nil
}

func renderCatalog(raw map[string]any) error {
	set, err := decodeInto[catalog.Set](raw)
	if err != nil {
		return err
	}

	accent.Println("\n== TOOLS (cost: revenue) ==")
	fmt.Printf("%-4s %-24s %-12s %10s %8s\n", "IDX", "NAME", "TYPE", "COST", "EFFECT")
	for i, t := range set.Tools {
		fmt.Printf("%-4d %-24s %-12s %10s %8.2f\n", i, truncate(t.Name, 24), t.Type, formatAmount(t.Cost), t.Effect)
	}

	accent.Println("\n== UPGRADES (cost: raw data) ==")
	fmt.Printf("%-4s %-24s %10s %8s\n", "IDX", "NAME", "COST", "EFFECT")
	for i, u := range set.Upgrades {
		fmt.Printf("%-4d %-24s %10s %8.2f\n", i, truncate(u.Name, 24), formatAmount(u.Cost), u.Effect)
	}

	accent.Println("\n== MODELS (cost: clean data) ==")
	fmt.Printf("%-4s %-24s %10s %8s\n", "IDX", "NAME", "COST", "EFFECT")
	for i, m := range set.Models {
		fmt.Printf("%-4d %-24s %10s %8.2f\n", i, truncate(m.Name, 24), formatAmount(m.Cost), m.Effect)
	}

	accent.Println("\n== CONNECTORS (cost: raw data) ==")
	fmt.Printf("%-4s %-24s %10s %12s\n", "IDX", "NAME", "COST", "THROUGHPUT")
	for i, c := range set.Connectors {
		fmt.Printf("%-4d %-24s %10s %12.2f\n", i, truncate(c.Name, 24), formatAmount(c.Cost), c.Throughput)
	}

	accent.Println("\n== POLICIES (cost: revenue) ==")
	fmt.Printf("%-12s %-24s %10s %12s\n", "ID", "NAME", "COST", "MONTHLY FEE")
	for _, p := range set.Policies {
		fmt.Printf("%-12s %-24s %10s %12s\n", p.ID, truncate(p.Name, 24), formatAmount(p.Cost), formatAmount(p.MonthlyFee))
	}
	fmt.Println()
	return nil
}

func decodeInto[T any](in any) (T, error) {
	var out T
	raw, err := json.Marshal(in)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, err
	}
	return out, nil
}

func joinKeys(m map[string]bool) string {
	keys := make([]string, 0, len(m))
	for k, v := range m {
		if v {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return strings.Join(keys, ", ")
}

func colorizeAmount(v float64) string {
	text := formatAmount(v)
	switch {
	case v > 0:
		return success.Sprint(text)
	case v < 0:
		return danger.Sprint(text)
	default:
		return neutral.Sprint(text)
	}
}

func formatAmount(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	whole := int64(v)
	frac := int64((v - float64(whole)) * 100)
	if frac == 0 {
		return sign + comma(whole)
	}
	return fmt.Sprintf("%s%s.%02d", sign, comma(whole), frac)
}

func formatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

func comma(v int64) string {
	s := strconv.FormatInt(v, 10)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	pre := len(s) % 3
	if pre > 0 {
		b.WriteString(s[:pre])
		if len(s) > pre {
			b.WriteByte(',')
		}
	}
	for i := pre; i < len(s); i += 3 {
		b.WriteString(s[i : i+3])
		if i+3 < len(s) {
			b.WriteByte(',')
		}
	}
	return b.String()
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
