package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	cl "datacorp/internal/cli"
	"datacorp/internal/config"
	"datacorp/internal/syncq"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

func main() {
	cfg := config.LoadCLI()
	apiBase := cfg.APIBaseURL

	root := &cobra.Command{
		Use:          "dcorp",
		Short:        "Data company simulator client",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&apiBase, "api", apiBase, "API base URL")

	root.AddCommand(
		newStateCmd(&apiBase),
		newWatchCmd(&apiBase),
		newCatalogCmd(&apiBase),
		newCollectCmd(&apiBase),
		newCleanCmd(&apiBase),
		newTrainCmd(&apiBase),
		newUpgradeCmd(&apiBase),
		newToolCmd(&apiBase),
		newConnectorCmd(&apiBase),
		newPolicyCmd(&apiBase),
		newDashboardCmd(&apiBase),
		newSellCmd(&apiBase),
		newBuyCleanCmd(&apiBase),
		newHireCmd(&apiBase),
		newUnitCmd(&apiBase),
		newBitcoinCmd(&apiBase),
		newMeetingCmd(&apiBase),
		newRestartCmd(&apiBase),
		newSyncCmd(&apiBase),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newClient(apiBase *string) *cl.Client {
	return cl.NewClient(strings.TrimRight(strings.TrimSpace(*apiBase), "/"))
}

// doAction posts one action and renders the snapshot the server returns. A
// network failure queues the command locally so `dcorp sync` can replay it.
func doAction(cmd *cobra.Command, apiBase *string, action string, body map[string]any) error {
	idem := uuid.NewString()
	client := newClient(apiBase)
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()
	out, err := client.Action(ctx, action, body, idem)
	if err != nil {
		if isAPIStructuredError(err) {
			return err
		}
		if qerr := syncq.Push(syncq.Command{
			Action:         action,
			Body:           body,
			IdempotencyKey: idem,
		}); qerr != nil {
			return fmt.Errorf("request failed and could not queue: %v (original: %w)", qerr, err)
		}
		printWarn(fmt.Sprintf("Offline: queued %q for later sync.", action))
		return nil
	}
	return renderSnapshot(out)
}

func isAPIStructuredError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "api status")
}

func newStateCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Show the current company state",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newClient(apiBase)
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			out, err := client.State(ctx)
			if err != nil {
				return err
			}
			return renderSnapshot(out)
		},
	}
}

func newWatchCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Stream live state updates",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			streamURL, err := wsURL(*apiBase)
			if err != nil {
				return err
			}
			conn, _, err := websocket.DefaultDialer.DialContext(ctx, streamURL, nil)
			if err != nil {
				return err
			}
			defer conn.Close()

			go func() {
				<-ctx.Done()
				_ = conn.Close()
			}()

			printInfo("Watching live updates. Ctrl-C to stop.")
			for {
				var raw map[string]any
				if err := conn.ReadJSON(&raw); err != nil {
					if ctx.Err() != nil {
						return nil
					}
					return err
				}
				if err := renderSnapshotLine(raw); err != nil {
					return err
				}
			}
		},
	}
}

func wsURL(apiBase string) (string, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(apiBase), "/"))
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = "/v1/stream"
	return u.String(), nil
}

func newCatalogCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List purchasable tools, upgrades, models, connectors and policies",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newClient(apiBase)
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			out, err := client.Catalog(ctx)
			if err != nil {
				return err
			}
			return renderCatalog(out)
		},
	}
}

func newCollectCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "collect",
		Short: "Collect a batch of raw data",
		RunE: func(cmd *cobra.Command, args []string) error {
			return doAction(cmd, apiBase, "collect", nil)
		},
	}
}

func newCleanCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Clean raw data manually",
		RunE: func(cmd *cobra.Command, args []string) error {
			return doAction(cmd, apiBase, "clean", nil)
		},
	}
}

func newTrainCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "train [index]",
		Short: "Train a model from the catalog",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := indexFromArgOrPrompt(args, "Model index")
			if err != nil {
				return err
			}
			return doAction(cmd, apiBase, "train", map[string]any{"index": index})
		},
	}
}

func newUpgradeCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "upgrade [index]",
		Short: "Buy a collection upgrade",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := indexFromArgOrPrompt(args, "Upgrade index")
			if err != nil {
				return err
			}
			return doAction(cmd, apiBase, "upgrade", map[string]any{"index": index})
		},
	}
}

func newToolCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "tool [index]",
		Short: "Buy a pipeline tool",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := indexFromArgOrPrompt(args, "Tool index")
			if err != nil {
				return err
			}
			return doAction(cmd, apiBase, "tool", map[string]any{"index": index})
		},
	}
}

func newConnectorCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "connector [index]",
		Short: "Build a data connector",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := indexFromArgOrPrompt(args, "Connector index")
			if err != nil {
				return err
			}
			return doAction(cmd, apiBase, "connector", map[string]any{"index": index})
		},
	}
}

func newPolicyCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "policy [id]",
		Short: "Toggle a governance policy",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := idFromArgOrPrompt(args, "Policy id")
			if err != nil {
				return err
			}
			return doAction(cmd, apiBase, "policy", map[string]any{"id": id})
		},
	}
}

func newDashboardCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard [id]",
		Short: "Build a revenue dashboard",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := idFromArgOrPrompt(args, "Dashboard id")
			if err != nil {
				return err
			}
			revenue, err := promptFloat("Revenue per second", 0)
			if err != nil {
				return err
			}
			return doAction(cmd, apiBase, "dashboard", map[string]any{"id": id, "revenue": revenue})
		},
	}
}

func newSellCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "sell [raw|clean]",
		Short: "Sell a block of raw or clean data",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := ""
			if len(args) > 0 {
				kind = strings.ToLower(strings.TrimSpace(args[0]))
			} else {
				var err error
				kind, err = promptChoice("Sell", []string{"raw", "clean"}, "raw")
				if err != nil {
					return err
				}
			}
			switch kind {
			case "raw":
				kind = "raw_data"
			case "clean":
				kind = "clean_data"
			default:
				return fmt.Errorf("invalid kind %q", kind)
			}
			return doAction(cmd, apiBase, "sell", map[string]any{"kind": kind})
		},
	}
}

func newBuyCleanCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "buy-clean [10|100]",
		Short: "Buy clean data with revenue (10) or raw data (100)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			size := ""
			if len(args) > 0 {
				size = strings.TrimSpace(args[0])
			} else {
				var err error
				size, err = promptChoice("Bundle", []string{"10", "100"}, "10")
				if err != nil {
					return err
				}
			}
			id := ""
			switch size {
			case "10":
				id = "buy_clean_10"
			case "100":
				id = "buy_clean_100"
			default:
				return fmt.Errorf("invalid bundle %q", size)
			}
			return doAction(cmd, apiBase, "buy-clean", map[string]any{"id": id})
		},
	}
}

func newHireCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "hire [analyst|engineer|lead|head]",
		Short: "Hire an employee",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := choiceFromArgOrPrompt(args, "Role", []string{"analyst", "engineer", "lead", "head"})
			if err != nil {
				return err
			}
			return doAction(cmd, apiBase, "hire", map[string]any{"id": id})
		},
	}
}

func newUnitCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "unit [id]",
		Short: "Activate a business unit (requires head of data)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := idFromArgOrPrompt(args, "Business unit id")
			if err != nil {
				return err
			}
			return doAction(cmd, apiBase, "unit", map[string]any{"id": id})
		},
	}
}

func newBitcoinCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "bitcoin [buy|sell]",
		Short: "Trade bitcoin (requires finance unit)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			side, err := choiceFromArgOrPrompt(args, "Side", []string{"buy", "sell"})
			if err != nil {
				return err
			}
			amount, err := promptFloat("Amount (BTC)", 0)
			if err != nil {
				return err
			}
			return doAction(cmd, apiBase, "bitcoin", map[string]any{"side": side, "amount": amount})
		},
	}
}

func newMeetingCmd(apiBase *string) *cobra.Command {
	meeting := &cobra.Command{
		Use:   "meeting",
		Short: "Daily meeting actions",
	}
	meeting.AddCommand(&cobra.Command{
		Use:   "attend",
		Short: "Attend the daily meeting for a revenue bonus",
		RunE: func(cmd *cobra.Command, args []string) error {
			return doAction(cmd, apiBase, "attend-meeting", nil)
		},
	})
	meeting.AddCommand(&cobra.Command{
		Use:   "skip",
		Short: "Skip the daily meeting",
		RunE: func(cmd *cobra.Command, args []string) error {
			return doAction(cmd, apiBase, "skip-meeting", nil)
		},
	})
	return meeting
}

func newRestartCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "restart",
		Short: "Restart the game from scratch",
		RunE: func(cmd *cobra.Command, args []string) error {
			return doAction(cmd, apiBase, "restart", nil)
		},
	}
}

func newSyncCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Replay locally queued offline actions",
		RunE: func(cmd *cobra.Command, args []string) error {
			queue, err := syncq.Load()
			if err != nil {
				return err
			}
			if len(queue) == 0 {
				printInfo("Sync queue is empty.")
				return nil
			}
			commands := make([]map[string]any, 0, len(queue))
			for _, q := range queue {
				commands = append(commands, map[string]any{
					"action":          q.Action,
					"body":            q.Body,
					"idempotency_key": q.IdempotencyKey,
				})
			}
			client := newClient(apiBase)
			ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
			defer cancel()
			out, err := client.SyncReplay(ctx, commands)
			if err != nil {
				return err
			}
			if err := syncq.Clear(); err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Sync complete: replayed %d command(s).", len(queue)))
			if state, ok := out["state"].(map[string]any); ok {
				return renderSnapshot(state)
			}
			return nil
		},
	}
}

func indexFromArgOrPrompt(args []string, label string) (int, error) {
	if len(args) > 0 {
		v, err := strconv.Atoi(strings.TrimSpace(args[0]))
		if err != nil || v < 0 {
			return 0, fmt.Errorf("invalid %s", strings.ToLower(label))
		}
		return v, nil
	}
	v, err := promptInt64(label, 0)
	return int(v), err
}

func idFromArgOrPrompt(args []string, label string) (string, error) {
	if len(args) > 0 {
		return strings.ToLower(strings.TrimSpace(args[0])), nil
	}
	id, err := promptRequired(label)
	if err != nil {
		return "", err
	}
	return strings.ToLower(strings.TrimSpace(id)), nil
}

func choiceFromArgOrPrompt(args []string, label string, options []string) (string, error) {
	if len(args) > 0 {
		arg := strings.ToLower(strings.TrimSpace(args[0]))
		for _, opt := range options {
			if arg == opt {
				return arg, nil
			}
		}
		return "", fmt.Errorf("invalid %s %q", strings.ToLower(label), arg)
	}
	return promptChoice(label, options, options[0])
}
