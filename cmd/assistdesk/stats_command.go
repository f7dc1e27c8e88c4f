package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show usage and cost analytics",
		Long: `Show aggregated usage and cost analytics for the active project. Totals come
from the backend when reachable and degrade to locally derived values
otherwise. The seven-day activity series is an approximation, not measured
per-day data.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			a, err := setup()
			if err != nil {
				return err
			}

			// Prime the directory and the cached sessions so the locally
			// derived views have something to work from.
			if err := a.assistants.Load(); err != nil {
				fmt.Println("Warning: assistant directory unavailable, showing cached data only")
			}
			for _, as := range a.store.Assistants() {
				a.sessions.EnsureLoaded(as.ID)
			}

			snap := a.analytics.Compute()

			fmt.Printf("Assistants: %d   Messages: %d   Tokens: %d   Cost: EUR %.4f\n",
				snap.TotalAssistants, snap.TotalMessages, snap.TotalTokens, snap.TotalCostEuros)
			fmt.Printf("Average messages per assistant: %d\n", snap.AvgMessagesPerAssistant)
			if snap.MostActiveAssistant != nil {
				fmt.Printf("Most active assistant: %s\n", snap.MostActiveAssistant.Name)
			}

			if len(snap.MessagesByTheme) > 0 {
				fmt.Println("\nMessages by theme:")
				themes := make([]string, 0, len(snap.MessagesByTheme))
				for theme := range snap.MessagesByTheme {
					themes = append(themes, theme)
				}
				sort.Strings(themes)
				for _, theme := range themes {
					fmt.Printf("  %-20s %d\n", theme, snap.MessagesByTheme[theme])
				}
			}

			if len(snap.CostByAssistant) > 0 {
				fmt.Println("\nCost by assistant:")
				for _, row := range snap.CostByAssistant {
					fmt.Printf("  %-20s EUR %.4f  (%d tokens, %d messages)\n",
						row.Name, row.TotalCostEuros, row.TotalTokens, row.MessageCount)
				}
			}

			fmt.Println("\nActivity, trailing 7 days (approximate distribution):")
			for _, day := range snap.DailyActivity {
				fmt.Printf("  %-8s %d\n", day.Date, day.Messages)
			}

			if len(snap.RecentConversations) > 0 {
				fmt.Println("\nRecent conversations:")
				for _, conv := range snap.RecentConversations {
					fmt.Printf("  %s (%s, %d messages): %s\n",
						conv.AssistantName, conv.AssistantTheme, conv.MessageCount, conv.LastMessage)
				}
			}
			return nil
		},
	}
}
