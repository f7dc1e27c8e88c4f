package services

import (
	"math"
	"math/rand"
	"sort"
	"time"

	"assistdesk/internal/logger"
	"assistdesk/internal/store"
	"assistdesk/internal/testutils"
	"assistdesk/pkg/desktypes"
)

// previewLimit is the number of characters kept from the last message of a
// recent conversation.
const previewLimit = 100

// recentConversationLimit caps the recent-conversations view.
const recentConversationLimit = 5

// activityDays is the length of the synthesized daily activity series.
const activityDays = 7

// AnalyticsService derives usage and cost views by merging the backend's
// authoritative aggregates with locally computed fallbacks from the assistant
// directory and the cached chat sessions. Compute never returns an error: an
// unreachable backend degrades to zero/derived values.
type AnalyticsService struct {
	initialized bool
	store       *store.Store
	gateway     *GatewayService
}

// NewAnalyticsService creates an AnalyticsService.
func NewAnalyticsService(st *store.Store, gateway *GatewayService) *AnalyticsService {
	return &AnalyticsService{
		store:   st,
		gateway: gateway,
	}
}

// Name returns the service name "analytics" for registration.
func (a *AnalyticsService) Name() string {
	return "analytics"
}

// Initialize marks the service ready.
func (a *AnalyticsService) Initialize() error {
	a.initialized = true
	return nil
}

// Compute builds an analytics snapshot from current state plus one
// authoritative fetch. Only already-cached sessions are counted; Compute is a
// pure, non-blocking read of local state apart from the aggregate fetches and
// never triggers a history load as a side effect.
func (a *AnalyticsService) Compute() desktypes.AnalyticsSnapshot {
	var stats desktypes.DashboardStats
	if a.initialized {
		if err := a.gateway.GetJSON("/dashboard/stats", &stats); err != nil {
			logger.Debug("Authoritative stats unavailable, using zero totals", "error", err)
			stats = desktypes.DashboardStats{}
		}
	}

	var detail desktypes.AnalyticsData
	if a.initialized {
		if err := a.gateway.GetJSON("/analytics/data", &detail); err != nil {
			logger.Debug("Detailed analytics unavailable, deriving locally", "error", err)
			detail = desktypes.AnalyticsData{}
		}
	}

	assistants := a.store.Assistants()

	totalAssistants := stats.TotalAssistants
	if totalAssistants == 0 {
		totalAssistants = len(assistants)
	}

	snapshot := desktypes.AnalyticsSnapshot{
		TotalMessages:   stats.TotalMessages,
		TotalAssistants: totalAssistants,
		TotalTokens:     stats.TotalTokens,
		TotalCostEuros:  stats.TotalCostEuros,
		MessagesByTheme: make(map[string]int),
		DailyCosts:      detail.DailyCosts,
	}
	if totalAssistants > 0 {
		snapshot.AvgMessagesPerAssistant = int(math.Round(float64(stats.TotalMessages) / float64(totalAssistants)))
	}

	// Theme distribution, most active assistant, and recent conversations
	// come from the directory plus already-cached sessions only.
	var mostActive *desktypes.Assistant
	mostActiveCount := -1
	var recent []desktypes.ConversationSummary

	for i := range assistants {
		assistant := assistants[i]
		history, cached := a.store.Session(assistant.ID)
		messageCount := len(history)

		snapshot.MessagesByTheme[assistant.Theme] += messageCount

		// First assistant in directory order wins ties.
		if messageCount > mostActiveCount {
			mostActiveCount = messageCount
			mostActive = &assistants[i]
		}

		if cached && messageCount > 0 {
			last := history[messageCount-1]
			recent = append(recent, desktypes.ConversationSummary{
				AssistantID:    assistant.ID,
				AssistantName:  assistant.Name,
				AssistantTheme: assistant.Theme,
				LastMessage:    previewOf(last.Content),
				Timestamp:      last.Timestamp,
				MessageCount:   messageCount,
				Tokens:         assistant.TotalTokens,
				CostEuros:      assistant.TotalCostEuros,
			})
		}
	}
	snapshot.MostActiveAssistant = mostActive

	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].Timestamp.After(recent[j].Timestamp)
	})
	if len(recent) > recentConversationLimit {
		recent = recent[:recentConversationLimit]
	}
	snapshot.RecentConversations = recent

	snapshot.DailyActivity = a.synthesizeDailyActivity(stats.TotalMessages)

	snapshot.CostByAssistant = detail.CostByAssistant
	if len(snapshot.CostByAssistant) == 0 {
		snapshot.CostByAssistant = deriveCostBreakdown(assistants)
	}

	return snapshot
}

// previewOf truncates message content for the recent-conversations view.
func previewOf(content string) string {
	runes := []rune(content)
	if len(runes) <= previewLimit {
		return content
	}
	return string(runes[:previewLimit]) + "..."
}

// synthesizeDailyActivity distributes the authoritative message total across
// the trailing seven days with random jitter around an even split.
//
// This is an approximation, not measured data: the backend provides no
// per-day series, so the shape of these bars is fabricated and must never be
// treated as auditable. Consumers get exactly seven entries whose sum is only
// approximately the total.
func (a *AnalyticsService) synthesizeDailyActivity(totalMessages int) []desktypes.DayActivity {
	now := testutils.GetCurrentTime(a.store)
	base := totalMessages / activityDays

	series := make([]desktypes.DayActivity, 0, activityDays)
	for i := activityDays - 1; i >= 0; i-- {
		day := now.Add(-time.Duration(i) * 24 * time.Hour)

		messages := 0
		if base > 0 {
			jitter := rand.Intn(base/2 + 1)
			messages = base + jitter - base/4
			if messages < 0 {
				messages = 0
			}
		}

		series = append(series, desktypes.DayActivity{
			Date:     day.Format("Mon 2"),
			Messages: messages,
		})
	}
	return series
}

// deriveCostBreakdown builds the per-assistant cost rows from the directory's
// own aggregate fields, dropping zero-cost entries.
func deriveCostBreakdown(assistants []desktypes.Assistant) []desktypes.AssistantCost {
	var rows []desktypes.AssistantCost
	for _, a := range assistants {
		if a.TotalCostEuros <= 0 {
			continue
		}
		rows = append(rows, desktypes.AssistantCost{
			Name:           a.Name,
			Theme:          a.Theme,
			TotalTokens:    a.TotalTokens,
			TotalCostEuros: a.TotalCostEuros,
			MessageCount:   a.MessageCount,
		})
	}
	return rows
}
