package services

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assistdesk/internal/store"
	"assistdesk/pkg/desktypes"
)

func newTestAnalyticsService(t *testing.T, st *store.Store, handler http.HandlerFunc) *AnalyticsService {
	t.Helper()
	gateway := newTestGateway(t, st, handler)
	service := NewAnalyticsService(st, gateway)
	require.NoError(t, service.Initialize())
	return service
}

// statsHandler serves the two aggregate endpoints with fixed payloads.
func statsHandler(stats, analytics string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/dashboard/stats":
			_, _ = w.Write([]byte(stats))
		case "/analytics/data":
			_, _ = w.Write([]byte(analytics))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func TestAnalyticsService_ComputeAuthoritativeTotals(t *testing.T) {
	st := newTestStore()
	service := newTestAnalyticsService(t, st, statsHandler(
		`{"total_messages": 140, "total_tokens": 52000, "total_cost_euros": 1.25, "total_assistants": 4}`,
		`{"cost_by_assistant": [{"name": "Support Bot", "theme": "support", "total_tokens": 52000, "total_cost_euros": 1.25, "message_count": 140}], "daily_costs": []}`,
	))

	snap := service.Compute()
	assert.Equal(t, 140, snap.TotalMessages)
	assert.Equal(t, 4, snap.TotalAssistants)
	assert.Equal(t, 52000, snap.TotalTokens)
	assert.InDelta(t, 1.25, snap.TotalCostEuros, 1e-9)
	assert.Equal(t, 35, snap.AvgMessagesPerAssistant)

	require.Len(t, snap.CostByAssistant, 1)
	assert.Equal(t, "Support Bot", snap.CostByAssistant[0].Name)
}

func TestAnalyticsService_ComputeNeverFailsOnBackendError(t *testing.T) {
	st := newTestStore()
	st.SetAssistants([]desktypes.Assistant{{ID: "a1", Theme: "support"}, {ID: "a2", Theme: "sales"}})

	service := newTestAnalyticsService(t, st, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	snap := service.Compute()
	assert.Zero(t, snap.TotalMessages)
	assert.Zero(t, snap.TotalTokens)
	assert.Zero(t, snap.TotalCostEuros)
	assert.Equal(t, 2, snap.TotalAssistants, "assistant total falls back to the cached directory")
	assert.Len(t, snap.DailyActivity, 7)
}

func TestAnalyticsService_ComputeUnreachableBackend(t *testing.T) {
	st := newTestStore()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	gateway := NewGatewayService(server.URL, st)
	require.NoError(t, gateway.Initialize())
	server.Close()

	service := NewAnalyticsService(st, gateway)
	require.NoError(t, service.Initialize())

	snap := service.Compute()
	assert.Zero(t, snap.TotalMessages)
	assert.Empty(t, snap.RecentConversations)
	assert.Len(t, snap.DailyActivity, 7)
}

func TestAnalyticsService_ComputeEmptyDirectory(t *testing.T) {
	st := newTestStore()
	service := newTestAnalyticsService(t, st, statsHandler(`{}`, `{}`))

	snap := service.Compute()
	assert.Zero(t, snap.TotalAssistants)
	assert.Zero(t, snap.AvgMessagesPerAssistant)
	assert.Nil(t, snap.MostActiveAssistant)
	assert.Empty(t, snap.MessagesByTheme)
	assert.Empty(t, snap.RecentConversations)
	require.Len(t, snap.DailyActivity, 7)
	for _, day := range snap.DailyActivity {
		assert.Zero(t, day.Messages)
	}
}

func TestAnalyticsService_ThemeDistributionAndMostActive(t *testing.T) {
	st := newTestStore()
	st.SetAssistants([]desktypes.Assistant{
		{ID: "a1", Name: "First", Theme: "support"},
		{ID: "a2", Name: "Second", Theme: "support"},
		{ID: "a3", Name: "Third", Theme: "sales"},
	})
	// a1 and a2 tie on message count; directory order breaks the tie.
	st.SetSession("a1", []desktypes.ChatMessage{{ID: "m1"}, {ID: "m2"}})
	st.SetSession("a2", []desktypes.ChatMessage{{ID: "m3"}, {ID: "m4"}})
	st.SetSession("a3", []desktypes.ChatMessage{{ID: "m5"}})

	service := newTestAnalyticsService(t, st, statsHandler(`{}`, `{}`))

	snap := service.Compute()
	assert.Equal(t, 4, snap.MessagesByTheme["support"])
	assert.Equal(t, 1, snap.MessagesByTheme["sales"])
	require.NotNil(t, snap.MostActiveAssistant)
	assert.Equal(t, "First", snap.MostActiveAssistant.Name)
}

func TestAnalyticsService_RecentConversations(t *testing.T) {
	st := newTestStore()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	assistants := []desktypes.Assistant{
		{ID: "a1", Name: "One", Theme: "support"},
		{ID: "a2", Name: "Two", Theme: "sales"},
		{ID: "a3", Name: "Three", Theme: "support"},
		{ID: "a4", Name: "Four", Theme: "sales"},
		{ID: "a5", Name: "Five", Theme: "support"},
		{ID: "a6", Name: "Six", Theme: "sales"},
		{ID: "a7", Name: "Seven", Theme: "support"},
	}
	st.SetAssistants(assistants)

	// Six assistants with cached non-empty histories, newest last message on
	// a6; a7 is cached but empty and must not appear.
	for i := 1; i <= 6; i++ {
		id := assistants[i-1].ID
		st.SetSession(id, []desktypes.ChatMessage{{
			ID:        id + "-last",
			Content:   "message from " + id,
			Timestamp: base.Add(time.Duration(i) * time.Hour),
		}})
	}
	st.SetSession("a7", nil)

	service := newTestAnalyticsService(t, st, statsHandler(`{}`, `{}`))

	snap := service.Compute()
	require.Len(t, snap.RecentConversations, 5, "recent view is capped")
	assert.Equal(t, "a6", snap.RecentConversations[0].AssistantID, "newest first")
	assert.Equal(t, "a2", snap.RecentConversations[4].AssistantID, "oldest entry drops off")
}

func TestAnalyticsService_PreviewTruncation(t *testing.T) {
	st := newTestStore()
	long := strings.Repeat("é", 150)
	st.SetAssistants([]desktypes.Assistant{{ID: "a1", Name: "One", Theme: "support"}})
	st.SetSession("a1", []desktypes.ChatMessage{{ID: "m1", Content: long, Timestamp: time.Now()}})

	service := newTestAnalyticsService(t, st, statsHandler(`{}`, `{}`))

	snap := service.Compute()
	require.Len(t, snap.RecentConversations, 1)
	preview := snap.RecentConversations[0].LastMessage
	assert.Equal(t, strings.Repeat("é", 100)+"...", preview, "truncation is rune-safe")

	short := previewOf("short message")
	assert.Equal(t, "short message", short)
}

func TestAnalyticsService_DailyActivityShape(t *testing.T) {
	st := newTestStore()
	service := newTestAnalyticsService(t, st, statsHandler(`{"total_messages": 700}`, `{}`))

	snap := service.Compute()
	require.Len(t, snap.DailyActivity, 7)

	sum := 0
	for _, day := range snap.DailyActivity {
		assert.GreaterOrEqual(t, day.Messages, 0)
		assert.NotEmpty(t, day.Date)
		sum += day.Messages
	}
	// The series is an approximation of the total, not an exact split.
	assert.Greater(t, sum, 350)
	assert.Less(t, sum, 1050)
}

func TestAnalyticsService_CostBreakdownFallback(t *testing.T) {
	st := newTestStore()
	st.SetAssistants([]desktypes.Assistant{
		{ID: "a1", Name: "Paid", Theme: "support", TotalTokens: 1000, TotalCostEuros: 0.05, MessageCount: 10},
		{ID: "a2", Name: "Free", Theme: "sales"},
	})

	// The detailed endpoint is empty, so rows derive from the directory.
	service := newTestAnalyticsService(t, st, statsHandler(`{}`, `{}`))

	snap := service.Compute()
	require.Len(t, snap.CostByAssistant, 1, "zero-cost assistants are filtered out")
	assert.Equal(t, "Paid", snap.CostByAssistant[0].Name)
	assert.InDelta(t, 0.05, snap.CostByAssistant[0].TotalCostEuros, 1e-9)
}
