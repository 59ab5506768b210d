package service

import (
	"math"
	"sync"
	"testing"
	"time"

	"github.com/supportbot/chatbot-go/internal/model"
	"go.uber.org/zap"
)

func queryEvent(sessionID string, latency time.Duration) model.QueryEvent {
	return model.QueryEvent{
		SessionID: sessionID,
		Intent:    model.IntentGeneralInquiry,
		Sentiment: model.SentimentNeutral,
		Latency:   latency,
		Timestamp: time.Now(),
	}
}

func TestAnalyticsRecordReturnsSequentialIDs(t *testing.T) {
	analytics := NewAnalyticsService(zap.NewNop())

	for want := int64(1); want <= 3; want++ {
		if got := analytics.Record(queryEvent("s1", time.Millisecond)); got != want {
			t.Fatalf("query id = %d, want %d", got, want)
		}
	}
}

func TestAnalyticsConcurrentRecords(t *testing.T) {
	// M concurrent records must yield exactly total_queries == M.
	const workers = 50
	const perWorker = 20

	analytics := NewAnalyticsService(zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				analytics.Record(queryEvent("s1", time.Millisecond))
			}
		}()
	}
	wg.Wait()

	snapshot := analytics.Snapshot()
	if snapshot.TotalQueries != workers*perWorker {
		t.Fatalf("total_queries = %d, want %d", snapshot.TotalQueries, workers*perWorker)
	}
	if snapshot.SentimentCounts[model.SentimentNeutral] != workers*perWorker {
		t.Fatalf("sentiment counter lost updates: %d", snapshot.SentimentCounts[model.SentimentNeutral])
	}
}

func TestAnalyticsIncrementalMean(t *testing.T) {
	analytics := NewAnalyticsService(zap.NewNop())

	latencies := []time.Duration{
		10 * time.Millisecond,
		20 * time.Millisecond,
		90 * time.Millisecond,
		250 * time.Millisecond,
	}
	var sum float64
	for _, l := range latencies {
		analytics.Record(queryEvent("s1", l))
		sum += l.Seconds()
	}

	want := sum / float64(len(latencies))
	got := analytics.Snapshot().AvgResponseTime
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("avg_response_time = %v, want %v", got, want)
	}
}

func TestAnalyticsDistributions(t *testing.T) {
	analytics := NewAnalyticsService(zap.NewNop())

	events := []model.QueryEvent{
		{SessionID: "s1", Intent: model.IntentBilling, Sentiment: model.SentimentNegative, Latency: time.Millisecond, Timestamp: time.Now()},
		{SessionID: "s1", Intent: model.IntentBilling, Sentiment: model.SentimentNeutral, Latency: time.Millisecond, Timestamp: time.Now()},
		{SessionID: "s2", Intent: model.IntentReturnRefund, Sentiment: model.SentimentNegative, Latency: time.Millisecond, Timestamp: time.Now()},
	}
	for _, e := range events {
		analytics.Record(e)
	}

	snapshot := analytics.Snapshot()
	if snapshot.IntentCounts[model.IntentBilling] != 2 {
		t.Fatalf("billing count = %d, want 2", snapshot.IntentCounts[model.IntentBilling])
	}
	if snapshot.SentimentCounts[model.SentimentNegative] != 2 {
		t.Fatalf("negative count = %d, want 2", snapshot.SentimentCounts[model.SentimentNegative])
	}
}

func TestAnalyticsRecordRingBounded(t *testing.T) {
	analytics := NewAnalyticsService(zap.NewNop())
	analytics.capacity = 10

	for i := 0; i < 25; i++ {
		analytics.Record(queryEvent("s1", time.Millisecond))
	}

	snapshot := analytics.Snapshot()
	if snapshot.ConversationsStored != 10 {
		t.Fatalf("stored records = %d, want capped at 10", snapshot.ConversationsStored)
	}
	if snapshot.TotalQueries != 25 {
		t.Fatalf("total_queries = %d, want 25 (counter keeps growing)", snapshot.TotalQueries)
	}

	// The ring must keep the most recent records.
	records := analytics.RecentRecords(10)
	if records[len(records)-1].QueryID != 25 {
		t.Fatalf("newest record id = %d, want 25", records[len(records)-1].QueryID)
	}
	if records[0].QueryID != 16 {
		t.Fatalf("oldest kept record id = %d, want 16", records[0].QueryID)
	}
}

func TestAnalyticsRecentRecordsLimit(t *testing.T) {
	analytics := NewAnalyticsService(zap.NewNop())
	for i := 0; i < 5; i++ {
		analytics.Record(queryEvent("s1", time.Millisecond))
	}

	if got := len(analytics.RecentRecords(2)); got != 2 {
		t.Fatalf("RecentRecords(2) returned %d records", got)
	}
	if got := len(analytics.RecentRecords(50)); got != 5 {
		t.Fatalf("RecentRecords(50) returned %d records, want all 5", got)
	}
}

func TestAnalyticsSessionSummary(t *testing.T) {
	analytics := NewAnalyticsService(zap.NewNop())

	analytics.Record(model.QueryEvent{SessionID: "s1", Intent: model.IntentBilling, Sentiment: model.SentimentNeutral, Latency: time.Millisecond, Timestamp: time.Now()})
	analytics.Record(model.QueryEvent{SessionID: "s2", Intent: model.IntentFeedback, Sentiment: model.SentimentPositive, Latency: time.Millisecond, Timestamp: time.Now()})
	analytics.Record(model.QueryEvent{SessionID: "s1", Intent: model.IntentComplaint, Sentiment: model.SentimentNegative, Latency: time.Millisecond, Timestamp: time.Now()})

	summary, ok := analytics.SessionSummary("s1")
	if !ok {
		t.Fatal("expected summary for known session")
	}
	if summary.Conversations != 2 {
		t.Fatalf("conversations = %d, want 2", summary.Conversations)
	}
	if len(summary.Intents) != 2 || summary.Intents[1] != model.IntentComplaint {
		t.Fatalf("unexpected intent sequence %v", summary.Intents)
	}

	if _, ok := analytics.SessionSummary("missing"); ok {
		t.Fatal("expected no summary for unknown session")
	}
}
