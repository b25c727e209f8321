package syncx_test

import (
	"context"
	"strings"
	"testing"

	"github.com/mind-engage/examhall/internal/db/dbtest"
	syncx "github.com/mind-engage/examhall/internal/sync"
)

func TestRecordAndReadBack(t *testing.T) {
	repo := syncx.NewEventRepo(dbtest.Open(t), "")
	ctx := context.Background()

	if err := repo.Record(ctx, syncx.TypeAttemptStarted, "att-1", map[string]string{"quiz_id": "q1"}); err != nil {
		t.Fatalf("record started: %v", err)
	}
	if err := repo.Record(ctx, syncx.TypeAttemptSubmitted, "att-1", map[string]int{"score": 3}); err != nil {
		t.Fatalf("record submitted: %v", err)
	}
	if err := repo.Record(ctx, syncx.TypeAttemptStarted, "att-2", nil); err != nil {
		t.Fatalf("record other: %v", err)
	}

	events, err := repo.ByKey(ctx, "att-1")
	if err != nil {
		t.Fatalf("by key: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Type != syncx.TypeAttemptStarted || events[1].Type != syncx.TypeAttemptSubmitted {
		t.Fatalf("unexpected order: %+v", events)
	}
	if events[0].SiteID != "local" {
		t.Fatalf("expected default site id, got %q", events[0].SiteID)
	}
	if !strings.Contains(events[1].DataJSON, `"score":3`) {
		t.Fatalf("payload not stored: %s", events[1].DataJSON)
	}
}
