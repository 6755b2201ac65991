package events

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"

	"delivery-analytics/internal/testutil"
)

func TestHandle_KnownStatusesAreCounted(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	rec := NewMockRecorder(ctrl)
	rec.EXPECT().IncOrderEvent("created")
	rec.EXPECT().IncOrderEvent("completed")
	rec.EXPECT().IncOrderEvent("canceled")

	p := NewProcessor(rec, testlog.New().Logger())

	for _, status := range []string{"created", "completed", "canceled"} {
		if err := p.Handle(context.Background(), Event{
			OrderNumber: "SN1",
			Status:      status,
			CreatedAt:   time.Now(),
		}); err != nil {
			t.Fatalf("Handle(%s): %v", status, err)
		}
	}
}

func TestHandle_StatusIsNormalized(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	rec := NewMockRecorder(ctrl)
	rec.EXPECT().IncOrderEvent("completed")

	p := NewProcessor(rec, testlog.New().Logger())
	if err := p.Handle(context.Background(), Event{OrderNumber: "SN1", Status: "  Completed "}); err != nil {
		t.Fatalf("Handle: %v", err)
	}
}

func TestHandle_UnknownStatusIsSkipped(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	rec := NewMockRecorder(ctrl)
	// no EXPECT: unknown statuses must not touch the recorder

	p := NewProcessor(rec, testlog.New().Logger())
	if err := p.Handle(context.Background(), Event{OrderNumber: "SN1", Status: "mystery"}); err != nil {
		t.Fatalf("Handle: %v", err)
	}
}

func TestHandle_CancellationIsLoggedAsWarning(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	rec := NewMockRecorder(ctrl)
	rec.EXPECT().IncOrderEvent("canceled")

	logs := testlog.New()
	p := NewProcessor(rec, logs.Logger())
	if err := p.Handle(context.Background(), Event{OrderNumber: "SN9", Status: "deleted"}); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	entries := logs.Entries()
	if len(entries) != 1 || entries[0].Level != "warn" {
		t.Fatalf("expected one warn entry, got %+v", entries)
	}
}
