package mindrecall

import (
	"context"

	"github.com/kailas-cloud/mindrecall/internal/domain"
	healthuc "github.com/kailas-cloud/mindrecall/internal/usecase/health"
	"github.com/kailas-cloud/mindrecall/internal/usecase/retrieval"
)

// --- moodUseCase mock ---

type mockMoodUC struct {
	logFn  func(ctx context.Context, userID, level, note string) (domain.Record, error)
	listFn func(ctx context.Context, userID string, limit int) ([]domain.Record, error)
}

func (m *mockMoodUC) Log(ctx context.Context, userID, level, note string) (domain.Record, error) {
	return m.logFn(ctx, userID, level, note)
}

func (m *mockMoodUC) List(ctx context.Context, userID string, limit int) ([]domain.Record, error) {
	return m.listFn(ctx, userID, limit)
}

// --- retrievalUseCase mock ---

type mockRetrievalUC struct {
	bundle retrieval.Bundle
}

func (m *mockRetrievalUC) Retrieve(context.Context, string, string) retrieval.Bundle {
	return m.bundle
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(context.Context) healthuc.Report { return m.report }

// --- helpers ---

func testClient(moods moodUseCase, ret retrievalUseCase, health healthUseCase) *Client {
	return &Client{moodSvc: moods, retrieval: ret, healthSvc: health}
}
