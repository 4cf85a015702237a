package services

import (
	"context"
	"fmt"
	"time"
)

// FormatManifestNumber renders the sequence number for a manifest:
// "MAN" + zero-padded DDMMYYYY + a single space + zero-padded 3-digit
// counter, e.g. "MAN25122025 001". Downstream filtering does substring
// matching on this text, so the shape is fixed.
func FormatManifestNumber(date time.Time, counter int) string {
	return fmt.Sprintf("MAN%02d%02d%04d %03d", date.Day(), int(date.Month()), date.Year(), counter)
}

// NumberingService produces date-scoped sequence numbers. The counter is
// derived from the number of manifests already issued on that calendar day
// and resets every day. The derived number is not reserved; the unique
// constraint on manifests.number catches collisions and the pipeline
// recounts and retries.
type NumberingService struct {
	store ManifestStore
}

func NewNumberingService(store ManifestStore) *NumberingService {
	return &NumberingService{store: store}
}

// NextNumber returns the next sequence number for the given issue date.
func (s *NumberingService) NextNumber(ctx context.Context, date time.Time) (string, error) {
	count, err := s.store.CountManifestsOnDate(ctx, date)
	if err != nil {
		return "", fmt.Errorf("failed to derive manifest number: %w", err)
	}
	return FormatManifestNumber(date, count+1), nil
}

// NumberFor honors a caller-supplied number (a draft prepared earlier) and
// never recomputes or overrides it; otherwise it derives the next one.
func (s *NumberingService) NumberFor(ctx context.Context, date time.Time, preassigned string) (string, error) {
	if preassigned != "" {
		return preassigned, nil
	}
	return s.NextNumber(ctx, date)
}
