// Package supply drives booking tasks through the seller-API pipeline.
package supply

import (
	"context"

	"github.com/sellerops/ozon-supply-connector/internal/app/domain"
)

// TaskStore persists supply tasks between ticks.
type TaskStore interface {
	Upsert(ctx context.Context, t *domain.Task) error
	Get(ctx context.Context, id string) (*domain.Task, error)
	List(ctx context.Context) ([]*domain.Task, error)
	ListActive(ctx context.Context) ([]*domain.Task, error)
	Delete(ctx context.Context, id string) error
	PurgeTerminalOlderThan(ctx context.Context, cutoffTS int64) (int64, error)
	PurgeAll(ctx context.Context) (int64, error)
	HealCreatingFlags(ctx context.Context) (int, error)
}

// Notifier delivers task progress messages to the operator channel.
type Notifier interface {
	// NotifyText sends a short status message for a chat.
	NotifyText(ctx context.Context, chatID int64, text string) error
	// NotifyFile sends a file with a caption for a chat.
	NotifyFile(ctx context.Context, chatID int64, path string, caption string) error
}
