package provider

import (
	"context"
	"time"

	"github.com/voidshard/sfin/pkg/domain"
)

// Provider fetches account data for an access key. Zero times mean no bound.
type Provider interface {
	Accounts(ctx context.Context, accessKey string, start, end time.Time) (interface{}, error)
	Transactions(ctx context.Context, accessKey string, start, end time.Time) (interface{}, error)
	Ledger(ctx context.Context, accessKey string, start, end time.Time) ([]*domain.Transaction, error)
}
