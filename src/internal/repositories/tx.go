package repositories

import (
	"context"

	"gorm.io/gorm"
)

// WithTx runs fn inside one transaction on one pooled connection.
// The transaction commits only when fn returns nil; any error or panic rolls it back.
func WithTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return db.WithContext(ctx).Transaction(fn)
}
