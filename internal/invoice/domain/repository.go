package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	Insert(ctx context.Context, invoice *Invoice) error
	FindByID(ctx context.Context, hotelID, invoiceID snowflake.ID) (*Invoice, error)
	FindByNumber(ctx context.Context, hotelID snowflake.ID, number string) (*Invoice, error)
	ClearArtifactKey(ctx context.Context, invoiceID snowflake.ID) error
}
