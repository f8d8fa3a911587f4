package repository

import (
	"context"

	"traveleon/internal/domain/entity"
)

type ProfileRepository interface {
	// GetByID returns a NOT_FOUND AppError when no profile exists for uid.
	GetByID(ctx context.Context, uid string) (*entity.BuyerProfile, error)
}
