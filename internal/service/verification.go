package service

import (
	"context"
	"database/sql"
	"errors"

	"gearloop-backend/internal/domain"
	"gearloop-backend/internal/repository"
)

// kycVerification reads the verification flag the external identity provider
// maintains on the user record.
type kycVerification struct {
	userRepo repository.UserRepository
}

func NewVerificationService(userRepo repository.UserRepository) VerificationService {
	return &kycVerification{userRepo: userRepo}
}

func (s *kycVerification) IsVerified(ctx context.Context, userID int32) (bool, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, domain.NewErrorf(domain.ErrNotFound, "user %d not found", userID)
		}
		return false, err
	}
	return user.KYCVerified, nil
}
