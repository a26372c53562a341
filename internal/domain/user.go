package domain

import "time"

// User is the narrow actor view the engine needs. Profile management,
// signup, and KYC verification itself are external; only the verification
// signal, the completed-rental count, and the notification targets are
// consumed here.
type User struct {
	ID               int32     `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	FCMToken         string    `json:"fcm_token,omitempty"`
	KYCVerified      bool      `json:"kyc_verified"`
	CompletedRentals int32     `json:"completed_rentals"`
	IsModerator      bool      `json:"is_moderator"`
	CreatedOn        time.Time `json:"created_on"`
}
