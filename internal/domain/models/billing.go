package models

import "time"

// Статусы и планы подписки, влияющие на доступ
const (
	SubscriptionStatusActive = "ACTIVE"
	PlanFree                 = "FREE"
)

// BillingSubscription зеркало подписки магазина на приложение
type BillingSubscription struct {
	Shop           string     `json:"shop"`
	SubscriptionID string     `json:"subscription_id"`
	PlanName       string     `json:"plan_name"`
	Status         string     `json:"status"`
	TrialStartsAt  *time.Time `json:"trial_starts_at,omitempty"`
	TrialEndsAt    *time.Time `json:"trial_ends_at,omitempty"`
	BillingOn      *time.Time `json:"billing_on,omitempty"`
	Test           bool       `json:"test"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// IsActive подписка дает доступ, если она активна или это бесплатный план
func (s *BillingSubscription) IsActive() bool {
	if s == nil {
		return false
	}
	return s.Status == SubscriptionStatusActive || s.PlanName == PlanFree
}
