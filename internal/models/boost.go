package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BoostStatus - статус подписки пользователя.
type BoostStatus string

// Допустимые статусы подписки.
const (
	BoostActive       BoostStatus = "active"
	BoostExpired      BoostStatus = "expired"
	BoostCancelled    BoostStatus = "cancelled"
	BoostPaused       BoostStatus = "paused"
	BoostGracePeriod  BoostStatus = "in_grace_period"
	BoostBillingRetry BoostStatus = "in_billing_retry"
)

// PlanSummary - подмножество полей плана, подставляемое при чтении подписки.
type PlanSummary struct {
	ID           primitive.ObjectID `bson:"_id" json:"id"`
	RevenueCatID string             `bson:"revenuecatId" json:"revenuecatId"`
	Features     []string           `bson:"features,omitempty" json:"features,omitempty"`
}

// Boost - подписка пользователя на план (коллекция boosts).
type Boost struct {
	ID               primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID           primitive.ObjectID  `bson:"user" json:"userId"`
	PlanID           *primitive.ObjectID `bson:"revenuecatPlan,omitempty" json:"planId,omitempty"`
	Plan             *PlanSummary        `bson:"planDetails,omitempty" json:"plan,omitempty"`
	Status           BoostStatus         `bson:"status" json:"status"`
	Features         []string            `bson:"features" json:"features"`
	StartDate        *time.Time          `bson:"startDate,omitempty" json:"startDate,omitempty"`
	EndDate          *time.Time          `bson:"endDate,omitempty" json:"endDate,omitempty"`
	ExpirationDate   *time.Time          `bson:"expirationDate,omitempty" json:"expirationDate,omitempty"`
	RenewalDate      *time.Time          `bson:"renewalDate,omitempty" json:"renewalDate,omitempty"`
	CancellationDate *time.Time          `bson:"cancellationDate,omitempty" json:"cancellationDate,omitempty"`
	WillRenew        bool                `bson:"willRenew" json:"willRenew"`
	IsTrial          bool                `bson:"isTrial" json:"isTrial"`
	LastWebhookEvent string              `bson:"lastWebhookEvent,omitempty" json:"lastWebhookEvent,omitempty"`
	LastWebhookAt    *time.Time          `bson:"lastWebhookAt,omitempty" json:"lastWebhookAt,omitempty"`
	CreatedAt        time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// Stamp выставляет createdAt при первом сохранении и обновляет updatedAt.
func (b *Boost) Stamp(now time.Time) {
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
	if b.Features == nil {
		b.Features = []string{}
	}
}
