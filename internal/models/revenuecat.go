package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RevenueCatPlan - локальная запись с набором фич для плана биллинг-провайдера
// (коллекция revenuecats). RevenueCatID уникален.
type RevenueCatPlan struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RevenueCatID string             `bson:"revenuecatId" json:"revenuecatId"`
	Features     []string           `bson:"features" json:"features"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Stamp выставляет createdAt при первом сохранении и обновляет updatedAt.
func (p *RevenueCatPlan) Stamp(now time.Time) {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	if p.Features == nil {
		p.Features = []string{}
	}
}

// PlanWithFeatures - план из каталога провайдера, объединённый с локальными фичами.
// При недоступности каталога заполнены только ID, RevenueCatID и Features.
type PlanWithFeatures struct {
	ID           string   `json:"id"`
	RevenueCatID string   `json:"revenuecatId"`
	OfferingID   string   `json:"offeringId,omitempty"`
	PackageType  string   `json:"packageType,omitempty"`
	DisplayName  string   `json:"displayName,omitempty"`
	Description  string   `json:"description,omitempty"`
	PriceString  string   `json:"priceString,omitempty"`
	Price        *float64 `json:"price,omitempty"`
	CurrencyCode string   `json:"currencyCode,omitempty"`
	Features     []string `json:"features"`
}

// UpdatePlanFeaturesRequest - тело запроса на замену списка фич плана.
type UpdatePlanFeaturesRequest struct {
	Features []string `json:"features" validate:"required,dive,required,max=100"`
}
