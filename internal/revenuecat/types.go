package revenuecat

// OfferingsResponse - ответ каталога предложений проекта.
type OfferingsResponse struct {
	Offerings []Offering `json:"offerings"`
}

// Offering - набор пакетов, которые показываются пользователю вместе.
type Offering struct {
	Identifier  string    `json:"identifier"`
	Description string    `json:"description"`
	Packages    []Package `json:"packages"`
}

// Package - конкретный план внутри предложения. Identifier совпадает с
// revenuecatId локальной записи о фичах.
type Package struct {
	Identifier  string  `json:"identifier"`
	PackageType string  `json:"packageType"`
	Product     Product `json:"product"`
}

// Product - цена и описание продукта в магазине.
type Product struct {
	DisplayName  string   `json:"displayName"`
	Description  string   `json:"description"`
	PriceString  string   `json:"priceString"`
	Price        *float64 `json:"price,omitempty"`
	CurrencyCode string   `json:"currencyCode"`
}
