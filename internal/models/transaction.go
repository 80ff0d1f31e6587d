package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is one retail transaction line as read from a fragment file.
// A null TotalAmount means the source value was missing or malformed.
type Transaction struct {
	TransactionID   string
	CustomerID      string
	Date            time.Time
	SubcategoryCode string
	CategoryCode    string
	Quantity        decimal.NullDecimal
	Rate            decimal.NullDecimal
	Tax             decimal.NullDecimal
	TotalAmount     decimal.NullDecimal
	StoreType       string
}

type CountryCode struct {
	Code    string
	Country string
}

type Customer struct {
	CustomerID  string
	Gender      string
	BirthDate   time.Time
	CountryCode string
}

// ProductCategory is one row of the product category info table. Category
// codes repeat once per subcategory.
type ProductCategory struct {
	CategoryCode    string
	Category        string
	SubcategoryCode string
	Subcategory     string
}

// MergedRecord is a transaction enriched with reference attributes. Empty
// strings and zero times mark reference keys that had no match.
type MergedRecord struct {
	Transaction
	Category    string
	Subcategory string
	Gender      string
	BirthDate   time.Time
	Country     string
}

// PositiveAmount reports whether the record counts as revenue. Refunds and
// null amounts do not.
func (r MergedRecord) PositiveAmount() bool {
	return r.TotalAmount.Valid && r.TotalAmount.Decimal.IsPositive()
}
