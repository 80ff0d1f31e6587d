package services

import "retail-dashboard/internal/models"

// Merge left-joins every transaction with its category, subcategory and
// customer attributes. The output has exactly one record per transaction, in
// input order. Each lookup keeps the first row seen for a key so duplicated
// reference keys cannot fan out the join.
func Merge(raw *RawData) []models.MergedRecord {
	categories := firstByKey(raw.Products,
		func(p models.ProductCategory) string { return p.CategoryCode })
	subcategories := firstByKey(raw.Products,
		func(p models.ProductCategory) string { return p.SubcategoryCode })
	countries := firstByKey(raw.CountryCodes,
		func(c models.CountryCode) string { return c.Code })
	customers := firstByKey(raw.Customers,
		func(c models.Customer) string { return c.CustomerID })

	merged := make([]models.MergedRecord, len(raw.Transactions))
	for i, tx := range raw.Transactions {
		rec := models.MergedRecord{Transaction: tx}

		if p, ok := categories[tx.CategoryCode]; ok {
			rec.Category = p.Category
		}
		if p, ok := subcategories[tx.SubcategoryCode]; ok {
			rec.Subcategory = p.Subcategory
		}
		if c, ok := customers[tx.CustomerID]; ok {
			rec.Gender = c.Gender
			rec.BirthDate = c.BirthDate
			if cc, ok := countries[c.CountryCode]; ok {
				rec.Country = cc.Country
			}
		}

		merged[i] = rec
	}
	return merged
}

func firstByKey[T any](rows []T, key func(T) string) map[string]T {
	index := make(map[string]T, len(rows))
	for _, row := range rows {
		k := key(row)
		if k == "" {
			continue
		}
		if _, seen := index[k]; !seen {
			index[k] = row
		}
	}
	return index
}
