package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retail-dashboard/internal/models"
)

func TestMerge_DeduplicatesKeepingFirst(t *testing.T) {
	raw := &RawData{
		Transactions: []models.Transaction{
			{TransactionID: "T1", CategoryCode: "1", SubcategoryCode: "1", CustomerID: "C1"},
			{TransactionID: "T2", CategoryCode: "2", SubcategoryCode: "3", CustomerID: "C2"},
		},
		Products: []models.ProductCategory{
			{CategoryCode: "1", Category: "Clothing", SubcategoryCode: "4", Subcategory: "Mens"},
			{CategoryCode: "1", Category: "Clothing-dup", SubcategoryCode: "1", Subcategory: "Women"},
			{CategoryCode: "2", Category: "Footwear", SubcategoryCode: "3", Subcategory: "Kids"},
			{CategoryCode: "2", Category: "Footwear", SubcategoryCode: "1", Subcategory: "Women-dup"},
		},
		Customers: []models.Customer{
			{CustomerID: "C1", Gender: "F", CountryCode: "1"},
			{CustomerID: "C1", Gender: "M", CountryCode: "2"},
			{CustomerID: "C2", Gender: "M", CountryCode: "2"},
		},
		CountryCodes: []models.CountryCode{
			{Code: "1", Country: "Poland"},
			{Code: "2", Country: "Germany"},
			{Code: "2", Country: "Deutschland"},
		},
	}

	merged := Merge(raw)

	require.Len(t, merged, len(raw.Transactions))
	assert.Equal(t, "Clothing", merged[0].Category)
	assert.Equal(t, "Women", merged[0].Subcategory)
	assert.Equal(t, "F", merged[0].Gender)
	assert.Equal(t, "Poland", merged[0].Country)

	assert.Equal(t, "Footwear", merged[1].Category)
	assert.Equal(t, "Kids", merged[1].Subcategory)
	assert.Equal(t, "Germany", merged[1].Country)
}

func TestMerge_LeftJoinLeavesUnmatchedEmpty(t *testing.T) {
	raw := &RawData{
		Transactions: []models.Transaction{
			{TransactionID: "T1", CategoryCode: "9", SubcategoryCode: "9", CustomerID: "ghost"},
			{TransactionID: "T2", CategoryCode: "1", SubcategoryCode: "1", CustomerID: "C1"},
		},
		Products: []models.ProductCategory{
			{CategoryCode: "1", Category: "Books", SubcategoryCode: "1", Subcategory: "Comics"},
		},
		Customers: []models.Customer{
			{CustomerID: "C1", Gender: "M", CountryCode: "404"},
		},
	}

	merged := Merge(raw)

	require.Len(t, merged, 2)
	assert.Equal(t, "T1", merged[0].TransactionID)
	assert.Empty(t, merged[0].Category)
	assert.Empty(t, merged[0].Subcategory)
	assert.Empty(t, merged[0].Gender)
	assert.Empty(t, merged[0].Country)

	assert.Equal(t, "M", merged[1].Gender)
	assert.Empty(t, merged[1].Country, "unknown country code leaves the country empty")
}

func TestMerge_EmptyInput(t *testing.T) {
	assert.Empty(t, Merge(&RawData{}))
}

func TestLoadAndMerge_ConservesRowCount(t *testing.T) {
	src := writeSources(t, map[string]string{
		"a.csv": transactionsHeader +
			"0,T1,C1,15-01-2021,4,1,1,100,10,100,TeleShop\n" +
			"1,T2,C9,16-01-2021,1,2,1,100,10,100,e-Shop\n" +
			"2,T3,C3,17-01-2021,7,7,1,100,10,100,MBR\n",
	})

	raw, err := testLoader().Load(context.Background(), src)
	require.NoError(t, err)

	merged := Merge(raw)
	require.Len(t, merged, len(raw.Transactions))

	assert.Equal(t, "Clothing", merged[0].Category)
	assert.Equal(t, "Mens", merged[0].Subcategory)
	assert.Equal(t, "Poland", merged[0].Country)
	assert.Equal(t, time.Date(1980, time.February, 1, 0, 0, 0, 0, time.UTC), merged[0].BirthDate)

	assert.Equal(t, "Footwear", merged[1].Category)
	assert.Equal(t, "Women", merged[1].Subcategory, "first subcategory row for code 1 wins")
	assert.Empty(t, merged[1].Gender)

	assert.Equal(t, "F", merged[2].Gender)
	assert.Empty(t, merged[2].Country)
}
