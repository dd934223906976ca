package domain

import (
	"time"

	"lendlocal-backend/internal/geo"

	"github.com/shopspring/decimal"
)

type ItemCategory string

const (
	ItemCategoryTools       ItemCategory = "tools"
	ItemCategoryElectronics ItemCategory = "electronics"
	ItemCategoryBooks       ItemCategory = "books"
	ItemCategorySports      ItemCategory = "sports"
	ItemCategoryKitchen     ItemCategory = "kitchen"
	ItemCategoryGarden      ItemCategory = "garden"
	ItemCategoryOther       ItemCategory = "other"
)

// ItemCategories lists every category in display order.
var ItemCategories = []ItemCategory{
	ItemCategoryTools,
	ItemCategoryElectronics,
	ItemCategoryBooks,
	ItemCategorySports,
	ItemCategoryKitchen,
	ItemCategoryGarden,
	ItemCategoryOther,
}

func (c ItemCategory) Valid() bool {
	for _, known := range ItemCategories {
		if c == known {
			return true
		}
	}
	return false
}

type ItemCondition string

const (
	ItemConditionExcellent ItemCondition = "excellent"
	ItemConditionGood      ItemCondition = "good"
	ItemConditionFair      ItemCondition = "fair"
)

func (c ItemCondition) Valid() bool {
	switch c {
	case ItemConditionExcellent, ItemConditionGood, ItemConditionFair:
		return true
	}
	return false
}

type Item struct {
	ID                 string          `json:"item_id"`
	LenderUserID       string          `json:"lender_user_id"`
	Title              string          `json:"title"`
	Description        string          `json:"description"`
	ImageURL           string          `json:"image_url"`
	Category           ItemCategory    `json:"category"`
	Condition          ItemCondition   `json:"condition"`
	BorrowingFeePerDay decimal.Decimal `json:"borrowing_fee_per_day"`
	IsAvailable        bool            `json:"is_available"`
	Location           geo.Point       `json:"location"`
	CreatedOn          time.Time       `json:"created_on"`
	UpdatedOn          time.Time       `json:"updated_on"`
}
