package model

import (
	"strings"
)

// Category 支出分类，与 Intent 提示词中的枚举保持一致
type Category string

const (
	CategoryGroceries Category = "GROCERIES"
	CategoryMedical   Category = "MEDICAL"
	CategoryBills     Category = "BILLS"
	CategoryMaid      Category = "MAID"
	CategoryVehicle   Category = "VEHICLE"
	CategoryMisc      Category = "MISC"
)

// PredefinedCategories 预定义的分类列表，作为 AI 的参考
var PredefinedCategories = []string{
	string(CategoryGroceries),
	string(CategoryMedical),
	string(CategoryBills),
	string(CategoryMaid),
	string(CategoryVehicle),
	string(CategoryMisc),
}

// GetCategoryPrompt 生成 Prompt 用的分类提示词
func GetCategoryPrompt() string {
	return strings.Join(PredefinedCategories, "|")
}

// NormalizeCategory upper-cases a category and maps anything unknown to MISC.
func NormalizeCategory(c string) Category {
	up := Category(strings.ToUpper(strings.TrimSpace(c)))
	for _, known := range PredefinedCategories {
		if string(up) == known {
			return up
		}
	}
	return CategoryMisc
}
