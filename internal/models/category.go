package models

import "strings"

// Category is the closed set of prompt categories.
type Category string

const (
	CategoryChatGPT      Category = "chatgpt"
	CategoryClaude       Category = "claude"
	CategoryMidjourney   Category = "midjourney"
	CategoryDalle        Category = "dalle"
	CategoryMarketing    Category = "marketing"
	CategoryCode         Category = "code"
	CategoryCreative     Category = "creative"
	CategoryProductivity Category = "productivite"
	CategoryBusiness     Category = "business"
	CategoryOther        Category = "autre"
)

// CategoryInfo carries the display attributes of a category.
type CategoryInfo struct {
	ID    Category `json:"id"`
	Label string   `json:"label"`
	Color string   `json:"color"`
}

// Categories is ordered the way filter chips are displayed.
var Categories = []CategoryInfo{
	{ID: CategoryChatGPT, Label: "ChatGPT", Color: "green"},
	{ID: CategoryClaude, Label: "Claude", Color: "orange"},
	{ID: CategoryMidjourney, Label: "Midjourney", Color: "purple"},
	{ID: CategoryDalle, Label: "DALL-E", Color: "pink"},
	{ID: CategoryMarketing, Label: "Marketing", Color: "blue"},
	{ID: CategoryCode, Label: "Code", Color: "gray"},
	{ID: CategoryCreative, Label: "Créatif", Color: "yellow"},
	{ID: CategoryProductivity, Label: "Productivité", Color: "teal"},
	{ID: CategoryBusiness, Label: "Business", Color: "indigo"},
	{ID: CategoryOther, Label: "Autre", Color: "slate"},
}

var categoryIndex = func() map[Category]CategoryInfo {
	m := make(map[Category]CategoryInfo, len(Categories))
	for _, c := range Categories {
		m[c.ID] = c
	}
	return m
}()

// ParseCategory maps free text onto a known category. Unknown and empty
// values become CategoryOther.
func ParseCategory(s string) Category {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := categoryIndex[c]; ok {
		return c
	}
	return CategoryOther
}

// IsKnownCategory reports whether s names a category exactly (case-insensitive).
func IsKnownCategory(s string) bool {
	_, ok := categoryIndex[Category(strings.ToLower(strings.TrimSpace(s)))]
	return ok
}

// Info returns the display attributes, falling back to CategoryOther.
func (c Category) Info() CategoryInfo {
	if info, ok := categoryIndex[c]; ok {
		return info
	}
	return categoryIndex[CategoryOther]
}
