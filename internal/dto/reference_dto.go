package dto

type TagRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

type IngredientRequest struct {
	Name string `json:"name" binding:"required,max=200"`
	Unit string `json:"unit" binding:"required,max=20"`
}

type ReferenceFilter struct {
	Search string `form:"search"`
}
