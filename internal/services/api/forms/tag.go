package forms

type TagCreate struct {
	Name        string `form:"name" json:"name" binding:"required,max=50"`
	Description string `form:"description" json:"description" binding:"max=300"`
	Color       string `form:"color" json:"color" binding:"omitempty,hexcolor"`
}

type TagUpdate struct {
	Name        *string `form:"name" json:"name" binding:"omitempty,max=50"`
	Description *string `form:"description" json:"description" binding:"omitempty,max=300"`
	Color       *string `form:"color" json:"color" binding:"omitempty,hexcolor"`
}
