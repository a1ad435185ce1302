package forms

type PostCreate struct {
	Title           string  `form:"title" json:"title" binding:"required,max=200"`
	Content         string  `form:"content" json:"content" binding:"required"`
	Excerpt         string  `form:"excerpt" json:"excerpt" binding:"max=500"`
	CoverImage      string  `form:"cover_image" json:"cover_image" binding:"omitempty,url"`
	Status          string  `form:"status" json:"status" binding:"omitempty,oneof=draft published"`
	TagIDs          []int64 `form:"tag_ids" json:"tag_ids"`
	MetaTitle       string  `form:"meta_title" json:"meta_title" binding:"max=200"`
	MetaDescription string  `form:"meta_description" json:"meta_description" binding:"max=300"`
}

type PostUpdate struct {
	Title           *string  `form:"title" json:"title" binding:"omitempty,max=200"`
	Content         *string  `form:"content" json:"content"`
	Excerpt         *string  `form:"excerpt" json:"excerpt" binding:"omitempty,max=500"`
	CoverImage      *string  `form:"cover_image" json:"cover_image" binding:"omitempty,url"`
	Status          *string  `form:"status" json:"status" binding:"omitempty,oneof=draft published"`
	TagIDs          *[]int64 `form:"tag_ids" json:"tag_ids"`
	MetaTitle       *string  `form:"meta_title" json:"meta_title" binding:"omitempty,max=200"`
	MetaDescription *string  `form:"meta_description" json:"meta_description" binding:"omitempty,max=300"`
}

type PostList struct {
	Page    int    `form:"page" json:"page"`
	PerPage int    `form:"per_page" json:"per_page"`
	Status  string `form:"status" json:"status" binding:"omitempty,oneof=draft published"`
	Author  int64  `form:"author" json:"author"`
	Tag     string `form:"tag" json:"tag"`
	Search  string `form:"search" json:"search"`
}
