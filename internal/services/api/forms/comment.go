package forms

type CommentCreate struct {
	Content  string `form:"content" json:"content" binding:"required,max=2000"`
	ParentID *int64 `form:"parent_id" json:"parent_id"`
}

type CommentUpdate struct {
	Content string `form:"content" json:"content" binding:"required,max=2000"`
}
