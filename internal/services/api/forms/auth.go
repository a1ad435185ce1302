package forms

type Register struct {
	Email    string `form:"email" json:"email" binding:"required,email"`
	Username string `form:"username" json:"username" binding:"required,min=3,max=30,alphanum"`
	Password string `form:"password" json:"password" binding:"required,password"`
}

type Login struct {
	Email    string `form:"email" json:"email" binding:"required,email"`
	Password string `form:"password" json:"password" binding:"required"`
}

type Token struct {
	RefreshToken string `form:"refresh_token" json:"refresh_token" binding:"required"`
}

type Logout struct {
	RefreshToken string `form:"refresh_token" json:"refresh_token"`
}

type ResendVerification struct {
	Email string `form:"email" json:"email" binding:"required,email"`
}
