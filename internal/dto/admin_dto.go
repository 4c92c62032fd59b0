package dto

type AdminLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AdminLoginResponse struct {
	Token    string `json:"token"`
	Email    string `json:"email"`
	FullName string `json:"full_name,omitempty"`
}

type AdminDecisionRequest struct {
	Note string `json:"note,omitempty" validate:"omitempty,max=1000"`
}
