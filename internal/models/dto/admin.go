package dto

type AdminAccessRequest struct {
	Email    string `json:"email"`
	Message  string `json:"message"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type GrantAdminRequest struct {
	Email string `json:"email"`
}
