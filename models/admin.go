package models

import "time"

const RoleOperator = "operator"

// Operator is an authenticated studio staff member.
type Operator struct {
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// IsOperator reports whether the holder may run admin operations.
func (o *Operator) IsOperator() bool {
	return o != nil && o.Role == RoleOperator && o.Email != ""
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type TransitionRequest struct {
	Status string `json:"status" binding:"required"`
}
