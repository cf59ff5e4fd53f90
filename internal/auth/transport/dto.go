package transport

import "time"

type LoginRequest struct {
	Password string `json:"password" validate:"required,max=128"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}
