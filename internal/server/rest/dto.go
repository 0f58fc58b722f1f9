package rest

import "github.com/dmitrijs2005/accountkeeper/internal/server/models"

type createAccountRequest struct {
	Email     string  `json:"email" validate:"required,email"`
	Password  string  `json:"password" validate:"required,max=72"`
	FirstName *string `json:"firstName" validate:"omitempty,max=100"`
	LastName  *string `json:"lastName" validate:"omitempty,max=100"`
}

// registerRequest also accepts phoneNumber for client compatibility; it is
// not stored at registration.
type registerRequest struct {
	Email       string  `json:"email" validate:"required,email"`
	Password    string  `json:"password" validate:"required,max=72"`
	FirstName   *string `json:"firstName" validate:"omitempty,max=100"`
	LastName    *string `json:"lastName" validate:"omitempty,max=100"`
	PhoneNumber *string `json:"phoneNumber"`
}

type loginRequest struct {
	Email      string `json:"email" validate:"required"`
	Password   string `json:"password" validate:"required"`
	RememberMe bool   `json:"rememberMe"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type logoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type updateProfileRequest struct {
	FirstName   *string `json:"firstName" validate:"omitempty,max=100"`
	LastName    *string `json:"lastName" validate:"omitempty,max=100"`
	PhoneNumber *string `json:"phoneNumber" validate:"omitempty,max=32"`
}

type addLoyaltyPointsRequest struct {
	Points *int64 `json:"points" validate:"required"`
}

// authResponse is the envelope of the /auth endpoints.
type authResponse struct {
	Success      bool            `json:"success"`
	Message      string          `json:"message"`
	Token        string          `json:"token,omitempty"`
	RefreshToken string          `json:"refreshToken,omitempty"`
	Account      *models.Account `json:"account,omitempty"`
	ExpiresIn    int64           `json:"expiresIn,omitempty"`
}

type existsResponse struct {
	Exists bool `json:"exists"`
}
