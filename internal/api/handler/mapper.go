package handler

import (
	"strings"

	"github.com/userhub/auth-api/internal/core/domain"
	"github.com/userhub/auth-api/internal/core/ports"
)

// --- Request → Service input ---

func toRegisterInput(req registerRequest) ports.RegisterInput {
	role, _ := domain.ParseRole(req.Role)
	return ports.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Username:  req.Username,
		Email:     req.Email,
		Phone:     req.PhoneNumber,
		Address:   req.HomeAddress,
		Password:  req.Password,
		Role:      role,
	}
}

func toProfilePatch(req updateUserRequest) ports.ProfilePatch {
	patch := ports.ProfilePatch{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Username:  req.Username,
		Email:     req.Email,
		Phone:     req.PhoneNumber,
		Address:   req.HomeAddress,
		Password:  req.Password,
	}
	if strings.TrimSpace(req.Role) != "" {
		if role, ok := domain.ParseRole(req.Role); ok {
			patch.Role = &role
		}
	}
	return patch
}

// --- Domain → Response ---

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		UserID:      u.ID,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Username:    u.Username,
		Email:       u.Email,
		PhoneNumber: u.Phone,
		HomeAddress: u.Address,
		Role:        u.Role.String(),
	}
}

func toUserResponses(users []*domain.User) []userResponse {
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return out
}

func toAuthResponse(res *ports.AuthResult) authResponse {
	u := res.User
	token := res.Token
	return authResponse{
		UserID:    u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
		Address:   u.Address,
		Email:     u.Email,
		Username:  u.Username,
		Role:      u.Role.String(),
		Token:     &token,
		Message:   res.Message,
	}
}
