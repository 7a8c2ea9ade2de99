package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/recipebox/recipe-api/internal/api/dto"
	"github.com/recipebox/recipe-api/internal/service"
)

func (s *Server) registerAuthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "register",
		Method:        http.MethodPost,
		Path:          "/api/v1/users",
		Summary:       "Register new user",
		Description:   "Creates an account. The email is stored lower-cased and must be unique.",
		Tags:          []string{"Authentication"},
		DefaultStatus: http.StatusCreated,
		Middlewares:   huma.Middlewares{s.rateLimited},
	}, s.handleRegister)

	huma.Register(s.api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/token",
		Summary:     "Obtain tokens",
		Description: "Authenticates with email and password and returns an access and a refresh token",
		Tags:        []string{"Authentication"},
		Middlewares: huma.Middlewares{s.rateLimited},
	}, s.handleLogin)

	huma.Register(s.api, huma.Operation{
		OperationID: "refresh",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/refresh",
		Summary:     "Refresh tokens",
		Description: "Exchanges a refresh token for a new pair. The old refresh token stops working.",
		Tags:        []string{"Authentication"},
		Middlewares: huma.Middlewares{s.rateLimited},
	}, s.handleRefresh)

	huma.Register(s.api, huma.Operation{
		OperationID: "logout",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/logout",
		Summary:     "Logout",
		Description: "Revokes the session behind the presented access token",
		Tags:        []string{"Authentication"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleLogout)
}

func (s *Server) handleRegister(ctx context.Context, input *dto.RegisterInput) (*dto.CreatedUserOutput, error) {
	user, err := s.services.Auth.Register(ctx, service.RegisterRequest{
		Email:    input.Body.Email,
		Password: input.Body.Password,
		Name:     input.Body.Name,
	})
	if err != nil {
		return nil, err
	}

	return &dto.CreatedUserOutput{Status: http.StatusCreated, Body: toUserDTO(user)}, nil
}

func (s *Server) handleLogin(ctx context.Context, input *dto.LoginInput) (*dto.AuthOutput, error) {
	resp, err := s.services.Auth.Login(ctx, service.LoginRequest{
		Email:    input.Body.Email,
		Password: input.Body.Password,
		Client:   clientInfo(input.ClientHeaders),
	})
	if err != nil {
		return nil, err
	}

	return &dto.AuthOutput{Body: toAuthResponse(resp)}, nil
}

func (s *Server) handleRefresh(ctx context.Context, input *dto.RefreshInput) (*dto.AuthOutput, error) {
	resp, err := s.services.Auth.RefreshTokens(ctx, service.RefreshRequest{
		RefreshToken: input.Body.RefreshToken,
		Client:       clientInfo(input.ClientHeaders),
	})
	if err != nil {
		return nil, err
	}

	return &dto.AuthOutput{Body: toAuthResponse(resp)}, nil
}

func (s *Server) handleLogout(ctx context.Context, input *dto.AuthHeader) (*dto.MessageOutput, error) {
	principal, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Auth.Logout(ctx, principal.SessionID); err != nil {
		return nil, err
	}

	return &dto.MessageOutput{Body: dto.MessageResponse{Message: "Logged out successfully"}}, nil
}
