package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/recipebox/recipe-api/internal/api/dto"
	"github.com/recipebox/recipe-api/internal/service"
)

func (s *Server) registerUserRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getCurrentUser",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/me",
		Summary:     "Get current user",
		Description: "Returns the authenticated user's profile",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetCurrentUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateCurrentUser",
		Method:      http.MethodPatch,
		Path:        "/api/v1/users/me",
		Summary:     "Update current user",
		Description: "Changes the display name or password. A password change signs out every other session.",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateCurrentUser)
}

func (s *Server) handleGetCurrentUser(ctx context.Context, input *dto.AuthHeader) (*dto.UserOutput, error) {
	principal, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	user, err := s.services.User.GetProfile(ctx, principal.User.ID)
	if err != nil {
		return nil, err
	}

	return &dto.UserOutput{Body: toUserDTO(user)}, nil
}

func (s *Server) handleUpdateCurrentUser(ctx context.Context, input *dto.UpdateProfileInput) (*dto.UserOutput, error) {
	principal, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	user, err := s.services.User.UpdateProfile(ctx, principal.User.ID, principal.SessionID, service.UpdateProfileRequest{
		Name:     input.Body.Name,
		Password: input.Body.Password,
	})
	if err != nil {
		return nil, err
	}

	return &dto.UserOutput{Body: toUserDTO(user)}, nil
}
