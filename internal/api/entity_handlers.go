package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/recipebox/recipe-api/internal/api/dto"
	"github.com/recipebox/recipe-api/internal/domain"
)

// registerEntityRoutes mounts the same operations for every entity kind:
// /api/v1/tags and /api/v1/ingredients.
func (s *Server) registerEntityRoutes() {
	title := cases.Title(language.English)
	security := []map[string][]string{{"bearer": {}}}

	for _, kind := range domain.EntityKinds {
		singular := title.String(string(kind))
		plural := title.String(kind.Plural())
		collection := "/api/v1/" + kind.Plural()
		item := collection + "/{id}"
		h := entityHandlers{server: s, kind: kind}

		huma.Register(s.api, huma.Operation{
			OperationID: "list" + plural,
			Method:      http.MethodGet,
			Path:        collection,
			Summary:     "List " + kind.Plural(),
			Description: "Returns the caller's " + kind.Plural() + ", name descending",
			Tags:        []string{plural},
			Security:    security,
		}, h.list)

		huma.Register(s.api, huma.Operation{
			OperationID: "update" + singular,
			Method:      http.MethodPatch,
			Path:        item,
			Summary:     "Rename " + string(kind),
			Description: "Renames the " + string(kind) + " on every recipe that uses it",
			Tags:        []string{plural},
			Security:    security,
		}, h.rename)

		huma.Register(s.api, huma.Operation{
			OperationID: "replace" + singular,
			Method:      http.MethodPut,
			Path:        item,
			Summary:     "Replace " + string(kind),
			Description: "Same as PATCH: the name is the only writable field",
			Tags:        []string{plural},
			Security:    security,
		}, h.rename)

		huma.Register(s.api, huma.Operation{
			OperationID:   "delete" + singular,
			Method:        http.MethodDelete,
			Path:          item,
			Summary:       "Delete " + string(kind),
			Description:   "Deletes the " + string(kind) + " and detaches it from every recipe",
			Tags:          []string{plural},
			Security:      security,
			DefaultStatus: http.StatusNoContent,
		}, h.delete)
	}
}

// entityHandlers binds the handlers to one kind.
type entityHandlers struct {
	server *Server
	kind   domain.EntityKind
}

func (h entityHandlers) list(ctx context.Context, input *dto.AuthHeader) (*dto.EntityListOutput, error) {
	principal, err := h.server.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	entities, err := h.server.services.Entity.ListEntities(ctx, h.kind, principal.User.ID)
	if err != nil {
		return nil, err
	}

	return &dto.EntityListOutput{Body: toEntityDTOs(entities)}, nil
}

func (h entityHandlers) rename(ctx context.Context, input *dto.RenameEntityInput) (*dto.EntityOutput, error) {
	principal, err := h.server.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	entity, err := h.server.services.Entity.RenameEntity(ctx, h.kind, principal.User.ID, input.ID, domain.Descriptor{Name: input.Body.Name})
	if err != nil {
		return nil, err
	}

	return &dto.EntityOutput{Body: toEntityDTO(entity)}, nil
}

func (h entityHandlers) delete(ctx context.Context, input *dto.EntityByIDInput) (*struct{}, error) {
	principal, err := h.server.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := h.server.services.Entity.DeleteEntity(ctx, h.kind, principal.User.ID, input.ID); err != nil {
		return nil, err
	}

	return nil, nil
}
