// Package dto holds the request and response bodies of the recipe API.
// huma reads their tags to build the OpenAPI document.
package dto

// IDParam is the numeric path parameter of recipes, tags and ingredients.
type IDParam struct {
	ID int64 `path:"id" minimum:"1" doc:"Resource identifier"`
}

// AuthHeader carries the bearer token of an authenticated operation.
type AuthHeader struct {
	Authorization string `header:"Authorization" doc:"Bearer access token"`
}

// MessageResponse is a simple success message response.
type MessageResponse struct {
	Message string `json:"message" doc:"Success message"`
}

// MessageOutput wraps a message response for huma.
type MessageOutput struct {
	Body MessageResponse
}
