package api

import (
	"fmt"
	"net/http"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entityData struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type recipeData struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	TimeMinutes int          `json:"time_minutes"`
	Price       string       `json:"price"`
	Link        string       `json:"link"`
	Description *string      `json:"description"`
	Tags        []entityData `json:"tags"`
	Ingredients []entityData `json:"ingredients"`
}

func entityNames(list []entityData) []string {
	out := make([]string, len(list))
	for i, e := range list {
		out[i] = e.Name
	}
	sort.Strings(out)
	return out
}

func (ts *testServer) createRecipe(t *testing.T, token string, body map[string]any) recipeData {
	t.Helper()
	resp := ts.api.Post("/api/v1/recipes", bearer(token), body)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	return decodeEnvelope[recipeData](t, resp.Body.Bytes()).Data
}

func sampleRecipe(title string) map[string]any {
	return map[string]any{"title": title, "time_minutes": 10, "price": "5.25"}
}

func TestCreateRecipe_WithNestedTagsAndIngredients(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.createUser(t)

	body := sampleRecipe("Thai prawn curry")
	body["tags"] = []map[string]any{{"name": "Thai"}, {"name": "Dinner"}}
	body["ingredients"] = []map[string]any{{"name": "Prawns"}, {"name": "Ginger"}}
	body["description"] = "Spicy"

	recipe := ts.createRecipe(t, token, body)
	assert.NotZero(t, recipe.ID)
	assert.Equal(t, "Thai prawn curry", recipe.Title)
	assert.Equal(t, "5.25", recipe.Price)
	require.NotNil(t, recipe.Description)
	assert.Equal(t, "Spicy", *recipe.Description)
	assert.Equal(t, []string{"Dinner", "Thai"}, entityNames(recipe.Tags))
	assert.Equal(t, []string{"Ginger", "Prawns"}, entityNames(recipe.Ingredients))

	resp := ts.api.Get("/api/v1/tags", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code)
	tags := decodeEnvelope[[]entityData](t, resp.Body.Bytes()).Data
	assert.Equal(t, []string{"Thai", "Dinner"}, []string{tags[0].Name, tags[1].Name}, "name descending")
}

func TestCreateRecipe_ReusesExistingTag(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.createUser(t)

	first := sampleRecipe("Pad thai")
	first["tags"] = []map[string]any{{"name": "Thai"}}
	a := ts.createRecipe(t, token, first)

	second := sampleRecipe("Green curry")
	second["tags"] = []map[string]any{{"name": "Thai"}}
	b := ts.createRecipe(t, token, second)

	require.Len(t, a.Tags, 1)
	require.Len(t, b.Tags, 1)
	assert.Equal(t, a.Tags[0].ID, b.Tags[0].ID)

	resp := ts.api.Get("/api/v1/tags", bearer(token))
	assert.Len(t, decodeEnvelope[[]entityData](t, resp.Body.Bytes()).Data, 1)
}

func TestCreateRecipe_IgnoresOwnerField(t *testing.T) {
	ts := setupTestServer(t)
	owner := ts.createUser(t)
	other := ts.createUser(t)

	body := sampleRecipe("Mine")
	body["user"] = "someone-else"
	recipe := ts.createRecipe(t, owner, body)

	assert.Equal(t, http.StatusOK, ts.api.Get(fmt.Sprintf("/api/v1/recipes/%d", recipe.ID), bearer(owner)).Code)
	assert.Equal(t, http.StatusNotFound, ts.api.Get(fmt.Sprintf("/api/v1/recipes/%d", recipe.ID), bearer(other)).Code)
}

func TestCreateRecipe_Validation(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.createUser(t)

	tests := []struct {
		name  string
		body  map[string]any
		field string
	}{
		{"missing title", map[string]any{"time_minutes": 5, "price": "1.00"}, "title"},
		{"blank title", map[string]any{"title": "  ", "time_minutes": 5, "price": "1.00"}, "title"},
		{"negative time", map[string]any{"title": "x", "time_minutes": -1, "price": "1.00"}, "time_minutes"},
		{"price not a number", map[string]any{"title": "x", "time_minutes": 5, "price": "cheap"}, "price"},
		{"price too precise", map[string]any{"title": "x", "time_minutes": 5, "price": "1.005"}, "price"},
		{"blank tag", map[string]any{"title": "x", "time_minutes": 5, "price": "1.00", "tags": []map[string]any{{"name": " "}}}, "tags[0].name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.api.Post("/api/v1/recipes", bearer(token), tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())

			envelope := decodeEnvelope[any](t, resp.Body.Bytes())
			assert.Equal(t, "VALIDATION", envelope.Code)
			assert.Contains(t, envelope.Details, tt.field)
		})
	}

	resp := ts.api.Get("/api/v1/recipes", bearer(token))
	assert.Empty(t, decodeEnvelope[[]recipeData](t, resp.Body.Bytes()).Data, "nothing persisted")
}

func TestListRecipes_NewestFirstWithoutDescription(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.createUser(t)

	ts.createRecipe(t, token, sampleRecipe("First"))
	ts.createRecipe(t, token, sampleRecipe("Second"))

	resp := ts.api.Get("/api/v1/recipes", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code)

	list := decodeEnvelope[[]recipeData](t, resp.Body.Bytes()).Data
	require.Len(t, list, 2)
	assert.Equal(t, "Second", list[0].Title)
	assert.Equal(t, "First", list[1].Title)
	assert.Nil(t, list[0].Description)
}

func TestListRecipes_EmptyIsArray(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.createUser(t)

	resp := ts.api.Get("/api/v1/recipes", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"data":[]`)
}

func TestUpdateRecipe_Partial(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.createUser(t)

	body := sampleRecipe("Soup")
	body["tags"] = []map[string]any{{"name": "Winter"}}
	recipe := ts.createRecipe(t, token, body)
	path := fmt.Sprintf("/api/v1/recipes/%d", recipe.ID)

	resp := ts.api.Patch(path, bearer(token), map[string]any{"title": "Leek soup"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	updated := decodeEnvelope[recipeData](t, resp.Body.Bytes()).Data
	assert.Equal(t, "Leek soup", updated.Title)
	assert.Equal(t, 10, updated.TimeMinutes)
	assert.Equal(t, []string{"Winter"}, entityNames(updated.Tags), "omitted tags unchanged")

	resp = ts.api.Patch(path, bearer(token), map[string]any{"tags": []map[string]any{}})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Empty(t, decodeEnvelope[recipeData](t, resp.Body.Bytes()).Data.Tags, "empty list clears")

	resp = ts.api.Get("/api/v1/tags", bearer(token))
	assert.Len(t, decodeEnvelope[[]entityData](t, resp.Body.Bytes()).Data, 1, "detached tag survives")
}

func TestReplaceRecipe(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.createUser(t)

	recipe := ts.createRecipe(t, token, sampleRecipe("Bread"))
	path := fmt.Sprintf("/api/v1/recipes/%d", recipe.ID)

	resp := ts.api.Put(path, bearer(token), map[string]any{"title": "Sourdough"})
	assert.Equal(t, http.StatusBadRequest, resp.Code, "PUT needs time_minutes and price")

	full := map[string]any{
		"title":        "Sourdough",
		"time_minutes": 600,
		"price":        "3.10",
		"ingredients":  []map[string]any{{"name": "Flour"}, {"name": "Water"}, {"name": "Salt"}},
	}
	resp = ts.api.Put(path, bearer(token), full)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	replaced := decodeEnvelope[recipeData](t, resp.Body.Bytes()).Data
	assert.Equal(t, "Sourdough", replaced.Title)
	assert.Equal(t, 600, replaced.TimeMinutes)
	assert.Equal(t, "3.10", replaced.Price)
	assert.Equal(t, []string{"Flour", "Salt", "Water"}, entityNames(replaced.Ingredients))
}

func TestReplaceRecipe_AcceptsTagsFromResponse(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.createUser(t)

	body := sampleRecipe("Ramen")
	body["tags"] = []map[string]any{{"name": "Japanese"}, {"name": "Noodles"}}
	recipe := ts.createRecipe(t, token, body)
	path := fmt.Sprintf("/api/v1/recipes/%d", recipe.ID)

	resp := ts.api.Get(path, bearer(token))
	require.Equal(t, http.StatusOK, resp.Code)
	fetched := decodeEnvelope[recipeData](t, resp.Body.Bytes()).Data

	full := sampleRecipe("Shoyu ramen")
	full["tags"] = fetched.Tags
	resp = ts.api.Put(path, bearer(token), full)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	replaced := decodeEnvelope[recipeData](t, resp.Body.Bytes()).Data
	assert.ElementsMatch(t, fetched.Tags, replaced.Tags)
}

func TestCreateRecipe_NumericPrice(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.createUser(t)

	body := sampleRecipe("Flatbread")
	body["price"] = 5.25
	recipe := ts.createRecipe(t, token, body)
	assert.Equal(t, "5.25", recipe.Price)

	body["price"] = 1.005
	resp := ts.api.Post("/api/v1/recipes", bearer(token), body)
	require.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())
	assert.Contains(t, decodeEnvelope[any](t, resp.Body.Bytes()).Details, "price")
}

func TestUpdateRecipe_RejectsNull(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.createUser(t)

	body := sampleRecipe("Green curry")
	body["tags"] = []map[string]any{{"name": "Thai"}}
	recipe := ts.createRecipe(t, token, body)
	path := fmt.Sprintf("/api/v1/recipes/%d", recipe.ID)

	resp := ts.api.Patch(path, bearer(token), map[string]any{"tags": nil})
	require.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())
	env := decodeEnvelope[any](t, resp.Body.Bytes())
	assert.Equal(t, "VALIDATION", env.Code)
	assert.Contains(t, env.Details, "tags")

	resp = ts.api.Get(path, bearer(token))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, []string{"Thai"}, entityNames(decodeEnvelope[recipeData](t, resp.Body.Bytes()).Data.Tags))
}

func TestRecipe_CrossOwnerIsNotFound(t *testing.T) {
	ts := setupTestServer(t)
	owner := ts.createUser(t)
	intruder := ts.createUser(t)

	recipe := ts.createRecipe(t, owner, sampleRecipe("Secret sauce"))
	path := fmt.Sprintf("/api/v1/recipes/%d", recipe.ID)

	for _, resp := range []int{
		ts.api.Get(path, bearer(intruder)).Code,
		ts.api.Patch(path, bearer(intruder), map[string]any{"title": "Mine now"}).Code,
		ts.api.Put(path, bearer(intruder), sampleRecipe("Mine now")).Code,
		ts.api.Delete(path, bearer(intruder)).Code,
	} {
		assert.Equal(t, http.StatusNotFound, resp)
	}

	resp := ts.api.Get(path, bearer(owner))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "Secret sauce", decodeEnvelope[recipeData](t, resp.Body.Bytes()).Data.Title)

	resp = ts.api.Get("/api/v1/recipes", bearer(intruder))
	assert.Empty(t, decodeEnvelope[[]recipeData](t, resp.Body.Bytes()).Data)
}

func TestDeleteRecipe(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.createUser(t)

	body := sampleRecipe("Toast")
	body["ingredients"] = []map[string]any{{"name": "Bread"}}
	recipe := ts.createRecipe(t, token, body)
	path := fmt.Sprintf("/api/v1/recipes/%d", recipe.ID)

	resp := ts.api.Delete(path, bearer(token))
	assert.Equal(t, http.StatusNoContent, resp.Code)
	assert.Empty(t, resp.Body.String())

	assert.Equal(t, http.StatusNotFound, ts.api.Get(path, bearer(token)).Code)
	assert.Equal(t, http.StatusNotFound, ts.api.Delete(path, bearer(token)).Code)

	resp = ts.api.Get("/api/v1/ingredients", bearer(token))
	assert.Len(t, decodeEnvelope[[]entityData](t, resp.Body.Bytes()).Data, 1)
}
