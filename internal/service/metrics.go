package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	entitiesCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipes_entities_created_total",
			Help: "Tags and ingredients created implicitly by recipe writes",
		},
		[]string{"kind"},
	)

	recipeWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipes_recipe_writes_total",
			Help: "Recipe writes by operation",
		},
		[]string{"op"},
	)
)
