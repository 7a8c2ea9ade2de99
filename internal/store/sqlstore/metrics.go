package sqlstore

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var getOrCreateRaces = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "recipes_store_get_or_create_races_total",
		Help: "Get-or-create calls that lost an insert race and re-read the winning row",
	},
	[]string{"kind"},
)
