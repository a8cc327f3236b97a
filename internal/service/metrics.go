package service

import "github.com/prometheus/client_golang/prometheus"

var categoryMutations = prometheus.NewCounterVec(
	prometheus.CounterOpts{Name: "category_mutations_total", Help: "Successful category mutations"},
	[]string{"action"},
)

func init() { prometheus.MustRegister(categoryMutations) }
