package pricetracker

import "go.opentelemetry.io/otel"

var tracer = otel.Tracer("services/pricetracker")
