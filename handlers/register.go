package handlers

import (
	"github.com/missionai/agrimesh/handoff"
	"github.com/missionai/agrimesh/resilience"
)

// RegisterAll registers every specialist handler on the registry. The
// services wrapper may be nil; advisory handlers then answer from their
// deterministic baselines only.
func RegisterAll(registry *handoff.Registry, services *resilience.Services) {
	registry.Register(NewDiseaseHandler(services))
	registry.Register(NewSoilHandler(services))
	registry.Register(NewWeatherHandler(services))
	registry.Register(NewMarketHandler(services))
	registry.Register(NewCommunityHandler(services))
	registry.Register(NewSchemesHandler())
	registry.Register(NewFinanceHandler())
}
