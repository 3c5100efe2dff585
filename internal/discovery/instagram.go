package discovery

import (
	"math/rand"

	"github.com/glorenz/netbot/internal/models"
	"github.com/glorenz/netbot/internal/platform"
	"github.com/glorenz/netbot/internal/repository"
)

func NewInstagram(client platform.Client, records repository.DiscoveryRepository, interactions repository.InteractionRepository, selfUsername string, vips, tags []string, rng *rand.Rand) Strategy {
	return &vipTagStrategy{
		platform: models.PlatformInstagram,
		client:   client,
		validator: NewValidator(records, interactions, selfUsername,
			RequireContentOrMedia()),
		vips:    vips,
		tags:    tags,
		rng:     rng,
		vipBias: 0.7,
		hydrate: true,
	}
}
