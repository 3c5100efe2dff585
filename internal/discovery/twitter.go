package discovery

import (
	"math/rand"

	"github.com/glorenz/netbot/internal/models"
	"github.com/glorenz/netbot/internal/platform"
	"github.com/glorenz/netbot/internal/repository"
)

// Twitter admission window: threads with fewer than 5 replies are dead,
// threads past 50 bury a new comment.
const (
	twitterMinReplies = 5
	twitterMaxReplies = 50
)

func NewTwitter(client platform.Client, records repository.DiscoveryRepository, interactions repository.InteractionRepository, selfUsername string, vips, tags []string, rng *rand.Rand) Strategy {
	return &vipTagStrategy{
		platform: models.PlatformTwitter,
		client:   client,
		validator: NewValidator(records, interactions, selfUsername,
			ReplyCountWindow(twitterMinReplies, twitterMaxReplies)),
		vips:    vips,
		tags:    tags,
		rng:     rng,
		vipBias: 0.7,
	}
}
