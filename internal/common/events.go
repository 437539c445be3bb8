package common

import (
	"context"
	"encoding/json"

	"github.com/lazy-lotto/backend/internal/model"
	"github.com/lazy-lotto/backend/pkg/pubsub"
	"github.com/lazy-lotto/backend/pkg/xcontext"
)

const (
	AdminAddedEvent           = "AdminAdded"
	AdminRemovedEvent         = "AdminRemoved"
	PausedEvent               = "Paused"
	UnpausedEvent             = "Unpaused"
	PoolCreatedEvent          = "PoolCreated"
	PoolPausedEvent           = "PoolPaused"
	PoolUnpausedEvent         = "PoolUnpaused"
	PoolClosedEvent           = "PoolClosed"
	PoolEntryCapsSetEvent     = "PoolEntryCapsSet"
	PoolEnteredEvent          = "PoolEntered"
	PoolPrizesUpdatedEvent    = "PoolPrizesUpdated"
	TicketRolledEvent         = "TicketRolled"
	PrizeWonEvent             = "PrizeWon"
	TicketRedeemedToNFTEvent  = "TicketRedeemedToNFT"
	PrizeRedeemedToNFTEvent   = "PrizeRedeemedToNFT"
	PrizeNFTWipedForClaim     = "PrizeNFTWipedForClaim"
	PrizeClaimedEvent         = "PrizeClaimed"
	PoolOwnerChangedEvent     = "PoolOwnerChanged"
	BurnPercentageSetEvent    = "BurnPercentageSet"
	LazyBalanceBonusSetEvent  = "LazyBalanceBonusSet"
	NFTBonusSetEvent          = "NFTBonusSet"
	TimeBonusAddedEvent       = "TimeBonusAdded"
	TimeBonusRemovedEvent     = "TimeBonusRemoved"
	CreationFeesSetEvent      = "CreationFeesSet"
	PlatformPercentageSet     = "PlatformPercentageSet"
	PrizeManagerChangedEvent  = "PrizeManagerChanged"
	GlobalPrizeManagerAdded   = "GlobalPrizeManagerAdded"
	GlobalPrizeManagerRemoved = "GlobalPrizeManagerRemoved"
)

// Emit publishes an event to the configured topic. Publishing is best
// effort, a broker failure must never fail the originating call.
func Emit(ctx context.Context, name string, args map[string]any) {
	publisher := xcontext.Publisher(ctx)
	if publisher == nil {
		return
	}

	b, err := json.Marshal(model.Event{Name: name, Args: args})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot marshal event %s: %v", name, err)
		return
	}

	topic := xcontext.Configs(ctx).Lotto.EventTopic
	if err := publisher.Publish(ctx, topic, &pubsub.Pack{Key: []byte(name), Msg: b}); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot publish event %s: %v", name, err)
	}
}
