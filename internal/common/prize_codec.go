package common

import (
	"github.com/fatih/structs"
	"github.com/lazy-lotto/backend/internal/entity"
	"github.com/lazy-lotto/backend/internal/model"
	"github.com/mitchellh/mapstructure"
)

// EncodePrizeSnapshot freezes a prize package into the queue row. Once a
// win is queued the payout no longer depends on the pool's live inventory.
func EncodePrizeSnapshot(prize model.PrizePackage) entity.Map {
	s := structs.New(prize)
	s.TagName = "mapstructure"
	return s.Map()
}

// DecodePrizeSnapshot restores the wire form from a queue row. Numbers come
// back as float64 after the JSON round trip through the database column, so
// decoding is weakly typed.
func DecodePrizeSnapshot(snapshot entity.Map) (model.PrizePackage, error) {
	var prize model.PrizePackage
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &prize,
	})
	if err != nil {
		return model.PrizePackage{}, err
	}

	if err := decoder.Decode(map[string]any(snapshot)); err != nil {
		return model.PrizePackage{}, err
	}

	return prize, nil
}
