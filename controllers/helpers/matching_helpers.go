package helpers

import (
	"encoding/json"

	"github.com/zenithex/zenex/config"
	"github.com/zenithex/zenex/matching"
)

const MatchingSubject = "matching"

func PublishMatchingAction(payload *matching.PayloadMessage) error {
	message, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return config.Nats.Publish(MatchingSubject, message)
}
