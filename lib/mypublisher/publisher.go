package mypublisher

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"

	"github.com/MarcGrol/useradminclient/lib/myevents"
	"github.com/MarcGrol/useradminclient/lib/mypubsub"
	"github.com/MarcGrol/useradminclient/lib/mytime"
)

type pubsubPublisher struct {
	pubSub mypubsub.PubSub
	nower  mytime.Nower
}

func New(c context.Context) (Publisher, func(), error) {
	pubSub, cleanup, err := mypubsub.New(c)
	if err != nil {
		return nil, func() {}, fmt.Errorf("error creating pubsub: %s", err)
	}

	return NewPublisher(pubSub, mytime.RealNower{}), cleanup, nil
}

func NewPublisher(pubSub mypubsub.PubSub, nower mytime.Nower) Publisher {
	return &pubsubPublisher{
		pubSub: pubSub,
		nower:  nower,
	}
}

func (p *pubsubPublisher) CreateTopic(c context.Context, topic string) error {
	return p.pubSub.CreateTopic(c, topic)
}

func (p *pubsubPublisher) Publish(c context.Context, topic string, event myevents.Event) error {
	envelope, err := wrap(topic, event, p.nower)
	if err != nil {
		return err
	}

	envelopeJSON, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("error marshalling envelope: %s", err)
	}

	err = p.pubSub.Publish(c, topic, string(envelopeJSON))
	if err != nil {
		return fmt.Errorf("error publishing %s: %s", envelope.String(), err)
	}

	return nil
}

func wrap(topic string, event myevents.Event, nower mytime.Nower) (myevents.EventEnvelope, error) {
	jsonPayload, err := json.Marshal(event)
	if err != nil {
		return myevents.EventEnvelope{}, fmt.Errorf("error marshalling event-payload: %s", err)
	}

	envelope := myevents.EventEnvelope{
		Topic:         topic,
		AggregateUID:  event.GetAggregateName(),
		EventTypeName: event.GetEventTypeName(),
		EventPayload:  string(jsonPayload),
		Published:     false,
	}

	// In order to be idempotent, we do NOT use an uuid to identify the event
	envelope.UID, err = checksum(envelope)
	if err != nil {
		return myevents.EventEnvelope{}, fmt.Errorf("error checksumming event-payload: %s", err)
	}
	// In order to be idempotent, we exclude timestamp from the checksum
	envelope.CreatedAt = nower.Now()

	return envelope, nil
}

func checksum(envelope myevents.EventEnvelope) (string, error) {
	asJSON, err := json.Marshal(envelope)
	if err != nil {
		return "", err
	}

	sha2 := sha256.New()
	_, err = io.WriteString(sha2, string(asJSON))
	if err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(sha2.Sum(nil)), nil
}
