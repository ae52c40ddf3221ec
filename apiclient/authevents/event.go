package authevents

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/MarcGrol/useradminclient/lib/myerrors"
	"github.com/MarcGrol/useradminclient/lib/myevents"
)

const (
	TopicName                 = "useradminauth"
	tokenRefreshCompletedName = TopicName + ".tokenRefresh.completed"
	tokenRefreshFailedName    = TopicName + ".tokenRefresh.failed"
	sessionExpiredName        = TopicName + ".session.expired"
)

type AuthEventService interface {
	Subscribe(c context.Context) error
	OnTokenRefreshCompleted(c context.Context, topic string, event TokenRefreshCompleted) error
	OnTokenRefreshFailed(c context.Context, topic string, event TokenRefreshFailed) error
	OnSessionExpired(c context.Context, topic string, event SessionExpired) error
}

func DispatchEvent(c context.Context, reader io.Reader, service AuthEventService) error {
	envelope, err := myevents.ParseEventEnvelope(reader)
	if err != nil {
		return myerrors.NewInvalidInputError(err)
	}

	switch envelope.EventTypeName {
	case tokenRefreshCompletedName:
		{
			event := TokenRefreshCompleted{}
			err := json.Unmarshal([]byte(envelope.EventPayload), &event)
			if err != nil {
				return myerrors.NewInvalidInputError(err)
			}
			return service.OnTokenRefreshCompleted(c, envelope.Topic, event)
		}
	case tokenRefreshFailedName:
		{
			event := TokenRefreshFailed{}
			err := json.Unmarshal([]byte(envelope.EventPayload), &event)
			if err != nil {
				return myerrors.NewInvalidInputError(err)
			}
			return service.OnTokenRefreshFailed(c, envelope.Topic, event)
		}
	case sessionExpiredName:
		{
			event := SessionExpired{}
			err := json.Unmarshal([]byte(envelope.EventPayload), &event)
			if err != nil {
				return myerrors.NewInvalidInputError(err)
			}
			return service.OnSessionExpired(c, envelope.Topic, event)
		}
	default:
		return myerrors.NewNotImplementedError(fmt.Errorf("unknown event %s", envelope.EventTypeName))
	}
}

type TokenRefreshCompleted struct {
	ClientID string
}

func (e TokenRefreshCompleted) GetEventTypeName() string {
	return tokenRefreshCompletedName
}

func (e TokenRefreshCompleted) GetAggregateName() string {
	return e.ClientID
}

type TokenRefreshFailed struct {
	ClientID string
	Reason   string
}

func (e TokenRefreshFailed) GetEventTypeName() string {
	return tokenRefreshFailedName
}

func (e TokenRefreshFailed) GetAggregateName() string {
	return e.ClientID
}

type SessionExpired struct {
	ClientID string
}

func (e SessionExpired) GetEventTypeName() string {
	return sessionExpiredName
}

func (e SessionExpired) GetAggregateName() string {
	return e.ClientID
}
