package authevents

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MarcGrol/useradminclient/lib/myerrors"
	"github.com/MarcGrol/useradminclient/lib/myevents"
	"github.com/MarcGrol/useradminclient/lib/mypublisher"
	"github.com/MarcGrol/useradminclient/lib/mytime"
)

type capturingPubSub struct {
	published []string
}

func (p *capturingPubSub) Publish(c context.Context, topic string, data string) error {
	p.published = append(p.published, data)
	return nil
}

func (p *capturingPubSub) CreateTopic(c context.Context, topic string) error {
	return nil
}

func (p *capturingPubSub) Subscribe(c context.Context, topic string, urlToPostTo string) error {
	return nil
}

type recordingEventService struct {
	refreshCompleted []TokenRefreshCompleted
	refreshFailed    []TokenRefreshFailed
	sessionExpired   []SessionExpired
}

func (s *recordingEventService) Subscribe(c context.Context) error {
	return nil
}

func (s *recordingEventService) OnTokenRefreshCompleted(c context.Context, topic string, event TokenRefreshCompleted) error {
	s.refreshCompleted = append(s.refreshCompleted, event)
	return nil
}

func (s *recordingEventService) OnTokenRefreshFailed(c context.Context, topic string, event TokenRefreshFailed) error {
	s.refreshFailed = append(s.refreshFailed, event)
	return nil
}

func (s *recordingEventService) OnSessionExpired(c context.Context, topic string, event SessionExpired) error {
	s.sessionExpired = append(s.sessionExpired, event)
	return nil
}

func pushRequestFor(t *testing.T, envelopeJSON string) *bytes.Reader {
	body, err := json.Marshal(myevents.PushRequest{
		Message: myevents.PushMessage{
			Data: []byte(envelopeJSON),
		},
		Subscription: TopicName,
	})
	assert.NoError(t, err)

	return bytes.NewReader(body)
}

// Published events must arrive at the right handler after travelling as a
// pubsub push message: publisher envelope-wrapping on one side, DispatchEvent
// on the other.
func TestPublishThenDispatch(t *testing.T) {
	c := context.TODO()

	pubSub := &capturingPubSub{}
	publisher := mypublisher.NewPublisher(pubSub, mytime.RealNower{})
	service := &recordingEventService{}

	assert.NoError(t, publisher.Publish(c, TopicName, TokenRefreshCompleted{ClientID: "useradmin-frontend"}))
	assert.NoError(t, publisher.Publish(c, TopicName, TokenRefreshFailed{ClientID: "useradmin-frontend", Reason: "token endpoint returned 500"}))
	assert.NoError(t, publisher.Publish(c, TopicName, SessionExpired{ClientID: "useradmin-frontend"}))
	assert.Len(t, pubSub.published, 3)

	for _, envelopeJSON := range pubSub.published {
		err := DispatchEvent(c, pushRequestFor(t, envelopeJSON), service)
		assert.NoError(t, err)
	}

	assert.Equal(t, []TokenRefreshCompleted{{ClientID: "useradmin-frontend"}}, service.refreshCompleted)
	assert.Equal(t, []TokenRefreshFailed{{ClientID: "useradmin-frontend", Reason: "token endpoint returned 500"}}, service.refreshFailed)
	assert.Equal(t, []SessionExpired{{ClientID: "useradmin-frontend"}}, service.sessionExpired)
}

func TestDispatchUnknownEvent(t *testing.T) {
	envelopeJSON, err := json.Marshal(myevents.EventEnvelope{
		Topic:         TopicName,
		EventTypeName: TopicName + ".something.else",
	})
	assert.NoError(t, err)

	err = DispatchEvent(context.TODO(), pushRequestFor(t, string(envelopeJSON)), &recordingEventService{})
	assert.Error(t, err)
	assert.Equal(t, http.StatusNotImplemented, myerrors.GetHTTPStatus(err))
}

func TestDispatchMalformedPushRequest(t *testing.T) {
	err := DispatchEvent(context.TODO(), bytes.NewReader([]byte("not json")), &recordingEventService{})
	assert.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, myerrors.GetHTTPStatus(err))
}
