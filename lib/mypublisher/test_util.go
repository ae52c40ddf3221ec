package mypublisher

import (
	"context"
	"sync"

	"github.com/MarcGrol/useradminclient/lib/myevents"
)

// RecordingPublisher collects published events so tests can assert on them.
type RecordingPublisher struct {
	sync.Mutex
	Events []myevents.Event
}

func NewRecordingPublisher() *RecordingPublisher {
	return &RecordingPublisher{}
}

func (p *RecordingPublisher) CreateTopic(c context.Context, topic string) error {
	return nil
}

func (p *RecordingPublisher) Publish(c context.Context, topic string, event myevents.Event) error {
	p.Lock()
	defer p.Unlock()

	p.Events = append(p.Events, event)

	return nil
}

func (p *RecordingPublisher) EventTypeNames() []string {
	p.Lock()
	defer p.Unlock()

	names := []string{}
	for _, e := range p.Events {
		names = append(names, e.GetEventTypeName())
	}

	return names
}
