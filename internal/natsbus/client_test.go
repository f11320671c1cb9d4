package natsbus

import (
	"testing"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
)

func TestEventSubject(t *testing.T) {
	assert.Equal(t, "dental.events.c1.print_order.created", EventSubject("c1", "print_order.created"))
}

func TestStreamConfigs_SubjectsDoNotOverlap(t *testing.T) {
	cfgs := streamConfigs()
	assert.Len(t, cfgs, 2)

	byName := map[string]*nats.StreamConfig{}
	for _, c := range cfgs {
		byName[c.Name] = c
	}
	assert.Equal(t, []string{"dental.events.>"}, byName[EventsStream].Subjects)
	assert.Equal(t, []string{"dental.jobs.>"}, byName[JobsStream].Subjects)
	assert.Equal(t, nats.WorkQueuePolicy, byName[JobsStream].Retention)
}
