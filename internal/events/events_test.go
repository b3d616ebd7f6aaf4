package events

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNopPublisher(t *testing.T) {
	var p Publisher = Nop{}
	assert.NoError(t, p.Publish(context.Background(), ProductCreated, ProductEvent{ProductID: "p1"}))
	assert.NoError(t, p.Close())
}

func TestNATSPublisherUnreachable(t *testing.T) {
	_, err := NewNATSPublisher("nats://127.0.0.1:1", "marketplace", zerolog.Nop())
	assert.Error(t, err)
}
