package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"listings-service/internal/constants"
	"listings-service/internal/contextkeys"
	"listings-service/internal/contracts"
	"listings-service/internal/core/domain"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	routingKey string
	body       []byte
	headers    amqp.Table
	err        error
}

func (p *recordingPublisher) PublishJSON(ctx context.Context, routingKey string, payload interface{}, headers amqp.Table) error {
	p.routingKey = routingKey
	p.headers = headers
	p.body, _ = json.Marshal(payload)
	return p.err
}

type countingRefresh struct {
	calls int
	err   error
}

func (r *countingRefresh) Execute(ctx context.Context) (*domain.CatalogState, error) {
	r.calls++
	return &domain.CatalogState{}, r.err
}

func TestCatalogEventsPublisherMatchesSchema(t *testing.T) {
	pub := &recordingPublisher{}
	a, err := NewCatalogEventsPublisher(pub, constants.RoutingKeyCatalogRefreshed)
	require.NoError(t, err)

	ctx := contextkeys.ContextWithTraceID(context.Background(), "trace-1")
	err = a.PublishCatalogRefreshed(ctx, domain.CatalogState{
		Status:   domain.CatalogReady,
		Count:    42,
		Source:   "http",
		LoadedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.Equal(t, constants.RoutingKeyCatalogRefreshed, pub.routingKey)
	assert.Equal(t, "trace-1", pub.headers[constants.HeaderTraceID])
	assert.NoError(t, contracts.ValidateEvent(contracts.CatalogRefreshedV1, pub.body))
}

func TestCatalogEventsPublisherWrapsError(t *testing.T) {
	a, err := NewCatalogEventsPublisher(&recordingPublisher{err: errors.New("closed")}, "key")
	require.NoError(t, err)

	assert.Error(t, a.PublishCatalogRefreshed(context.Background(), domain.CatalogState{}))

	_, err = NewCatalogEventsPublisher(nil, "key")
	assert.Error(t, err)
}

func TestHandleBatchRefreshesOnce(t *testing.T) {
	refresh := &countingRefresh{}
	a := &ListingsChangedConsumerAdapter{useCase: refresh, logger: contextkeys.NoopLogger()}

	batch := []amqp.Delivery{
		{Body: []byte(`{"source":"crm","ids":["a"]}`), Headers: amqp.Table{constants.HeaderTraceID: "t"}},
		{Body: []byte(`{"source":"crm"}`)},
		{Body: []byte(`{"ids":"not-a-list"}`)},
	}
	require.NoError(t, a.handleBatch(context.Background(), batch))
	assert.Equal(t, 1, refresh.calls)

	require.NoError(t, a.handleBatch(context.Background(), []amqp.Delivery{{Body: []byte(`garbage`)}}))
	assert.Equal(t, 1, refresh.calls, "a batch without valid events must not refresh")

	refresh.err = errors.New("upstream down")
	assert.Error(t, a.handleBatch(context.Background(), batch[:1]))
}

func TestPkgLoggerBridgeFields(t *testing.T) {
	fields := toFields([]interface{}{"queue", "q1", 5, "skipped", "dangling"})
	assert.Equal(t, "q1", fields["queue"])
	assert.Len(t, fields, 1)
}
