package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/aurelioventura/healthscan-backend/pkg/db/models"
	"github.com/aurelioventura/healthscan-backend/pkg/enums"
	pkgerrors "github.com/aurelioventura/healthscan-backend/pkg/errors"
	"github.com/aurelioventura/healthscan-backend/pkg/logger"
)

type fakeCreator struct {
	created []*models.Product
	err     error
}

func (f *fakeCreator) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, product)
	return product, nil
}

type fakeIdem struct {
	already  bool
	checkErr error
	checks   int
	deleted  []uuid.UUID
}

func (f *fakeIdem) CheckAndMarkProcessed(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error) {
	f.checks++
	return f.already, f.checkErr
}

func (f *fakeIdem) Delete(ctx context.Context, consumer string, eventID uuid.UUID) error {
	f.deleted = append(f.deleted, eventID)
	return nil
}

type fakePublisher struct {
	published []string
	err       error
}

func (f *fakePublisher) Publish(ctx context.Context, channel string, payload any) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, channel)
	return nil
}

func (f *fakePublisher) ProductEventsChannel() string {
	return "hs:events:products"
}

func testPayload() AnalysisResultPayload {
	score := 72
	cost := "0.0450"
	return AnalysisResultPayload{
		EventID:      uuid.New().String(),
		Name:         "Sparkling Water",
		Category:     "healthy",
		HealthScore:  &score,
		Ingredients:  []string{"water", "carbon dioxide"},
		AnalysisCost: &cost,
	}
}

func encode(t *testing.T, payload AnalysisResultPayload) []byte {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return data
}

func newTestConsumer(t *testing.T, creator *fakeCreator, idem *fakeIdem, publisher *fakePublisher) *Consumer {
	t.Helper()
	consumer, err := NewConsumer(creator, idem, publisher, logger.New(logger.Options{ServiceName: "test"}))
	if err != nil {
		t.Fatalf("NewConsumer failed: %v", err)
	}
	return consumer
}

func TestProcessPersistsAndPublishesChange(t *testing.T) {
	creator := &fakeCreator{}
	idem := &fakeIdem{}
	publisher := &fakePublisher{}
	consumer := newTestConsumer(t, creator, idem, publisher)

	if err := consumer.Process(context.Background(), encode(t, testPayload())); err != nil {
		t.Fatalf("process failed: %v", err)
	}

	if len(creator.created) != 1 {
		t.Fatalf("expected 1 insert, got %d", len(creator.created))
	}
	product := creator.created[0]
	if product.Category != enums.ProductCategoryHealthy {
		t.Fatalf("unexpected category %q", product.Category)
	}
	if product.AnalysisCost == nil || product.AnalysisCost.String() != "0.045" {
		t.Fatalf("unexpected analysis cost %v", product.AnalysisCost)
	}
	if len(publisher.published) != 1 || publisher.published[0] != "hs:events:products" {
		t.Fatalf("expected one change event on the products channel, got %v", publisher.published)
	}
}

func TestProcessSkipsAlreadyProcessedEvents(t *testing.T) {
	creator := &fakeCreator{}
	idem := &fakeIdem{already: true}
	publisher := &fakePublisher{}
	consumer := newTestConsumer(t, creator, idem, publisher)

	if err := consumer.Process(context.Background(), encode(t, testPayload())); err != nil {
		t.Fatalf("duplicate event must not fail: %v", err)
	}
	if len(creator.created) != 0 {
		t.Fatal("duplicate event must not insert a row")
	}
	if len(publisher.published) != 0 {
		t.Fatal("duplicate event must not publish a change event")
	}
}

func TestProcessTreatsUniqueViolationAsProcessed(t *testing.T) {
	creator := &fakeCreator{err: &pgconn.PgError{Code: "23505", ConstraintName: "products_pkey"}}
	idem := &fakeIdem{}
	publisher := &fakePublisher{}
	consumer := newTestConsumer(t, creator, idem, publisher)

	if err := consumer.Process(context.Background(), encode(t, testPayload())); err != nil {
		t.Fatalf("unique violation must resolve as already processed: %v", err)
	}
	if len(idem.deleted) != 0 {
		t.Fatal("unique violation must keep the idempotency marker")
	}
	if len(publisher.published) != 0 {
		t.Fatal("unique violation must not publish a change event")
	}
}

func TestProcessRejectsInvalidCategory(t *testing.T) {
	payload := testPayload()
	payload.Category = "toxic"
	idem := &fakeIdem{}
	consumer := newTestConsumer(t, &fakeCreator{}, idem, &fakePublisher{})

	err := consumer.Process(context.Background(), encode(t, payload))
	if err == nil {
		t.Fatal("expected validation error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected %s, got %v", pkgerrors.CodeValidation, err)
	}
	if idem.checks != 0 {
		t.Fatal("invalid payload must be rejected before the idempotency check")
	}
}

func TestProcessReleasesMarkerOnInsertFailure(t *testing.T) {
	creator := &fakeCreator{err: errors.New("connection reset")}
	idem := &fakeIdem{}
	consumer := newTestConsumer(t, creator, idem, &fakePublisher{})

	err := consumer.Process(context.Background(), encode(t, testPayload()))
	if err == nil {
		t.Fatal("expected insert error")
	}
	if !pkgerrors.Retryable(err) {
		t.Fatalf("insert failure must be retryable, got %v", err)
	}
	if len(idem.deleted) != 1 {
		t.Fatalf("insert failure must release the idempotency marker, got %d deletes", len(idem.deleted))
	}
}

func TestProcessToleratesPublishFailure(t *testing.T) {
	creator := &fakeCreator{}
	publisher := &fakePublisher{err: errors.New("redis down")}
	consumer := newTestConsumer(t, creator, &fakeIdem{}, publisher)

	if err := consumer.Process(context.Background(), encode(t, testPayload())); err != nil {
		t.Fatalf("publish failure must not fail the ingest: %v", err)
	}
	if len(creator.created) != 1 {
		t.Fatal("row must still be inserted")
	}
}
