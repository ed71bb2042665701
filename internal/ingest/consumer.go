package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/aurelioventura/healthscan-backend/pkg/db/models"
	"github.com/aurelioventura/healthscan-backend/pkg/enums"
	pkgerrors "github.com/aurelioventura/healthscan-backend/pkg/errors"
	"github.com/aurelioventura/healthscan-backend/pkg/logger"
)

const ingestConsumerName = "analysis"

// Postgres unique_violation class.
const pgUniqueViolation = "23505"

type productCreator interface {
	Create(ctx context.Context, product *models.Product) (*models.Product, error)
}

type idempotencyChecker interface {
	CheckAndMarkProcessed(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error)
	Delete(ctx context.Context, consumer string, eventID uuid.UUID) error
}

type changePublisher interface {
	Publish(ctx context.Context, channel string, payload any) error
	ProductEventsChannel() string
}

// Consumer persists finished AI analyses and announces the change on the
// product events channel.
type Consumer struct {
	repo      productCreator
	manager   idempotencyChecker
	publisher changePublisher
	logg      *logger.Logger
}

// NewConsumer builds a new analysis-results consumer.
func NewConsumer(repo productCreator, manager idempotencyChecker, publisher changePublisher, logg *logger.Logger) (*Consumer, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("change publisher required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		repo:      repo,
		manager:   manager,
		publisher: publisher,
		logg:      logg,
	}, nil
}

// Process validates and persists one analysis result. Duplicate events and
// duplicate rows both resolve as already-processed, not as failures.
func (c *Consumer) Process(ctx context.Context, data []byte) error {
	var payload AnalysisResultPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode analysis payload")
	}
	if err := payload.Validate(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validate analysis payload")
	}

	logCtx := c.logg.WithFields(ctx, map[string]any{
		"event_id": payload.EventID,
		"product":  payload.Name,
	})

	eventID, err := uuid.Parse(payload.EventID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "parse event id")
	}

	already, err := c.manager.CheckAndMarkProcessed(ctx, ingestConsumerName, eventID)
	if err != nil {
		return pkgerrors.Classify(err, "idempotency check")
	}
	if already {
		c.logg.Info(logCtx, "analysis event already processed")
		return nil
	}

	product, err := buildProduct(payload)
	if err != nil {
		c.logg.Error(logCtx, "failed to build product row", err)
		_ = c.manager.Delete(ctx, ingestConsumerName, eventID)
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "build product row")
	}

	if _, err := c.repo.Create(ctx, product); err != nil {
		if isUniqueViolation(err) {
			c.logg.Info(logCtx, "product row already exists")
			return nil
		}
		c.logg.Error(logCtx, "failed to insert product", err)
		_ = c.manager.Delete(ctx, ingestConsumerName, eventID)
		return pkgerrors.Classify(err, "insert product")
	}

	if err := c.publisher.Publish(ctx, c.publisher.ProductEventsChannel(), payload.EventID); err != nil {
		// The row is committed; a lost change event only delays the refetch.
		c.logg.Warn(logCtx, "failed to publish product change event")
	}

	c.logg.Info(logCtx, "analysis result ingested")
	return nil
}

func buildProduct(payload AnalysisResultPayload) (*models.Product, error) {
	category, err := enums.ParseProductCategory(payload.Category)
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:                      payload.Name,
		Company:                   payload.Company,
		Ingredients:               pq.StringArray(payload.Ingredients),
		Category:                  category,
		HealthScore:               payload.HealthScore,
		Summary:                   payload.Summary,
		Pros:                      pq.StringArray(payload.Pros),
		Cons:                      pq.StringArray(payload.Cons),
		HasFatalIncidents:         payload.HasFatalIncidents,
		HasSeriousAdverseEvents:   payload.HasSeriousAdverseEvents,
		AllergyRisks:              pq.StringArray(payload.AllergyRisks),
		DrugInteractions:          pq.StringArray(payload.DrugInteractions),
		SpecialPopulationWarnings: pq.StringArray(payload.SpecialPopulationWarnings),
		SafetyIncidents:           pq.StringArray(payload.SafetyIncidents),
		EnvironmentalImpact:       payload.EnvironmentalImpact,
		AmazonURL:                 payload.AmazonURL,
	}

	if payload.AnalysisCost != nil {
		cost, err := decimal.NewFromString(*payload.AnalysisCost)
		if err != nil {
			return nil, fmt.Errorf("parse analysis cost: %w", err)
		}
		product.AnalysisCost = &cost
	}

	return product, nil
}

func isUniqueViolation(err error) bool {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgxErr.Code == pgUniqueViolation
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pgUniqueViolation
	}
	return false
}
