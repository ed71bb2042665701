package product

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aurelioventura/healthscan-backend/pkg/db/models"
	"github.com/aurelioventura/healthscan-backend/pkg/enums"
)

// SearchFilter narrows the product listing. A non-empty Query takes
// precedence over Category.
type SearchFilter struct {
	Query    string
	Category *enums.ProductCategory
}

// Repository wires together product persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByID loads a single product.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// Create inserts a new product row.
func (r *Repository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// Count returns how many products match the filter.
func (r *Repository) Count(ctx context.Context, filter SearchFilter) (int64, error) {
	var total int64
	qb := r.applyFilter(r.db.WithContext(ctx).Model(&models.Product{}), filter)
	if err := qb.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// List returns one window of matching products, newest first.
func (r *Repository) List(ctx context.Context, filter SearchFilter, offset, limit int) ([]models.Product, error) {
	var rows []models.Product
	qb := r.applyFilter(r.db.WithContext(ctx).Model(&models.Product{}), filter)
	err := qb.
		Order("created_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&rows).
		Error
	return rows, err
}

// All returns the full product collection, newest first. Statistics are
// always recomputed from the whole set, never incrementally.
func (r *Repository) All(ctx context.Context) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).
		Error
	return rows, err
}

func (r *Repository) applyFilter(qb *gorm.DB, filter SearchFilter) *gorm.DB {
	if search := strings.TrimSpace(filter.Query); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		return qb.Where("LOWER(name) LIKE ?", pattern)
	}
	if filter.Category != nil {
		return qb.Where("category = ?", *filter.Category)
	}
	return qb
}
