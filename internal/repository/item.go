package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/craftfolio/craftfolio/internal/model"
)

type ItemRepository interface {
	Create(ctx context.Context, item *model.PortfolioItem) error
	ByUserID(ctx context.Context, userID string) ([]*model.PortfolioItem, error)
	ByUserIDUnordered(ctx context.Context, userID string) ([]*model.PortfolioItem, error)
	DeleteOwned(ctx context.Context, id, userID string) error
}

type itemRepository struct {
	db *sqlx.DB
}

func NewItemRepository(db *sqlx.DB) ItemRepository {
	return &itemRepository{db: db}
}

func (r *itemRepository) Create(ctx context.Context, item *model.PortfolioItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO portfolio_items (id, user_id, title, external_link, description, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.ExecContext(ctx, query,
		item.ID,
		item.UserID,
		item.Title,
		item.ExternalLink,
		item.Description,
		item.CreatedAt,
	)
	return err
}

func (r *itemRepository) ByUserID(ctx context.Context, userID string) ([]*model.PortfolioItem, error) {
	items := []*model.PortfolioItem{}
	query := `SELECT * FROM portfolio_items WHERE user_id = $1 ORDER BY created_at DESC`

	err := r.db.SelectContext(ctx, &items, query, userID)
	if err != nil {
		return nil, err
	}

	return items, nil
}

func (r *itemRepository) ByUserIDUnordered(ctx context.Context, userID string) ([]*model.PortfolioItem, error) {
	items := []*model.PortfolioItem{}
	query := `SELECT * FROM portfolio_items WHERE user_id = $1`

	err := r.db.SelectContext(ctx, &items, query, userID)
	if err != nil {
		return nil, err
	}

	return items, nil
}

// DeleteOwned deletes by id and owner together; zero affected rows is fine.
func (r *itemRepository) DeleteOwned(ctx context.Context, id, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM portfolio_items WHERE id = $1 AND user_id = $2`, id, userID)
	return err
}
