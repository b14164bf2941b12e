package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/duet/internal/models"
	"github.com/mmynk/duet/internal/storage"
)

// CreateCategory persists a new category.
func (s *SQLiteStore) CreateCategory(ctx context.Context, category *models.Category) error {
	return insertCategory(ctx, s.db, category)
}

// CreateCategories persists several categories in one transaction.
func (s *SQLiteStore) CreateCategories(ctx context.Context, categories []*models.Category) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, c := range categories {
			if err := insertCategory(ctx, tx, c); err != nil {
				return err
			}
		}
		return nil
	})
}

func insertCategory(ctx context.Context, q querier, category *models.Category) error {
	if category.ID == "" {
		category.ID = uuid.New().String()
	}
	if category.CreatedAt == 0 {
		category.CreatedAt = time.Now().Unix()
	}

	_, err := q.ExecContext(ctx,
		"INSERT INTO categories (id, user_id, name, created_at) VALUES (?, ?, ?, ?)",
		category.ID, category.UserID, category.Name, category.CreatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: category %q", storage.ErrAlreadyExists, category.Name)
	}
	if err != nil {
		return fmt.Errorf("failed to insert category: %w", err)
	}
	return nil
}

// GetCategory retrieves a category by ID.
func (s *SQLiteStore) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	c := &models.Category{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, user_id, name, created_at FROM categories WHERE id = ?", id,
	).Scan(&c.ID, &c.UserID, &c.Name, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: category %s", storage.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return c, nil
}

// ListCategories returns the user's categories ordered by name.
func (s *SQLiteStore) ListCategories(ctx context.Context, userID string) ([]*models.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, user_id, name, created_at FROM categories WHERE user_id = ? ORDER BY name",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []*models.Category
	for rows.Next() {
		c := &models.Category{}
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate categories: %w", err)
	}

	return categories, nil
}

// RenameCategory changes a category's name.
func (s *SQLiteStore) RenameCategory(ctx context.Context, id, name string) error {
	res, err := s.db.ExecContext(ctx, "UPDATE categories SET name = ? WHERE id = ?", name, id)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: category %q", storage.ErrAlreadyExists, name)
	}
	if err != nil {
		return fmt.Errorf("failed to rename category: %w", err)
	}
	return expectOneRow(res, "category", id)
}

// DeleteCategory removes a category that no transaction references.
func (s *SQLiteStore) DeleteCategory(ctx context.Context, id string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		var count int
		if err := tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM transactions WHERE category_id = ?", id,
		).Scan(&count); err != nil {
			return fmt.Errorf("failed to count category transactions: %w", err)
		}
		if count > 0 {
			return storage.ErrCategoryInUse
		}

		res, err := tx.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("failed to delete category: %w", err)
		}
		return expectOneRow(res, "category", id)
	})
}

// expectOneRow maps zero affected rows to storage.ErrNotFound.
func expectOneRow(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s %s", storage.ErrNotFound, kind, id)
	}
	return nil
}
