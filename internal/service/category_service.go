package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/mmynk/duet/internal/models"
	"github.com/mmynk/duet/internal/storage"
	"github.com/mmynk/duet/pkg/api"
)

// CategoryService manages a user's categories.
type CategoryService struct {
	store  storage.CategoryStore
	logger *slog.Logger
}

func NewCategoryService(store storage.CategoryStore, logger *slog.Logger) *CategoryService {
	return &CategoryService{store: store, logger: logger}
}

func (s *CategoryService) ListCategories(ctx context.Context, _ *connect.Request[emptypb.Empty]) (*connect.Response[api.ListCategoriesResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	categories, err := s.store.ListCategories(ctx, userID)
	if err != nil {
		return nil, toConnectError(err)
	}

	resp := &api.ListCategoriesResponse{Categories: make([]*api.Category, len(categories))}
	for i, c := range categories {
		resp.Categories[i] = toAPICategory(c)
	}
	return connect.NewResponse(resp), nil
}

func (s *CategoryService) CreateCategory(ctx context.Context, req *connect.Request[api.CreateCategoryRequest]) (*connect.Response[api.CreateCategoryResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	req.Msg.Name = strings.TrimSpace(req.Msg.Name)
	if err := validate(req.Msg); err != nil {
		return nil, err
	}

	category := &models.Category{UserID: userID, Name: req.Msg.Name}
	if err := s.store.CreateCategory(ctx, category); err != nil {
		return nil, toConnectError(err)
	}

	s.logger.Info("Category created", "user_id", userID, "category_id", category.ID)
	return connect.NewResponse(&api.CreateCategoryResponse{Category: toAPICategory(category)}), nil
}

func (s *CategoryService) RenameCategory(ctx context.Context, req *connect.Request[api.RenameCategoryRequest]) (*connect.Response[api.RenameCategoryResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	req.Msg.Name = strings.TrimSpace(req.Msg.Name)
	if err := validate(req.Msg); err != nil {
		return nil, err
	}

	category, err := s.ownedCategory(ctx, userID, req.Msg.ID)
	if err != nil {
		return nil, err
	}
	if err := s.store.RenameCategory(ctx, category.ID, req.Msg.Name); err != nil {
		return nil, toConnectError(err)
	}
	category.Name = req.Msg.Name

	return connect.NewResponse(&api.RenameCategoryResponse{Category: toAPICategory(category)}), nil
}

// DeleteCategory removes a category that no transaction references.
func (s *CategoryService) DeleteCategory(ctx context.Context, req *connect.Request[api.DeleteCategoryRequest]) (*connect.Response[api.DeleteCategoryResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := validate(req.Msg); err != nil {
		return nil, err
	}

	category, err := s.ownedCategory(ctx, userID, req.Msg.ID)
	if err != nil {
		return nil, err
	}
	if err := s.store.DeleteCategory(ctx, category.ID); err != nil {
		return nil, toConnectError(err)
	}

	s.logger.Info("Category deleted", "user_id", userID, "category_id", category.ID)
	return connect.NewResponse(&api.DeleteCategoryResponse{}), nil
}

// ownedCategory loads a category, reporting someone else's as not found.
func (s *CategoryService) ownedCategory(ctx context.Context, userID, id string) (*models.Category, error) {
	category, err := s.store.GetCategory(ctx, id)
	if err != nil {
		return nil, toConnectError(err)
	}
	if category.UserID != userID {
		return nil, toConnectError(fmt.Errorf("%w: category %s", storage.ErrNotFound, id))
	}
	return category, nil
}

func toAPICategory(c *models.Category) *api.Category {
	return &api.Category{ID: c.ID, Name: c.Name, CreatedAt: c.CreatedAt}
}
