package service

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/iliyamo/salon-booking/internal/model"
	"github.com/iliyamo/salon-booking/internal/validation"
)

// ServiceRepository is the catalog persistence.  *repository.ServiceRepo
// implements it.
type ServiceRepository interface {
	List(ctx context.Context, category string) ([]model.Service, error)
	GetByID(ctx context.Context, id uint64) (model.Service, error)
	Categories(ctx context.Context) ([]string, error)
	Create(ctx context.Context, s model.Service) (model.Service, error)
	SetActive(ctx context.Context, id uint64, active bool) error
}

// CatalogService serves the treatment catalog and lets admins maintain it.
// Invalidate, when set, drops cached catalog responses after a change.
type CatalogService struct {
	repo       ServiceRepository
	invalidate func(ctx context.Context) error
	log        *zap.Logger
}

func NewCatalogService(repo ServiceRepository, invalidate func(ctx context.Context) error, log *zap.Logger) *CatalogService {
	return &CatalogService{repo: repo, invalidate: invalidate, log: log}
}

// List returns active services, optionally of one category.
func (s *CatalogService) List(ctx context.Context, category string) ([]model.Service, error) {
	return s.repo.List(ctx, strings.TrimSpace(category))
}

// Categories returns the distinct categories of active services.
func (s *CatalogService) Categories(ctx context.Context) ([]string, error) {
	return s.repo.Categories(ctx)
}

// Get returns an active service.
func (s *CatalogService) Get(ctx context.Context, id uint64) (model.Service, error) {
	return s.repo.GetByID(ctx, id)
}

// NewServiceInput is the admin form for a treatment.
type NewServiceInput struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	Price           uint32 `json:"price"`
	DurationMinutes uint32 `json:"duration_minutes"`
	Category        string `json:"category"`
	ImageURL        string `json:"image_url"`
}

// Create validates and stores a new active service.
func (s *CatalogService) Create(ctx context.Context, in NewServiceInput) (model.Service, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	err := validation.NewFormValidator().
		AddRule("name", validation.Required, "请输入服务名称").
		AddRule("name", func(v string) bool { return validation.Length(v, 1, 100) }, "服务名称不能超过100个字符").
		AddRule("category", validation.Required, "请选择服务分类").
		AddRule("price", func(v string) bool { return validation.NumberRange(v, 1, 100000) }, "价格必须在1到100000之间").
		AddRule("duration_minutes", func(v string) bool { return validation.NumberRange(v, 15, 480) }, "时长必须在15到480分钟之间").
		Validate(map[string]string{
			"name":             in.Name,
			"category":         in.Category,
			"price":            strconv.FormatUint(uint64(in.Price), 10),
			"duration_minutes": strconv.FormatUint(uint64(in.DurationMinutes), 10),
		})
	if err != nil {
		return model.Service{}, err
	}
	svc, err := s.repo.Create(ctx, model.Service{
		Name:            in.Name,
		Description:     strings.TrimSpace(in.Description),
		Price:           in.Price,
		DurationMinutes: in.DurationMinutes,
		Category:        in.Category,
		ImageURL:        strings.TrimSpace(in.ImageURL),
		IsActive:        true,
	})
	if err != nil {
		return model.Service{}, err
	}
	s.log.Info("service created", zap.Uint64("service_id", svc.ID), zap.String("name", svc.Name))
	s.changed(ctx)
	return svc, nil
}

// SetActive shows or hides a service.  Existing bookings are unaffected.
func (s *CatalogService) SetActive(ctx context.Context, id uint64, active bool) error {
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return err
	}
	s.log.Info("service visibility changed", zap.Uint64("service_id", id), zap.Bool("active", active))
	s.changed(ctx)
	return nil
}

func (s *CatalogService) changed(ctx context.Context) {
	if s.invalidate == nil {
		return
	}
	if err := s.invalidate(ctx); err != nil {
		s.log.Warn("catalog cache invalidation failed", zap.Error(err))
	}
}
