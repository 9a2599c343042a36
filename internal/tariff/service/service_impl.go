package service

import (
	"context"
	"fmt"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/crudpark/internal/cache"
	"github.com/smallbiznis/crudpark/internal/config"
	tariffdomain "github.com/smallbiznis/crudpark/internal/tariff/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const activeKey = "tariff:active"

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Repo  tariffdomain.Repository
	Cfg   config.ParkingConfig
	Redis *redis.Client `optional:"true"`
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	repo  tariffdomain.Repository
	cache cache.Cache[string, tariffdomain.Tariff]
	cfg   config.TariffConfig
}

func New(p Params) tariffdomain.Provider {
	svc := &Service{
		db:   p.DB,
		log:  p.Log.Named("tariff.service"),
		repo: p.Repo,
		cfg:  p.Cfg.Tariff,
	}
	switch {
	case p.Cfg.Tariff.CacheTTL <= 0:
		// every call reads the store
	case p.Redis != nil:
		svc.cache = cache.NewRedisCache[tariffdomain.Tariff](p.Redis, "crudpark", svc.log)
	default:
		svc.cache = cache.NewTTLCache[string, tariffdomain.Tariff]()
	}
	return svc
}

func (s *Service) Active(ctx context.Context) (*tariffdomain.Tariff, error) {
	if s.cache != nil {
		if t, ok := s.cache.Get(ctx, activeKey); ok {
			return &t, nil
		}
	}

	t, err := s.repo.FindActive(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("find active tariff: %w", err)
	}
	if t == nil {
		s.log.Warn("no active tariff configured")
		return nil, nil
	}

	if s.cache != nil {
		s.cache.Set(ctx, activeKey, *t, s.cfg.CacheTTL)
	}
	return t, nil
}
