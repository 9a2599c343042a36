package service

import (
	"context"
	"strings"

	operatordomain "github.com/smallbiznis/crudpark/internal/operator/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo operatordomain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo operatordomain.Repository
}

func New(p Params) operatordomain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("operator.service"),
		repo: p.Repo,
	}
}

// Login resolves an active operator by name. Operators sign in with their name only.
func (s *Service) Login(ctx context.Context, name string) (*operatordomain.Operator, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, operatordomain.ErrInvalidName
	}

	op, err := s.repo.FindActiveByName(ctx, s.db, name)
	if err != nil {
		s.log.Error("failed to look up operator", zap.Error(err))
		return nil, err
	}
	if op == nil {
		return nil, operatordomain.ErrOperatorNotFound
	}

	s.log.Info("operator signed in", zap.Int64("operator_id", op.ID))
	return op, nil
}

func (s *Service) GetActive(ctx context.Context, id int64) (*operatordomain.Operator, error) {
	if id <= 0 {
		return nil, operatordomain.ErrInvalidID
	}

	op, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if op == nil {
		return nil, operatordomain.ErrOperatorNotFound
	}
	if !op.Active {
		return nil, operatordomain.ErrOperatorInactive
	}
	return op, nil
}
