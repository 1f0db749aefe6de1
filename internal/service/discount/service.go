package discount

import (
	"context"
	"strings"

	"github.com/jwalitptl/optica-admin/internal/model"
	"github.com/jwalitptl/optica-admin/internal/repository"
	"github.com/jwalitptl/optica-admin/pkg/collection"
	apperrors "github.com/jwalitptl/optica-admin/pkg/errors"
)

type Service struct {
	repo repository.DiscountRequestRepository
}

func NewService(repo repository.DiscountRequestRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, q collection.Query) (collection.Page[model.DiscountRequest], error) {
	items, total, err := s.repo.List(ctx, q)
	if err != nil {
		return collection.Page[model.DiscountRequest]{}, err
	}
	return collection.NewPage(items, q.Page, q.PerPage, total), nil
}

func (s *Service) Get(ctx context.Context, id int64) (*model.DiscountRequest, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, in model.DiscountRequestInput, requestedBy string) (*model.DiscountRequest, error) {
	if fields := in.PercentageErrors(); fields != nil {
		return nil, apperrors.Validation("", fields)
	}
	req := &model.DiscountRequest{
		PatientID:   in.PatientID,
		ProductID:   in.ProductID,
		Percentage:  in.Percentage.Round(2),
		Reason:      strings.TrimSpace(in.Reason),
		RequestedBy: requestedBy,
	}
	if err := s.repo.Create(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// Approve accepts a pending request. Anything else is a 409.
func (s *Service) Approve(ctx context.Context, id int64, decidedBy string) (*model.DiscountRequest, error) {
	return s.decide(ctx, &model.DiscountRequest{
		Base:      model.Base{ID: id},
		Status:    model.DiscountStatusApproved,
		DecidedBy: &decidedBy,
	})
}

// Reject refuses a pending request. A blank reason is a 422 on
// rejection_reason and nothing is written.
func (s *Service) Reject(ctx context.Context, id int64, reason, decidedBy string) (*model.DiscountRequest, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperrors.FieldError("rejection_reason", "The rejection reason field is required.")
	}
	return s.decide(ctx, &model.DiscountRequest{
		Base:            model.Base{ID: id},
		Status:          model.DiscountStatusRejected,
		RejectionReason: &reason,
		DecidedBy:       &decidedBy,
	})
}

func (s *Service) decide(ctx context.Context, req *model.DiscountRequest) (*model.DiscountRequest, error) {
	if err := s.repo.Decide(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}
