package pos

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/erp/pos/internal/domain/pos"
	"github.com/erp/pos/internal/domain/shared"
	"go.uber.org/zap"
)

// ReferenceCache stores reference lists with a TTL
type ReferenceCache interface {
	Get(key string) ([]pos.NamedRef, bool)
	Set(key string, value []pos.NamedRef, ttl time.Duration)
	Invalidate()
}

const (
	cacheKeyPaymentMethods = "payment_methods"
	cacheKeyBranches       = "branches"
	cacheKeySaleStatuses   = "sale_statuses"
)

func cacheKeyPointsOfSale(branchID int64) string {
	return fmt.Sprintf("points_of_sale:%d", branchID)
}

// MasterDataService serves payment methods, branches, points of sale and
// sale statuses, cached for ttl
type MasterDataService struct {
	gateway pos.MasterDataGateway
	cache   ReferenceCache
	ttl     time.Duration
	logger  *zap.Logger
}

// NewMasterDataService creates a new MasterDataService. A nil cache disables caching.
func NewMasterDataService(gateway pos.MasterDataGateway, cache ReferenceCache, ttl time.Duration, logger *zap.Logger) *MasterDataService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MasterDataService{gateway: gateway, cache: cache, ttl: ttl, logger: logger}
}

func (s *MasterDataService) load(ctx context.Context, key string, fetch func(context.Context) ([]pos.NamedRef, error)) ([]pos.NamedRef, error) {
	if s.cache != nil {
		if refs, ok := s.cache.Get(key); ok {
			return refs, nil
		}
	}
	refs, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	if refs == nil {
		refs = []pos.NamedRef{}
	}
	if s.cache != nil && s.ttl > 0 {
		s.cache.Set(key, refs, s.ttl)
	}
	return refs, nil
}

// PaymentMethods lists the payment methods
func (s *MasterDataService) PaymentMethods(ctx context.Context) ([]pos.NamedRef, error) {
	return s.load(ctx, cacheKeyPaymentMethods, s.gateway.PaymentMethods)
}

// PaymentMethod resolves a payment method by id
func (s *MasterDataService) PaymentMethod(ctx context.Context, id int64) (pos.NamedRef, error) {
	methods, err := s.PaymentMethods(ctx)
	if err != nil {
		return pos.NamedRef{}, err
	}
	if ref, ok := findRef(methods, id); ok {
		return ref, nil
	}
	return pos.NamedRef{}, shared.NewValidationError(fmt.Sprintf("Unknown payment method %d", id))
}

// Branches lists the branches
func (s *MasterDataService) Branches(ctx context.Context) ([]pos.NamedRef, error) {
	return s.load(ctx, cacheKeyBranches, s.gateway.Branches)
}

// Branch resolves a branch by id
func (s *MasterDataService) Branch(ctx context.Context, id int64) (pos.NamedRef, error) {
	branches, err := s.Branches(ctx)
	if err != nil {
		return pos.NamedRef{}, err
	}
	if ref, ok := findRef(branches, id); ok {
		return ref, nil
	}
	return pos.NamedRef{}, shared.NewDomainError(shared.CodeNotFound, fmt.Sprintf("Branch %d not found", id))
}

// PointsOfSale lists the points of sale of a branch
func (s *MasterDataService) PointsOfSale(ctx context.Context, branchID int64) ([]pos.NamedRef, error) {
	if branchID == 0 {
		return nil, shared.NewValidationError("Select a branch")
	}
	return s.load(ctx, cacheKeyPointsOfSale(branchID), func(ctx context.Context) ([]pos.NamedRef, error) {
		return s.gateway.PointsOfSale(ctx, branchID)
	})
}

// PointOfSale resolves a point of sale within a branch
func (s *MasterDataService) PointOfSale(ctx context.Context, branchID, id int64) (pos.NamedRef, error) {
	points, err := s.PointsOfSale(ctx, branchID)
	if err != nil {
		return pos.NamedRef{}, err
	}
	if ref, ok := findRef(points, id); ok {
		return ref, nil
	}
	return pos.NamedRef{}, shared.NewDomainError(shared.CodeNotFound,
		fmt.Sprintf("Point of sale %d not found in branch %d", id, branchID))
}

// SaleStatuses lists the sale statuses
func (s *MasterDataService) SaleStatuses(ctx context.Context) ([]pos.NamedRef, error) {
	return s.load(ctx, cacheKeySaleStatuses, s.gateway.SaleStatuses)
}

// CancelledStatus finds the status used for cancelled sales
func (s *MasterDataService) CancelledStatus(ctx context.Context) (pos.NamedRef, error) {
	statuses, err := s.SaleStatuses(ctx)
	if err != nil {
		return pos.NamedRef{}, err
	}
	for _, st := range statuses {
		name := strings.ToLower(st.Name)
		if strings.Contains(name, "cancel") || strings.Contains(name, "anul") {
			return st, nil
		}
	}
	return pos.NamedRef{}, shared.NewDomainError(shared.CodeNotFound, "Cancelled sale status is not configured")
}

// Invalidate drops cached reference data
func (s *MasterDataService) Invalidate() {
	if s.cache != nil {
		s.cache.Invalidate()
		s.logger.Info("master data cache invalidated")
	}
}

func findRef(refs []pos.NamedRef, id int64) (pos.NamedRef, bool) {
	for _, r := range refs {
		if r.ID == id {
			return r, true
		}
	}
	return pos.NamedRef{}, false
}
