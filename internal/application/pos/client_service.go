package pos

import (
	"context"

	"github.com/erp/pos/internal/domain/pos"
	"github.com/erp/pos/internal/domain/shared"
	"go.uber.org/zap"
)

const defaultClientPageSize = 20

// ClientService browses and edits the client directory
type ClientService struct {
	gateway pos.ClientGateway
	logger  *zap.Logger
}

// NewClientService creates a new ClientService
func NewClientService(gateway pos.ClientGateway, logger *zap.Logger) *ClientService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClientService{gateway: gateway, logger: logger}
}

// List returns one page of clients matching the filter
func (s *ClientService) List(ctx context.Context, filter pos.ClientFilter) ([]pos.Client, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = defaultClientPageSize
	}
	clients, err := s.gateway.ListClients(ctx, filter)
	if err != nil {
		return nil, err
	}
	if clients == nil {
		clients = []pos.Client{}
	}
	return clients, nil
}

// Update replaces the editable fields of a client
func (s *ClientService) Update(ctx context.Context, id int64, client pos.Client) (*pos.Client, error) {
	if id <= 0 {
		return nil, shared.NewValidationError("Invalid client")
	}
	normalized, err := pos.NormalizeClient(client)
	if err != nil {
		return nil, err
	}
	normalized.ID = id
	updated, err := s.gateway.UpdateClient(ctx, id, normalized)
	if err != nil {
		return nil, err
	}
	s.logger.Info("client updated", zap.Int64("client_id", id))
	return updated, nil
}
