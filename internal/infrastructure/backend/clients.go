package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/erp/pos/internal/domain/pos"
	"github.com/erp/pos/internal/domain/shared"
	"go.uber.org/zap"
)

const clientsPath = "negocio/clientes/"

// SearchClients searches clients by tax id or name
func (c *Client) SearchClients(ctx context.Context, search string) ([]pos.Client, error) {
	q := url.Values{}
	q.Set("search", search)
	body, err := c.do(ctx, request{method: http.MethodGet, path: clientsPath, query: q})
	if err != nil {
		return nil, err
	}
	items, _, err := decodeList[clientDTO](body)
	if err != nil {
		c.logger.Warn("failed to decode client list", zap.Error(err))
		return nil, shared.NewRemoteError("Unexpected response from the business service")
	}
	clients := make([]pos.Client, len(items))
	for i, item := range items {
		clients[i] = item.toDomain()
	}
	return clients, nil
}

// CreateClient registers a client
func (c *Client) CreateClient(ctx context.Context, client pos.Client) (*pos.Client, error) {
	var dto clientDTO
	if err := c.doJSON(ctx, request{
		method: http.MethodPost,
		path:   clientsPath,
		body: clientDTO{
			TaxID:     client.TaxID,
			Name:      client.Name,
			LegalName: client.LegalName,
			Email:     client.Email,
		},
	}, &dto); err != nil {
		return nil, err
	}
	created := dto.toDomain()
	if created.ID == 0 {
		return nil, shared.NewRemoteError("The business service did not return the created client")
	}
	return &created, nil
}

// ListClients returns one page of the client directory
func (c *Client) ListClients(ctx context.Context, filter pos.ClientFilter) ([]pos.Client, error) {
	q := url.Values{}
	if filter.Search != "" {
		q.Set("search", filter.Search)
	}
	if filter.Page > 0 {
		q.Set("page", strconv.Itoa(filter.Page))
	}
	if filter.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(filter.PageSize))
	}
	body, err := c.do(ctx, request{method: http.MethodGet, path: clientsPath, query: q})
	if err != nil {
		return nil, err
	}
	items, _, err := decodeList[clientDTO](body)
	if err != nil {
		c.logger.Warn("failed to decode client list", zap.Error(err))
		return nil, shared.NewRemoteError("Unexpected response from the business service")
	}
	clients := make([]pos.Client, len(items))
	for i, item := range items {
		clients[i] = item.toDomain()
	}
	return clients, nil
}

// UpdateClient replaces the editable fields of a client
func (c *Client) UpdateClient(ctx context.Context, id int64, client pos.Client) (*pos.Client, error) {
	var dto clientDTO
	if err := c.doJSON(ctx, request{
		method: http.MethodPut,
		path:   clientsPath + strconv.FormatInt(id, 10) + "/",
		body: clientDTO{
			TaxID:     client.TaxID,
			Name:      client.Name,
			LegalName: client.LegalName,
			Email:     client.Email,
		},
	}, &dto); err != nil {
		return nil, err
	}
	updated := dto.toDomain()
	if updated.ID == 0 {
		updated.ID = id
	}
	return &updated, nil
}
