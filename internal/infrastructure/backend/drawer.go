package backend

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/erp/pos/internal/domain/pos"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const drawersPath = "reportes/arqueocaja/"

type openDrawerBody struct {
	PointOfSale   int64  `json:"punto_venta"`
	OpeningAmount string `json:"monto_inicial"`
}

type closeDrawerBody struct {
	ActualClosingAmount string `json:"monto_final_real"`
}

// Open opens a drawer session at a point of sale
func (c *Client) Open(ctx context.Context, pointOfSaleID int64, openingAmount decimal.Decimal) (*pos.DrawerSession, error) {
	var dto drawerDTO
	if err := c.doJSON(ctx, request{
		method: http.MethodPost,
		path:   drawersPath + "abrir/",
		body: openDrawerBody{
			PointOfSale:   pointOfSaleID,
			OpeningAmount: openingAmount.StringFixed(2),
		},
	}, &dto); err != nil {
		return nil, err
	}
	session := dto.toDomain()
	if session.ID == 0 {
		return nil, shared.NewRemoteError("The business service did not return the opened session")
	}
	if session.PointOfSale.ID == 0 {
		session.PointOfSale.ID = pointOfSaleID
	}
	return session, nil
}

// OwnOpen returns the session open under the current user
func (c *Client) OwnOpen(ctx context.Context) (*pos.DrawerSession, error) {
	return c.drawerState(ctx, drawersPath+"mi-caja/", nil)
}

// ForPointOfSale returns the open session of a point of sale
func (c *Client) ForPointOfSale(ctx context.Context, pointOfSaleID int64) (*pos.DrawerSession, error) {
	q := url.Values{}
	q.Set("punto_venta", strconv.FormatInt(pointOfSaleID, 10))
	return c.drawerState(ctx, drawersPath+"abierta/", q)
}

func (c *Client) drawerState(ctx context.Context, path string, query url.Values) (*pos.DrawerSession, error) {
	body, err := c.do(ctx, request{method: http.MethodGet, path: path, query: query})
	if err != nil {
		// no open session is reported as 404 by older backends
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	session, err := decodeDrawerState(body)
	if err != nil {
		c.logger.Warn("failed to decode drawer state", zap.String("path", path), zap.Error(err))
		return nil, shared.NewRemoteError("Unexpected response from the business service")
	}
	return session, nil
}

// Close closes a drawer session with the counted amount
func (c *Client) Close(ctx context.Context, sessionID int64, actualClosingAmount decimal.Decimal) (*pos.DrawerSession, error) {
	body, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   drawersPath + strconv.FormatInt(sessionID, 10) + "/cerrar/",
		body:   closeDrawerBody{ActualClosingAmount: actualClosingAmount.StringFixed(2)},
	})
	if err != nil {
		return nil, err
	}
	var dto drawerDTO
	if err := jsonOrEmpty(body, &dto); err != nil || dto.ID == 0 {
		// the drawer manager synthesizes the closed snapshot
		return nil, nil
	}
	return dto.toDomain(), nil
}
