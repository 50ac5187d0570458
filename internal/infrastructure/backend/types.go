package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/erp/pos/internal/domain/pos"
	"github.com/shopspring/decimal"
)

// ref decodes a relation that the backend sends either as a bare id or as
// an embedded object, and resolves it to pos.NamedRef.
type ref struct {
	pos.NamedRef
	Valid bool
}

func (r *ref) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = ref{}
		return nil
	}
	switch data[0] {
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		var id flexInt
		if raw, ok := obj["id"]; ok {
			if err := json.Unmarshal(raw, &id); err != nil {
				return fmt.Errorf("invalid relation id: %w", err)
			}
		}
		r.ID = int64(id)
		r.Name = objectName(obj)
		r.Valid = r.ID != 0
		return nil
	default:
		var id flexInt
		if err := json.Unmarshal(data, &id); err != nil {
			return fmt.Errorf("invalid relation: %w", err)
		}
		r.ID = int64(id)
		r.Name = ""
		r.Valid = r.ID != 0
		return nil
	}
}

func objectName(obj map[string]json.RawMessage) string {
	for _, key := range []string{"nombre", "name", "razon_social", "username"} {
		raw, ok := obj[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && s != "" {
			if key == "nombre" {
				var last string
				if rawLast, ok := obj["apellido"]; ok {
					_ = json.Unmarshal(rawLast, &last)
				}
				if last != "" {
					return s + " " + last
				}
			}
			return s
		}
	}
	return ""
}

func (r ref) ptr() *pos.NamedRef {
	if !r.Valid {
		return nil
	}
	v := r.NamedRef
	return &v
}

// flexInt accepts 7 and "7"
type flexInt int64

func (f *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	s := strings.Trim(string(data), `"`)
	if s == "" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid integer %s", data)
	}
	*f = flexInt(n)
	return nil
}

// flexDecimal accepts 10.5, "10.50" and null
type flexDecimal struct {
	decimal.Decimal
}

func (f *flexDecimal) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		f.Decimal = decimal.Zero
		return nil
	}
	s := strings.Trim(string(data), `"`)
	if s == "" {
		f.Decimal = decimal.Zero
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("invalid decimal %s", data)
	}
	f.Decimal = d
	return nil
}

// flexTime accepts RFC 3339 timestamps with or without zone, and null
type flexTime struct {
	time.Time
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func (f *flexTime) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid timestamp %s", data)
	}
	if s == nil || *s == "" {
		f.Time = time.Time{}
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, *s); err == nil {
			f.Time = t
			return nil
		}
	}
	return fmt.Errorf("invalid timestamp %q", *s)
}

func (f flexTime) ptr() *time.Time {
	if f.IsZero() {
		return nil
	}
	t := f.Time
	return &t
}

// page is a Django REST Framework paginated envelope
type page[T any] struct {
	Count   int64  `json:"count"`
	Next    string `json:"next"`
	Results []T    `json:"results"`
}

// decodeList accepts either a paginated envelope or a plain array and
// returns the items plus the total count
func decodeList[T any](data []byte) ([]T, int64, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return []T{}, 0, nil
	}
	if data[0] == '[' {
		var items []T
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, 0, err
		}
		return items, int64(len(items)), nil
	}
	var p page[T]
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, 0, err
	}
	if p.Results == nil {
		p.Results = []T{}
	}
	if p.Count == 0 {
		p.Count = int64(len(p.Results))
	}
	return p.Results, p.Count, nil
}

type productDTO struct {
	ID          flexInt         `json:"id"`
	Barcode     string          `json:"codigo_barras"`
	Code        string          `json:"codigo"`
	Name        string          `json:"nombre"`
	Unit        json.RawMessage `json:"unidad"`
	Price       flexDecimal     `json:"precio_venta"`
	AverageCost flexDecimal     `json:"costo_promedio"`
	Active      *bool           `json:"activo"`
}

func (d productDTO) toDomain() pos.Product {
	active := true
	if d.Active != nil {
		active = *d.Active
	}
	return pos.Product{
		ID:          int64(d.ID),
		Code:        d.Code,
		Barcode:     d.Barcode,
		Name:        d.Name,
		Unit:        unitName(d.Unit),
		Price:       d.Price.Decimal,
		AverageCost: d.AverageCost.Decimal,
		Active:      active,
	}
}

// unitName reads unidad, sent as a plain string, an id or an object
func unitName(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var r ref
	if err := json.Unmarshal(raw, &r); err == nil {
		if r.Name != "" {
			return r.Name
		}
		if r.ID != 0 {
			return strconv.FormatInt(r.ID, 10)
		}
	}
	return ""
}

type inventoryDTO struct {
	ID      flexInt     `json:"id"`
	Branch  ref         `json:"sucursal"`
	Product ref         `json:"producto"`
	Current flexDecimal `json:"stock_actual"`
	Minimum flexDecimal `json:"stock_minimo"`
}

func (d inventoryDTO) toDomain() pos.StockLevel {
	return pos.StockLevel{
		ID:        int64(d.ID),
		ProductID: d.Product.ID,
		BranchID:  d.Branch.ID,
		Current:   d.Current.Decimal,
		Minimum:   d.Minimum.Decimal,
	}
}

type drawerDTO struct {
	ID                  flexInt     `json:"id"`
	Branch              ref         `json:"sucursal"`
	PointOfSale         ref         `json:"punto_venta"`
	OpenedBy            ref         `json:"usuario_apertura"`
	ClosedBy            ref         `json:"usuario_cierre"`
	OpenedAt            flexTime    `json:"fecha_apertura"`
	ClosedAt            flexTime    `json:"fecha_cierre"`
	OpeningAmount       flexDecimal `json:"monto_inicial"`
	SystemClosingAmount flexDecimal `json:"monto_final_sistema"`
	ActualClosingAmount flexDecimal `json:"monto_final_real"`
	Discrepancy         flexDecimal `json:"diferencia"`
	Status              string      `json:"estado"`
}

func (d drawerDTO) toDomain() *pos.DrawerSession {
	status := pos.DrawerClosed
	if strings.EqualFold(d.Status, "ABIERTA") || strings.EqualFold(d.Status, "OPEN") {
		status = pos.DrawerOpen
	}
	return &pos.DrawerSession{
		ID:                  int64(d.ID),
		Branch:              d.Branch.NamedRef,
		PointOfSale:         d.PointOfSale.NamedRef,
		OpenedBy:            d.OpenedBy.NamedRef,
		ClosedBy:            d.ClosedBy.ptr(),
		OpenedAt:            d.OpenedAt.Time,
		ClosedAt:            d.ClosedAt.ptr(),
		OpeningAmount:       d.OpeningAmount.Decimal,
		SystemClosingAmount: d.SystemClosingAmount.Decimal,
		ActualClosingAmount: d.ActualClosingAmount.Decimal,
		Discrepancy:         d.Discrepancy.Decimal,
		Status:              status,
	}
}

// drawerStateDTO is the {abierta, arqueo} answer of the drawer state endpoints
type drawerStateDTO struct {
	Open   *bool      `json:"abierta"`
	Drawer *drawerDTO `json:"arqueo"`
}

// decodeDrawerState accepts {abierta, arqueo}, a bare drawer record or null.
// It returns the open session or nil.
func decodeDrawerState(data []byte) (*pos.DrawerSession, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}
	var state drawerStateDTO
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	if state.Open != nil || state.Drawer != nil {
		if state.Drawer == nil || (state.Open != nil && !*state.Open) {
			return nil, nil
		}
		session := state.Drawer.toDomain()
		if state.Open != nil && *state.Open {
			session.Status = pos.DrawerOpen
		}
		if !session.IsOpen() {
			return nil, nil
		}
		return session, nil
	}

	var bare drawerDTO
	if err := json.Unmarshal(data, &bare); err != nil {
		return nil, err
	}
	if bare.ID == 0 {
		return nil, nil
	}
	session := bare.toDomain()
	if !session.IsOpen() {
		return nil, nil
	}
	return session, nil
}

type clientDTO struct {
	ID        flexInt `json:"id,omitempty"`
	TaxID     string  `json:"nit"`
	Name      string  `json:"nombre"`
	LegalName string  `json:"razon_social"`
	Email     string  `json:"email"`
}

func (d clientDTO) toDomain() pos.Client {
	return pos.Client{
		ID:        int64(d.ID),
		TaxID:     d.TaxID,
		Name:      d.Name,
		LegalName: d.LegalName,
		Email:     d.Email,
	}
}

type saleLineDTO struct {
	ID        flexInt     `json:"id"`
	Product   ref         `json:"producto"`
	Quantity  flexDecimal `json:"cantidad"`
	UnitPrice flexDecimal `json:"precio_unitario"`
	Discount  flexDecimal `json:"descuento"`
	Subtotal  flexDecimal `json:"subtotal"`
}

type salePaymentDTO struct {
	ID        flexInt     `json:"id"`
	Method    ref         `json:"metodo_pago"`
	Amount    flexDecimal `json:"monto"`
	Reference string      `json:"referencia"`
}

type saleDTO struct {
	ID            flexInt          `json:"id"`
	Branch        ref              `json:"sucursal"`
	PointOfSale   ref              `json:"punto_venta"`
	User          ref              `json:"usuario"`
	Client        ref              `json:"cliente"`
	Status        ref              `json:"estado_venta"`
	CreatedAt     flexTime         `json:"fecha_hora"`
	GrossTotal    flexDecimal      `json:"total_bruto"`
	DiscountTotal flexDecimal      `json:"total_descuento"`
	NetTotal      flexDecimal      `json:"total_neto"`
	Lines         []saleLineDTO    `json:"detalles"`
	Payments      []salePaymentDTO `json:"pagos"`
}

func (d saleDTO) toDomain() pos.Sale {
	sale := pos.Sale{
		ID:            int64(d.ID),
		Branch:        d.Branch.NamedRef,
		PointOfSale:   d.PointOfSale.NamedRef,
		User:          d.User.NamedRef,
		Client:        d.Client.ptr(),
		Status:        d.Status.NamedRef,
		CreatedAt:     d.CreatedAt.Time,
		GrossTotal:    d.GrossTotal.Decimal,
		DiscountTotal: d.DiscountTotal.Decimal,
		NetTotal:      d.NetTotal.Decimal,
	}
	for _, l := range d.Lines {
		sale.Lines = append(sale.Lines, pos.SaleLine{
			ID:        int64(l.ID),
			Product:   l.Product.NamedRef,
			Quantity:  l.Quantity.IntPart(),
			UnitPrice: l.UnitPrice.Decimal,
			Discount:  l.Discount.Decimal,
			Subtotal:  l.Subtotal.Decimal,
		})
	}
	for _, p := range d.Payments {
		sale.Payments = append(sale.Payments, pos.SalePayment{
			ID:        int64(p.ID),
			Method:    p.Method.NamedRef,
			Amount:    p.Amount.Decimal,
			Reference: p.Reference,
		})
	}
	return sale
}

type invoiceDTO struct {
	ID        flexInt  `json:"id"`
	Sale      ref      `json:"venta"`
	TaxID     string   `json:"nit_ci"`
	LegalName string   `json:"razon_social"`
	Number    string   `json:"numero_factura"`
	IssuedAt  flexTime `json:"fecha_emision"`
}

func (d invoiceDTO) toDomain() *pos.Invoice {
	return &pos.Invoice{
		ID:        int64(d.ID),
		SaleID:    d.Sale.ID,
		TaxID:     d.TaxID,
		LegalName: d.LegalName,
		Number:    d.Number,
		IssuedAt:  d.IssuedAt.Time,
	}
}

// namedDTO is a reference-data row: payment method, branch, point of sale, status
type namedDTO struct {
	ID     flexInt `json:"id"`
	Name   string  `json:"nombre"`
	Active *bool   `json:"activo"`
}

func (d namedDTO) active() bool {
	return d.Active == nil || *d.Active
}

func (d namedDTO) toDomain() pos.NamedRef {
	return pos.NamedRef{ID: int64(d.ID), Name: d.Name}
}

// jsonOrEmpty decodes data into out; an empty body leaves out untouched
func jsonOrEmpty(data []byte, out any) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	return json.Unmarshal(data, out)
}
