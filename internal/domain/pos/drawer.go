package pos

import (
	"time"

	"github.com/erp/pos/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DrawerStatus is the remote status of a drawer session
type DrawerStatus string

const (
	DrawerOpen   DrawerStatus = "OPEN"
	DrawerClosed DrawerStatus = "CLOSED"
)

// DrawerSession (arqueo) is a cash-register session bounded by an opening
// and a closing cash count. The backend owns it; this is a projection.
type DrawerSession struct {
	ID                  int64           `json:"id"`
	Branch              NamedRef        `json:"branch"`
	PointOfSale         NamedRef        `json:"point_of_sale"`
	OpenedBy            NamedRef        `json:"opened_by"`
	ClosedBy            *NamedRef       `json:"closed_by,omitempty"`
	OpenedAt            time.Time       `json:"opened_at"`
	ClosedAt            *time.Time      `json:"closed_at,omitempty"`
	OpeningAmount       decimal.Decimal `json:"opening_amount"`
	SystemClosingAmount decimal.Decimal `json:"system_closing_amount"`
	ActualClosingAmount decimal.Decimal `json:"actual_closing_amount"`
	Discrepancy         decimal.Decimal `json:"discrepancy"`
	Status              DrawerStatus    `json:"status"`
}

// IsOpen reports whether the session is OPEN
func (s *DrawerSession) IsOpen() bool {
	return s != nil && s.Status == DrawerOpen
}

// SessionState is the drawer state for the active point of sale
type SessionState string

const (
	// StateNoSession means no drawer is open for the user anywhere
	StateNoSession SessionState = "NO_SESSION"
	// StateOpenElsewhere means the user has a drawer open at another point of sale
	StateOpenElsewhere SessionState = "OPEN_ELSEWHERE"
	// StateOpen means the drawer of the active point of sale is open
	StateOpen SessionState = "OPEN"
)

// CanSell reports whether sale operations are permitted
func (s SessionState) CanSell() bool {
	return s == StateOpen
}

// DrawerStatusView is what the cashier sees about the drawer
type DrawerStatusView struct {
	State         SessionState   `json:"state"`
	IsOpen        bool           `json:"is_open"`
	PointOfSaleID int64          `json:"point_of_sale_id"`
	Session       *DrawerSession `json:"session,omitempty"`
	Elsewhere     *DrawerSession `json:"elsewhere,omitempty"`
}

// Drawer is the local state machine
// NO_SESSION -> open -> OPEN -> close -> NO_SESSION.
// OPEN_ELSEWHERE is a NO_SESSION sub-state with the same permissions.
type Drawer struct {
	pointOfSaleID int64
	state         SessionState
	session       *DrawerSession
	elsewhere     *DrawerSession
}

// NewDrawer creates a drawer projection with no session
func NewDrawer() *Drawer {
	return &Drawer{state: StateNoSession}
}

// State returns the current state
func (d *Drawer) State() SessionState {
	return d.state
}

// Session returns the active session or nil
func (d *Drawer) Session() *DrawerSession {
	return d.session
}

// PointOfSaleID returns the point of sale the projection refers to
func (d *Drawer) PointOfSaleID() int64 {
	return d.pointOfSaleID
}

// Sync replaces the projection with remote truth for pointOfSaleID.
// here is the session open at that point of sale; own is any session open
// under the current user. Either may be nil.
func (d *Drawer) Sync(pointOfSaleID int64, here, own *DrawerSession) {
	d.pointOfSaleID = pointOfSaleID
	d.session = nil
	d.elsewhere = nil
	switch {
	case here.IsOpen():
		d.state = StateOpen
		d.session = here
	case own.IsOpen() && own.PointOfSale.ID != pointOfSaleID:
		d.state = StateOpenElsewhere
		d.elsewhere = own
	case own.IsOpen():
		d.state = StateOpen
		d.session = own
	default:
		d.state = StateNoSession
	}
}

// Opened records a session the backend just opened
func (d *Drawer) Opened(session *DrawerSession) error {
	if !session.IsOpen() {
		return shared.NewRemoteError("Backend did not report the drawer as open")
	}
	d.pointOfSaleID = session.PointOfSale.ID
	d.state = StateOpen
	d.session = session
	d.elsewhere = nil
	return nil
}

// ActiveSession returns the open session or a ValidationError
func (d *Drawer) ActiveSession() (*DrawerSession, error) {
	if d.state != StateOpen || d.session == nil {
		return nil, shared.NewValidationError("There is no active drawer session")
	}
	return d.session, nil
}

// Closed records the close of the active session
func (d *Drawer) Closed() {
	d.state = StateNoSession
	d.session = nil
	d.elsewhere = nil
}

// Reset forgets everything, e.g. after a remote failure
func (d *Drawer) Reset(pointOfSaleID int64) {
	d.pointOfSaleID = pointOfSaleID
	d.Closed()
}

// View returns a snapshot of the projection
func (d *Drawer) View() DrawerStatusView {
	return DrawerStatusView{
		State:         d.state,
		IsOpen:        d.state.CanSell(),
		PointOfSaleID: d.pointOfSaleID,
		Session:       d.session,
		Elsewhere:     d.elsewhere,
	}
}
