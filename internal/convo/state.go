package convo

// State is the per-user conversation state. Exactly one state is active per
// user; checkout states form a linear chain, admin product entry is a
// separate short chain reachable only by admins.
type State int

const (
	StateIdle State = iota

	// Checkout chain, in step order.
	StateCollectingName
	StateCollectingPhone
	StateCollectingAddress
	StateSelectingDelivery
	StateAwaitingConfirmation
	StateAwaitingPayment

	// Admin add-product chain.
	StateAdminAddName
	StateAdminAddCategory
	StateAdminAddDesc
	StateAdminAddPrice
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCollectingName:
		return "collecting_name"
	case StateCollectingPhone:
		return "collecting_phone"
	case StateCollectingAddress:
		return "collecting_address"
	case StateSelectingDelivery:
		return "selecting_delivery"
	case StateAwaitingConfirmation:
		return "awaiting_confirmation"
	case StateAwaitingPayment:
		return "awaiting_payment"
	case StateAdminAddName:
		return "admin_add_name"
	case StateAdminAddCategory:
		return "admin_add_category"
	case StateAdminAddDesc:
		return "admin_add_desc"
	case StateAdminAddPrice:
		return "admin_add_price"
	default:
		return "unknown"
	}
}

// inCheckout reports whether s belongs to the checkout chain.
func (s State) inCheckout() bool {
	return s >= StateCollectingName && s <= StateAwaitingPayment
}

// cancellable reports whether the cancel command is accepted in s. Once the
// invoice is out there is nothing left to cancel locally.
func (s State) cancellable() bool {
	return s.inCheckout() && s != StateAwaitingPayment
}

// previous returns the prior checkout step for the back command, and false
// when there is none.
func (s State) previous() (State, bool) {
	switch s {
	case StateCollectingPhone:
		return StateCollectingName, true
	case StateCollectingAddress:
		return StateCollectingPhone, true
	case StateSelectingDelivery:
		return StateCollectingAddress, true
	case StateAwaitingConfirmation:
		return StateSelectingDelivery, true
	default:
		return StateIdle, false
	}
}

// checkoutDraft accumulates the order fields collected during checkout.
// Fields already entered survive back navigation; the totals and item
// snapshot are frozen at delivery selection. The struct is also persisted
// to Redis at AwaitingPayment entry, keyed by PayloadRef, so a confirmed
// payment can settle after a process restart.
type checkoutDraft struct {
	Name         string  `json:"name"`
	Phone        string  `json:"phone"`
	Address      string  `json:"address"`
	Delivery     string  `json:"delivery"`
	ItemsText    string  `json:"items_text"`
	TotalUAH     int64   `json:"total_uah"`
	TotalDisplay float64 `json:"total_display"`
	Currency     string  `json:"currency"`
	PayloadRef   string  `json:"payload_ref"`
}

// adminProductDraft accumulates the admin add-product fields.
type adminProductDraft struct {
	Name        string
	Category    string
	Description string
}

// Delivery methods and their UAH surcharge.
const (
	DeliveryStandard = "Standard"
	DeliveryExpress  = "Express"

	expressSurchargeUAH = 100
)
