package contract

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleSystem    Role = "system"
	RoleAssistant Role = "assistant"
)

type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// TaskType is the closed set of task kinds the processor dispatches on.
// Unknown values are legal in a RouterDecision but execute as no-ops.
type TaskType string

const (
	TaskRecommendProducts TaskType = "RECOMMEND_PRODUCTS"
	TaskAddToCart         TaskType = "ADD_TO_CART"
	TaskViewCart          TaskType = "VIEW_CART"
	TaskCreateOrder       TaskType = "CREATE_ORDER"
	TaskProcessPayment    TaskType = "PROCESS_PAYMENT"
	TaskTrackOrder        TaskType = "TRACK_ORDER"
	TaskApplyDiscount     TaskType = "APPLY_DISCOUNT"
)

type Task struct {
	Type   TaskType       `json:"type"`
	Params map[string]any `json:"params,omitempty"`
}

type RouterDecision struct {
	Intent     string  `json:"intent"`
	Tasks      []Task  `json:"tasks"`
	Confidence float64 `json:"confidence"`
}

// TaskResults maps a task's result key (or error_<type> on failure) to its
// payload. Keys are unique per turn; a later write for the same key wins.
type TaskResults map[string]any

func (r TaskResults) SetError(taskType TaskType, err error) {
	if err == nil {
		return
	}
	r["error_"+string(taskType)] = err.Error()
}

type TurnRequest struct {
	SessionID  string `json:"session_id"`
	CustomerID string `json:"customer_id"`
	Channel    string `json:"channel"`
	Message    string `json:"message"`
}

// TurnResult is what one pipeline pass yields to the caller. Results is
// always present, empty when no task ran. PersistFailed reports that the
// reply was produced but session persistence failed afterwards.
type TurnResult struct {
	Reply         string      `json:"reply"`
	Intent        string      `json:"intent"`
	Tasks         []Task      `json:"tasks"`
	Results       TaskResults `json:"results"`
	PersistFailed bool        `json:"persist_failed,omitempty"`
}

/* ------------------------- collaborator payloads ------------------------ */

type Recommendation struct {
	SKU      string `json:"sku"`
	Name     string `json:"name"`
	Brand    string `json:"brand"`
	Price    int    `json:"price"`
	Currency string `json:"currency"`
	Image    string `json:"image,omitempty"`
}

type CartItem struct {
	SKU      string `json:"sku"`
	Name     string `json:"name"`
	Brand    string `json:"brand"`
	Price    int    `json:"price"`
	Quantity int    `json:"quantity"`
	Size     string `json:"size"`
	Color    string `json:"color,omitempty"`
}

type CartTotals struct {
	Subtotal  float64 `json:"subtotal"`
	Tax       float64 `json:"tax"`
	Shipping  float64 `json:"shipping"`
	Total     float64 `json:"total"`
	ItemCount int     `json:"item_count"`
}

type CartSummary struct {
	CustomerID string     `json:"customer_id"`
	Items      []CartItem `json:"items"`
	Totals     CartTotals `json:"totals"`
}

type CartUpdate struct {
	Status    string `json:"status"`
	SKU       string `json:"sku"`
	ItemCount int    `json:"item_count"`
}

type Order struct {
	OrderID    string     `json:"order_id"`
	CustomerID string     `json:"customer_id"`
	Items      []CartItem `json:"items"`
	Subtotal   float64    `json:"subtotal"`
	Tax        float64    `json:"tax"`
	Shipping   float64    `json:"shipping"`
	Total      float64    `json:"total_amount"`
	Status     string     `json:"status"`
	PaymentID  string     `json:"payment_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

type PaymentInit struct {
	PaymentID   string  `json:"payment_id"`
	OrderID     string  `json:"order_id"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	Method      string  `json:"method"`
	Status      string  `json:"status"`
	RedirectURL string  `json:"redirect_url"`
}

type PaymentResult struct {
	Status    string `json:"status"`
	PaymentID string `json:"payment_id"`
	OrderID   string `json:"order_id"`
	Message   string `json:"message"`
}

type Eligibility struct {
	Eligible        bool    `json:"eligible"`
	Tier            string  `json:"tier"`
	DiscountPercent float64 `json:"discount_percent"`
	DiscountAmount  float64 `json:"discount_amount"`
	PayableAfter    float64 `json:"payable_after"`
	Message         string  `json:"message"`
}
