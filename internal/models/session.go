package models

// Conversation steps. A session always carries exactly one of these.
const (
	StepAskName          = "ASK_NAME"
	StepAskPlate         = "ASK_PLATE"
	StepAskLocation      = "ASK_LOCATION"
	StepAskService       = "ASK_SERVICE"
	StepAskFinancial     = "ASK_FINANCIAL"
	StepReadyToOpenOrder = "READY_TO_OPEN_ORDER"
	StepDone             = "DONE"
)

// Financial status values stored on the session after the funding check.
const (
	FinancialFunded    = "ADIMPLENTE"
	FinancialNotFunded = "INADIMPLENTE"
)

// ConversationSession holds the collected answers for one conversation key.
type ConversationSession struct {
	Step            string `json:"step"`
	Name            string `json:"name,omitempty"`
	Plate           string `json:"plate,omitempty"`
	Location        string `json:"location,omitempty"`
	ServiceType     string `json:"service_type,omitempty"`
	Phone           string `json:"phone,omitempty"`
	FinancialStatus string `json:"financial_status,omitempty"`
}

// NewConversationSession returns a fresh session at the first step.
func NewConversationSession() *ConversationSession {
	return &ConversationSession{Step: StepAskName}
}

// DispatchRecord remembers a created order so repeated triggers for the
// same conversation key resend the protocol instead of opening a new order.
type DispatchRecord struct {
	Protocol string `json:"protocol"`
	OrderID  string `json:"order_id,omitempty"`
}
