package core

// Intent is the performative attached to a Message. It tells the receiver how
// to interpret the payload.
type Intent int

const (
	// Inform shares a fact.
	Inform Intent = iota
	// Propose offers something, e.g. a bid.
	Propose
	// Accept accepts a proposal.
	Accept
	// Reject rejects a proposal.
	Reject
	// Request asks the receiver to perform an action.
	Request
	// Confirm confirms a request succeeded.
	Confirm
	// Disconfirm states that a queried fact does not hold.
	Disconfirm
	// Refuse refuses a request.
	Refuse
	// Agree agrees to a request.
	Agree
	// Subscribe asks to receive future notifications.
	Subscribe
)

var intentNames = [...]string{
	Inform:     "INFORM",
	Propose:    "PROPOSE",
	Accept:     "ACCEPT",
	Reject:     "REJECT",
	Request:    "REQUEST",
	Confirm:    "CONFIRM",
	Disconfirm: "DISCONFIRM",
	Refuse:     "REFUSE",
	Agree:      "AGREE",
	Subscribe:  "SUBSCRIBE",
}

// String returns the upper-case performative name.
func (i Intent) String() string {
	if i < 0 || int(i) >= len(intentNames) {
		return "UNKNOWN"
	}
	return intentNames[i]
}

// IsNegative reports whether the intent carries a refusal outcome.
func (i Intent) IsNegative() bool {
	return i == Reject || i == Refuse || i == Disconfirm
}
