package models

import "time"

// Recipient is a single email destination.
type Recipient struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// RecipientResult is the outcome of sending to one recipient.
type RecipientResult struct {
	Recipient Recipient `json:"recipient"`
	Success   bool      `json:"success"`
	MessageID string    `json:"message_id,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// DeliveryReport aggregates per-recipient send outcomes.
type DeliveryReport struct {
	Total      int               `json:"total_recipients"`
	Successful int               `json:"successful_sends"`
	Failed     int               `json:"failed_sends"`
	Results    []RecipientResult `json:"results"`
}

// Add records one recipient outcome and updates the counters.
func (r *DeliveryReport) Add(res RecipientResult) {
	r.Total++
	if res.Success {
		r.Successful++
	} else {
		r.Failed++
	}
	r.Results = append(r.Results, res)
}

// Subscriber is a newsletter recipient stored in the repository.
type Subscriber struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// Recipient converts the subscriber to a send destination.
func (s Subscriber) Recipient() Recipient {
	return Recipient{Email: s.Email, Name: s.Name}
}

// Delivery is one persisted send attempt for a draft.
type Delivery struct {
	ID        int64     `json:"id"`
	DraftID   string    `json:"draft_id"`
	Email     string    `json:"email"`
	Success   bool      `json:"success"`
	MessageID string    `json:"message_id,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
