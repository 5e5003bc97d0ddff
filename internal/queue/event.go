// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingConfirmedEvent is published when a booking's payment is confirmed.
// It contains enough information for downstream consumers to log, notify, or
// trigger analytics without querying the primary database.
type BookingConfirmedEvent struct {
	BookingID     uint64   `json:"booking_id"`
	Reference     string   `json:"reference"`
	ClubID        uint64   `json:"club_id"`
	ClubName      string   `json:"club_name"`
	OptionName    string   `json:"option_name"`
	ParentName    string   `json:"parent_name"`
	ParentEmail   string   `json:"parent_email"`
	NumChildren   uint8    `json:"num_children"`
	SelectedDates []string `json:"selected_dates"`
	TotalPence    uint32   `json:"total_pence"`
	ConfirmedAt   string   `json:"confirmed_at"`
}

// BookingCompletedEvent is published when the child records for a paid
// booking have been submitted and the booking reaches its final state.
type BookingCompletedEvent struct {
	BookingID   uint64 `json:"booking_id"`
	Reference   string `json:"reference"`
	ClubID      uint64 `json:"club_id"`
	ClubName    string `json:"club_name"`
	ParentEmail string `json:"parent_email"`
	NumChildren uint8  `json:"num_children"`
	CompletedAt string `json:"completed_at"`
}
