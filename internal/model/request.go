package model

import "time"

// RequestStatus is the lifecycle state of a procurement request.
type RequestStatus string

// Request statuses.
const (
	StatusPending  RequestStatus = "Pending"
	StatusApproved RequestStatus = "Approved"
	StatusRejected RequestStatus = "Rejected"
)

// Terminal reports whether the status can no longer change.
func (s RequestStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Request is an active purchase or requisition request.
type Request struct {
	ID          int64         `json:"id"`
	ItemName    string        `json:"item_name"`
	Brand       string        `json:"brand"`
	Quantity    int           `json:"quantity"`
	Reason      string        `json:"reason"`
	RequestedBy string        `json:"requested_by"`
	RequestDate time.Time     `json:"request_date"`
	Status      RequestStatus `json:"status"`
}

// ArchivedRequest is a resolved request moved out of the active table.
type ArchivedRequest struct {
	Request
	ArchivedAt time.Time `json:"archived_at"`
}
