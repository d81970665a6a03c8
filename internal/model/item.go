package model

import "time"

// DateLayout is the format of calendar dates exchanged with clients.
const DateLayout = "2006-01-02"

// Item is a single tracked piece of equipment, identified by its serial number.
type Item struct {
	ID           int64  `json:"id"`
	SerialNumber string `json:"serialNumber"`
	Name         string `json:"name"`
	Brand        string `json:"brand"`
	DateAdded    string `json:"date_added"`
	AddedBy      string `json:"added_by"`
	EmployeeUser string `json:"employeeUser,omitempty"`

	// Specs is non-nil exactly when HasSpecs is set.
	HasSpecs bool   `json:"hasSpecs"`
	Specs    *Specs `json:"specs,omitempty"`

	EditedBy  string     `json:"edited_by,omitempty"`
	EditedAt  *time.Time `json:"edited_at,omitempty"`
	ImageMime string     `json:"image_mime,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Specs is the optional hardware detail block of an item.
type Specs struct {
	Model              string `json:"model"`
	WarrantyExpiration string `json:"warranty_expiration"`
	CPU                string `json:"cpu"`
	RAM                string `json:"ram"`
	Storage            string `json:"storage"`
}

// Complete reports whether every specification field is non-empty.
func (s Specs) Complete() bool {
	return s.Model != "" && s.WarrantyExpiration != "" && s.CPU != "" && s.RAM != "" && s.Storage != ""
}
