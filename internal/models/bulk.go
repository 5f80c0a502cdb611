package models

import "github.com/google/uuid"

// CSVRowData is the editable field set of one parsed CSV line.
type CSVRowData struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"image_url"`
	Stock       int     `json:"stock"`
}

// CSVProductRow is a product candidate parsed from an uploaded CSV. The ID is
// client-side only and discarded on submit; the row lives until it is
// deleted, submitted, or the pipeline is reset.
//
// Each row is a tiny state machine: Viewing or Editing. BeginEdit snapshots
// the current field values so CancelEdit can restore them exactly.
type CSVProductRow struct {
	ID uuid.UUID `json:"id"`
	CSVRowData
	IsEditing bool `json:"is_editing"`

	original *CSVRowData
}

func NewCSVProductRow(data CSVRowData) *CSVProductRow {
	return &CSVProductRow{ID: uuid.New(), CSVRowData: data}
}

func (r *CSVProductRow) BeginEdit() {
	if r.IsEditing {
		return
	}

	snapshot := r.CSVRowData
	r.original = &snapshot
	r.IsEditing = true
}

// SaveEdit makes the working values authoritative and drops the snapshot.
func (r *CSVProductRow) SaveEdit() {
	r.IsEditing = false
	r.original = nil
}

// CancelEdit restores the pre-edit values and drops the snapshot.
func (r *CSVProductRow) CancelEdit() {
	if r.original != nil {
		r.CSVRowData = *r.original
	}

	r.IsEditing = false
	r.original = nil
}

// UpdateRowRequest patches the working fields of a row while it is in the
// Editing state. Absent fields are left untouched.
type UpdateRowRequest struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Category    *string  `json:"category,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	ImageURL    *string  `json:"image_url,omitempty"`
	Stock       *int     `json:"stock,omitempty"`
}

// BatchSubmitResult reports a successful batch insert back to the caller so
// it can mark the new products as recently uploaded.
type BatchSubmitResult struct {
	ProductIDs []uuid.UUID `json:"product_ids"`
	Count      int         `json:"count"`
}
