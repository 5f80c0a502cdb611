package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/bazaarly/storefront/internal/csvimport"
	appErrors "github.com/bazaarly/storefront/internal/errors"
	"github.com/bazaarly/storefront/internal/metrics"
	"github.com/bazaarly/storefront/internal/models"
	repository "github.com/bazaarly/storefront/internal/repositories"
	"github.com/google/uuid"
)

// uploadSession is one seller's in-progress bulk upload: the parsed rows
// under review plus the submit guard. Sessions live in memory; an upload
// that is not submitted does not survive a restart.
type uploadSession struct {
	rows       []*models.CSVProductRow
	submitting bool
}

// BulkUploadService runs the CSV-to-catalog pipeline: parse an uploaded
// file into candidate rows, let the seller review and edit them, then
// validate and insert the whole batch atomically.
type BulkUploadService struct {
	repo   repository.ProductRepository
	logger *slog.Logger

	mu       sync.Mutex
	sessions map[uuid.UUID]*uploadSession
}

func NewBulkUploadService(repo repository.ProductRepository, logger *slog.Logger) *BulkUploadService {
	return &BulkUploadService{
		repo:     repo,
		logger:   logger,
		sessions: make(map[uuid.UUID]*uploadSession),
	}
}

func (s *BulkUploadService) session(sellerID uuid.UUID) *uploadSession {
	sess, ok := s.sessions[sellerID]
	if !ok {
		sess = &uploadSession{}
		s.sessions[sellerID] = sess
	}

	return sess
}

// UploadFile parses the file and replaces any rows already under review.
func (s *BulkUploadService) UploadFile(sellerID uuid.UUID, filename string, data []byte) ([]*models.CSVProductRow, error) {
	rows, skipped, err := csvimport.Parse(filename, data)
	if err != nil {
		return nil, err
	}

	metrics.RecordCSVParse(len(rows), skipped)

	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.session(sellerID)
	if sess.submitting {
		return nil, appErrors.ConflictError("A submission is already in progress")
	}

	sess.rows = rows

	s.logger.Info("csv file parsed",
		slog.String("sellerID", sellerID.String()),
		slog.String("filename", filename),
		slog.Int("rows", len(rows)),
		slog.Int("skipped", skipped))

	return cloneRows(rows), nil
}

// Rows returns the seller's rows currently under review.
func (s *BulkUploadService) Rows(sellerID uuid.UUID) []*models.CSVProductRow {
	s.mu.Lock()
	defer s.mu.Unlock()

	return cloneRows(s.session(sellerID).rows)
}

// cloneRows copies row values out of the session; callers marshal and
// inspect rows after the lock is released, never the live pointers.
func cloneRows(rows []*models.CSVProductRow) []*models.CSVProductRow {
	out := make([]*models.CSVProductRow, len(rows))
	for i, row := range rows {
		copied := *row
		out[i] = &copied
	}

	return out
}

func cloneRow(row *models.CSVProductRow) *models.CSVProductRow {
	copied := *row

	return &copied
}

func (s *BulkUploadService) findRow(sess *uploadSession, rowID uuid.UUID) (*models.CSVProductRow, error) {
	for _, row := range sess.rows {
		if row.ID == rowID {
			return row, nil
		}
	}

	return nil, appErrors.NotFoundError("Row not found")
}

func (s *BulkUploadService) BeginEdit(sellerID, rowID uuid.UUID) (*models.CSVProductRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, err := s.findRow(s.session(sellerID), rowID)
	if err != nil {
		return nil, err
	}

	row.BeginEdit()

	return cloneRow(row), nil
}

// UpdateRow patches the working values of a row. The row must be in the
// Editing state; saved values stay untouched until SaveEdit.
func (s *BulkUploadService) UpdateRow(sellerID, rowID uuid.UUID, req *models.UpdateRowRequest) (*models.CSVProductRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, err := s.findRow(s.session(sellerID), rowID)
	if err != nil {
		return nil, err
	}

	if !row.IsEditing {
		return nil, appErrors.BadRequestError("Row is not being edited")
	}

	if req.Name != nil {
		row.Name = *req.Name
	}
	if req.Description != nil {
		row.Description = *req.Description
	}
	if req.Category != nil {
		row.Category = *req.Category
	}
	if req.Price != nil {
		row.Price = *req.Price
	}
	if req.ImageURL != nil {
		row.ImageURL = *req.ImageURL
	}
	if req.Stock != nil {
		row.Stock = *req.Stock
	}

	return cloneRow(row), nil
}

func (s *BulkUploadService) SaveEdit(sellerID, rowID uuid.UUID) (*models.CSVProductRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, err := s.findRow(s.session(sellerID), rowID)
	if err != nil {
		return nil, err
	}

	row.SaveEdit()

	return cloneRow(row), nil
}

func (s *BulkUploadService) CancelEdit(sellerID, rowID uuid.UUID) (*models.CSVProductRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, err := s.findRow(s.session(sellerID), rowID)
	if err != nil {
		return nil, err
	}

	row.CancelEdit()

	return cloneRow(row), nil
}

// DeleteRow drops one row from the review set.
func (s *BulkUploadService) DeleteRow(sellerID, rowID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.session(sellerID)
	for i, row := range sess.rows {
		if row.ID == rowID {
			sess.rows = append(sess.rows[:i], sess.rows[i+1:]...)

			return nil
		}
	}

	return appErrors.NotFoundError("Row not found")
}

// Reset discards the review set entirely.
func (s *BulkUploadService) Reset(sellerID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.session(sellerID)
	sess.rows = nil
}

// Submit validates every row and inserts the batch in one transaction.
// Validation is all-or-nothing: a single invalid row blocks the whole
// batch, and the errors name rows by their 1-based position. On any
// failure the rows stay under review so the seller can fix and retry.
func (s *BulkUploadService) Submit(ctx context.Context, sellerID uuid.UUID) (*models.BatchSubmitResult, error) {
	s.mu.Lock()

	sess := s.session(sellerID)

	if len(sess.rows) == 0 {
		s.mu.Unlock()

		return nil, appErrors.BadRequestError("No products to submit")
	}

	if sess.submitting {
		s.mu.Unlock()

		return nil, appErrors.ConflictError("A submission is already in progress")
	}

	if errs := csvimport.ValidateRows(sess.rows); len(errs) > 0 {
		s.mu.Unlock()

		return nil, appErrors.RowValidationError("Please fix the highlighted rows before submitting").
			WithDetails(errs...)
	}

	sess.submitting = true

	// snapshot the row values before releasing the lock; a concurrent edit
	// must not tear into the batch being written
	products := make([]*models.Product, 0, len(sess.rows))
	for _, row := range sess.rows {
		products = append(products, &models.Product{
			SellerID:    sellerID,
			Name:        row.Name,
			Description: row.Description,
			Category:    row.Category,
			Price:       row.Price,
			Stock:       row.Stock,
			ImageURL:    row.ImageURL,
			Status:      "active",
		})
	}
	s.mu.Unlock()

	err := s.repo.CreateProductBatch(ctx, products)

	s.mu.Lock()
	defer s.mu.Unlock()

	sess.submitting = false

	if err != nil {
		metrics.RecordBatchSubmission("failure")
		s.logger.Error("batch submission failed",
			slog.String("sellerID", sellerID.String()),
			slog.Int("rows", len(products)),
			slog.String("error", err.Error()))

		return nil, appErrors.SubmissionError("Failed to submit products. Please try again.").WithError(err)
	}

	sess.rows = nil

	ids := make([]uuid.UUID, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}

	metrics.RecordBatchSubmission("success")
	s.logger.Info("batch submitted",
		slog.String("sellerID", sellerID.String()),
		slog.Int("count", len(ids)))

	return &models.BatchSubmitResult{ProductIDs: ids, Count: len(ids)}, nil
}

// Template returns the downloadable sample CSV.
func (s *BulkUploadService) Template() (string, []byte) {
	return csvimport.TemplateFilename, csvimport.Template()
}
