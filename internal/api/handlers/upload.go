package handlers

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/bazaarly/storefront/internal/api/middleware"
	"github.com/bazaarly/storefront/internal/csvimport"
	appErrors "github.com/bazaarly/storefront/internal/errors"
	"github.com/bazaarly/storefront/internal/models"
	service "github.com/bazaarly/storefront/internal/services"
	"github.com/bazaarly/storefront/internal/utils"
	"github.com/bazaarly/storefront/internal/utils/response"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// UploadHandler drives the seller's bulk upload pipeline over HTTP. All
// routes are mounted behind the seller role gate.
type UploadHandler struct {
	uploadService *service.BulkUploadService
	validator     *validator.Validate
}

func NewUploadHandler(uploadService *service.BulkUploadService) *UploadHandler {
	return &UploadHandler{uploadService: uploadService, validator: validator.New()}
}

func (h *UploadHandler) UploadCSV() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := middleware.LoggerFromContext(r.Context())
		actor := middleware.ActorFromContext(r.Context())

		if err := r.ParseMultipartForm(csvimport.MaxFileSize); err != nil {
			response.Error(w, appErrors.CSVSizeError("File size must be less than 5MB"))

			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			response.Error(w, appErrors.BadRequestError("CSV file is required"))

			return
		}
		defer file.Close()

		data, err := io.ReadAll(io.LimitReader(file, csvimport.MaxFileSize+1))
		if err != nil {
			response.Error(w, appErrors.BadRequestError("Failed to read uploaded file"))

			return
		}

		rows, err := h.uploadService.UploadFile(actor.UserID, header.Filename, data)
		if err != nil {
			logger.Warn("CSV upload rejected",
				slog.String("filename", header.Filename),
				slog.String("error", err.Error()))
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, rows)
	}
}

func (h *UploadHandler) ListRows() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := middleware.ActorFromContext(r.Context())

		response.Success(w, http.StatusOK, h.uploadService.Rows(actor.UserID))
	}
}

func (h *UploadHandler) BeginEdit() http.HandlerFunc {
	return h.rowAction(func(sellerID, rowID uuid.UUID) (*models.CSVProductRow, error) {
		return h.uploadService.BeginEdit(sellerID, rowID)
	})
}

func (h *UploadHandler) SaveEdit() http.HandlerFunc {
	return h.rowAction(func(sellerID, rowID uuid.UUID) (*models.CSVProductRow, error) {
		return h.uploadService.SaveEdit(sellerID, rowID)
	})
}

func (h *UploadHandler) CancelEdit() http.HandlerFunc {
	return h.rowAction(func(sellerID, rowID uuid.UUID) (*models.CSVProductRow, error) {
		return h.uploadService.CancelEdit(sellerID, rowID)
	})
}

func (h *UploadHandler) rowAction(action func(sellerID, rowID uuid.UUID) (*models.CSVProductRow, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := middleware.ActorFromContext(r.Context())

		rowID, err := uuid.Parse(r.PathValue("rowId"))
		if err != nil {
			response.Error(w, appErrors.BadRequestError("Invalid row id"))

			return
		}

		row, err := action(actor.UserID, rowID)
		if err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, row)
	}
}

func (h *UploadHandler) UpdateRow() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := middleware.ActorFromContext(r.Context())

		rowID, err := uuid.Parse(r.PathValue("rowId"))
		if err != nil {
			response.Error(w, appErrors.BadRequestError("Invalid row id"))

			return
		}

		var req models.UpdateRowRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		row, err := h.uploadService.UpdateRow(actor.UserID, rowID, &req)
		if err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, row)
	}
}

func (h *UploadHandler) DeleteRow() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := middleware.ActorFromContext(r.Context())

		rowID, err := uuid.Parse(r.PathValue("rowId"))
		if err != nil {
			response.Error(w, appErrors.BadRequestError("Invalid row id"))

			return
		}

		if err := h.uploadService.DeleteRow(actor.UserID, rowID); err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

func (h *UploadHandler) Reset() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := middleware.ActorFromContext(r.Context())

		h.uploadService.Reset(actor.UserID)

		response.Success(w, http.StatusOK, map[string]string{"status": "reset"})
	}
}

func (h *UploadHandler) Submit() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := middleware.LoggerFromContext(r.Context())
		actor := middleware.ActorFromContext(r.Context())

		result, err := h.uploadService.Submit(r.Context(), actor.UserID)
		if err != nil {
			logger.Warn("Batch submission rejected", slog.String("error", err.Error()))
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusCreated, result)
	}
}

// Template serves the downloadable sample CSV.
func (h *UploadHandler) Template() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filename, data := h.uploadService.Template()

		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
