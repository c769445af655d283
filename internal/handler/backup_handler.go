package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/quizdrill/backend/internal/model"
	"github.com/quizdrill/backend/internal/response"
	"github.com/quizdrill/backend/internal/service"
	"github.com/quizdrill/backend/internal/validator"
)

// BackupHandler is the admin backup surface. Restore and delete are
// destructive and require the caller to type the exact backup filename as
// confirmation.
type BackupHandler struct {
	backupService *service.BackupService
}

func NewBackupHandler(backupService *service.BackupService) *BackupHandler {
	return &BackupHandler{backupService: backupService}
}

// List godoc
// GET /api/v1/admin/backups
func (h *BackupHandler) List(c *gin.Context) {
	backups, err := h.backupService.List(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	if backups == nil {
		backups = []model.BackupFile{}
	}

	response.Success(c, http.StatusOK, gin.H{
		"backups":  backups,
		"schedule": h.backupService.Schedule(time.Now()),
	})
}

// Create godoc
// POST /api/v1/admin/backups
// Creates a manual backup of the full dataset.
func (h *BackupHandler) Create(c *gin.Context) {
	backup, err := h.backupService.Create(c.Request.Context(), false)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"backup": backup})
}

// Download godoc
// GET /api/v1/admin/backups/:id/download
// Streams the snapshot JSON as a file attachment.
func (h *BackupHandler) Download(c *gin.Context) {
	id, backup, ok := h.lookup(c)
	if !ok {
		return
	}

	content, err := h.backupService.Content(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+backup.Filename+`"`)
	c.Data(http.StatusOK, "application/json", content)
}

// Restore godoc
// POST /api/v1/admin/backups/:id/restore
// Replaces the entire dataset with the snapshot's contents. The request
// must repeat the backup's filename verbatim.
func (h *BackupHandler) Restore(c *gin.Context) {
	id, backup, ok := h.lookup(c)
	if !ok {
		return
	}
	if !h.confirmed(c, backup) {
		return
	}

	if err := h.backupService.Restore(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrSnapshotVersion) {
			response.FailWithMessage(c, http.StatusUnprocessableEntity, response.ErrConflict, err.Error())
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "backup restored successfully"})
}

// Delete godoc
// DELETE /api/v1/admin/backups/:id
// Removes the snapshot file and its record. The request must repeat the
// backup's filename verbatim.
func (h *BackupHandler) Delete(c *gin.Context) {
	id, backup, ok := h.lookup(c)
	if !ok {
		return
	}
	if !h.confirmed(c, backup) {
		return
	}

	if err := h.backupService.Delete(c.Request.Context(), id); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "backup deleted successfully"})
}

func (h *BackupHandler) lookup(c *gin.Context) (int, *model.BackupFile, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return 0, nil, false
	}

	backup, err := h.backupService.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return 0, nil, false
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return 0, nil, false
	}

	return id, backup, true
}

func (h *BackupHandler) confirmed(c *gin.Context, backup *model.BackupFile) bool {
	var req model.BackupConfirmRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return false
	}

	if req.ConfirmFilename != backup.Filename {
		response.Fail(c, http.StatusBadRequest, response.ErrConfirmMismatch)
		return false
	}
	return true
}
