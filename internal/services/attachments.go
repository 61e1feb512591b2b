package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/welldanyogia/webrana-teammail-backend/internal/models"
	"github.com/welldanyogia/webrana-teammail-backend/internal/storage"
	"github.com/welldanyogia/webrana-teammail-backend/internal/validator"
	"golang.org/x/sync/errgroup"
)

// DefaultAttachmentConcurrency bounds parallel writes per message
const DefaultAttachmentConcurrency = 3

// attachmentStore writes a message's attachments with bounded concurrency.
// A failed part becomes a row with status failed instead of an error.
type attachmentStore struct {
	files       storage.FileStorage
	concurrency int
	logger      *slog.Logger
}

func (s *attachmentStore) storeAll(ctx context.Context, uploads []storage.Upload) []models.Attachment {
	rows := make([]models.Attachment, len(uploads))
	if len(uploads) == 0 {
		return rows
	}

	limit := s.concurrency
	if limit < 1 {
		limit = DefaultAttachmentConcurrency
	}
	var g errgroup.Group
	g.SetLimit(limit)
	for i, u := range uploads {
		g.Go(func() error {
			rows[i] = s.storeOne(ctx, u)
			return nil
		})
	}
	_ = g.Wait()
	return rows
}

func (s *attachmentStore) storeOne(ctx context.Context, u storage.Upload) models.Attachment {
	name := validator.SanitizeFilename(u.Filename)
	row := models.Attachment{
		Filename:    name,
		ContentType: u.ContentType,
		SizeBytes:   u.Size,
		Status:      models.AttachmentStored,
	}
	if row.ContentType == "" {
		row.ContentType = "application/octet-stream"
	}

	fail := func(err error) models.Attachment {
		s.logger.Warn("attachment not stored",
			slog.String("filename", name),
			slog.String("error", err.Error()),
		)
		row.Status = models.AttachmentFailed
		row.Error = err.Error()
		return row
	}

	if err := storage.ValidateFile(name, u.Size); err != nil {
		return fail(err)
	}
	r, err := u.Open()
	if err != nil {
		return fail(fmt.Errorf("failed to open upload: %w", err))
	}
	defer r.Close()

	obj, err := s.files.Save(ctx, name, r)
	if err != nil {
		return fail(err)
	}
	row.FilePath = obj.Path
	row.SizeBytes = obj.Size
	return row
}

// discard removes the files of rows that will never be persisted
func (s *attachmentStore) discard(ctx context.Context, rows []models.Attachment) {
	for _, row := range rows {
		if row.Status != models.AttachmentStored || row.FilePath == "" {
			continue
		}
		if err := s.files.Delete(ctx, row.FilePath); err != nil {
			s.logger.Warn("failed to remove orphaned attachment",
				slog.String("path", row.FilePath),
				slog.String("error", err.Error()),
			)
		}
	}
}

// AttachmentURL is the access-guarded download route of an attachment
func AttachmentURL(baseURL string, teamID, attachmentID uint) string {
	return fmt.Sprintf("%s/teams/%d/mailing/attachments/%d/download", baseURL, teamID, attachmentID)
}

func projectURLs(baseURL string, emails ...*models.Email) {
	for _, e := range emails {
		for i := range e.Attachments {
			e.Attachments[i].URL = AttachmentURL(baseURL, e.TeamID, e.Attachments[i].ID)
		}
	}
}
