package services

import (
	"context"
	"errors"
	"io"

	apperrors "github.com/welldanyogia/webrana-teammail-backend/internal/errors"
	"github.com/welldanyogia/webrana-teammail-backend/internal/models"
	"github.com/welldanyogia/webrana-teammail-backend/internal/repository"
	"github.com/welldanyogia/webrana-teammail-backend/internal/storage"
)

// MessageService applies the per-message commands a member may issue
type MessageService interface {
	MarkRead(ctx context.Context, id Identity, emailID string, read bool) (*models.Email, error)
	SetStarred(ctx context.Context, id Identity, emailID string, starred bool) (*models.Email, error)
	// OpenAttachment streams a stored attachment; the caller closes the reader
	OpenAttachment(ctx context.Context, id Identity, attachmentID uint) (*models.Attachment, io.ReadCloser, error)
}

type messageService struct {
	emails      repository.EmailRepository
	attachments repository.AttachmentRepository
	guard       AccessGuard
	files       storage.FileStorage
}

// NewMessageService creates a MessageService
func NewMessageService(
	emails repository.EmailRepository,
	attachments repository.AttachmentRepository,
	guard AccessGuard,
	files storage.FileStorage,
) MessageService {
	return &messageService{emails: emails, attachments: attachments, guard: guard, files: files}
}

// guarded loads an email the member may act on
func (s *messageService) guarded(ctx context.Context, id Identity, emailID string) (*models.Email, error) {
	email, err := s.emails.GetByID(ctx, id.TeamID, emailID)
	if err != nil {
		return nil, err
	}
	if err := s.guard.Authorize(ctx, id, email.ChainID); err != nil {
		return nil, err
	}
	return email, nil
}

func (s *messageService) MarkRead(ctx context.Context, id Identity, emailID string, read bool) (*models.Email, error) {
	email, err := s.guarded(ctx, id, emailID)
	if err != nil {
		return nil, err
	}
	if err := s.emails.SetRead(ctx, id.TeamID, emailID, read); err != nil {
		return nil, err
	}
	email.IsRead = read
	return email, nil
}

func (s *messageService) SetStarred(ctx context.Context, id Identity, emailID string, starred bool) (*models.Email, error) {
	email, err := s.guarded(ctx, id, emailID)
	if err != nil {
		return nil, err
	}
	if err := s.emails.SetStarred(ctx, id.TeamID, emailID, starred); err != nil {
		return nil, err
	}
	email.IsStarred = starred
	return email, nil
}

func (s *messageService) OpenAttachment(ctx context.Context, id Identity, attachmentID uint) (*models.Attachment, io.ReadCloser, error) {
	attachment, email, err := s.attachments.GetByID(ctx, id.TeamID, attachmentID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.guard.Authorize(ctx, id, email.ChainID); err != nil {
		return nil, nil, err
	}
	if attachment.Status != models.AttachmentStored {
		return nil, nil, apperrors.NewAppError(apperrors.ErrAttachmentNotFound, "attachment was not stored", apperrors.CodeNotFound)
	}

	r, err := s.files.Open(ctx, attachment.FilePath)
	if err != nil {
		if errors.Is(err, storage.ErrFileNotFound) {
			return nil, nil, apperrors.NewAppError(apperrors.ErrAttachmentNotFound, "attachment file is missing", apperrors.CodeNotFound)
		}
		return nil, nil, err
	}
	return attachment, r, nil
}
