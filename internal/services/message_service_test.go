package services_test

import (
	"io"

	apperrors "github.com/welldanyogia/webrana-teammail-backend/internal/errors"
	"github.com/welldanyogia/webrana-teammail-backend/internal/services"
	"github.com/welldanyogia/webrana-teammail-backend/internal/storage"
)

func (s *MailingSuite) TestMarkReadAndStar() {
	email := s.mustIngest(delivery("<flag@ext.com>"))

	updated, err := s.messages.MarkRead(s.ctx, alice, email.ID, true)
	s.Require().NoError(err)
	s.True(updated.IsRead)

	updated, err = s.messages.SetStarred(s.ctx, alice, email.ID, true)
	s.Require().NoError(err)
	s.True(updated.IsStarred)

	_, err = s.messages.MarkRead(s.ctx, bob, email.ID, true)
	s.ErrorIs(err, apperrors.ErrForbidden)

	_, err = s.messages.MarkRead(s.ctx, alice, "missing", true)
	s.ErrorIs(err, apperrors.ErrEmailNotFound)
}

func (s *MailingSuite) TestOpenAttachment() {
	sent, err := s.dispatcher.Send(s.ctx, alice, services.SendRequest{
		From: "alice@team.co", To: []string{"client@ext.com"},
		Attachments: []storage.Upload{storage.BytesUpload("notes.txt", "text/plain", []byte("hello"))},
	})
	s.Require().NoError(err)
	s.Require().Len(sent.Attachments, 1)
	attachmentID := sent.Attachments[0].ID

	meta, body, err := s.messages.OpenAttachment(s.ctx, alice, attachmentID)
	s.Require().NoError(err)
	defer body.Close()
	data, err := io.ReadAll(body)
	s.Require().NoError(err)
	s.Equal("hello", string(data))
	s.Equal("notes.txt", meta.Filename)

	_, _, err = s.messages.OpenAttachment(s.ctx, bob, attachmentID)
	s.ErrorIs(err, apperrors.ErrForbidden)

	_, _, err = s.messages.OpenAttachment(s.ctx, alice, attachmentID+100)
	s.ErrorIs(err, apperrors.ErrAttachmentNotFound)
}
