package services_test

import (
	"errors"
	"io"
	"log/slog"

	"github.com/stretchr/testify/mock"
	apperrors "github.com/welldanyogia/webrana-teammail-backend/internal/errors"
	"github.com/welldanyogia/webrana-teammail-backend/internal/mocks"
	"github.com/welldanyogia/webrana-teammail-backend/internal/models"
	"github.com/welldanyogia/webrana-teammail-backend/internal/services"
	"github.com/welldanyogia/webrana-teammail-backend/internal/storage"
)

func (s *MailingSuite) TestSend_RoundTripsThroughConversationList() {
	sent, err := s.dispatcher.Send(s.ctx, alice, services.SendRequest{
		From:    "Alice@Team.co",
		To:      []string{"client@ext.com"},
		Bcc:     []string{"audit@ext.com"},
		Subject: "Proposal",
		HTML:    "<p>Here is the <b>proposal</b></p>",
	})
	s.Require().NoError(err)

	s.Equal("<sent-1@team.co>", sent.MessageID)
	s.Equal("alice@team.co", sent.From)
	s.Equal(models.DirectionOutgoing, sent.Direction)
	s.True(sent.IsRead)
	s.Equal("Here is the proposal", sent.Summary)

	s.Require().Len(s.transport.sent, 1)
	msg := s.transport.sent[0]
	s.Equal([]string{"client@ext.com"}, msg.To)
	s.Equal([]string{"audit@ext.com"}, msg.Bcc)
	s.NotEmpty(msg.MessageID)

	page, err := s.query.List(s.ctx, alice, aliceID, services.ConversationFilter{Status: services.StatusSent}, 1, 20)
	s.Require().NoError(err)
	s.Require().Len(page.Items, 1)
	s.Equal(sent.ID, page.Items[0].LatestEmail.ID)
	s.Equal("Proposal", page.Items[0].Subject)

	chain, err := s.query.GetChain(s.ctx, alice, sent.ChainID)
	s.Require().NoError(err)
	s.Require().Len(chain.Emails, 1)
	s.Equal([]string{"audit@ext.com"}, chain.Emails[0].Bcc)
}

func (s *MailingSuite) TestSend_ReplyJoinsParentChain() {
	parent := s.mustIngest(delivery("<ask@ext.com>"))

	reply, err := s.dispatcher.Send(s.ctx, alice, services.SendRequest{
		From:      "alice@team.co",
		To:        []string{"client@ext.com"},
		Subject:   "Re: Quote request",
		Text:      "Attached.",
		InReplyTo: parent.MessageID,
	})
	s.Require().NoError(err)

	s.Equal(parent.ChainID, reply.ChainID)
	s.Equal("<ask@ext.com>", reply.InReplyTo)
	s.Equal([]string{"<ask@ext.com>"}, reply.References)
	s.Equal("<ask@ext.com>", s.transport.sent[0].InReplyTo)

	// the parent may also be named by its email id
	again, err := s.dispatcher.Send(s.ctx, alice, services.SendRequest{
		From: "alice@team.co", To: []string{"client@ext.com"}, InReplyTo: reply.ID,
	})
	s.Require().NoError(err)
	s.Equal(parent.ChainID, again.ChainID)
	s.Equal([]string{"<ask@ext.com>", reply.MessageID}, again.References)

	chain, err := s.query.GetChain(s.ctx, alice, parent.ChainID)
	s.Require().NoError(err)
	s.Len(chain.Emails, 3)
	s.Equal("Quote request", chain.Conversation.Subject)
}

func (s *MailingSuite) TestSend_ReplyToForeignChainIsForbidden() {
	parent := s.mustIngest(delivery("<private@ext.com>"))

	_, err := s.dispatcher.Send(s.ctx, bob, services.SendRequest{
		From: "bob@team.co", To: []string{"client@ext.com"}, InReplyTo: parent.MessageID,
	})
	s.ErrorIs(err, apperrors.ErrForbidden)
	s.Empty(s.transport.sent)
}

func (s *MailingSuite) TestSend_FromAddressOfAnotherMember() {
	_, err := s.dispatcher.Send(s.ctx, bob, services.SendRequest{
		From: "alice@team.co", To: []string{"client@ext.com"},
	})
	s.ErrorIs(err, apperrors.ErrMailboxNotOwned)
	s.Empty(s.transport.sent)
}

func (s *MailingSuite) TestSend_RequiresRecipient() {
	_, err := s.dispatcher.Send(s.ctx, alice, services.SendRequest{From: "alice@team.co"})
	s.ErrorIs(err, apperrors.ErrInvalidInput)

	_, err = s.dispatcher.Send(s.ctx, alice, services.SendRequest{From: "alice@team.co", To: []string{"not an address"}})
	s.ErrorIs(err, apperrors.ErrInvalidInput)
}

func (s *MailingSuite) TestSend_WithoutSendingIntegration() {
	key := signingKey
	_, err := s.integrationS.Upsert(s.ctx, owner, models.IntegrationMailgun, services.UpsertIntegrationRequest{
		WebhookSigningKey: &key, InboundEnabled: true,
	})
	s.Require().NoError(err)

	_, err = s.dispatcher.Send(s.ctx, alice, services.SendRequest{From: "alice@team.co", To: []string{"client@ext.com"}})
	s.ErrorIs(err, apperrors.ErrIntegrationDisabled)
	s.Equal(apperrors.CodeIntegrationDisabled, apperrors.GetErrorCode(err))
}

func (s *MailingSuite) TestSend_DeliveryFailurePersistsNothing() {
	s.transport.err = errors.New("connection refused")

	_, err := s.dispatcher.Send(s.ctx, alice, services.SendRequest{
		From: "alice@team.co", To: []string{"client@ext.com"},
		Attachments: []storage.Upload{storage.BytesUpload("quote.pdf", "application/pdf", []byte("%PDF"))},
	})

	s.ErrorIs(err, apperrors.ErrDeliveryFailed)
	s.Zero(s.countEmails())
	var files int64
	s.Require().NoError(s.db.Model(&models.Attachment{}).Count(&files).Error)
	s.Zero(files)
}

func (s *MailingSuite) TestSend_RejectsBlockedAttachmentBeforeDelivery() {
	_, err := s.dispatcher.Send(s.ctx, alice, services.SendRequest{
		From: "alice@team.co", To: []string{"client@ext.com"},
		Attachments: []storage.Upload{storage.BytesUpload("run.exe", "application/octet-stream", []byte("MZ"))},
	})
	s.ErrorIs(err, apperrors.ErrInvalidInput)
	s.Empty(s.transport.sent)
}

func (s *MailingSuite) TestSend_PartialAttachmentFailureKeepsMessage() {
	files := new(mocks.MockFileStorage)
	files.On("Save", mock.Anything, "ok.txt", mock.Anything).Return(storage.Object{Path: "ab/ok.txt", Size: 2}, nil)
	files.On("Save", mock.Anything, "broken.txt", mock.Anything).Return(storage.Object{}, errors.New("disk full"))

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	dispatcher := services.NewOutboundDispatcher(s.integrations, s.emails, s.labelsRepo, s.directory, s.resolver, s.guard,
		fakeFactory{transport: s.transport}, files, services.OutboundConfig{PublicBaseURL: baseURL}, log)

	sent, err := dispatcher.Send(s.ctx, alice, services.SendRequest{
		From: "alice@team.co", To: []string{"client@ext.com"},
		Attachments: []storage.Upload{
			storage.BytesUpload("ok.txt", "text/plain", []byte("ok")),
			storage.BytesUpload("broken.txt", "text/plain", []byte("no")),
		},
	})
	s.Require().NoError(err)
	s.Require().Len(sent.Attachments, 2)
	s.Len(s.transport.sent[0].Attachments, 2)

	byName := map[string]models.Attachment{}
	for _, a := range sent.Attachments {
		byName[a.Filename] = a
	}
	s.Equal(models.AttachmentStored, byName["ok.txt"].Status)
	s.Equal(services.AttachmentURL(baseURL, teamID, byName["ok.txt"].ID), byName["ok.txt"].URL)
	s.Equal(models.AttachmentFailed, byName["broken.txt"].Status)
	s.Equal("disk full", byName["broken.txt"].Error)
	files.AssertExpectations(s.T())
}
