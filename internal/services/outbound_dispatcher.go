package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/welldanyogia/webrana-teammail-backend/internal/errors"
	"github.com/welldanyogia/webrana-teammail-backend/internal/inbound"
	"github.com/welldanyogia/webrana-teammail-backend/internal/mailer"
	"github.com/welldanyogia/webrana-teammail-backend/internal/models"
	"github.com/welldanyogia/webrana-teammail-backend/internal/repository"
	"github.com/welldanyogia/webrana-teammail-backend/internal/storage"
	"github.com/welldanyogia/webrana-teammail-backend/internal/validator"
)

// SendRequest is an outgoing message composed by a member
type SendRequest struct {
	From    string
	To      []string
	Cc      []string
	Bcc     []string
	Subject string
	HTML    string
	Text    string
	// InReplyTo names the parent by message id or email id
	InReplyTo   string
	Attachments []storage.Upload
}

// OutboundDispatcher sends mail through the team's provider and stores it
// once the provider accepted it.
type OutboundDispatcher interface {
	Send(ctx context.Context, id Identity, req SendRequest) (*models.Email, error)
}

// OutboundConfig tunes the dispatcher
type OutboundConfig struct {
	AttachmentConcurrency int
	PublicBaseURL         string
}

type outboundDispatcher struct {
	integrations repository.IntegrationRepository
	emails       repository.EmailRepository
	labels       repository.LabelRepository
	directory    MailboxDirectory
	resolver     ThreadResolver
	guard        AccessGuard
	transports   mailer.Factory
	attachments  *attachmentStore
	baseURL      string
	logger       *slog.Logger
}

// NewOutboundDispatcher creates an OutboundDispatcher
func NewOutboundDispatcher(
	integrations repository.IntegrationRepository,
	emails repository.EmailRepository,
	labels repository.LabelRepository,
	directory MailboxDirectory,
	resolver ThreadResolver,
	guard AccessGuard,
	transports mailer.Factory,
	files storage.FileStorage,
	cfg OutboundConfig,
	logger *slog.Logger,
) OutboundDispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &outboundDispatcher{
		integrations: integrations,
		emails:       emails,
		labels:       labels,
		directory:    directory,
		resolver:     resolver,
		guard:        guard,
		transports:   transports,
		attachments:  &attachmentStore{files: files, concurrency: cfg.AttachmentConcurrency, logger: logger},
		baseURL:      cfg.PublicBaseURL,
		logger:       logger,
	}
}

func (d *outboundDispatcher) Send(ctx context.Context, id Identity, req SendRequest) (*models.Email, error) {
	sender, err := d.directory.FindOwnedSender(ctx, id, req.From)
	if err != nil {
		return nil, err
	}

	to, err := validator.ParseAddressList(req.To...)
	if err != nil {
		return nil, apperrors.Invalid("to contains an invalid address")
	}
	cc, err := validator.ParseAddressList(req.Cc...)
	if err != nil {
		return nil, apperrors.Invalid("cc contains an invalid address")
	}
	bcc, err := validator.ParseAddressList(req.Bcc...)
	if err != nil {
		return nil, apperrors.Invalid("bcc contains an invalid address")
	}
	if len(to)+len(cc)+len(bcc) == 0 {
		return nil, apperrors.Invalid("at least one recipient is required")
	}
	subject := validator.SanitizeString(req.Subject, 998)

	integration, err := d.integrations.FindOutbound(ctx, id.TeamID)
	if err != nil {
		if errors.Is(err, apperrors.ErrIntegrationDisabled) {
			return nil, apperrors.NewAppError(err, "no integration allows sending for this team", apperrors.CodeIntegrationDisabled)
		}
		return nil, err
	}

	email := &models.Email{
		ID:        uuid.NewString(),
		TeamID:    id.TeamID,
		From:      sender.FullAddress,
		To:        to,
		Cc:        cc,
		Bcc:       bcc,
		Subject:   subject,
		HTML:      req.HTML,
		Text:      req.Text,
		Direction: models.DirectionOutgoing,
		IsRead:    true,
	}
	email.Summary = inbound.Summarize(email.Text, email.HTML)

	if strings.TrimSpace(req.InReplyTo) != "" {
		parent, err := d.findParent(ctx, id.TeamID, req.InReplyTo)
		if err != nil {
			return nil, err
		}
		if err := d.guard.Authorize(ctx, id, parent.ChainID); err != nil {
			return nil, err
		}
		email.InReplyTo = parent.MessageID
		email.References = append(append([]string{}, parent.References...), parent.MessageID)
	}
	email.ChainID = d.resolver.Resolve(ctx, id.TeamID, ThreadCandidate{
		ID:         email.ID,
		InReplyTo:  email.InReplyTo,
		References: email.References,
	})

	files := make([]mailer.Attachment, 0, len(req.Attachments))
	uploads := make([]storage.Upload, 0, len(req.Attachments))
	for _, u := range req.Attachments {
		name := validator.SanitizeFilename(u.Filename)
		if err := storage.ValidateFile(name, u.Size); err != nil {
			return nil, apperrors.Invalid("attachment %s rejected: %v", name, err)
		}
		data, err := u.ReadAll()
		if err != nil {
			return nil, apperrors.Invalid("attachment %s rejected: %v", name, err)
		}
		files = append(files, mailer.Attachment{Filename: name, ContentType: u.ContentType, Data: data})
		uploads = append(uploads, storage.BytesUpload(name, u.ContentType, data))
	}

	transport, err := d.transports.For(ctx, integration)
	if err != nil {
		return nil, apperrors.NewAppError(apperrors.ErrDeliveryFailed, err.Error(), apperrors.CodeDeliveryFailed)
	}

	now := time.Now().UTC()
	providerID, err := transport.Send(ctx, &mailer.Message{
		From:        email.From,
		FromName:    sender.DisplayName,
		To:          to,
		Cc:          cc,
		Bcc:         bcc,
		Subject:     subject,
		HTML:        email.HTML,
		Text:        email.Text,
		MessageID:   mailer.NewMessageID(email.From),
		InReplyTo:   email.InReplyTo,
		References:  email.References,
		Date:        now,
		Attachments: files,
	})
	if err != nil {
		d.logger.Warn("outbound delivery failed",
			slog.Uint64("team_id", uint64(id.TeamID)),
			slog.String("provider", transport.Name()),
			slog.String("error", err.Error()),
		)
		if errors.Is(err, apperrors.ErrDeliveryFailed) {
			return nil, err
		}
		return nil, apperrors.NewAppError(apperrors.ErrDeliveryFailed, "message could not be delivered", apperrors.CodeDeliveryFailed)
	}

	email.MessageID = models.NormalizeMessageID(providerID)
	email.CreatedAt = now
	email.Attachments = d.attachments.storeAll(ctx, uploads)

	var labelIDs []uint
	if sent, err := d.labels.GetSystem(ctx, models.LabelSent); err == nil {
		labelIDs = append(labelIDs, sent.ID)
	}

	if err := d.emails.Create(ctx, email, labelIDs); err != nil {
		d.attachments.discard(context.WithoutCancel(ctx), email.Attachments)
		d.logger.Error("delivered message could not be stored",
			slog.Uint64("team_id", uint64(id.TeamID)),
			slog.String("message_id", email.MessageID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	d.logger.Info("outbound message sent",
		slog.Uint64("team_id", uint64(id.TeamID)),
		slog.String("email_id", email.ID),
		slog.String("chain_id", email.ChainID),
		slog.String("provider", transport.Name()),
	)
	projectURLs(d.baseURL, email)
	return email, nil
}

// findParent accepts either the parent's message id or its email id
func (d *outboundDispatcher) findParent(ctx context.Context, teamID uint, ref string) (*models.Email, error) {
	parent, err := d.emails.GetByMessageID(ctx, teamID, models.NormalizeMessageID(ref))
	if err == nil {
		return parent, nil
	}
	if !errors.Is(err, apperrors.ErrEmailNotFound) {
		return nil, err
	}
	if _, parseErr := uuid.Parse(strings.TrimSpace(ref)); parseErr != nil {
		return nil, err
	}
	return d.emails.GetByID(ctx, teamID, strings.TrimSpace(ref))
}
