package services

import (
	"context"
	"errors"
	"log/slog"
	"mime/multipart"
	"strings"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/welldanyogia/webrana-teammail-backend/internal/errors"
	"github.com/welldanyogia/webrana-teammail-backend/internal/inbound"
	"github.com/welldanyogia/webrana-teammail-backend/internal/models"
	"github.com/welldanyogia/webrana-teammail-backend/internal/repository"
	"github.com/welldanyogia/webrana-teammail-backend/internal/storage"
)

// IngestOutcome tells the webhook caller what happened to a delivery
type IngestOutcome string

const (
	OutcomeStored             IngestOutcome = "stored"
	OutcomeDuplicate          IngestOutcome = "duplicate"
	OutcomeIgnoredNoRecipient IngestOutcome = "ignored_no_recipient"
)

// IngestResult is the result of one webhook delivery
type IngestResult struct {
	Outcome IngestOutcome `json:"outcome"`
	Email   *models.Email `json:"email,omitempty"`
}

// InboundPayload is a decoded webhook form
type InboundPayload struct {
	Values map[string][]string
	Files  map[string][]*multipart.FileHeader
}

// InboundProcessor turns provider webhook deliveries into stored emails
type InboundProcessor interface {
	Ingest(ctx context.Context, teamID uint, provider models.IntegrationType, payload InboundPayload) (*IngestResult, error)
}

// InboundConfig tunes the processor
type InboundConfig struct {
	MaxSkew               time.Duration
	AttachmentConcurrency int
	PublicBaseURL         string
}

type inboundProcessor struct {
	integrations repository.IntegrationRepository
	emails       repository.EmailRepository
	labels       repository.LabelRepository
	directory    MailboxDirectory
	resolver     ThreadResolver
	verifier     *inbound.Verifier
	attachments  *attachmentStore
	baseURL      string
	logger       *slog.Logger
}

// NewInboundProcessor creates an InboundProcessor
func NewInboundProcessor(
	integrations repository.IntegrationRepository,
	emails repository.EmailRepository,
	labels repository.LabelRepository,
	directory MailboxDirectory,
	resolver ThreadResolver,
	files storage.FileStorage,
	cfg InboundConfig,
	logger *slog.Logger,
) InboundProcessor {
	if logger == nil {
		logger = slog.Default()
	}
	return &inboundProcessor{
		integrations: integrations,
		emails:       emails,
		labels:       labels,
		directory:    directory,
		resolver:     resolver,
		verifier:     inbound.NewVerifier(cfg.MaxSkew),
		attachments:  &attachmentStore{files: files, concurrency: cfg.AttachmentConcurrency, logger: logger},
		baseURL:      cfg.PublicBaseURL,
		logger:       logger,
	}
}

func (p *inboundProcessor) Ingest(ctx context.Context, teamID uint, provider models.IntegrationType, payload InboundPayload) (*IngestResult, error) {
	if provider != models.IntegrationMailgun {
		return nil, apperrors.Invalid("provider %q does not deliver webhooks", provider)
	}

	integration, err := p.integrations.Get(ctx, teamID, provider)
	if err != nil {
		if errors.Is(err, apperrors.ErrIntegrationNotFound) {
			return nil, apperrors.NewAppError(apperrors.ErrSignatureInvalid, "no inbound integration configured", apperrors.CodeSignatureInvalid)
		}
		return nil, err
	}
	if !integration.CanReceive() {
		return nil, apperrors.NewAppError(apperrors.ErrSignatureInvalid, "inbound delivery is disabled", apperrors.CodeSignatureInvalid)
	}

	msg, env, parseErr := inbound.ParseMailgun(payload.Values, payload.Files)
	if err := p.verifier.Verify(integration.WebhookSigningKey, env); err != nil {
		return nil, err
	}
	if parseErr != nil {
		return nil, parseErr
	}

	mailboxes, err := p.directory.ResolveRecipients(ctx, teamID, msg.Recipients)
	if err != nil {
		return nil, err
	}
	if len(mailboxes) == 0 {
		p.logger.Info("inbound message has no matching mailbox",
			slog.Uint64("team_id", uint64(teamID)),
			slog.String("message_id", msg.MessageID),
		)
		return &IngestResult{Outcome: OutcomeIgnoredNoRecipient}, nil
	}

	if existing, err := p.emails.GetByMessageID(ctx, teamID, msg.MessageID); err == nil {
		projectURLs(p.baseURL, existing)
		return &IngestResult{Outcome: OutcomeDuplicate, Email: existing}, nil
	} else if !errors.Is(err, apperrors.ErrEmailNotFound) {
		return nil, err
	}

	email := p.buildEmail(ctx, teamID, msg, mailboxes)

	var labelIDs []uint
	if inbox, err := p.labels.GetSystem(ctx, models.LabelInbox); err == nil {
		labelIDs = append(labelIDs, inbox.ID)
	} else {
		p.logger.Warn("inbox label missing", slog.String("error", err.Error()))
	}

	email.Attachments = p.attachments.storeAll(ctx, msg.Attachments)

	if err := p.emails.Create(ctx, email, labelIDs); err != nil {
		p.attachments.discard(context.WithoutCancel(ctx), email.Attachments)
		if errors.Is(err, repository.ErrDuplicateEntry) {
			existing, getErr := p.emails.GetByMessageID(ctx, teamID, msg.MessageID)
			if getErr != nil {
				return nil, getErr
			}
			projectURLs(p.baseURL, existing)
			return &IngestResult{Outcome: OutcomeDuplicate, Email: existing}, nil
		}
		return nil, err
	}

	p.logger.Info("inbound message stored",
		slog.Uint64("team_id", uint64(teamID)),
		slog.String("email_id", email.ID),
		slog.String("chain_id", email.ChainID),
		slog.Int("attachments", len(email.Attachments)),
	)
	projectURLs(p.baseURL, email)
	return &IngestResult{Outcome: OutcomeStored, Email: email}, nil
}

func (p *inboundProcessor) buildEmail(ctx context.Context, teamID uint, msg *inbound.Message, mailboxes []models.EmailAddress) *models.Email {
	email := &models.Email{
		ID:         uuid.NewString(),
		TeamID:     teamID,
		From:       models.NormalizeAddress(msg.From),
		To:         msg.To,
		Cc:         msg.Cc,
		Subject:    msg.Subject,
		Summary:    msg.Summary(),
		HTML:       msg.HTML,
		Text:       msg.Text,
		MessageID:  msg.MessageID,
		InReplyTo:  models.NormalizeMessageID(msg.InReplyTo),
		References: msg.References,
		Direction:  models.DirectionIncoming,
		IsRead:     false,
		CreatedAt:  time.Now().UTC(),
	}

	listed := make(map[string]struct{}, len(msg.To)+len(msg.Cc))
	for _, a := range append(append([]string{}, msg.To...), msg.Cc...) {
		listed[models.NormalizeAddress(a)] = struct{}{}
	}
	recipients := make([]string, 0, len(mailboxes))
	for _, m := range mailboxes {
		recipients = append(recipients, m.FullAddress)
		// Blind copies reach a mailbox without naming it in To or Cc.
		if _, ok := listed[m.FullAddress]; !ok {
			email.Bcc = append(email.Bcc, m.FullAddress)
		}
	}
	email.Recipient = strings.Join(recipients, ",")

	email.ChainID = p.resolver.Resolve(ctx, teamID, ThreadCandidate{
		ID:         email.ID,
		InReplyTo:  email.InReplyTo,
		References: email.References,
	})
	return email
}
