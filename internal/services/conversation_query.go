package services

import (
	"context"
	"strings"

	apperrors "github.com/welldanyogia/webrana-teammail-backend/internal/errors"
	"github.com/welldanyogia/webrana-teammail-backend/internal/logger"
	"github.com/welldanyogia/webrana-teammail-backend/internal/models"
	"github.com/welldanyogia/webrana-teammail-backend/internal/repository"
	"github.com/welldanyogia/webrana-teammail-backend/internal/validator"
)

// Conversation status filter values
const (
	StatusInbox   = "inbox"
	StatusSent    = "sent"
	StatusUnread  = "unread"
	StatusStarred = "starred"
)

// ConversationFilter narrows the conversation list. Zero values do not filter.
type ConversationFilter struct {
	LabelID      uint
	Search       string
	IsStarred    *bool
	IsRead       *bool
	Status       string
	EmailAddress string
}

// ConversationItem is one chain in a conversation list
type ConversationItem struct {
	ChainID      string       `json:"chain_id"`
	Subject      string       `json:"subject"`
	MessageCount int64        `json:"message_count"`
	LatestEmail  models.Email `json:"latest_email"`
}

// ConversationPage is a page of chains, most recently active first
type ConversationPage struct {
	Items []ConversationItem `json:"items"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

// ConversationHeader identifies a chain
type ConversationHeader struct {
	ID      string `json:"id"`
	Subject string `json:"subject"`
}

// ChainView is a whole chain, oldest first
type ChainView struct {
	Conversation ConversationHeader `json:"conversation"`
	Emails       []models.Email     `json:"emails"`
}

// ConversationQuery serves the mailbox views
type ConversationQuery interface {
	List(ctx context.Context, id Identity, memberID uint, filter ConversationFilter, page, limit int) (*ConversationPage, error)
	GetChain(ctx context.Context, id Identity, chainID string) (*ChainView, error)
	// GetChainForAddress keeps the messages in which address participates
	GetChainForAddress(ctx context.Context, id Identity, chainID, address string) (*ChainView, error)
}

type conversationQuery struct {
	emails    repository.EmailRepository
	addresses repository.EmailAddressRepository
	guard     AccessGuard
	security  *logger.SecurityLogger
	baseURL   string
}

// NewConversationQuery creates a ConversationQuery
func NewConversationQuery(
	emails repository.EmailRepository,
	addresses repository.EmailAddressRepository,
	guard AccessGuard,
	security *logger.SecurityLogger,
	publicBaseURL string,
) ConversationQuery {
	if security == nil {
		security = logger.NewSecurityLogger(nil)
	}
	return &conversationQuery{
		emails:    emails,
		addresses: addresses,
		guard:     guard,
		security:  security,
		baseURL:   publicBaseURL,
	}
}

func (q *conversationQuery) List(ctx context.Context, id Identity, memberID uint, f ConversationFilter, page, limit int) (*ConversationPage, error) {
	if memberID != id.MemberID {
		q.security.AccessDenied(id.TeamID, id.MemberID, "member_conversations", "")
		return nil, apperrors.NewAppError(apperrors.ErrForbidden, "conversations of another member", apperrors.CodeForbidden)
	}
	page, limit, offset := validator.ValidatePagination(page, limit)

	owned, err := ownedAddresses(ctx, q.addresses, id.TeamID, id.MemberID)
	if err != nil {
		return nil, err
	}

	filter := repository.ChainFilter{
		TeamID:    id.TeamID,
		VisibleTo: owned,
		LabelID:   f.LabelID,
		IsStarred: f.IsStarred,
		IsRead:    f.IsRead,
		Search:    strings.TrimSpace(f.Search),
		Limit:     limit,
		Offset:    offset,
	}
	if err := applyStatus(&filter, f.Status); err != nil {
		return nil, err
	}
	if f.EmailAddress != "" {
		address := models.NormalizeAddress(f.EmailAddress)
		if !contains(owned, address) {
			q.security.AccessDenied(id.TeamID, id.MemberID, "email_address", address)
			return nil, apperrors.NewAppError(apperrors.ErrMailboxNotOwned, "email address is not yours", apperrors.CodeMailboxNotOwned)
		}
		filter.Address = address
	}

	rows, total, err := q.emails.ListLatestPerChain(ctx, filter)
	if err != nil {
		return nil, err
	}

	chainIDs := make([]string, len(rows))
	for i := range rows {
		chainIDs[i] = rows[i].ChainID
	}
	subjects, err := q.emails.ChainSubjects(ctx, id.TeamID, chainIDs)
	if err != nil {
		return nil, err
	}

	items := make([]ConversationItem, 0, len(rows))
	for i := range rows {
		row := &rows[i]
		projectURLs(q.baseURL, &row.Email)
		items = append(items, ConversationItem{
			ChainID:      row.ChainID,
			Subject:      subjects[row.ChainID],
			MessageCount: row.MessageCount,
			LatestEmail:  row.Email,
		})
	}
	return &ConversationPage{Items: items, Total: total, Page: page, Limit: limit}, nil
}

func applyStatus(filter *repository.ChainFilter, status string) error {
	yes, no := true, false
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "":
	case StatusInbox:
		filter.Direction = models.DirectionIncoming
	case StatusSent:
		filter.Direction = models.DirectionOutgoing
	case StatusUnread:
		filter.IsRead = &no
	case StatusStarred:
		filter.IsStarred = &yes
	default:
		return apperrors.Invalid("status must be one of inbox, sent, unread, starred")
	}
	return nil
}

func (q *conversationQuery) GetChain(ctx context.Context, id Identity, chainID string) (*ChainView, error) {
	if err := q.guard.Authorize(ctx, id, chainID); err != nil {
		return nil, err
	}
	emails, err := q.emails.ListByChain(ctx, id.TeamID, chainID, "")
	if err != nil {
		return nil, err
	}
	if len(emails) == 0 {
		return nil, apperrors.ErrChainNotFound
	}
	return q.view(chainID, emails[0].Subject, emails), nil
}

func (q *conversationQuery) GetChainForAddress(ctx context.Context, id Identity, chainID, address string) (*ChainView, error) {
	address = models.NormalizeAddress(address)
	if address == "" {
		return q.GetChain(ctx, id, chainID)
	}

	owned, err := ownedAddresses(ctx, q.addresses, id.TeamID, id.MemberID)
	if err != nil {
		return nil, err
	}
	if !contains(owned, address) {
		q.security.AccessDenied(id.TeamID, id.MemberID, "email_address", address)
		return nil, apperrors.NewAppError(apperrors.ErrMailboxNotOwned, "email address is not yours", apperrors.CodeMailboxNotOwned)
	}
	if err := q.guard.Authorize(ctx, id, chainID); err != nil {
		return nil, err
	}

	emails, err := q.emails.ListByChain(ctx, id.TeamID, chainID, address)
	if err != nil {
		return nil, err
	}
	subjects, err := q.emails.ChainSubjects(ctx, id.TeamID, []string{chainID})
	if err != nil {
		return nil, err
	}
	return q.view(chainID, subjects[chainID], emails), nil
}

func (q *conversationQuery) view(chainID, subject string, emails []models.Email) *ChainView {
	for i := range emails {
		projectURLs(q.baseURL, &emails[i])
	}
	if emails == nil {
		emails = []models.Email{}
	}
	return &ChainView{
		Conversation: ConversationHeader{ID: chainID, Subject: subject},
		Emails:       emails,
	}
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
