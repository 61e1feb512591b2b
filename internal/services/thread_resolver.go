package services

import (
	"context"
	"log/slog"

	"github.com/welldanyogia/webrana-teammail-backend/internal/models"
	"github.com/welldanyogia/webrana-teammail-backend/internal/repository"
)

// ThreadCandidate carries the threading headers of a message being stored
type ThreadCandidate struct {
	ID         string
	InReplyTo  string
	References []string
}

// ThreadResolver assigns a chain to a message from its ancestry
type ThreadResolver interface {
	// Resolve never fails; a message without known ancestors starts a chain
	// whose id is the message's own id.
	Resolve(ctx context.Context, teamID uint, candidate ThreadCandidate) string
}

type threadResolver struct {
	emails repository.EmailRepository
	logger *slog.Logger
}

// NewThreadResolver creates a ThreadResolver reading from the message store
func NewThreadResolver(emails repository.EmailRepository, logger *slog.Logger) ThreadResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &threadResolver{emails: emails, logger: logger}
}

func (r *threadResolver) Resolve(ctx context.Context, teamID uint, c ThreadCandidate) string {
	inReplyTo := models.NormalizeMessageID(c.InReplyTo)

	lookup := make([]string, 0, len(c.References)+1)
	if inReplyTo != "" {
		lookup = append(lookup, inReplyTo)
	}
	for _, ref := range c.References {
		if ref = models.NormalizeMessageID(ref); ref != "" {
			lookup = append(lookup, ref)
		}
	}
	if len(lookup) == 0 {
		return c.ID
	}

	chains, err := r.emails.ChainIDsByMessageID(ctx, teamID, lookup)
	if err != nil {
		r.logger.Error("thread lookup failed, starting a new chain",
			slog.Uint64("team_id", uint64(teamID)),
			slog.String("error", err.Error()),
		)
		return c.ID
	}

	var refChain string
	for i := len(c.References) - 1; i >= 0; i-- {
		if chain, ok := chains[models.NormalizeMessageID(c.References[i])]; ok {
			refChain = chain
			break
		}
	}

	if chain, ok := chains[inReplyTo]; ok && inReplyTo != "" {
		if refChain != "" && refChain != chain {
			r.logger.Warn("thread ancestry points at two chains",
				slog.Uint64("team_id", uint64(teamID)),
				slog.String("in_reply_to", inReplyTo),
				slog.String("in_reply_to_chain", chain),
				slog.String("references_chain", refChain),
			)
		}
		return chain
	}
	if refChain != "" {
		return refChain
	}
	return c.ID
}
