package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	apperrors "github.com/welldanyogia/webrana-teammail-backend/internal/errors"
	"github.com/welldanyogia/webrana-teammail-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ChainFilter selects conversations for ListLatestPerChain.
// Nil pointers and zero values mean "no constraint".
type ChainFilter struct {
	TeamID uint
	// VisibleTo restricts to chains with at least one of these participants.
	// A non-nil empty slice matches nothing.
	VisibleTo []string
	// Address restricts to chains in which this address participates
	Address   string
	LabelID   uint
	IsStarred *bool
	IsRead    *bool
	Direction models.Direction
	Search    string
	Limit     int
	Offset    int
}

// EmailRepository defines the interface for email and chain data access
type EmailRepository interface {
	Create(ctx context.Context, email *models.Email, labelIDs []uint) error
	GetByID(ctx context.Context, teamID uint, id string) (*models.Email, error)
	GetByMessageID(ctx context.Context, teamID uint, messageID string) (*models.Email, error)
	ChainIDsByMessageID(ctx context.Context, teamID uint, messageIDs []string) (map[string]string, error)
	ListByChain(ctx context.Context, teamID uint, chainID, address string) ([]models.Email, error)
	ChainSubjects(ctx context.Context, teamID uint, chainIDs []string) (map[string]string, error)
	ChainExists(ctx context.Context, teamID uint, chainID string) (bool, error)
	ChainHasParticipant(ctx context.Context, teamID uint, chainID string, addresses []string) (bool, error)
	ListLatestPerChain(ctx context.Context, filter ChainFilter) ([]models.ChainSummary, int64, error)
	SetRead(ctx context.Context, teamID uint, id string, read bool) error
	SetStarred(ctx context.Context, teamID uint, id string, starred bool) error
}

// emailRepository implements EmailRepository using GORM
type emailRepository struct {
	db *gorm.DB
}

// NewEmailRepository creates a new EmailRepository instance
func NewEmailRepository(db *gorm.DB) EmailRepository {
	return &emailRepository{db: db}
}

// Create writes the email with its attachments, participant index and labels
// in one transaction. A message id already stored for the team yields
// ErrDuplicateEntry.
func (r *emailRepository) Create(ctx context.Context, email *models.Email, labelIDs []uint) error {
	if email.ID == "" {
		email.ID = uuid.NewString()
	}
	if email.ChainID == "" {
		email.ChainID = email.ID
	}
	email.Participants = email.BuildParticipants()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(email).Error; err != nil {
			return err
		}
		for _, labelID := range labelIDs {
			link := models.EmailLabel{EmailID: email.ID, LabelID: labelID}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error; err != nil {
				return fmt.Errorf("failed to label email: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("message '%s' already stored: %w", email.MessageID, ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to create email: %w", err)
	}
	email.LabelIDs = labelIDs
	return nil
}

// GetByID retrieves a team's email with its attachments
func (r *emailRepository) GetByID(ctx context.Context, teamID uint, id string) (*models.Email, error) {
	var email models.Email
	result := r.db.WithContext(ctx).
		Preload("Attachments").
		Where("id = ? AND team_id = ?", id, teamID).
		First(&email)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrEmailNotFound
		}
		return nil, fmt.Errorf("failed to get email by ID: %w", result.Error)
	}
	return &email, nil
}

// GetByMessageID retrieves the email a team stored under a provider message id
func (r *emailRepository) GetByMessageID(ctx context.Context, teamID uint, messageID string) (*models.Email, error) {
	var email models.Email
	result := r.db.WithContext(ctx).
		Preload("Attachments").
		Where("team_id = ? AND message_id = ?", teamID, messageID).
		First(&email)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrEmailNotFound
		}
		return nil, fmt.Errorf("failed to get email by message id: %w", result.Error)
	}
	return &email, nil
}

// ChainIDsByMessageID maps each stored message id to its chain
func (r *emailRepository) ChainIDsByMessageID(ctx context.Context, teamID uint, messageIDs []string) (map[string]string, error) {
	chains := make(map[string]string, len(messageIDs))
	if len(messageIDs) == 0 {
		return chains, nil
	}

	var rows []struct {
		MessageID string
		ChainID   string
	}
	result := r.db.WithContext(ctx).Model(&models.Email{}).
		Select("message_id, chain_id").
		Where("team_id = ? AND message_id IN ?", teamID, messageIDs).
		Scan(&rows)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to look up chains: %w", result.Error)
	}
	for _, row := range rows {
		chains[row.MessageID] = row.ChainID
	}
	return chains, nil
}

// ListByChain returns a chain oldest first. A non-empty address keeps only
// the messages in which it participates.
func (r *emailRepository) ListByChain(ctx context.Context, teamID uint, chainID, address string) ([]models.Email, error) {
	query := r.db.WithContext(ctx).
		Preload("Attachments").
		Where("team_id = ? AND chain_id = ?", teamID, chainID)

	if address != "" {
		query = query.Where("id IN (?)",
			r.db.Model(&models.EmailParticipant{}).
				Select("email_id").
				Where("chain_id = ? AND address = ?", chainID, models.NormalizeAddress(address)),
		)
	}

	var emails []models.Email
	if err := query.Order("created_at ASC, id ASC").Find(&emails).Error; err != nil {
		return nil, fmt.Errorf("failed to list chain: %w", err)
	}

	if err := r.attachLabelIDs(ctx, emails); err != nil {
		return nil, err
	}
	return emails, nil
}

func (r *emailRepository) attachLabelIDs(ctx context.Context, emails []models.Email) error {
	ids := make([]string, len(emails))
	for i := range emails {
		ids[i] = emails[i].ID
	}
	byEmail, err := r.labelIDsByEmail(ctx, ids)
	if err != nil {
		return err
	}
	for i := range emails {
		emails[i].LabelIDs = byEmail[emails[i].ID]
	}
	return nil
}

// attachSummaryDetails gives list rows the labels and attachments a chain read carries
func (r *emailRepository) attachSummaryDetails(ctx context.Context, rows []models.ChainSummary) error {
	ids := make([]string, len(rows))
	for i := range rows {
		ids[i] = rows[i].ID
	}
	labels, err := r.labelIDsByEmail(ctx, ids)
	if err != nil {
		return err
	}

	var attachments []models.Attachment
	if len(ids) > 0 {
		if err := r.db.WithContext(ctx).Where("email_id IN ?", ids).Order("id ASC").Find(&attachments).Error; err != nil {
			return fmt.Errorf("failed to load attachments: %w", err)
		}
	}
	files := make(map[string][]models.Attachment, len(rows))
	for _, a := range attachments {
		files[a.EmailID] = append(files[a.EmailID], a)
	}

	for i := range rows {
		rows[i].LabelIDs = labels[rows[i].ID]
		rows[i].Attachments = files[rows[i].ID]
	}
	return nil
}

func (r *emailRepository) labelIDsByEmail(ctx context.Context, ids []string) (map[string][]uint, error) {
	byEmail := make(map[string][]uint, len(ids))
	if len(ids) == 0 {
		return byEmail, nil
	}
	var links []models.EmailLabel
	if err := r.db.WithContext(ctx).Where("email_id IN ?", ids).Order("label_id ASC").Find(&links).Error; err != nil {
		return nil, fmt.Errorf("failed to load email labels: %w", err)
	}
	for _, l := range links {
		byEmail[l.EmailID] = append(byEmail[l.EmailID], l.LabelID)
	}
	return byEmail, nil
}

// ChainSubjects maps each chain to the subject of its earliest email
func (r *emailRepository) ChainSubjects(ctx context.Context, teamID uint, chainIDs []string) (map[string]string, error) {
	subjects := make(map[string]string, len(chainIDs))
	if len(chainIDs) == 0 {
		return subjects, nil
	}

	var rows []struct {
		ChainID string
		Subject string
	}
	result := r.db.WithContext(ctx).Model(&models.Email{}).
		Select("chain_id, subject").
		Where("team_id = ? AND chain_id IN ?", teamID, chainIDs).
		Order("created_at ASC, id ASC").
		Scan(&rows)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to load chain subjects: %w", result.Error)
	}
	for _, row := range rows {
		if _, ok := subjects[row.ChainID]; !ok {
			subjects[row.ChainID] = row.Subject
		}
	}
	return subjects, nil
}

// ChainExists reports whether the team has any email in the chain
func (r *emailRepository) ChainExists(ctx context.Context, teamID uint, chainID string) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&models.Email{}).
		Where("team_id = ? AND chain_id = ?", teamID, chainID).
		Count(&count)
	if result.Error != nil {
		return false, fmt.Errorf("failed to check chain: %w", result.Error)
	}
	return count > 0, nil
}

// ChainHasParticipant reports whether any address appears on any email of the chain
func (r *emailRepository) ChainHasParticipant(ctx context.Context, teamID uint, chainID string, addresses []string) (bool, error) {
	if len(addresses) == 0 {
		return false, nil
	}
	normalized := make([]string, len(addresses))
	for i, a := range addresses {
		normalized[i] = models.NormalizeAddress(a)
	}

	var count int64
	result := r.db.WithContext(ctx).Model(&models.EmailParticipant{}).
		Where("team_id = ? AND chain_id = ? AND address IN ?", teamID, chainID, normalized).
		Count(&count)
	if result.Error != nil {
		return false, fmt.Errorf("failed to check chain participants: %w", result.Error)
	}
	return count > 0, nil
}

// ListLatestPerChain returns one row per chain, the newest email that passes
// the row filters, ordered most recently active first and paginated over
// chains. The total counts chains, not emails.
func (r *emailRepository) ListLatestPerChain(ctx context.Context, filter ChainFilter) ([]models.ChainSummary, int64, error) {
	where, args := filteredEmails(filter)

	var total int64
	countSQL := "WITH filtered AS (" + where + ") SELECT COUNT(DISTINCT chain_id) FROM filtered"
	if err := r.db.WithContext(ctx).Raw(countSQL, args...).Scan(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count conversations: %w", err)
	}
	if total == 0 {
		return []models.ChainSummary{}, 0, nil
	}

	listSQL := `WITH filtered AS (` + where + `),
ranked AS (
	SELECT filtered.*,
		ROW_NUMBER() OVER (PARTITION BY chain_id ORDER BY created_at DESC, id DESC) AS rn
	FROM filtered
)
SELECT ranked.*,
	(SELECT COUNT(*) FROM emails c WHERE c.team_id = ranked.team_id AND c.chain_id = ranked.chain_id) AS message_count
FROM ranked
WHERE rn = 1
ORDER BY created_at DESC, id DESC
LIMIT ? OFFSET ?`

	listArgs := append(append([]interface{}{}, args...), filter.Limit, filter.Offset)
	var rows []models.ChainSummary
	if err := r.db.WithContext(ctx).Raw(listSQL, listArgs...).Scan(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list conversations: %w", err)
	}
	if err := r.attachSummaryDetails(ctx, rows); err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// likeEscaper makes search input match literally under ESCAPE '\'
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// filteredEmails builds the row-level phase of the conversation query
func filteredEmails(f ChainFilter) (string, []interface{}) {
	var sb strings.Builder
	args := []interface{}{f.TeamID}
	sb.WriteString("SELECT e.* FROM emails e WHERE e.team_id = ?")

	if f.VisibleTo != nil {
		visible := make([]string, 0, len(f.VisibleTo))
		for _, a := range f.VisibleTo {
			visible = append(visible, models.NormalizeAddress(a))
		}
		if len(visible) == 0 {
			sb.WriteString(" AND 1 = 0")
		} else {
			sb.WriteString(" AND e.chain_id IN (SELECT p.chain_id FROM email_participants p WHERE p.team_id = ? AND p.address IN ?)")
			args = append(args, f.TeamID, visible)
		}
	}
	if f.Address != "" {
		sb.WriteString(" AND e.chain_id IN (SELECT pa.chain_id FROM email_participants pa WHERE pa.team_id = ? AND pa.address = ?)")
		args = append(args, f.TeamID, models.NormalizeAddress(f.Address))
	}
	if f.LabelID != 0 {
		sb.WriteString(" AND e.id IN (SELECT el.email_id FROM email_labels el WHERE el.label_id = ?)")
		args = append(args, f.LabelID)
	}
	if f.IsStarred != nil {
		sb.WriteString(" AND e.is_starred = ?")
		args = append(args, *f.IsStarred)
	}
	if f.IsRead != nil {
		sb.WriteString(" AND e.is_read = ?")
		args = append(args, *f.IsRead)
	}
	if f.Direction != "" {
		sb.WriteString(" AND e.direction = ?")
		args = append(args, f.Direction)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
		sb.WriteString(` AND (LOWER(e.subject) LIKE ? ESCAPE '\' OR LOWER(e.summary) LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern)
	}
	return sb.String(), args
}

// SetRead updates the read flag of a team's email
func (r *emailRepository) SetRead(ctx context.Context, teamID uint, id string, read bool) error {
	return r.setFlag(ctx, teamID, id, "is_read", read)
}

// SetStarred updates the starred flag of a team's email
func (r *emailRepository) SetStarred(ctx context.Context, teamID uint, id string, starred bool) error {
	return r.setFlag(ctx, teamID, id, "is_starred", starred)
}

func (r *emailRepository) setFlag(ctx context.Context, teamID uint, id, column string, value bool) error {
	result := r.db.WithContext(ctx).Model(&models.Email{}).
		Where("id = ? AND team_id = ?", id, teamID).
		Update(column, value)
	if result.Error != nil {
		return fmt.Errorf("failed to update %s: %w", column, result.Error)
	}
	if result.RowsAffected == 0 {
		// Some drivers count only changed rows.
		var count int64
		if err := r.db.WithContext(ctx).Model(&models.Email{}).
			Where("id = ? AND team_id = ?", id, teamID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to update %s: %w", column, err)
		}
		if count == 0 {
			return apperrors.ErrEmailNotFound
		}
	}
	return nil
}
