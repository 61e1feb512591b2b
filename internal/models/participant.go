package models

// ParticipantRole is the header an address appeared in
type ParticipantRole string

const (
	RoleFrom ParticipantRole = "from"
	RoleTo   ParticipantRole = "to"
	RoleCc   ParticipantRole = "cc"
	RoleBcc  ParticipantRole = "bcc"
)

// EmailParticipant indexes every address on an email so chains can be
// filtered by participant without scanning JSON columns.
type EmailParticipant struct {
	ID      uint            `gorm:"primaryKey" json:"-"`
	EmailID string          `gorm:"not null;size:36;index" json:"email_id"`
	ChainID string          `gorm:"not null;size:36;index:idx_participants_chain_address" json:"chain_id"`
	TeamID  uint            `gorm:"not null;index:idx_participants_team_address" json:"team_id"`
	Address string          `gorm:"not null;size:320;index:idx_participants_team_address;index:idx_participants_chain_address" json:"address"`
	Role    ParticipantRole `gorm:"not null;size:8" json:"role"`
}

// TableName returns the table name for EmailParticipant
func (EmailParticipant) TableName() string {
	return "email_participants"
}
