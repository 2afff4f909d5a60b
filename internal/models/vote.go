package models

import "time"

// VoteEvent is a NewVote log merged by a Pets mount. A log is stored once
// even if several mounts saw it.
type VoteEvent struct {
	ID          uint      `gorm:"primaryKey"`
	TxHash      string    `gorm:"size:66;index:ux_vote_log,unique;not null"`
	LogIndex    uint      `gorm:"index:ux_vote_log,unique"`
	BlockNumber uint64    `gorm:"index"`
	Contract    string    `gorm:"size:42;index"`
	Voter       string    `gorm:"size:42;index"`
	PetName     string    `gorm:"size:64;index"`
	Reason      string    `gorm:"type:text"`
	Timestamp   time.Time `gorm:"index"`
	MountID     string    `gorm:"size:36;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
