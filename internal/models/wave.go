// Package models defines the archive rows for live contract events.
package models

import "time"

// WaveEvent is a NewWave log merged by a Greet mount.
type WaveEvent struct {
	ID          uint      `gorm:"primaryKey"`
	TxHash      string    `gorm:"size:66;index:ux_wave_log,unique;not null"`
	LogIndex    uint      `gorm:"index:ux_wave_log,unique"`
	BlockNumber uint64    `gorm:"index"`
	Contract    string    `gorm:"size:42;index"`
	Sender      string    `gorm:"size:42;index"`
	Message     string    `gorm:"type:text"`
	Timestamp   time.Time `gorm:"index"`
	MountID     string    `gorm:"size:36;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
