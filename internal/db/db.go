// Package db provides the optional event archive: connection, migration
// and the recorder used by screen mounts.
package db

import (
	"fmt"
	stdlog "log"
	"os"

	"dapp-portal/internal/config"
	"dapp-portal/internal/contracts"
	"dapp-portal/internal/models"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open opens a database connection using the provided configuration. It
// returns a nil handle when no database is configured.
func Open(cfg config.Config) (*gorm.DB, error) {
	// Silent, the TUI owns the terminal
	newLogger := logger.New(
		stdlog.New(os.Stderr, "", stdlog.LstdFlags),
		logger.Config{
			SlowThreshold:             0,
			LogLevel:                  logger.Silent,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	if cfg.DBDialect == "" || cfg.DBDsn == "" {
		return nil, nil
	}

	switch cfg.DBDialect {
	case config.DatabaseSchemePostgres:
		return gorm.Open(postgres.Open(cfg.DBDsn), &gorm.Config{Logger: newLogger})
	default:
		return nil, fmt.Errorf("unsupported database dialect: %s", cfg.DBDialect)
	}
}

// AutoMigrate runs database migrations for all models.
func AutoMigrate(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&models.WaveEvent{},
		&models.VoteEvent{},
	)
}

// Archive stores merged live events, one row per (tx hash, log index).
type Archive struct {
	db *gorm.DB
}

// NewArchive wraps db. A nil db yields a nil archive.
func NewArchive(db *gorm.DB) *Archive {
	if db == nil {
		return nil
	}
	return &Archive{db: db}
}

func (a *Archive) RecordWave(mountID uuid.UUID, ev *contracts.WavePortalNewWave) error {
	row, err := waveRow(mountID, ev)
	if err != nil {
		return err
	}
	err = a.db.Where("tx_hash = ? AND log_index = ?", row.TxHash, row.LogIndex).
		Attrs(row).
		FirstOrCreate(&row).Error
	if err != nil {
		return fmt.Errorf("store wave %s: %w", row.TxHash, err)
	}
	return nil
}

func (a *Archive) RecordVote(mountID uuid.UUID, ev *contracts.PetVoteNewVote) error {
	row, err := voteRow(mountID, ev)
	if err != nil {
		return err
	}
	err = a.db.Where("tx_hash = ? AND log_index = ?", row.TxHash, row.LogIndex).
		Attrs(row).
		FirstOrCreate(&row).Error
	if err != nil {
		return fmt.Errorf("store vote %s: %w", row.TxHash, err)
	}
	return nil
}

func waveRow(mountID uuid.UUID, ev *contracts.WavePortalNewWave) (models.WaveEvent, error) {
	ts, err := contracts.ToTime(ev.Timestamp)
	if err != nil {
		return models.WaveEvent{}, fmt.Errorf("wave %s: %w", ev.Raw.TxHash.Hex(), err)
	}
	return models.WaveEvent{
		TxHash:      ev.Raw.TxHash.Hex(),
		LogIndex:    ev.Raw.Index,
		BlockNumber: ev.Raw.BlockNumber,
		Contract:    ev.Raw.Address.Hex(),
		Sender:      ev.From.Hex(),
		Message:     ev.Message,
		Timestamp:   ts.UTC(),
		MountID:     mountID.String(),
	}, nil
}

func voteRow(mountID uuid.UUID, ev *contracts.PetVoteNewVote) (models.VoteEvent, error) {
	ts, err := contracts.ToTime(ev.Timestamp)
	if err != nil {
		return models.VoteEvent{}, fmt.Errorf("vote %s: %w", ev.Raw.TxHash.Hex(), err)
	}
	return models.VoteEvent{
		TxHash:      ev.Raw.TxHash.Hex(),
		LogIndex:    ev.Raw.Index,
		BlockNumber: ev.Raw.BlockNumber,
		Contract:    ev.Raw.Address.Hex(),
		Voter:       ev.From.Hex(),
		PetName:     ev.PetName,
		Reason:      ev.Reason,
		Timestamp:   ts.UTC(),
		MountID:     mountID.String(),
	}, nil
}
