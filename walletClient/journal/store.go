// Package journal records every wallet request the session service
// dispatches, with its outcome, in the request_records table.
package journal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	walleterrors "github.com/pushchain/push-wallet-connect/walletClient/errors"
	"github.com/pushchain/push-wallet-connect/walletClient/store"
)

// Request statuses.
const (
	StatusPending = "PENDING"
	StatusSuccess = "SUCCESS"
	StatusFailed  = "FAILED"
	// StatusStale marks a result that arrived after its session was replaced.
	StatusStale = "STALE"
)

// Entry describes a request about to be dispatched.
type Entry struct {
	Method       string
	WalletMethod string
	CustomID     string
	Address      string
	Generation   string
	Params       any
}

// Store provides database access for request records.
type Store struct {
	db     *gorm.DB
	logger zerolog.Logger
}

// NewStore creates a new journal store.
func NewStore(db *gorm.DB, logger zerolog.Logger) *Store {
	return &Store{
		db:     db,
		logger: logger.With().Str("component", "request_journal").Logger(),
	}
}

// Begin inserts a PENDING record and returns its row id.
func (s *Store) Begin(ctx context.Context, e Entry) (uint, error) {
	params, err := json.Marshal(e.Params)
	if err != nil {
		return 0, errors.Wrap(err, "failed to encode request params")
	}
	record := &store.RequestRecord{
		Method:        e.Method,
		WalletMethod:  e.WalletMethod,
		CustomID:      e.CustomID,
		Address:       e.Address,
		Status:        StatusPending,
		Generation:    e.Generation,
		RequestParams: params,
	}
	err = walleterrors.Retry(ctx, func() error {
		if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
			return walleterrors.NewStorageError("failed to insert request record", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Debug().
		Uint("id", record.ID).
		Str("method", e.Method).
		Str("custom_id", e.CustomID).
		Msg("request recorded")
	return record.ID, nil
}

// Outcome is the final state of a recorded request.
type Outcome struct {
	Status    string
	RequestID int64
	Result    json.RawMessage
	ErrorMsg  string
}

// Finish moves the record id out of PENDING.
func (s *Store) Finish(ctx context.Context, id uint, o Outcome) error {
	switch o.Status {
	case StatusSuccess, StatusFailed, StatusStale:
	default:
		return errors.Errorf("invalid final status %q", o.Status)
	}
	updates := map[string]any{
		"status":     o.Status,
		"request_id": o.RequestID,
		"result":     []byte(o.Result),
		"error_msg":  o.ErrorMsg,
	}

	var affected int64
	err := walleterrors.Retry(ctx, func() error {
		res := s.db.WithContext(ctx).
			Model(&store.RequestRecord{}).
			Where("id = ? AND status = ?", id, StatusPending).
			Updates(updates)
		if res.Error != nil {
			return walleterrors.NewStorageError("failed to update request record", res.Error)
		}
		affected = res.RowsAffected
		return nil
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		return errors.Errorf("no pending request record with id %d", id)
	}

	s.logger.Debug().
		Uint("id", id).
		Str("status", o.Status).
		Msg("request finished")
	return nil
}

// Get returns the record with row id.
func (s *Store) Get(ctx context.Context, id uint) (*store.RequestRecord, error) {
	var record store.RequestRecord
	if err := s.db.WithContext(ctx).First(&record, id).Error; err != nil {
		return nil, errors.Wrapf(err, "failed to get request record %d", id)
	}
	return &record, nil
}

// ByCustomID returns every record carrying customID, oldest first.
func (s *Store) ByCustomID(ctx context.Context, customID string) ([]store.RequestRecord, error) {
	var records []store.RequestRecord
	err := s.db.WithContext(ctx).
		Where("custom_id = ?", customID).
		Order("id ASC").
		Find(&records).Error
	if err != nil {
		return nil, errors.Wrapf(err, "failed to query records for custom id %s", customID)
	}
	return records, nil
}

// List returns the newest records first. An empty status matches all.
func (s *Store) List(ctx context.Context, status string, limit int) ([]store.RequestRecord, error) {
	q := s.db.WithContext(ctx).Order("id DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var records []store.RequestRecord
	if err := q.Find(&records).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list request records")
	}
	return records, nil
}

// DeleteFinishedBefore hard deletes finished records last updated before
// the retention window and returns how many went.
func (s *Store) DeleteFinishedBefore(retention time.Duration, now time.Time) (int64, error) {
	cutoff := now.Add(-retention)
	res := s.db.Unscoped().
		Where("status <> ? AND updated_at < ?", StatusPending, cutoff).
		Delete(&store.RequestRecord{})
	if res.Error != nil {
		return 0, errors.Wrap(res.Error, "failed to delete old request records")
	}
	return res.RowsAffected, nil
}

// Checkpoint truncates the SQLite write-ahead log.
func (s *Store) Checkpoint() error {
	return s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)").Error
}
