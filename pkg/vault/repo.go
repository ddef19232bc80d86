package vault

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"gorm.io/gorm"

	"github.com/skynet2/finance-reconciler/pkg/common"
	"github.com/skynet2/finance-reconciler/pkg/database"
)

type GormRepo struct {
	db *gorm.DB
}

func NewGormRepo(db *gorm.DB) *GormRepo {
	return &GormRepo{
		db: db,
	}
}

func (r *GormRepo) GetConnection(ctx context.Context, id string) (*database.Connection, error) {
	var conn database.Connection

	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&conn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrapf(common.ErrNotFound, "connection %s", id)
		}

		return nil, errors.WithStack(err)
	}

	return &conn, nil
}

func (r *GormRepo) CreateConnection(ctx context.Context, conn *database.Connection) error {
	return errors.WithStack(r.db.WithContext(ctx).Create(conn).Error)
}

// SaveTokens writes the new pair only when the stored version still equals
// expectedVersion. The boolean tells whether this writer won.
func (r *GormRepo) SaveTokens(
	ctx context.Context,
	id string,
	expectedVersion int64,
	tokens EncryptedTokens,
) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&database.Connection{}).
		Where("id = ? AND token_version = ?", id, expectedVersion).
		Updates(map[string]any{
			"access_token_enc":  tokens.AccessTokenEnc,
			"refresh_token_enc": tokens.RefreshTokenEnc,
			"token_expires_at":  tokens.ExpiresAt,
			"token_version":     expectedVersion + 1,
		})
	if res.Error != nil {
		return false, errors.WithStack(res.Error)
	}

	return res.RowsAffected == 1, nil
}

func (r *GormRepo) UpdateStatus(
	ctx context.Context,
	id string,
	status database.ConnectionStatus,
	lastError string,
) error {
	return errors.WithStack(r.db.WithContext(ctx).
		Model(&database.Connection{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"connection_status": status,
			"last_error":        lastError,
		}).Error)
}

func (r *GormRepo) MarkSynced(ctx context.Context, id string, at time.Time) error {
	return errors.WithStack(r.db.WithContext(ctx).
		Model(&database.Connection{}).
		Where("id = ?", id).
		Update("last_synced_at", at).Error)
}

func (r *GormRepo) AddAuditEvent(ctx context.Context, event *database.ConnectionAuditEvent) error {
	return errors.WithStack(r.db.WithContext(ctx).Create(event).Error)
}
