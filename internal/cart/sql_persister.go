package cart

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type cartSnapshot struct {
	SessionID string    `gorm:"column:session_id;primaryKey"`
	Payload   string    `gorm:"column:payload"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (cartSnapshot) TableName() string { return "cart_snapshots" }

// SQLPersister stores carts in the cart_snapshots table, one row per session.
type SQLPersister struct {
	db  *gorm.DB
	now func() time.Time
}

// NewSQLPersister binds the persister to the provided GORM handle.
func NewSQLPersister(db *gorm.DB) *SQLPersister {
	return &SQLPersister{db: db, now: time.Now}
}

func (p *SQLPersister) Load(ctx context.Context, sessionID string) ([]byte, error) {
	var row cartSnapshot
	err := p.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSnapshotNotFound
		}
		return nil, err
	}
	return []byte(row.Payload), nil
}

func (p *SQLPersister) Save(ctx context.Context, sessionID string, payload []byte) error {
	row := cartSnapshot{
		SessionID: sessionID,
		Payload:   string(payload),
		UpdatedAt: p.now().UTC(),
	}
	return p.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
		}).
		Create(&row).Error
}
