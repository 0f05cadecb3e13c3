package transcript

import (
	"context"
	"sort"

	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tailored-agentic-units/threads/conversation"
	"github.com/tailored-agentic-units/threads/core/protocol"
)

type conversationRow struct {
	ID        string `gorm:"primaryKey;size:128"`
	Title     string
	Timestamp string `gorm:"size:64"`
}

func (conversationRow) TableName() string { return "conversations" }

type messageRow struct {
	ConversationID string `gorm:"primaryKey;size:128"`
	Seq            int    `gorm:"primaryKey;autoIncrement:false"`
	Role           string `gorm:"size:16"`
	Content        string `gorm:"type:text"`
}

func (messageRow) TableName() string { return "messages" }

// OpenSQL opens a gorm connection for dialect "sqlite" or "postgres".
func OpenSQL(dialect, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch dialect {
	case "", "sqlite":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, errors.Errorf("unsupported sql dialect %q", dialect)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open %s database", dialect)
	}
	return db, nil
}

// SQLStore keeps conversations and their messages in two tables. SaveAll
// replaces both tables inside one transaction.
type SQLStore struct {
	db *gorm.DB
}

// NewSQLStore migrates the schema and returns a store over db.
func NewSQLStore(db *gorm.DB) (*SQLStore, error) {
	if err := db.AutoMigrate(&conversationRow{}, &messageRow{}); err != nil {
		return nil, errors.Wrap(err, "migrate transcript schema")
	}
	return &SQLStore{db: db}, nil
}

func (s *SQLStore) LoadAll(ctx context.Context) (map[string]conversation.Record, error) {
	empty := map[string]conversation.Record{}
	db := s.db.WithContext(ctx)

	var convs []conversationRow
	if err := db.Find(&convs).Error; err != nil {
		return empty, errors.WithMessagef(ErrLoadFailed, "conversations: %v", err)
	}

	var msgs []messageRow
	if err := db.Order("conversation_id, seq").Find(&msgs).Error; err != nil {
		return empty, errors.WithMessagef(ErrLoadFailed, "messages: %v", err)
	}

	records := make(map[string]conversation.Record, len(convs))
	for _, c := range convs {
		records[c.ID] = conversation.Record{
			Messages:  []protocol.Message{},
			Timestamp: c.Timestamp,
			Title:     c.Title,
		}
	}
	for _, m := range msgs {
		rec, ok := records[m.ConversationID]
		if !ok {
			return empty, errors.WithMessagef(ErrCorrupt, "message %d references unknown conversation %s", m.Seq, m.ConversationID)
		}
		if m.Seq != len(rec.Messages) {
			return empty, errors.WithMessagef(ErrCorrupt, "conversation %s has a gap at message %d", m.ConversationID, len(rec.Messages))
		}
		rec.Messages = append(rec.Messages, protocol.NewMessage(protocol.Role(m.Role), m.Content))
		records[m.ConversationID] = rec
	}

	if err := validateRecords(records); err != nil {
		return empty, err
	}
	return records, nil
}

func (s *SQLStore) SaveAll(ctx context.Context, records map[string]conversation.Record) error {
	if err := checkUTF8(records); err != nil {
		return errors.WithMessage(err, "sql")
	}
	ids := make([]string, 0, len(records))
	for id := range records {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	convs := make([]conversationRow, 0, len(ids))
	var msgs []messageRow
	for _, id := range ids {
		rec := records[id]
		convs = append(convs, conversationRow{ID: id, Title: rec.Title, Timestamp: rec.Timestamp})
		for seq, m := range rec.Messages {
			msgs = append(msgs, messageRow{
				ConversationID: id,
				Seq:            seq,
				Role:           string(m.Role),
				Content:        m.Content,
			})
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&messageRow{}).Error; err != nil {
			return err
		}
		if err := tx.Where("1 = 1").Delete(&conversationRow{}).Error; err != nil {
			return err
		}
		if len(convs) > 0 {
			if err := tx.CreateInBatches(convs, 100).Error; err != nil {
				return err
			}
		}
		if len(msgs) > 0 {
			if err := tx.CreateInBatches(msgs, 100).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return errors.WithMessagef(ErrSaveFailed, "sql: %v", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
