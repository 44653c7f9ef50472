package datastore

import (
	"context"
	"time"

	"walletv5/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableOutMessage(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.OutMessage)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.OutMessage)(nil)).Index("index_out_message_wallet").IfNotExists().Column("wallet_address", "created_at").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.OutMessage)(nil)).Index("index_out_message_status").IfNotExists().Column("status").Exec(ctx)
	return err
}

func FindOutMessagesByWallet(ctx context.Context, db *bun.DB, address string, limit, offset int) ([]*models.OutMessage, error) {
	messages := []*models.OutMessage{}
	err := db.NewSelect().
		Model(&messages).
		Where("wallet_address = ?", address).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func FindOutMessagesByIDs(ctx context.Context, db *bun.DB, ids []string) ([]*models.OutMessage, error) {
	var messages []*models.OutMessage
	if len(ids) == 0 {
		return messages, nil
	}
	err := db.NewSelect().Model(&messages).Where("id IN (?)", bun.In(ids)).Order("created_at ASC").Scan(ctx)
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// FindStaleQueuedOutMessages returns queued messages older than before, the ones
// the fast path through redis missed.
func FindStaleQueuedOutMessages(ctx context.Context, db *bun.DB, before time.Time, limit int) ([]*models.OutMessage, error) {
	var messages []*models.OutMessage
	err := db.NewSelect().
		Model(&messages).
		Where("status = ?", models.OUT_MESSAGE_STATUS_QUEUED).
		Where("created_at < ?", before).
		Order("created_at ASC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func MarkOutMessagesRelayed(ctx context.Context, db *bun.DB, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := db.NewUpdate().
		Model((*models.OutMessage)(nil)).
		Set("status = ?", models.OUT_MESSAGE_STATUS_RELAYED).
		Set("relayed_at = ?", time.Now()).
		Where("id IN (?)", bun.In(ids)).
		Where("status = ?", models.OUT_MESSAGE_STATUS_QUEUED).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
