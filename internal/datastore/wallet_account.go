package datastore

import (
	"context"
	"errors"
	"time"

	"walletv5/internal/models"

	"github.com/uptrace/bun"
)

var ErrStaleWalletState = errors.New("wallet state changed concurrently")

func CreateTableWalletAccount(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.WalletAccount)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.WalletAccount)(nil)).Index("index_wallet_account_public_key").IfNotExists().Column("public_key").Exec(ctx)
	return err
}

func CreateWalletAccount(ctx context.Context, db *bun.DB, account *models.WalletAccount) (*models.WalletAccount, error) {
	now := time.Now()
	account.CreatedAt = now
	account.UpdatedAt = now

	_, err := db.NewInsert().Model(account).Exec(ctx)
	if err != nil {
		return nil, err
	}
	return account, nil
}

func FindWalletAccount(ctx context.Context, db bun.IDB, address string) (*models.WalletAccount, error) {
	var account models.WalletAccount
	err := db.NewSelect().Model(&account).Where("address = ?", address).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func FindWalletAccountsByPublicKey(ctx context.Context, db *bun.DB, publicKey string) ([]*models.WalletAccount, error) {
	var accounts []*models.WalletAccount
	err := db.NewSelect().Model(&accounts).Where("public_key = ?", publicKey).Order("created_at ASC").Scan(ctx)
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

// CommitWalletAccount stores the new state together with the batch's outbound
// messages. The update only applies while the stored state is still prevHash.
func CommitWalletAccount(ctx context.Context, db *bun.DB, account *models.WalletAccount, prevHash string, messages []*models.OutMessage) error {
	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		account.UpdatedAt = time.Now()
		res, err := tx.NewUpdate().
			Model(account).
			Column("seqno", "signature_allowed", "extensions", "state_boc", "state_hash", "updated_at").
			WherePK().
			Where("state_hash = ?", prevHash).
			Exec(ctx)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n != 1 {
			return ErrStaleWalletState
		}

		if len(messages) == 0 {
			return nil
		}
		_, err = tx.NewInsert().Model(&messages).Exec(ctx)
		return err
	})
}
