package repositories

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"cast-deck.backend/pkg/crypto"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "open sqlite")
	return db
}

func mustExec(t *testing.T, db *gorm.DB, q string, args ...interface{}) {
	t.Helper()
	require.NoError(t, db.Exec(q, args...).Error, "exec failed: query=%s", q)
}

func createLinkRecordTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE link_records (
		id TEXT PRIMARY KEY,
		account_id TEXT NOT NULL UNIQUE,
		wallet_address TEXT UNIQUE,
		farcaster_id INTEGER,
		handle TEXT,
		display_name TEXT,
		avatar_url TEXT,
		signer_token TEXT,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func newTestCipher(t *testing.T) *crypto.TokenCipher {
	t.Helper()
	cipher, err := crypto.NewTokenCipher(strings.Repeat("ab", 32))
	require.NoError(t, err)
	return cipher
}

func newLinkRepoForTest(t *testing.T) (*LinkRepository, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	createLinkRecordTable(t, db)
	return NewLinkRepository(db, newTestCipher(t)), db
}
