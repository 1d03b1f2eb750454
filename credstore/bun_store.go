package credstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"

	portalauth "github.com/lexvia/go-portal-auth"
)

// credentialRecordID is the fixed primary key: the store holds at most one
// credential pair, the current session's.
const credentialRecordID = 1

// CredentialRecord is the persisted token/profile pair.
type CredentialRecord struct {
	bun.BaseModel `bun:"table:credentials,alias:cred"`
	ID            int64      `bun:"id,pk" json:"id"`
	Token         string     `bun:"token,notnull" json:"token"`
	Profile       []byte     `bun:"profile,notnull,type:blob" json:"profile"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

var _ portalauth.CredentialStore = (*BunStore)(nil)

// BunStore is a bun/sqlite-backed credential store. Both halves of the pair
// live in one row written inside one transaction, so the pairing invariant
// survives a crash mid-write.
type BunStore struct {
	db     *bun.DB
	logger portalauth.Logger
}

// BunStoreOption customizes store construction.
type BunStoreOption func(*BunStore)

// WithStoreLogger overrides the default logger.
func WithStoreLogger(logger portalauth.Logger) BunStoreOption {
	return func(s *BunStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewBunStore returns a credential store over db. Call CreateTables once
// before first use.
func NewBunStore(db *bun.DB, opts ...BunStoreOption) *BunStore {
	s := &BunStore{db: db}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// CreateTables creates the credentials table if it does not exist.
func CreateTables(ctx context.Context, db *bun.DB) error {
	if _, err := db.NewCreateTable().
		Model((*CredentialRecord)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return storageErr(err, "failed to create credentials table")
	}
	return nil
}

// Save implements portalauth.CredentialStore. Token and profile are written in
// a single upsert inside a transaction; a failed write leaves the previous
// pair intact rather than half of the new one.
func (s *BunStore) Save(ctx context.Context, token string, profile *portalauth.Profile) error {
	if token == "" || profile == nil {
		return portalauth.ErrInvalidInput.Clone().WithMetadata(map[string]any{
			"reason": "credential store requires both a token and a profile",
		})
	}

	payload, err := json.Marshal(profile)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to serialize profile")
	}

	now := time.Now()
	record := &CredentialRecord{
		ID:        credentialRecordID,
		Token:     token,
		Profile:   payload,
		UpdatedAt: &now,
	}

	err = s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().
			Model(record).
			On("CONFLICT (id) DO UPDATE").
			Set("token = EXCLUDED.token").
			Set("profile = EXCLUDED.profile").
			Set("updated_at = EXCLUDED.updated_at").
			Exec(ctx)
		return err
	})
	if err != nil {
		return storageErr(err, "failed to persist credentials")
	}

	return nil
}

// Load implements portalauth.CredentialStore. A record with an empty token or
// an unreadable profile is treated as absent and lazily cleared, so corrupt
// state self-heals to unauthenticated.
func (s *BunStore) Load(ctx context.Context) (string, *portalauth.Profile, error) {
	record := new(CredentialRecord)

	err := s.db.NewSelect().
		Model(record).
		Where("cred.id = ?", credentialRecordID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil, nil
		}
		return "", nil, storageErr(err, "failed to load credentials")
	}

	if record.Token == "" || len(record.Profile) == 0 {
		s.selfHeal(ctx)
		return "", nil, nil
	}

	profile := new(portalauth.Profile)
	if err := json.Unmarshal(record.Profile, profile); err != nil {
		s.selfHeal(ctx)
		return "", nil, nil
	}

	return record.Token, profile, nil
}

// Clear implements portalauth.CredentialStore.
func (s *BunStore) Clear(ctx context.Context) error {
	_, err := s.db.NewDelete().
		Model((*CredentialRecord)(nil)).
		Where("id = ?", credentialRecordID).
		Exec(ctx)
	if err != nil {
		return storageErr(err, "failed to clear credentials")
	}
	return nil
}

func (s *BunStore) selfHeal(ctx context.Context) {
	if err := s.Clear(ctx); err != nil && s.logger != nil {
		s.logger.Warn("failed to clear corrupt credential record", "error", err)
	}
}

func storageErr(err error, msg string) error {
	return goerrors.Wrap(err, goerrors.CategoryInternal, msg).
		WithTextCode(portalauth.TextCodeStorageUnavailable)
}
