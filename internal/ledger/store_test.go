package ledger

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"carbon-backend/internal/domain"
	"carbon-backend/internal/pkg/apperrors"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupStore(t *testing.T) *Store {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	// sqlite :memory: is per-connection; one pooled conn keeps every
	// goroutine on the same database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&domain.Org{}, &domain.Project{}, &domain.EvidenceArtifact{},
		&domain.CreditClass{}, &domain.Holding{}, &domain.Transfer{},
		&domain.Retirement{}, &domain.TokenMint{}, &domain.EvidenceAnchor{},
	))
	return New(db)
}

func seedClass(t *testing.T, store *Store, quantity int64) (*domain.Org, *domain.CreditClass) {
	ctx := context.Background()
	org := &domain.Org{Name: "Issuer " + uuid.New().String(), Role: domain.RoleIssuer}
	require.NoError(t, store.CreateOrg(ctx, org))
	project := &domain.Project{Code: "PRJ-" + uuid.New().String(), Type: "FORESTRY", OrgID: org.OrgID}
	require.NoError(t, store.CreateProject(ctx, project))
	class := &domain.CreditClass{
		ProjectID:  project.ID,
		Vintage:    2024,
		Quantity:   quantity,
		SerialBase: 1,
		SerialTop:  quantity,
	}
	require.NoError(t, store.CreateClass(ctx, class))
	return org, class
}

func TestRunAtomic_RollsBackOnError(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	org, class := seedClass(t, store, 100)

	boom := errors.New("boom")
	err := store.RunAtomic(ctx, func(tx *Store) error {
		if _, err := tx.AddToHolding(ctx, org.OrgID, class.ID, 100); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = store.HoldingFor(ctx, org.OrgID, class.ID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestAddToHolding_UpsertsThenIncrements(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	org, class := seedClass(t, store, 100)

	holding, err := store.AddToHolding(ctx, org.OrgID, class.ID, 60)
	require.NoError(t, err)
	assert.Equal(t, int64(60), holding.Quantity)

	holding, err = store.AddToHolding(ctx, org.OrgID, class.ID, 40)
	require.NoError(t, err)
	assert.Equal(t, int64(100), holding.Quantity)

	holdings, err := store.Holdings(ctx, &org.OrgID)
	require.NoError(t, err)
	require.Len(t, holdings, 1)
	assert.Equal(t, int64(100), holdings[0].Quantity)
}

func TestDeductFromHolding_ConflictLeavesBalanceUntouched(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	org, class := seedClass(t, store, 100)
	_, err := store.AddToHolding(ctx, org.OrgID, class.ID, 50)
	require.NoError(t, err)

	_, err = store.DeductFromHolding(ctx, org.OrgID, class.ID, 51)
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))

	holding, err := store.HoldingFor(ctx, org.OrgID, class.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(50), holding.Quantity)

	after, err := store.DeductFromHolding(ctx, org.OrgID, class.ID, 50)
	require.NoError(t, err)
	assert.Equal(t, int64(0), after.Quantity)
}

func TestSetClassTokenID_AtMostOnce(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	_, class := seedClass(t, store, 100)

	require.NoError(t, store.SetClassTokenID(ctx, class.ID, 777))

	err := store.SetClassTokenID(ctx, class.ID, 888)
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))

	got, err := store.ClassByID(ctx, class.ID)
	require.NoError(t, err)
	require.NotNil(t, got.TokenID)
	assert.Equal(t, int64(777), *got.TokenID)
}

func TestLastRetirementForClass_NilWhenNone(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	_, class := seedClass(t, store, 100)

	last, err := store.LastRetirementForClass(ctx, class.ID)
	require.NoError(t, err)
	assert.Nil(t, last)
}

func TestLastRetirementForClass_PicksHighestSerialEnd(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	org, class := seedClass(t, store, 100)

	first := &domain.Retirement{
		OrgID: org.OrgID, ClassID: class.ID, Quantity: 10,
		SerialStart: 1, SerialEnd: 10, CertificateID: "CERT-AAAA00000001",
	}
	require.NoError(t, store.CreateRetirement(ctx, first))
	second := &domain.Retirement{
		OrgID: org.OrgID, ClassID: class.ID, Quantity: 5,
		SerialStart: 11, SerialEnd: 15, CertificateID: "CERT-AAAA00000002",
	}
	require.NoError(t, store.CreateRetirement(ctx, second))

	last, err := store.LastRetirementForClass(ctx, class.ID)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, int64(15), last.SerialEnd)
}

func TestUpsertAnchor_CreatesThenRefreshes(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	hash := "abcd00000000000000000000000000000000000000000000000000000000ef12"

	anchor, err := store.UpsertAnchor(ctx, hash, "ipfs://one", "0x01", 31337)
	require.NoError(t, err)
	assert.Equal(t, "ipfs://one", anchor.URI)

	refreshed, err := store.UpsertAnchor(ctx, hash, "ipfs://two", "0x02", 31337)
	require.NoError(t, err)
	assert.Equal(t, anchor.ID, refreshed.ID)
	assert.Equal(t, "ipfs://two", refreshed.URI)
	assert.Equal(t, "0x02", refreshed.TxHash)

	anchors, err := store.Anchors(ctx)
	require.NoError(t, err)
	assert.Len(t, anchors, 1)
}

func TestRunAtomic_ReplaysSerializationAborts(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	attempts := 0
	err := store.RunAtomic(ctx, func(tx *Store) error {
		attempts++
		return &pgconn.PgError{Code: "40001", Message: "could not serialize access"}
	})
	var pgErr *pgconn.PgError
	require.ErrorAs(t, err, &pgErr)
	assert.Equal(t, 1+serializationRetries, attempts)
}

func TestRunAtomic_DoesNotReplayOrdinaryErrors(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	attempts := 0
	boom := errors.New("boom")
	err := store.RunAtomic(ctx, func(tx *Store) error {
		attempts++
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, attempts)
}

func TestIsSerializationFailure(t *testing.T) {
	assert.True(t, isSerializationFailure(&pgconn.PgError{Code: "40001"}))
	assert.True(t, isSerializationFailure(fmt.Errorf("commit: %w", &pgconn.PgError{Code: "40001"})))
	assert.False(t, isSerializationFailure(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isSerializationFailure(errors.New("plain")))
	assert.False(t, isSerializationFailure(nil))
}

func TestPointReads_NotFoundKind(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	_, err := store.OrgByID(ctx, uuid.New())
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
	_, err = store.ClassByID(ctx, uuid.New())
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
	_, err = store.RetirementByCertificate(ctx, "CERT-MISSING")
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}
