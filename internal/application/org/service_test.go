package org

import (
	"context"
	"testing"

	"carbon-backend/internal/domain"
	"carbon-backend/internal/ledger"
	"carbon-backend/internal/pkg/apperrors"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupOrgTest(t *testing.T) *Service {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Org{}))
	return &Service{Ledger: ledger.New(db)}
}

func TestCreateOrg_NormalizesRole(t *testing.T) {
	svc := setupOrgTest(t)
	ctx := context.Background()

	wallet := "0x1111111111111111111111111111111111111111"
	org, err := svc.CreateOrg(ctx, CreateOrgInput{
		Name: "  Forest Co  ", Role: "issuer", WalletAddress: &wallet,
	})
	require.NoError(t, err)
	assert.Equal(t, "Forest Co", org.Name)
	assert.Equal(t, domain.RoleIssuer, org.Role)
	assert.NotEqual(t, uuid.Nil, org.OrgID)

	found, err := svc.ViewOrg(ctx, org.OrgID)
	require.NoError(t, err)
	assert.Equal(t, "Forest Co", found.Name)
}

func TestCreateOrg_Validation(t *testing.T) {
	svc := setupOrgTest(t)
	ctx := context.Background()

	_, err := svc.CreateOrg(ctx, CreateOrgInput{Name: "   ", Role: "ISSUER"})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	_, err = svc.CreateOrg(ctx, CreateOrgInput{Name: "Forest Co", Role: "WIZARD"})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	badWallet := "0x1234"
	_, err = svc.CreateOrg(ctx, CreateOrgInput{
		Name: "Forest Co", Role: "ISSUER", WalletAddress: &badWallet,
	})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestListOrgs(t *testing.T) {
	svc := setupOrgTest(t)
	ctx := context.Background()

	for _, name := range []string{"One", "Two", "Three"} {
		_, err := svc.CreateOrg(ctx, CreateOrgInput{Name: name, Role: "BUYER"})
		require.NoError(t, err)
	}
	orgs, err := svc.ListOrgs(ctx)
	require.NoError(t, err)
	assert.Len(t, orgs, 3)
}

func TestViewOrg_NotFound(t *testing.T) {
	svc := setupOrgTest(t)

	_, err := svc.ViewOrg(context.Background(), uuid.New())
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}
