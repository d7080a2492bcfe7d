package org

import (
	"context"
	"strings"

	"carbon-backend/internal/chain"
	"carbon-backend/internal/domain"
	"carbon-backend/internal/ledger"
	"carbon-backend/internal/pkg/apperrors"

	"github.com/google/uuid"
)

// Service encapsulates org-related operations.
type Service struct {
	Ledger *ledger.Store
}

// CreateOrgInput is the pre-validated payload from the boundary layer.
type CreateOrgInput struct {
	Name          string  `json:"name"`
	Role          string  `json:"role"`
	WalletAddress *string `json:"wallet_address"`
}

var validRoles = map[string]bool{
	domain.RoleAdmin:    true,
	domain.RoleIssuer:   true,
	domain.RoleVerifier: true,
	domain.RoleBuyer:    true,
}

func (s *Service) CreateOrg(ctx context.Context, in CreateOrgInput) (*domain.Org, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperrors.Validation("name is required")
	}
	role := strings.ToUpper(strings.TrimSpace(in.Role))
	if !validRoles[role] {
		return nil, apperrors.Validation("invalid role: %s", in.Role)
	}
	if in.WalletAddress != nil && *in.WalletAddress != "" && !chain.IsValidAddress(*in.WalletAddress) {
		return nil, apperrors.Validation("invalid wallet address: %s", *in.WalletAddress)
	}

	org := &domain.Org{
		Name:          name,
		Role:          role,
		WalletAddress: in.WalletAddress,
	}
	if err := s.Ledger.CreateOrg(ctx, org); err != nil {
		return nil, err
	}
	return org, nil
}

func (s *Service) ViewOrg(ctx context.Context, orgID uuid.UUID) (*domain.Org, error) {
	return s.Ledger.OrgByID(ctx, orgID)
}

func (s *Service) ListOrgs(ctx context.Context) ([]domain.Org, error) {
	return s.Ledger.Orgs(ctx)
}
