package explorer

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"carbon-backend/internal/chain"
	"carbon-backend/internal/domain"
	"carbon-backend/internal/ledger"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Service serves the public explorer views. Live token balances come from the
// gateway and are cached in redis so the explorer does not hammer the RPC
// endpoint.
type Service struct {
	Ledger     *ledger.Store
	Gateway    chain.Gateway
	Rdb        *redis.Client
	BalanceTTL time.Duration
}

type CreditsView struct {
	Projects    []domain.Project     `json:"projects"`
	Classes     []domain.CreditClass `json:"classes"`
	Retirements []domain.Retirement  `json:"retirements"`
}

func (s *Service) GetCredits(ctx context.Context) (*CreditsView, error) {
	projects, err := s.Ledger.Projects(ctx)
	if err != nil {
		return nil, err
	}
	classes, err := s.Ledger.Classes(ctx, nil)
	if err != nil {
		return nil, err
	}
	retirements, err := s.Ledger.Retirements(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &CreditsView{Projects: projects, Classes: classes, Retirements: retirements}, nil
}

type TokenView struct {
	TokenID int64              `json:"token_id"`
	ClassID string             `json:"class_id"`
	Mints   []domain.TokenMint `json:"mints"`
}

type TokensView struct {
	Tokens []TokenView `json:"tokens"`
}

// GetTokens groups recorded mints by token id, preserving first-mint order.
func (s *Service) GetTokens(ctx context.Context) (*TokensView, error) {
	mints, err := s.Ledger.Mints(ctx)
	if err != nil {
		return nil, err
	}

	byToken := map[int64]*TokenView{}
	var order []int64
	for _, mint := range mints {
		view, ok := byToken[mint.TokenID]
		if !ok {
			view = &TokenView{TokenID: mint.TokenID, ClassID: mint.ClassID.String()}
			byToken[mint.TokenID] = view
			order = append(order, mint.TokenID)
		}
		view.Mints = append(view.Mints, mint)
	}

	out := &TokensView{Tokens: make([]TokenView, 0, len(order))}
	for _, tokenID := range order {
		out.Tokens = append(out.Tokens, *byToken[tokenID])
	}
	return out, nil
}

type AnchorsView struct {
	Anchors []domain.EvidenceAnchor `json:"anchors"`
}

func (s *Service) GetAnchors(ctx context.Context) (*AnchorsView, error) {
	anchors, err := s.Ledger.Anchors(ctx)
	if err != nil {
		return nil, err
	}
	return &AnchorsView{Anchors: anchors}, nil
}

func balanceKey(address string, tokenID int64) string {
	return fmt.Sprintf("chain:balance:%s:%d", address, tokenID)
}

// TokenBalance returns the on-chain balance of an address, served from cache
// when fresh. Cache errors are non-fatal; the gateway answer wins.
func (s *Service) TokenBalance(ctx context.Context, address string, tokenID int64) (int64, error) {
	key := balanceKey(address, tokenID)
	if s.Rdb != nil {
		if cached, err := s.Rdb.Get(ctx, key).Result(); err == nil {
			if balance, err := strconv.ParseInt(cached, 10, 64); err == nil {
				return balance, nil
			}
		}
	}

	balance, err := s.Gateway.Balance(ctx, address, tokenID)
	if err != nil {
		return 0, err
	}

	if s.Rdb != nil {
		ttl := s.BalanceTTL
		if ttl <= 0 {
			ttl = 30 * time.Second
		}
		if err := s.Rdb.Set(ctx, key, strconv.FormatInt(balance, 10), ttl).Err(); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("balance cache write failed")
		}
	}
	return balance, nil
}
