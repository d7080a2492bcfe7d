package chain

import (
	"context"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/sha3"
)

// MockGateway simulates chain operations when no contract address is
// configured. Transaction hashes are a keccak digest of the operation name,
// the primary identifier and a monotonic call ordinal — never wall-clock
// time — so repeated runs produce identical hashes for identical call
// sequences.
type MockGateway struct {
	mu      sync.Mutex
	ordinal uint64
}

func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

// FakeTxHash builds the deterministic mock transaction hash for a call.
// Exposed so callers can predict hashes for a known ordinal.
func FakeTxHash(operation, identifier string, ordinal uint64) string {
	d := sha3.NewLegacyKeccak256()
	fmt.Fprintf(d, "%s|%s|%d", operation, identifier, ordinal)
	return "0x" + hex.EncodeToString(d.Sum(nil))
}

func (g *MockGateway) nextTx(operation, identifier string) string {
	g.mu.Lock()
	ordinal := g.ordinal
	g.ordinal++
	g.mu.Unlock()
	return FakeTxHash(operation, identifier, ordinal)
}

func (g *MockGateway) Mint(ctx context.Context, classID string, toAddress string, amount int64) (*MintReceipt, error) {
	txHash := g.nextTx("mint", classID)
	log.Info().Str("class_id", classID).Str("tx", txHash).Msg("mock mint simulated")
	return &MintReceipt{TxHash: txHash, TokenID: DeriveTokenID(classID)}, nil
}

func (g *MockGateway) Transfer(ctx context.Context, tokenID int64, fromAddress, toAddress string, amount int64) (string, error) {
	txHash := g.nextTx("transfer", fmt.Sprintf("%d", tokenID))
	log.Info().Int64("token_id", tokenID).Str("tx", txHash).Msg("mock transfer simulated")
	return txHash, nil
}

func (g *MockGateway) Burn(ctx context.Context, classID string, tokenID int64, amount int64, fromAddress string) (string, error) {
	txHash := g.nextTx("burn", classID)
	log.Info().Str("class_id", classID).Str("tx", txHash).Msg("mock burn simulated")
	return txHash, nil
}

func (g *MockGateway) Anchor(ctx context.Context, hash, uri string) (string, error) {
	txHash := g.nextTx("anchor", hash)
	log.Info().Str("hash", hash).Str("tx", txHash).Msg("mock anchor simulated")
	return txHash, nil
}

func (g *MockGateway) Balance(ctx context.Context, address string, tokenID int64) (int64, error) {
	return 0, nil
}

func (g *MockGateway) IsConnected() bool {
	return false
}
