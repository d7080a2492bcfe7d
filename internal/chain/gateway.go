package chain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// MintReceipt is the outcome of an on-chain mint: the transaction that carried
// it and the ERC-1155 token id the supply landed on.
type MintReceipt struct {
	TxHash  string `json:"tx_hash"`
	TokenID int64  `json:"token_id"`
}

// Gateway is the capability set the registry bridge talks to. The live EVM
// variant and the deterministic mock variant both satisfy it; selection
// happens once at construction and business logic never inspects which
// variant is active.
type Gateway interface {
	// Mint creates (or tops up) the token backing classID and credits amount
	// to toAddress.
	Mint(ctx context.Context, classID string, toAddress string, amount int64) (*MintReceipt, error)

	// Transfer moves amount of tokenID between two wallets.
	Transfer(ctx context.Context, tokenID int64, fromAddress, toAddress string, amount int64) (string, error)

	// Burn destroys amount of the token backing classID held by fromAddress.
	Burn(ctx context.Context, classID string, tokenID int64, amount int64, fromAddress string) (string, error)

	// Anchor records a content hash and its retrieval URI on-chain.
	Anchor(ctx context.Context, hash, uri string) (string, error)

	// Balance returns the token balance of an address.
	Balance(ctx context.Context, address string, tokenID int64) (int64, error)

	// IsConnected reports whether a live contract is behind this gateway.
	IsConnected() bool
}

// maxTokenID keeps derived ids inside a positive 31-bit space so they fit
// wherever the contract or downstream tooling expects an int32.
var maxTokenID = big.NewInt(2147483647)

// DeriveTokenID proposes a deterministic token id for a class that has never
// been minted. The contract's own id assignment stays authoritative: a
// non-zero answer from getTokenId always wins over this derivation.
func DeriveTokenID(classID string) int64 {
	sum := crypto.Keccak256([]byte(classID))
	n := new(big.Int).SetBytes(sum)
	return n.Mod(n, maxTokenID).Int64()
}

// IsValidAddress reports whether s is a well-formed hex chain address.
func IsValidAddress(s string) bool {
	return common.IsHexAddress(s)
}
