package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"carbon-backend/internal/pkg/apperrors"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog/log"
)

// Simplified ABIs for the two registry contracts. Only the entry points the
// bridge uses are declared.
const creditContractABI = `[
	{"type":"function","name":"mintClass","inputs":[{"name":"to","type":"address"},{"name":"tokenId","type":"uint256"},{"name":"classId","type":"string"},{"name":"amount","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"mint","inputs":[{"name":"to","type":"address"},{"name":"tokenId","type":"uint256"},{"name":"amount","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"burn","inputs":[{"name":"from","type":"address"},{"name":"tokenId","type":"uint256"},{"name":"amount","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"safeTransferFrom","inputs":[{"name":"from","type":"address"},{"name":"to","type":"address"},{"name":"id","type":"uint256"},{"name":"amount","type":"uint256"},{"name":"data","type":"bytes"}],"outputs":[]},
	{"type":"function","name":"getTokenId","stateMutability":"view","inputs":[{"name":"classId","type":"string"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"account","type":"address"},{"name":"id","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]}
]`

const anchorContractABI = `[
	{"type":"function","name":"anchor","inputs":[{"name":"hash","type":"bytes32"},{"name":"uri","type":"string"}],"outputs":[]}
]`

// EvmConfig is the explicit construction-time material for the live gateway.
type EvmConfig struct {
	RPCURL         string
	PrivateKey     string
	CreditContract string
	AnchorContract string
	ChainID        int64
	CallTimeout    time.Duration
}

// EvmGateway issues real signed transactions through a JSON-RPC endpoint and
// waits for inclusion before reporting success.
type EvmGateway struct {
	client      *ethclient.Client
	key         *ecdsa.PrivateKey
	chainID     *big.Int
	credit      *bind.BoundContract
	anchor      *bind.BoundContract
	callTimeout time.Duration
}

func NewEvmGateway(ctx context.Context, cfg EvmConfig) (*EvmGateway, error) {
	if cfg.CreditContract == "" || !common.IsHexAddress(cfg.CreditContract) {
		return nil, apperrors.Validation("invalid credit contract address: %s", cfg.CreditContract)
	}
	if cfg.AnchorContract == "" || !common.IsHexAddress(cfg.AnchorContract) {
		return nil, apperrors.Validation("invalid anchor contract address: %s", cfg.AnchorContract)
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
	if err != nil {
		return nil, apperrors.Validation("invalid signing key: %v", err)
	}

	client, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, apperrors.ChainUnavailable("rpc dial failed", err)
	}

	creditABI, err := abi.JSON(strings.NewReader(creditContractABI))
	if err != nil {
		return nil, err
	}
	anchorABI, err := abi.JSON(strings.NewReader(anchorContractABI))
	if err != nil {
		return nil, err
	}

	timeout := cfg.CallTimeout
	if timeout <= 0 {
		timeout = time.Minute
	}

	return &EvmGateway{
		client:      client,
		key:         key,
		chainID:     big.NewInt(cfg.ChainID),
		credit:      bind.NewBoundContract(common.HexToAddress(cfg.CreditContract), creditABI, client, client, client),
		anchor:      bind.NewBoundContract(common.HexToAddress(cfg.AnchorContract), anchorABI, client, client, client),
		callTimeout: timeout,
	}, nil
}

func (g *EvmGateway) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, g.callTimeout)
}

func (g *EvmGateway) transactOpts(ctx context.Context) (*bind.TransactOpts, error) {
	opts, err := bind.NewKeyedTransactorWithChainID(g.key, g.chainID)
	if err != nil {
		return nil, apperrors.ChainUnavailable("transactor setup failed", err)
	}
	opts.Context = ctx
	return opts, nil
}

// classifyChainErr splits gateway failures into "the chain could not be
// reached" and "the contract rejected the call".
func classifyChainErr(operation string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return apperrors.ChainUnavailable(operation+" timed out", err)
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "revert") || strings.Contains(msg, "execution") {
		return apperrors.ChainExecution(operation+" rejected by contract", err)
	}
	return apperrors.ChainUnavailable(operation+" failed", err)
}

// waitMined blocks until the transaction is included, then checks the receipt
// status.
func (g *EvmGateway) waitMined(ctx context.Context, operation string, tx *types.Transaction) error {
	receipt, err := bind.WaitMined(ctx, g.client, tx)
	if err != nil {
		return classifyChainErr(operation, err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return apperrors.ChainExecution(operation+" reverted", fmt.Errorf("tx %s status %d", tx.Hash().Hex(), receipt.Status))
	}
	return nil
}

// existingTokenID asks the contract whether classID already has a token.
// Returns 0 when it does not.
func (g *EvmGateway) existingTokenID(ctx context.Context, classID string) (int64, error) {
	var out []interface{}
	err := g.credit.Call(&bind.CallOpts{Context: ctx}, &out, "getTokenId", classID)
	if err != nil {
		return 0, classifyChainErr("getTokenId", err)
	}
	if len(out) == 0 {
		return 0, nil
	}
	id, ok := out[0].(*big.Int)
	if !ok || id == nil {
		return 0, nil
	}
	return id.Int64(), nil
}

func (g *EvmGateway) Mint(ctx context.Context, classID string, toAddress string, amount int64) (*MintReceipt, error) {
	ctx, cancel := g.callCtx(ctx)
	defer cancel()

	existing, err := g.existingTokenID(ctx, classID)
	if err != nil {
		return nil, err
	}

	opts, err := g.transactOpts(ctx)
	if err != nil {
		return nil, err
	}

	to := common.HexToAddress(toAddress)
	var tx *types.Transaction
	tokenID := existing
	if existing != 0 {
		// Token exists on-chain; mint additional supply to it.
		tx, err = g.credit.Transact(opts, "mint", to, big.NewInt(existing), big.NewInt(amount))
	} else {
		tokenID = DeriveTokenID(classID)
		tx, err = g.credit.Transact(opts, "mintClass", to, big.NewInt(tokenID), classID, big.NewInt(amount))
	}
	if err != nil {
		return nil, classifyChainErr("mint", err)
	}
	if err := g.waitMined(ctx, "mint", tx); err != nil {
		return nil, err
	}

	log.Info().Str("class_id", classID).Int64("token_id", tokenID).Str("tx", tx.Hash().Hex()).Msg("minted on-chain")
	return &MintReceipt{TxHash: tx.Hash().Hex(), TokenID: tokenID}, nil
}

func (g *EvmGateway) Transfer(ctx context.Context, tokenID int64, fromAddress, toAddress string, amount int64) (string, error) {
	ctx, cancel := g.callCtx(ctx)
	defer cancel()

	opts, err := g.transactOpts(ctx)
	if err != nil {
		return "", err
	}
	tx, err := g.credit.Transact(opts, "safeTransferFrom",
		common.HexToAddress(fromAddress),
		common.HexToAddress(toAddress),
		big.NewInt(tokenID),
		big.NewInt(amount),
		[]byte{},
	)
	if err != nil {
		return "", classifyChainErr("transfer", err)
	}
	if err := g.waitMined(ctx, "transfer", tx); err != nil {
		return "", err
	}
	return tx.Hash().Hex(), nil
}

func (g *EvmGateway) Burn(ctx context.Context, classID string, tokenID int64, amount int64, fromAddress string) (string, error) {
	ctx, cancel := g.callCtx(ctx)
	defer cancel()

	opts, err := g.transactOpts(ctx)
	if err != nil {
		return "", err
	}
	tx, err := g.credit.Transact(opts, "burn",
		common.HexToAddress(fromAddress),
		big.NewInt(tokenID),
		big.NewInt(amount),
	)
	if err != nil {
		return "", classifyChainErr("burn", err)
	}
	if err := g.waitMined(ctx, "burn", tx); err != nil {
		return "", err
	}
	return tx.Hash().Hex(), nil
}

func (g *EvmGateway) Anchor(ctx context.Context, hash, uri string) (string, error) {
	ctx, cancel := g.callCtx(ctx)
	defer cancel()

	opts, err := g.transactOpts(ctx)
	if err != nil {
		return "", err
	}
	tx, err := g.anchor.Transact(opts, "anchor", common.HexToHash(hash), uri)
	if err != nil {
		return "", classifyChainErr("anchor", err)
	}
	if err := g.waitMined(ctx, "anchor", tx); err != nil {
		return "", err
	}
	return tx.Hash().Hex(), nil
}

func (g *EvmGateway) Balance(ctx context.Context, address string, tokenID int64) (int64, error) {
	ctx, cancel := g.callCtx(ctx)
	defer cancel()

	var out []interface{}
	err := g.credit.Call(&bind.CallOpts{Context: ctx}, &out, "balanceOf", common.HexToAddress(address), big.NewInt(tokenID))
	if err != nil {
		return 0, classifyChainErr("balanceOf", err)
	}
	if len(out) == 0 {
		return 0, nil
	}
	balance, ok := out[0].(*big.Int)
	if !ok || balance == nil {
		return 0, nil
	}
	return balance.Int64(), nil
}

func (g *EvmGateway) IsConnected() bool {
	return true
}

// Close releases the underlying RPC connection.
func (g *EvmGateway) Close() {
	g.client.Close()
}
