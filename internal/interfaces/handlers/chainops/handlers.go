package chainops

import (
	"strings"

	bridgesvc "carbon-backend/internal/application/bridge"
	"carbon-backend/internal/application/certificates"
	"carbon-backend/internal/chain"
	"carbon-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handlers exposes the registry-chain bridge operations. Callers arrive
// pre-authorized; these endpoints only validate shape.
type Handlers struct {
	Bridge  *bridgesvc.Service
	Certs   *certificates.Generator
	Gateway chain.Gateway
}

// FinalizeMint POST /api/v1/chain/finalize-mint
func (h *Handlers) FinalizeMint(c *fiber.Ctx) error {
	var body struct {
		ClassID       string `json:"class_id"`
		WalletAddress string `json:"wallet_address"`
	}
	if err := c.BodyParser(&body); err != nil || body.ClassID == "" {
		return response.Error(c, "class_id is required", 400, nil)
	}
	classID, err := uuid.Parse(body.ClassID)
	if err != nil {
		return response.Error(c, "Invalid UUID format for class_id", 400, nil)
	}

	result, err := h.Bridge.FinalizeAndMint(c.Context(), classID, body.WalletAddress)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Credit class minted on-chain", result, nil)
}

// TransferOnChain POST /api/v1/chain/transfer
func (h *Handlers) TransferOnChain(c *fiber.Ctx) error {
	var body struct {
		TransferID string `json:"transfer_id"`
		FromWallet string `json:"from_wallet"`
		ToWallet   string `json:"to_wallet"`
	}
	if err := c.BodyParser(&body); err != nil || body.TransferID == "" {
		return response.Error(c, "transfer_id, from_wallet and to_wallet are required", 400, nil)
	}
	transferID, err := uuid.Parse(body.TransferID)
	if err != nil {
		return response.Error(c, "Invalid UUID format for transfer_id", 400, nil)
	}

	result, err := h.Bridge.TransferOnChain(c.Context(), transferID, body.FromWallet, body.ToWallet)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Transfer mirror attempted", result, nil)
}

// RetireBurn POST /api/v1/chain/retire
func (h *Handlers) RetireBurn(c *fiber.Ctx) error {
	var body struct {
		RetirementID  string `json:"retirement_id"`
		WalletAddress string `json:"wallet_address"`
	}
	if err := c.BodyParser(&body); err != nil || body.RetirementID == "" {
		return response.Error(c, "retirement_id is required", 400, nil)
	}
	retirementID, err := uuid.Parse(body.RetirementID)
	if err != nil {
		return response.Error(c, "Invalid UUID format for retirement_id", 400, nil)
	}

	result, err := h.Bridge.RetireAndBurn(c.Context(), retirementID, body.WalletAddress)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Burn mirror attempted", result, nil)
}

// AnchorEvidence POST /api/v1/chain/anchor
func (h *Handlers) AnchorEvidence(c *fiber.Ctx) error {
	var body struct {
		Hash string `json:"hash"`
		URI  string `json:"uri"`
	}
	if err := c.BodyParser(&body); err != nil || body.Hash == "" || body.URI == "" {
		return response.Error(c, "hash and uri are required", 400, nil)
	}

	result, err := h.Bridge.AnchorEvidence(c.Context(), body.Hash, body.URI)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Evidence anchored", result, nil)
}

// Status GET /api/v1/chain/status
func (h *Handlers) Status(c *fiber.Ctx) error {
	return response.Success(c, "Chain status", fiber.Map{
		"connected": h.Gateway.IsConnected(),
	}, nil)
}

// Certificate GET /api/v1/certificates/:type/:id
func (h *Handlers) Certificate(c *fiber.Ctx) error {
	certType := certificates.Type(strings.ToUpper(c.Params("type")))
	id := c.Params("id")
	if id == "" {
		return response.Error(c, "certificate id is required", 400, nil)
	}

	cert, err := h.Certs.ForType(c.Context(), certType, id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Certificate", cert, nil)
}
