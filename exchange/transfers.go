package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/rendal/go-hypercore/internal/utils"
	"github.com/rendal/go-hypercore/signing"
)

// Transfer-class actions are signed as EIP-712 typed data by the account
// itself. They ignore the configured vault address and expiry, and each
// action embeds the request nonce so the exchange can tie the two
// together.

// UsdTransfer sends USDC to another address.
func (e *Exchange) UsdTransfer(
	ctx context.Context,
	destination common.Address,
	usd float64,
) (RawResponse, error) {
	amount, err := wireAmount(usd)
	if err != nil {
		return RawResponse{}, err
	}

	nonce := e.nonces.Next()
	action := signing.NewUsdSendAction(e.net, destination, amount, nonce)

	return e.postUserSigned(ctx, action, nonce)
}

// SpotTransfer sends a spot token to another address. Token is the
// "NAME:0xdeployer" identifier from spot metadata.
func (e *Exchange) SpotTransfer(
	ctx context.Context,
	destination common.Address,
	token string,
	amount float64,
) (RawResponse, error) {
	wire, err := wireAmount(amount)
	if err != nil {
		return RawResponse{}, err
	}

	nonce := e.nonces.Next()
	action := signing.NewSpotSendAction(e.net, destination, token, wire, nonce)

	return e.postUserSigned(ctx, action, nonce)
}

// SendAsset moves a token between DEXs and sub-accounts. Empty dex
// strings mean the default perp DEX; "spot" addresses the spot balance.
func (e *Exchange) SendAsset(
	ctx context.Context,
	destination common.Address,
	sourceDex, destinationDex, token string,
	amount float64,
	fromSubAccount string,
) (RawResponse, error) {
	wire, err := wireAmount(amount)
	if err != nil {
		return RawResponse{}, err
	}

	nonce := e.nonces.Next()
	action := signing.NewSendAssetAction(
		e.net, destination, sourceDex, destinationDex, token, wire, fromSubAccount, nonce,
	)

	return e.postUserSigned(ctx, action, nonce)
}

// Withdraw sends USDC to the bridge for withdrawal to the destination
// address. The bridge charges a flat fee out of the amount.
func (e *Exchange) Withdraw(
	ctx context.Context,
	destination common.Address,
	usd float64,
) (RawResponse, error) {
	amount, err := wireAmount(usd)
	if err != nil {
		return RawResponse{}, err
	}

	nonce := e.nonces.Next()
	action := signing.NewWithdrawAction(e.net, destination, amount, nonce)

	return e.postUserSigned(ctx, action, nonce)
}

// UsdClassTransfer moves USDC between the perp and spot balances.
func (e *Exchange) UsdClassTransfer(
	ctx context.Context,
	usd float64,
	toPerp bool,
) (RawResponse, error) {
	amount, err := wireAmount(usd)
	if err != nil {
		return RawResponse{}, err
	}

	nonce := e.nonces.Next()
	action := signing.NewUsdClassTransferAction(e.net, amount, toPerp, nonce)

	return e.postUserSigned(ctx, action, nonce)
}

// TokenDelegate stakes wei to a validator, or unstakes from it.
func (e *Exchange) TokenDelegate(
	ctx context.Context,
	validator common.Address,
	wei uint64,
	isUndelegate bool,
) (RawResponse, error) {
	nonce := e.nonces.Next()
	action := signing.NewTokenDelegateAction(e.net, validator, wei, isUndelegate, nonce)

	return e.postUserSigned(ctx, action, nonce)
}

// ApproveAgent authorizes an agent key to sign on the account's behalf.
// An empty name registers the unnamed agent slot.
func (e *Exchange) ApproveAgent(
	ctx context.Context,
	agent common.Address,
	name string,
) (RawResponse, error) {
	nonce := e.nonces.Next()
	action := signing.NewApproveAgentAction(e.net, agent, name, nonce)

	return e.postUserSigned(ctx, action, nonce)
}

// ApproveBuilderFee caps the fee a builder may attach to the account's
// orders. MaxFeeRate is a percent string such as "0.001%".
func (e *Exchange) ApproveBuilderFee(
	ctx context.Context,
	builder common.Address,
	maxFeeRate string,
) (RawResponse, error) {
	nonce := e.nonces.Next()
	action := signing.NewApproveBuilderFeeAction(e.net, maxFeeRate, builder, nonce)

	return e.postUserSigned(ctx, action, nonce)
}

// ConvertToMultiSigUser turns the account into a multisig account
// controlled by the given users with the given signature threshold.
// Users are sorted and lowercased so the same set always produces the
// same action.
func (e *Exchange) ConvertToMultiSigUser(
	ctx context.Context,
	authorizedUsers []common.Address,
	threshold int,
) (RawResponse, error) {
	users := make([]string, len(authorizedUsers))
	for i, u := range authorizedUsers {
		users[i] = strings.ToLower(u.Hex())
	}
	sort.Strings(users)

	signers, err := json.Marshal(map[string]any{
		"authorizedUsers": users,
		"threshold":       threshold,
	})
	if err != nil {
		return RawResponse{}, fmt.Errorf("failed to encode signers: %w", err)
	}

	nonce := e.nonces.Next()
	action := signing.NewConvertToMultiSigUserAction(e.net, string(signers), nonce)

	return e.postUserSigned(ctx, action, nonce)
}

// postUserSigned signs and submits under the nonce already baked into
// the action.
func (e *Exchange) postUserSigned(
	ctx context.Context,
	action signing.Action,
	nonce uint64,
) (RawResponse, error) {
	req, err := signing.Sign(e.signer, action, nonce, e.net, e.vaultAddress, e.expiresAfter)
	if err != nil {
		return RawResponse{}, fmt.Errorf("failed to sign %s action: %w", action.ActionType(), err)
	}

	return submit[json.RawMessage](ctx, e, req)
}

// wireAmount renders a float amount in canonical decimal form.
func wireAmount(amount float64) (string, error) {
	wire, err := utils.FloatToWire(amount)
	if err != nil {
		return "", fmt.Errorf("invalid amount: %w", err)
	}
	return wire, nil
}

// usdInt renders a USD amount as the integer micro-USD the account
// actions expect.
func usdInt(usd float64) (int64, error) {
	v, err := utils.FloatToUsdInt(usd)
	if err != nil {
		return 0, fmt.Errorf("invalid usd amount: %w", err)
	}
	return v, nil
}
