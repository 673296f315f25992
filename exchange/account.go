package exchange

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/rendal/go-hypercore/signing"
)

// Account-level actions. These go through the agent signing path like
// orders do, so they honor the configured vault address and expiry.

// ScheduleCancel arms the dead man's switch: all open orders are
// cancelled at the given millisecond timestamp. A nil time disarms it.
// The exchange requires the trigger to be at least 5 seconds out.
func (e *Exchange) ScheduleCancel(ctx context.Context, t *uint64) (RawResponse, error) {
	return post[json.RawMessage](ctx, e, signing.NewScheduleCancelAction(t))
}

// UpdateLeverage sets the leverage for an asset, cross or isolated.
func (e *Exchange) UpdateLeverage(
	ctx context.Context,
	name string,
	isCross bool,
	leverage int,
) (RawResponse, error) {
	asset, ok := e.info.GetAsset(name)
	if !ok {
		return RawResponse{}, fmt.Errorf("unknown coin: %s", name)
	}

	return post[json.RawMessage](ctx, e, signing.NewUpdateLeverageAction(asset, isCross, leverage))
}

// UpdateIsolatedMargin adds or removes USD margin from an isolated
// position.
func (e *Exchange) UpdateIsolatedMargin(
	ctx context.Context,
	name string,
	isBuy bool,
	usd float64,
) (RawResponse, error) {
	asset, ok := e.info.GetAsset(name)
	if !ok {
		return RawResponse{}, fmt.Errorf("unknown coin: %s", name)
	}

	ntli, err := usdInt(usd)
	if err != nil {
		return RawResponse{}, err
	}

	return post[json.RawMessage](ctx, e, signing.NewUpdateIsolatedMarginAction(asset, isBuy, ntli))
}

// CreateSubAccount creates a named sub-account under the signer's
// account.
func (e *Exchange) CreateSubAccount(ctx context.Context, name string) (RawResponse, error) {
	return post[json.RawMessage](ctx, e, signing.NewCreateSubAccountAction(name))
}

// SubAccountTransfer moves USD between the main account and a
// sub-account.
func (e *Exchange) SubAccountTransfer(
	ctx context.Context,
	subAccount common.Address,
	isDeposit bool,
	usd float64,
) (RawResponse, error) {
	amount, err := usdInt(usd)
	if err != nil {
		return RawResponse{}, err
	}

	return post[json.RawMessage](ctx, e, signing.NewSubAccountTransferAction(subAccount, isDeposit, amount))
}

// VaultTransfer deposits to or withdraws from a vault.
func (e *Exchange) VaultTransfer(
	ctx context.Context,
	vault common.Address,
	isDeposit bool,
	usd float64,
) (RawResponse, error) {
	amount, err := usdInt(usd)
	if err != nil {
		return RawResponse{}, err
	}

	return post[json.RawMessage](ctx, e, signing.NewVaultTransferAction(vault, isDeposit, amount))
}

// UseBigBlocks opts the signer's EVM transactions in or out of big
// blocks.
func (e *Exchange) UseBigBlocks(ctx context.Context, enable bool) (RawResponse, error) {
	return post[json.RawMessage](ctx, e, signing.NewEvmUserModifyAction(enable))
}

// Noop burns a nonce without doing anything, which invalidates any
// in-flight action signed under it.
func (e *Exchange) Noop(ctx context.Context) (RawResponse, error) {
	return post[json.RawMessage](ctx, e, signing.NewNoopAction())
}
