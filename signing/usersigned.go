package signing

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/rendal/go-hypercore/network"
)

// Transfer-class actions are signed as EIP-712 typed data instead of the
// agent envelope, so custody wallets can display what is being moved.
// Every struct here declares the network it was built for through its
// signatureChainId and hyperliquidChain fields; Sign rejects a mismatch.

func lowerHex(addr common.Address) string {
	return strings.ToLower(addr.Hex())
}

// UsdSendAction transfers USDC to another address.
type UsdSendAction struct {
	Type             string `json:"type" msgpack:"type"`
	SignatureChainID string `json:"signatureChainId" msgpack:"signatureChainId"`
	HyperliquidChain string `json:"hyperliquidChain" msgpack:"hyperliquidChain"`
	Destination      string `json:"destination" msgpack:"destination"`
	Amount           string `json:"amount" msgpack:"amount"`
	Time             uint64 `json:"time" msgpack:"time"`
}

func NewUsdSendAction(net network.Network, destination common.Address, amount string, time uint64) UsdSendAction {
	return UsdSendAction{
		Type:             "usdSend",
		SignatureChainID: net.SignatureChainID(),
		HyperliquidChain: net.Name(),
		Destination:      lowerHex(destination),
		Amount:           amount,
		Time:             time,
	}
}

func (UsdSendAction) ActionType() string { return "usdSend" }
func (UsdSendAction) isAction()          {}

// SpotSendAction transfers a spot token to another address.
type SpotSendAction struct {
	Type             string `json:"type" msgpack:"type"`
	SignatureChainID string `json:"signatureChainId" msgpack:"signatureChainId"`
	HyperliquidChain string `json:"hyperliquidChain" msgpack:"hyperliquidChain"`
	Destination      string `json:"destination" msgpack:"destination"`
	Token            string `json:"token" msgpack:"token"`
	Amount           string `json:"amount" msgpack:"amount"`
	Time             uint64 `json:"time" msgpack:"time"`
}

func NewSpotSendAction(net network.Network, destination common.Address, token, amount string, time uint64) SpotSendAction {
	return SpotSendAction{
		Type:             "spotSend",
		SignatureChainID: net.SignatureChainID(),
		HyperliquidChain: net.Name(),
		Destination:      lowerHex(destination),
		Token:            token,
		Amount:           amount,
		Time:             time,
	}
}

func (SpotSendAction) ActionType() string { return "spotSend" }
func (SpotSendAction) isAction()          {}

// SendAssetAction moves a token between DEXs and sub-accounts.
type SendAssetAction struct {
	Type             string `json:"type" msgpack:"type"`
	SignatureChainID string `json:"signatureChainId" msgpack:"signatureChainId"`
	HyperliquidChain string `json:"hyperliquidChain" msgpack:"hyperliquidChain"`
	Destination      string `json:"destination" msgpack:"destination"`
	SourceDex        string `json:"sourceDex" msgpack:"sourceDex"`
	DestinationDex   string `json:"destinationDex" msgpack:"destinationDex"`
	Token            string `json:"token" msgpack:"token"`
	Amount           string `json:"amount" msgpack:"amount"`
	FromSubAccount   string `json:"fromSubAccount" msgpack:"fromSubAccount"`
	Nonce            uint64 `json:"nonce" msgpack:"nonce"`
}

func NewSendAssetAction(
	net network.Network,
	destination common.Address,
	sourceDex, destinationDex, token, amount, fromSubAccount string,
	nonce uint64,
) SendAssetAction {
	return SendAssetAction{
		Type:             "sendAsset",
		SignatureChainID: net.SignatureChainID(),
		HyperliquidChain: net.Name(),
		Destination:      lowerHex(destination),
		SourceDex:        sourceDex,
		DestinationDex:   destinationDex,
		Token:            token,
		Amount:           amount,
		FromSubAccount:   fromSubAccount,
		Nonce:            nonce,
	}
}

func (SendAssetAction) ActionType() string { return "sendAsset" }
func (SendAssetAction) isAction()          {}

// WithdrawAction withdraws USDC to the bridge.
type WithdrawAction struct {
	Type             string `json:"type" msgpack:"type"`
	SignatureChainID string `json:"signatureChainId" msgpack:"signatureChainId"`
	HyperliquidChain string `json:"hyperliquidChain" msgpack:"hyperliquidChain"`
	Destination      string `json:"destination" msgpack:"destination"`
	Amount           string `json:"amount" msgpack:"amount"`
	Time             uint64 `json:"time" msgpack:"time"`
}

func NewWithdrawAction(net network.Network, destination common.Address, amount string, time uint64) WithdrawAction {
	return WithdrawAction{
		Type:             "withdraw3",
		SignatureChainID: net.SignatureChainID(),
		HyperliquidChain: net.Name(),
		Destination:      lowerHex(destination),
		Amount:           amount,
		Time:             time,
	}
}

func (WithdrawAction) ActionType() string { return "withdraw3" }
func (WithdrawAction) isAction()          {}

// UsdClassTransferAction moves USDC between the perp and spot balances.
type UsdClassTransferAction struct {
	Type             string `json:"type" msgpack:"type"`
	SignatureChainID string `json:"signatureChainId" msgpack:"signatureChainId"`
	HyperliquidChain string `json:"hyperliquidChain" msgpack:"hyperliquidChain"`
	Amount           string `json:"amount" msgpack:"amount"`
	ToPerp           bool   `json:"toPerp" msgpack:"toPerp"`
	Nonce            uint64 `json:"nonce" msgpack:"nonce"`
}

func NewUsdClassTransferAction(net network.Network, amount string, toPerp bool, nonce uint64) UsdClassTransferAction {
	return UsdClassTransferAction{
		Type:             "usdClassTransfer",
		SignatureChainID: net.SignatureChainID(),
		HyperliquidChain: net.Name(),
		Amount:           amount,
		ToPerp:           toPerp,
		Nonce:            nonce,
	}
}

func (UsdClassTransferAction) ActionType() string { return "usdClassTransfer" }
func (UsdClassTransferAction) isAction()          {}

// TokenDelegateAction stakes to or unstakes from a validator.
type TokenDelegateAction struct {
	Type             string `json:"type" msgpack:"type"`
	SignatureChainID string `json:"signatureChainId" msgpack:"signatureChainId"`
	HyperliquidChain string `json:"hyperliquidChain" msgpack:"hyperliquidChain"`
	Validator        string `json:"validator" msgpack:"validator"`
	Wei              uint64 `json:"wei" msgpack:"wei"`
	IsUndelegate     bool   `json:"isUndelegate" msgpack:"isUndelegate"`
	Nonce            uint64 `json:"nonce" msgpack:"nonce"`
}

func NewTokenDelegateAction(net network.Network, validator common.Address, wei uint64, isUndelegate bool, nonce uint64) TokenDelegateAction {
	return TokenDelegateAction{
		Type:             "tokenDelegate",
		SignatureChainID: net.SignatureChainID(),
		HyperliquidChain: net.Name(),
		Validator:        lowerHex(validator),
		Wei:              wei,
		IsUndelegate:     isUndelegate,
		Nonce:            nonce,
	}
}

func (TokenDelegateAction) ActionType() string { return "tokenDelegate" }
func (TokenDelegateAction) isAction()          {}

// ApproveAgentAction authorizes an agent key to sign on the user's
// behalf.
type ApproveAgentAction struct {
	Type             string `json:"type" msgpack:"type"`
	SignatureChainID string `json:"signatureChainId" msgpack:"signatureChainId"`
	HyperliquidChain string `json:"hyperliquidChain" msgpack:"hyperliquidChain"`
	AgentAddress     string `json:"agentAddress" msgpack:"agentAddress"`
	AgentName        string `json:"agentName,omitempty" msgpack:"agentName,omitempty"`
	Nonce            uint64 `json:"nonce" msgpack:"nonce"`
}

func NewApproveAgentAction(net network.Network, agentAddress common.Address, agentName string, nonce uint64) ApproveAgentAction {
	return ApproveAgentAction{
		Type:             "approveAgent",
		SignatureChainID: net.SignatureChainID(),
		HyperliquidChain: net.Name(),
		AgentAddress:     lowerHex(agentAddress),
		AgentName:        agentName,
		Nonce:            nonce,
	}
}

func (ApproveAgentAction) ActionType() string { return "approveAgent" }
func (ApproveAgentAction) isAction()          {}

// ApproveBuilderFeeAction caps the fee a builder address may attach to
// the user's orders. MaxFeeRate is a percent string such as "0.001%".
type ApproveBuilderFeeAction struct {
	Type             string `json:"type" msgpack:"type"`
	SignatureChainID string `json:"signatureChainId" msgpack:"signatureChainId"`
	HyperliquidChain string `json:"hyperliquidChain" msgpack:"hyperliquidChain"`
	MaxFeeRate       string `json:"maxFeeRate" msgpack:"maxFeeRate"`
	Builder          string `json:"builder" msgpack:"builder"`
	Nonce            uint64 `json:"nonce" msgpack:"nonce"`
}

func NewApproveBuilderFeeAction(net network.Network, maxFeeRate string, builder common.Address, nonce uint64) ApproveBuilderFeeAction {
	return ApproveBuilderFeeAction{
		Type:             "approveBuilderFee",
		SignatureChainID: net.SignatureChainID(),
		HyperliquidChain: net.Name(),
		MaxFeeRate:       maxFeeRate,
		Builder:          lowerHex(builder),
		Nonce:            nonce,
	}
}

func (ApproveBuilderFeeAction) ActionType() string { return "approveBuilderFee" }
func (ApproveBuilderFeeAction) isAction()          {}

// ConvertToMultiSigUserAction turns the account into a multisig account.
// Signers is the JSON encoding of the authorized users and threshold, or
// null to convert back to a single-key account.
type ConvertToMultiSigUserAction struct {
	Type             string `json:"type" msgpack:"type"`
	SignatureChainID string `json:"signatureChainId" msgpack:"signatureChainId"`
	HyperliquidChain string `json:"hyperliquidChain" msgpack:"hyperliquidChain"`
	Signers          string `json:"signers" msgpack:"signers"`
	Nonce            uint64 `json:"nonce" msgpack:"nonce"`
}

func NewConvertToMultiSigUserAction(net network.Network, signers string, nonce uint64) ConvertToMultiSigUserAction {
	return ConvertToMultiSigUserAction{
		Type:             "convertToMultiSigUser",
		SignatureChainID: net.SignatureChainID(),
		HyperliquidChain: net.Name(),
		Signers:          signers,
		Nonce:            nonce,
	}
}

func (ConvertToMultiSigUserAction) ActionType() string { return "convertToMultiSigUser" }
func (ConvertToMultiSigUserAction) isAction()          {}
