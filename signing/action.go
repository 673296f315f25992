package signing

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/rendal/go-hypercore/types"
)

// Action is the closed set of exchange actions this package can sign.
// The set is sealed: new variants require touching the dispatch switches
// in sign.go and typeddata.go, which keeps every signing path explicit.
//
// Field order in the wire structs below is load bearing. The canonical
// msgpack encoding hashes fields in declaration order, so reordering a
// struct changes every signature derived from it.
type Action interface {
	ActionType() string
	isAction()
}

// Time-in-force values for limit orders.
const (
	TifAlo = "Alo"
	TifIoc = "Ioc"
	TifGtc = "Gtc"
)

// Grouping values for order batches.
const (
	GroupingNa           = "na"
	GroupingNormalTpsl   = "normalTpsl"
	GroupingPositionTpsl = "positionTpsl"
)

type LimitOrderType struct {
	Tif string `json:"tif" msgpack:"tif"`
}

type TriggerOrderType struct {
	TriggerPx string `json:"triggerPx" msgpack:"triggerPx"`
	IsMarket  bool   `json:"isMarket" msgpack:"isMarket"`
	Tpsl      string `json:"tpsl" msgpack:"tpsl"`
}

// OrderType is either a limit or a trigger order. Exactly one field is
// set.
type OrderType struct {
	Limit   *LimitOrderType   `json:"limit,omitempty" msgpack:"limit,omitempty"`
	Trigger *TriggerOrderType `json:"trigger,omitempty" msgpack:"trigger,omitempty"`
}

// OrderWire is a single order in canonical wire form. Prices and sizes
// are decimal strings, never floats.
type OrderWire struct {
	Asset      int          `json:"a" msgpack:"a"`
	IsBuy      bool         `json:"b" msgpack:"b"`
	LimitPx    string       `json:"p" msgpack:"p"`
	Sz         string       `json:"s" msgpack:"s"`
	ReduceOnly bool         `json:"r" msgpack:"r"`
	OrderType  OrderType    `json:"t" msgpack:"t"`
	Cloid      *types.Cloid `json:"c,omitempty" msgpack:"c,omitempty"`
}

// BuilderInfo routes a share of the order fee to a builder address.
type BuilderInfo struct {
	Builder string `json:"b" msgpack:"b"`
	Fee     int    `json:"f" msgpack:"f"`
}

type OrderAction struct {
	Type     string       `json:"type" msgpack:"type"`
	Orders   []OrderWire  `json:"orders" msgpack:"orders"`
	Grouping string       `json:"grouping" msgpack:"grouping"`
	Builder  *BuilderInfo `json:"builder,omitempty" msgpack:"builder,omitempty"`
}

func NewOrderAction(orders []OrderWire, grouping string, builder *BuilderInfo) OrderAction {
	return OrderAction{
		Type:     "order",
		Orders:   orders,
		Grouping: grouping,
		Builder:  builder,
	}
}

func (OrderAction) ActionType() string { return "order" }
func (OrderAction) isAction()          {}

type ModifyWire struct {
	Oid   uint64    `json:"oid" msgpack:"oid"`
	Order OrderWire `json:"order" msgpack:"order"`
}

type BatchModifyAction struct {
	Type     string       `json:"type" msgpack:"type"`
	Modifies []ModifyWire `json:"modifies" msgpack:"modifies"`
}

func NewBatchModifyAction(modifies []ModifyWire) BatchModifyAction {
	return BatchModifyAction{Type: "batchModify", Modifies: modifies}
}

func (BatchModifyAction) ActionType() string { return "batchModify" }
func (BatchModifyAction) isAction()          {}

type CancelWire struct {
	Asset int    `json:"a" msgpack:"a"`
	Oid   uint64 `json:"o" msgpack:"o"`
}

type CancelAction struct {
	Type    string       `json:"type" msgpack:"type"`
	Cancels []CancelWire `json:"cancels" msgpack:"cancels"`
}

func NewCancelAction(cancels []CancelWire) CancelAction {
	return CancelAction{Type: "cancel", Cancels: cancels}
}

func (CancelAction) ActionType() string { return "cancel" }
func (CancelAction) isAction()          {}

type CancelByCloidWire struct {
	Asset int         `json:"asset" msgpack:"asset"`
	Cloid types.Cloid `json:"cloid" msgpack:"cloid"`
}

type CancelByCloidAction struct {
	Type    string              `json:"type" msgpack:"type"`
	Cancels []CancelByCloidWire `json:"cancels" msgpack:"cancels"`
}

func NewCancelByCloidAction(cancels []CancelByCloidWire) CancelByCloidAction {
	return CancelByCloidAction{Type: "cancelByCloid", Cancels: cancels}
}

func (CancelByCloidAction) ActionType() string { return "cancelByCloid" }
func (CancelByCloidAction) isAction()          {}

// ScheduleCancelAction arms (or, with a nil time, disarms) the dead man's
// switch that cancels all open orders at the given millisecond timestamp.
type ScheduleCancelAction struct {
	Type string  `json:"type" msgpack:"type"`
	Time *uint64 `json:"time,omitempty" msgpack:"time,omitempty"`
}

func NewScheduleCancelAction(time *uint64) ScheduleCancelAction {
	return ScheduleCancelAction{Type: "scheduleCancel", Time: time}
}

func (ScheduleCancelAction) ActionType() string { return "scheduleCancel" }
func (ScheduleCancelAction) isAction()          {}

type UpdateLeverageAction struct {
	Type     string `json:"type" msgpack:"type"`
	Asset    int    `json:"asset" msgpack:"asset"`
	IsCross  bool   `json:"isCross" msgpack:"isCross"`
	Leverage int    `json:"leverage" msgpack:"leverage"`
}

func NewUpdateLeverageAction(asset int, isCross bool, leverage int) UpdateLeverageAction {
	return UpdateLeverageAction{
		Type:     "updateLeverage",
		Asset:    asset,
		IsCross:  isCross,
		Leverage: leverage,
	}
}

func (UpdateLeverageAction) ActionType() string { return "updateLeverage" }
func (UpdateLeverageAction) isAction()          {}

type UpdateIsolatedMarginAction struct {
	Type  string `json:"type" msgpack:"type"`
	Asset int    `json:"asset" msgpack:"asset"`
	IsBuy bool   `json:"isBuy" msgpack:"isBuy"`
	Ntli  int64  `json:"ntli" msgpack:"ntli"`
}

func NewUpdateIsolatedMarginAction(asset int, isBuy bool, ntli int64) UpdateIsolatedMarginAction {
	return UpdateIsolatedMarginAction{
		Type:  "updateIsolatedMargin",
		Asset: asset,
		IsBuy: isBuy,
		Ntli:  ntli,
	}
}

func (UpdateIsolatedMarginAction) ActionType() string { return "updateIsolatedMargin" }
func (UpdateIsolatedMarginAction) isAction()          {}

// EvmUserModifyAction toggles big blocks for the user's EVM transactions.
type EvmUserModifyAction struct {
	Type           string `json:"type" msgpack:"type"`
	UsingBigBlocks bool   `json:"usingBigBlocks" msgpack:"usingBigBlocks"`
}

func NewEvmUserModifyAction(usingBigBlocks bool) EvmUserModifyAction {
	return EvmUserModifyAction{Type: "evmUserModify", UsingBigBlocks: usingBigBlocks}
}

func (EvmUserModifyAction) ActionType() string { return "evmUserModify" }
func (EvmUserModifyAction) isAction()          {}

type CreateSubAccountAction struct {
	Type string `json:"type" msgpack:"type"`
	Name string `json:"name" msgpack:"name"`
}

func NewCreateSubAccountAction(name string) CreateSubAccountAction {
	return CreateSubAccountAction{Type: "createSubAccount", Name: name}
}

func (CreateSubAccountAction) ActionType() string { return "createSubAccount" }
func (CreateSubAccountAction) isAction()          {}

type SubAccountTransferAction struct {
	Type           string `json:"type" msgpack:"type"`
	SubAccountUser string `json:"subAccountUser" msgpack:"subAccountUser"`
	IsDeposit      bool   `json:"isDeposit" msgpack:"isDeposit"`
	Usd            int64  `json:"usd" msgpack:"usd"`
}

func NewSubAccountTransferAction(subAccountUser common.Address, isDeposit bool, usd int64) SubAccountTransferAction {
	return SubAccountTransferAction{
		Type:           "subAccountTransfer",
		SubAccountUser: lowerHex(subAccountUser),
		IsDeposit:      isDeposit,
		Usd:            usd,
	}
}

func (SubAccountTransferAction) ActionType() string { return "subAccountTransfer" }
func (SubAccountTransferAction) isAction()          {}

type VaultTransferAction struct {
	Type         string `json:"type" msgpack:"type"`
	VaultAddress string `json:"vaultAddress" msgpack:"vaultAddress"`
	IsDeposit    bool   `json:"isDeposit" msgpack:"isDeposit"`
	Usd          int64  `json:"usd" msgpack:"usd"`
}

func NewVaultTransferAction(vaultAddress common.Address, isDeposit bool, usd int64) VaultTransferAction {
	return VaultTransferAction{
		Type:         "vaultTransfer",
		VaultAddress: lowerHex(vaultAddress),
		IsDeposit:    isDeposit,
		Usd:          usd,
	}
}

func (VaultTransferAction) ActionType() string { return "vaultTransfer" }
func (VaultTransferAction) isAction()          {}

// NoopAction does nothing on the exchange. Signing and submitting one
// burns a nonce, which cancels any in-flight action carrying it.
type NoopAction struct {
	Type string `json:"type" msgpack:"type"`
}

func NewNoopAction() NoopAction {
	return NoopAction{Type: "noop"}
}

func (NoopAction) ActionType() string { return "noop" }
func (NoopAction) isAction()          {}

// MultiSigAction wraps an inner action with the ordered signatures of the
// authorized users of a multisig account. The leader's own signature over
// this envelope is attached outside, in the SignedRequest.
//
// The type tag is excluded from the canonical encoding: the envelope hash
// the leader signs covers signatureChainId, signatures and payload only.
type MultiSigAction struct {
	Type             string            `json:"type" msgpack:"-"`
	SignatureChainID string            `json:"signatureChainId" msgpack:"signatureChainId"`
	Signatures       []types.Signature `json:"signatures" msgpack:"signatures"`
	Payload          MultiSigPayload   `json:"payload" msgpack:"payload"`
}

type MultiSigPayload struct {
	MultiSigUser string `json:"multiSigUser" msgpack:"multiSigUser"`
	OuterSigner  string `json:"outerSigner" msgpack:"outerSigner"`
	Action       Action `json:"action" msgpack:"action"`
}

func (MultiSigAction) ActionType() string { return "multiSig" }
func (MultiSigAction) isAction()          {}
