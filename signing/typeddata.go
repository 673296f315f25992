package signing

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	emath "github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	"github.com/rendal/go-hypercore/network"
	"github.com/rendal/go-hypercore/types"
)

// userSignedPayload is the EIP-712 shape of one typed-data action: the
// primary type, its ordered field schema and the message values.
type userSignedPayload struct {
	primaryType string
	fields      []apitypes.Type
	message     apitypes.TypedDataMessage
	sigChainID  string
}

func uint64Value(v uint64) *emath.HexOrDecimal256 {
	return (*emath.HexOrDecimal256)(new(big.Int).SetUint64(v))
}

// userPayload classifies an action. Typed-data variants return their
// EIP-712 shape; for everything else ok is false and the action signs
// through the agent envelope. The switch is the single source of truth
// for the schema of every user-signed variant.
func userPayload(a Action) (userSignedPayload, bool) {
	switch v := a.(type) {
	case UsdSendAction:
		return userSignedPayload{
			primaryType: "HyperliquidTransaction:UsdSend",
			fields: []apitypes.Type{
				{Name: "hyperliquidChain", Type: "string"},
				{Name: "destination", Type: "string"},
				{Name: "amount", Type: "string"},
				{Name: "time", Type: "uint64"},
			},
			message: apitypes.TypedDataMessage{
				"hyperliquidChain": v.HyperliquidChain,
				"destination":      v.Destination,
				"amount":           v.Amount,
				"time":             uint64Value(v.Time),
			},
			sigChainID: v.SignatureChainID,
		}, true

	case SpotSendAction:
		return userSignedPayload{
			primaryType: "HyperliquidTransaction:SpotSend",
			fields: []apitypes.Type{
				{Name: "hyperliquidChain", Type: "string"},
				{Name: "destination", Type: "string"},
				{Name: "token", Type: "string"},
				{Name: "amount", Type: "string"},
				{Name: "time", Type: "uint64"},
			},
			message: apitypes.TypedDataMessage{
				"hyperliquidChain": v.HyperliquidChain,
				"destination":      v.Destination,
				"token":            v.Token,
				"amount":           v.Amount,
				"time":             uint64Value(v.Time),
			},
			sigChainID: v.SignatureChainID,
		}, true

	case SendAssetAction:
		return userSignedPayload{
			primaryType: "HyperliquidTransaction:SendAsset",
			fields: []apitypes.Type{
				{Name: "hyperliquidChain", Type: "string"},
				{Name: "destination", Type: "string"},
				{Name: "sourceDex", Type: "string"},
				{Name: "destinationDex", Type: "string"},
				{Name: "token", Type: "string"},
				{Name: "amount", Type: "string"},
				{Name: "fromSubAccount", Type: "string"},
				{Name: "nonce", Type: "uint64"},
			},
			message: apitypes.TypedDataMessage{
				"hyperliquidChain": v.HyperliquidChain,
				"destination":      v.Destination,
				"sourceDex":        v.SourceDex,
				"destinationDex":   v.DestinationDex,
				"token":            v.Token,
				"amount":           v.Amount,
				"fromSubAccount":   v.FromSubAccount,
				"nonce":            uint64Value(v.Nonce),
			},
			sigChainID: v.SignatureChainID,
		}, true

	case WithdrawAction:
		return userSignedPayload{
			primaryType: "HyperliquidTransaction:Withdraw",
			fields: []apitypes.Type{
				{Name: "hyperliquidChain", Type: "string"},
				{Name: "destination", Type: "string"},
				{Name: "amount", Type: "string"},
				{Name: "time", Type: "uint64"},
			},
			message: apitypes.TypedDataMessage{
				"hyperliquidChain": v.HyperliquidChain,
				"destination":      v.Destination,
				"amount":           v.Amount,
				"time":             uint64Value(v.Time),
			},
			sigChainID: v.SignatureChainID,
		}, true

	case UsdClassTransferAction:
		return userSignedPayload{
			primaryType: "HyperliquidTransaction:UsdClassTransfer",
			fields: []apitypes.Type{
				{Name: "hyperliquidChain", Type: "string"},
				{Name: "amount", Type: "string"},
				{Name: "toPerp", Type: "bool"},
				{Name: "nonce", Type: "uint64"},
			},
			message: apitypes.TypedDataMessage{
				"hyperliquidChain": v.HyperliquidChain,
				"amount":           v.Amount,
				"toPerp":           v.ToPerp,
				"nonce":            uint64Value(v.Nonce),
			},
			sigChainID: v.SignatureChainID,
		}, true

	case TokenDelegateAction:
		return userSignedPayload{
			primaryType: "HyperliquidTransaction:TokenDelegate",
			fields: []apitypes.Type{
				{Name: "hyperliquidChain", Type: "string"},
				{Name: "validator", Type: "address"},
				{Name: "wei", Type: "uint64"},
				{Name: "isUndelegate", Type: "bool"},
				{Name: "nonce", Type: "uint64"},
			},
			message: apitypes.TypedDataMessage{
				"hyperliquidChain": v.HyperliquidChain,
				"validator":        v.Validator,
				"wei":              uint64Value(v.Wei),
				"isUndelegate":     v.IsUndelegate,
				"nonce":            uint64Value(v.Nonce),
			},
			sigChainID: v.SignatureChainID,
		}, true

	case ApproveAgentAction:
		return userSignedPayload{
			primaryType: "HyperliquidTransaction:ApproveAgent",
			fields: []apitypes.Type{
				{Name: "hyperliquidChain", Type: "string"},
				{Name: "agentAddress", Type: "address"},
				{Name: "agentName", Type: "string"},
				{Name: "nonce", Type: "uint64"},
			},
			message: apitypes.TypedDataMessage{
				"hyperliquidChain": v.HyperliquidChain,
				"agentAddress":     v.AgentAddress,
				"agentName":        v.AgentName,
				"nonce":            uint64Value(v.Nonce),
			},
			sigChainID: v.SignatureChainID,
		}, true

	case ApproveBuilderFeeAction:
		return userSignedPayload{
			primaryType: "HyperliquidTransaction:ApproveBuilderFee",
			fields: []apitypes.Type{
				{Name: "hyperliquidChain", Type: "string"},
				{Name: "maxFeeRate", Type: "string"},
				{Name: "builder", Type: "address"},
				{Name: "nonce", Type: "uint64"},
			},
			message: apitypes.TypedDataMessage{
				"hyperliquidChain": v.HyperliquidChain,
				"maxFeeRate":       v.MaxFeeRate,
				"builder":          v.Builder,
				"nonce":            uint64Value(v.Nonce),
			},
			sigChainID: v.SignatureChainID,
		}, true

	case ConvertToMultiSigUserAction:
		return userSignedPayload{
			primaryType: "HyperliquidTransaction:ConvertToMultiSigUser",
			fields: []apitypes.Type{
				{Name: "hyperliquidChain", Type: "string"},
				{Name: "signers", Type: "string"},
				{Name: "nonce", Type: "uint64"},
			},
			message: apitypes.TypedDataMessage{
				"hyperliquidChain": v.HyperliquidChain,
				"signers":          v.Signers,
				"nonce":            uint64Value(v.Nonce),
			},
			sigChainID: v.SignatureChainID,
		}, true
	}

	return userSignedPayload{}, false
}

// sendMultiSigPayload is the envelope the multisig leader signs: the
// hash of the full multisig action bound to the leader's nonce.
func sendMultiSigPayload(net network.Network, actionHash common.Hash, nonce uint64) userSignedPayload {
	return userSignedPayload{
		primaryType: "HyperliquidTransaction:SendMultiSig",
		fields: []apitypes.Type{
			{Name: "hyperliquidChain", Type: "string"},
			{Name: "multiSigActionHash", Type: "bytes32"},
			{Name: "nonce", Type: "uint64"},
		},
		message: apitypes.TypedDataMessage{
			"hyperliquidChain":   net.Name(),
			"multiSigActionHash": actionHash,
			"nonce":              uint64Value(nonce),
		},
		sigChainID: net.SignatureChainID(),
	}
}

// multiSigUserPayload rebinds a typed-data payload for multisig inner
// signing: the multisig account and the signing user are spliced into
// the schema right after hyperliquidChain so every co-signer commits to
// who is acting on whose behalf.
func multiSigUserPayload(p userSignedPayload, multiSigUser, outerSigner common.Address) userSignedPayload {
	fields := make([]apitypes.Type, 0, len(p.fields)+2)
	fields = append(fields, p.fields[0])
	fields = append(fields,
		apitypes.Type{Name: "payloadMultiSigUser", Type: "address"},
		apitypes.Type{Name: "outerSigner", Type: "address"},
	)
	fields = append(fields, p.fields[1:]...)

	message := make(apitypes.TypedDataMessage, len(p.message)+2)
	for k, val := range p.message {
		message[k] = val
	}
	message["payloadMultiSigUser"] = lowerHex(multiSigUser)
	message["outerSigner"] = lowerHex(outerSigner)

	return userSignedPayload{
		primaryType: p.primaryType,
		fields:      fields,
		message:     message,
		sigChainID:  p.sigChainID,
	}
}

// userSignedTypedData binds a payload to the per-network signing domain.
func userSignedTypedData(net network.Network, p userSignedPayload) apitypes.TypedData {
	return apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": {
				{Name: "name", Type: "string"},
				{Name: "version", Type: "string"},
				{Name: "chainId", Type: "uint256"},
				{Name: "verifyingContract", Type: "address"},
			},
			p.primaryType: p.fields,
		},
		PrimaryType: p.primaryType,
		Domain: apitypes.TypedDataDomain{
			Name:              "HyperliquidSignTransaction",
			Version:           "1",
			ChainId:           emath.NewHexOrDecimal256(net.ChainID()),
			VerifyingContract: zeroVerifyingContract,
		},
		Message: p.message,
	}
}

func signUserPayload(signer Signer, net network.Network, p userSignedPayload) (types.Signature, error) {
	if p.sigChainID != net.SignatureChainID() {
		return types.Signature{}, fmt.Errorf(
			"%w: action declares %s, network %s uses %s",
			ErrChainMismatch, p.sigChainID, net.Name(), net.SignatureChainID(),
		)
	}

	typedData := userSignedTypedData(net, p)

	hash, _, err := apitypes.TypedDataAndHash(typedData)
	if err != nil {
		return types.Signature{}, fmt.Errorf("failed generating hash for typed data: %w", err)
	}

	return signer.SignHash(common.BytesToHash(hash))
}
