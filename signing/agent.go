package signing

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/samber/mo"

	"github.com/rendal/go-hypercore/network"
	"github.com/rendal/go-hypercore/types"
)

const zeroVerifyingContract = "0x0000000000000000000000000000000000000000"

// SignL1Action signs an action through the phantom agent envelope: the
// action hash becomes the connectionId of an Agent typed-data message
// under the fixed exchange domain. The domain is the same on every
// network; only the agent source tag differs.
func SignL1Action(
	signer Signer,
	action any,
	nonce uint64,
	net network.Network,
	vaultAddress mo.Option[common.Address],
	expiresAfter mo.Option[uint64],
) (types.Signature, error) {
	actionHash, err := ActionHash(action, nonce, vaultAddress, expiresAfter)
	if err != nil {
		return types.Signature{}, fmt.Errorf("failed to create action hash: %w", err)
	}

	return signAgent(signer, net, actionHash)
}

func signAgent(signer Signer, net network.Network, connectionID common.Hash) (types.Signature, error) {
	typedData := agentTypedData(constructPhantomAgent(net.AgentSource(), connectionID))

	hash, _, err := apitypes.TypedDataAndHash(typedData)
	if err != nil {
		return types.Signature{}, fmt.Errorf("failed generating hash for typed data: %w", err)
	}

	return signer.SignHash(common.BytesToHash(hash))
}

func constructPhantomAgent(source string, connectionID common.Hash) apitypes.TypedDataMessage {
	return apitypes.TypedDataMessage{
		"source":       source,
		"connectionId": connectionID,
	}
}

func agentTypedData(phantomAgent apitypes.TypedDataMessage) apitypes.TypedData {
	return apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": {
				{Name: "name", Type: "string"},
				{Name: "version", Type: "string"},
				{Name: "chainId", Type: "uint256"},
				{Name: "verifyingContract", Type: "address"},
			},
			"Agent": {
				{Name: "source", Type: "string"},
				{Name: "connectionId", Type: "bytes32"},
			},
		},
		PrimaryType: "Agent",
		Domain: apitypes.TypedDataDomain{
			Name:              "Exchange",
			Version:           "1",
			ChainId:           math.NewHexOrDecimal256(1337),
			VerifyingContract: zeroVerifyingContract,
		},
		Message: phantomAgent,
	}
}
