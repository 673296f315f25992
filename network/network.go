// Package network describes the deployment targets of the exchange. A
// Network value carries every per-environment constant the rest of the
// module needs: URLs, the agent source tag and the EIP-712 chain ids.
// Values are immutable and passed explicitly; nothing reads network state
// from package globals.
package network

const (
	mainnetAPIURL = "https://api.hyperliquid.xyz"
	testnetAPIURL = "https://api.hyperliquid-testnet.xyz"
	localAPIURL   = "http://localhost:3001"

	mainnetWSURL = "wss://api.hyperliquid.xyz/ws"
	testnetWSURL = "wss://api.hyperliquid-testnet.xyz/ws"
	localWSURL   = "ws://localhost:3001/ws"
)

// Network identifies one deployment of the exchange.
type Network struct {
	name             string
	agentSource      string
	signatureChainID string
	chainID          int64
	apiURL           string
	wsURL            string
}

// Mainnet returns the production network. Typed-data signatures bind to
// Arbitrum One (chain id 42161).
func Mainnet() Network {
	return Network{
		name:             "Mainnet",
		agentSource:      "a",
		signatureChainID: "0xa4b1",
		chainID:          42161,
		apiURL:           mainnetAPIURL,
		wsURL:            mainnetWSURL,
	}
}

// Testnet returns the public test network. Typed-data signatures bind to
// Arbitrum Sepolia (chain id 421614).
func Testnet() Network {
	return Network{
		name:             "Testnet",
		agentSource:      "b",
		signatureChainID: "0x66eee",
		chainID:          421614,
		apiURL:           testnetAPIURL,
		wsURL:            testnetWSURL,
	}
}

// Local returns a network pointing at a locally running node. Signing
// parameters match Testnet.
func Local() Network {
	n := Testnet()
	n.apiURL = localAPIURL
	n.wsURL = localWSURL
	return n
}

// Name is the chain name actions carry in their hyperliquidChain field,
// "Mainnet" or "Testnet".
func (n Network) Name() string { return n.name }

func (n Network) IsMainnet() bool { return n.agentSource == "a" }

// AgentSource is the source tag of the phantom agent envelope: "a" on
// mainnet, "b" everywhere else.
func (n Network) AgentSource() string { return n.agentSource }

// SignatureChainID is the 0x-prefixed hex chain id typed-data actions
// declare in their signatureChainId field. It always corresponds to
// ChainID.
func (n Network) SignatureChainID() string { return n.signatureChainID }

// ChainID is the EIP-712 domain chain id for typed-data actions.
func (n Network) ChainID() int64 { return n.chainID }

func (n Network) APIURL() string { return n.apiURL }

func (n Network) WSURL() string { return n.wsURL }
