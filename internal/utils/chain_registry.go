package utils

import "fmt"

// ChainInfo describes one supported network
type ChainInfo struct {
	ChainID     int64  `json:"chain_id"`
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	ExplorerURL string `json:"explorer_url"`
	Testnet     bool   `json:"testnet"`
}

// ChainRegistry holds the closed set of supported networks. Adding a network
// means registering it here; every chain-id check in the codebase goes
// through this registry.
type ChainRegistry struct {
	byID map[int64]*ChainInfo
}

// GlobalChainRegistry is populated once at init and read-only afterwards
var GlobalChainRegistry *ChainRegistry

func init() {
	GlobalChainRegistry = &ChainRegistry{
		byID: make(map[int64]*ChainInfo),
	}

	chains := []*ChainInfo{
		{
			ChainID:     84532,
			Name:        "Base Sepolia",
			Symbol:      "ETH",
			ExplorerURL: "https://sepolia.basescan.org",
			Testnet:     true,
		},
		{
			ChainID:     43113,
			Name:        "Avalanche Fuji",
			Symbol:      "AVAX",
			ExplorerURL: "https://testnet.snowtrace.io",
			Testnet:     true,
		},
	}

	for _, chain := range chains {
		GlobalChainRegistry.byID[chain.ChainID] = chain
	}
}

// Get returns chain info for a chain id
func (r *ChainRegistry) Get(chainID int64) (*ChainInfo, error) {
	info, ok := r.byID[chainID]
	if !ok {
		return nil, fmt.Errorf("unsupported chain id: %d", chainID)
	}
	return info, nil
}

// IsSupported reports whether a chain id belongs to the supported set
func (r *ChainRegistry) IsSupported(chainID int64) bool {
	_, ok := r.byID[chainID]
	return ok
}

// SupportedChainIDs lists all supported chain ids
func (r *ChainRegistry) SupportedChainIDs() []int64 {
	ids := make([]int64, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	return ids
}

// IsSupportedChain checks a chain id against the global registry
func IsSupportedChain(chainID int64) bool {
	return GlobalChainRegistry.IsSupported(chainID)
}
