package ledger

import (
	"fmt"
	"os"
	"strings"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"
	"gopkg.in/yaml.v3"
)

// Networks models the structure of configs/networks.yaml.
type Networks struct {
	Networks map[string]Network `yaml:"networks"`
}

// Network describes one Hedera network the toolkit can talk to.
type Network struct {
	// Nodes maps consensus node address to node account id. When empty the
	// SDK's built-in address book for the network name is used.
	Nodes map[string]string `yaml:"nodes"`
	// SigningNodes are the node accounts placed on transactions frozen for
	// external signing.
	SigningNodes []string `yaml:"signing_nodes"`
	MirrorURL    string   `yaml:"mirror_url"`
	// ERC20Factory is the contract id of the ERC-20 factory used by the EVM tools.
	ERC20Factory string `yaml:"erc20_factory"`
	Description  string `yaml:"description"`
}

// DefaultNetworks returns the public Hedera networks.
func DefaultNetworks() Networks {
	return Networks{Networks: map[string]Network{
		"mainnet": {
			SigningNodes: []string{"0.0.3"},
			MirrorURL:    "https://mainnet-public.mirrornode.hedera.com/api/v1",
			Description:  "Hedera mainnet",
		},
		"testnet": {
			SigningNodes: []string{"0.0.3"},
			MirrorURL:    "https://testnet.mirrornode.hedera.com/api/v1",
			ERC20Factory: "0.0.6471814",
			Description:  "Hedera testnet",
		},
		"previewnet": {
			SigningNodes: []string{"0.0.3"},
			MirrorURL:    "https://previewnet.mirrornode.hedera.com/api/v1",
			Description:  "Hedera previewnet",
		},
	}}
}

// LoadNetworks parses the YAML network definitions and layers them over the
// defaults. An empty path yields the defaults.
func LoadNetworks(path string) (Networks, error) {
	defs := DefaultNetworks()
	if strings.TrimSpace(path) == "" {
		return defs, nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return Networks{}, fmt.Errorf("read network definitions: %w", err)
	}
	var loaded Networks
	if err := yaml.Unmarshal(content, &loaded); err != nil {
		return Networks{}, fmt.Errorf("parse network definitions: %w", err)
	}
	for name, def := range loaded.Networks {
		base := defs.Networks[name]
		if len(def.Nodes) == 0 {
			def.Nodes = base.Nodes
		}
		if len(def.SigningNodes) == 0 {
			def.SigningNodes = base.SigningNodes
		}
		if def.MirrorURL == "" {
			def.MirrorURL = base.MirrorURL
		}
		if def.ERC20Factory == "" {
			def.ERC20Factory = base.ERC20Factory
		}
		defs.Networks[name] = def
	}
	return defs, nil
}

// Lookup returns the named network.
func (n Networks) Lookup(name string) (Network, error) {
	def, ok := n.Networks[strings.ToLower(name)]
	if !ok {
		return Network{}, fmt.Errorf("unknown network %q", name)
	}
	return def, nil
}

// SigningNodeIDs parses SigningNodes, defaulting to 0.0.3.
func (n Network) SigningNodeIDs() ([]hedera.AccountID, error) {
	raw := n.SigningNodes
	if len(raw) == 0 {
		raw = []string{"0.0.3"}
	}
	ids := make([]hedera.AccountID, 0, len(raw))
	for _, s := range raw {
		id, err := hedera.AccountIDFromString(s)
		if err != nil {
			return nil, fmt.Errorf("signing node %q: %w", s, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
