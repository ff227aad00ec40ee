package fixture

import (
	"encoding/json"
	"fmt"
	"os"
)

// Dataset is the content served by the fixture API
type Dataset struct {
	Locations       []Location `json:"locations"`
	AdSpends        []Record   `json:"ad_spends"`
	BusinessCryptos []Record   `json:"business_cryptos"`
}

// Location is served as-is by /ad-locations/
type Location struct {
	ID   json.RawMessage `json:"id"`
	Name string          `json:"name"`
}

// Record is one ad spend or business crypto entry.
// Amount and CryptoAmount are kept raw so malformed values are served verbatim.
type Record struct {
	ID           json.RawMessage `json:"id"`
	Amount       json.RawMessage `json:"amount,omitempty"`
	CryptoAmount json.RawMessage `json:"crypto_amount,omitempty"`
	Date         string          `json:"date"`
	Location     string          `json:"location"`
}

// LoadDataset reads a dataset from a JSON file
func LoadDataset(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture data: %w", err)
	}

	var ds Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("failed to parse fixture data %s: %w", path, err)
	}

	return &ds, nil
}
