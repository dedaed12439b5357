package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// generateSampleRates writes a shipping rate document matching what the API
// expects from SHIPPING_RATES_PATH, for local development.
func main() {
	dataDir := "data/shipping"

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	rates := map[string]float64{
		"free":    0,
		"express": 15,
		"sameday": 40,
	}

	path := filepath.Join(dataDir, "rates.json")
	data, err := json.MarshalIndent(rates, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode rates: %v", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		log.Fatalf("Failed to write %s: %v", path, err)
	}

	fmt.Printf("Wrote %d shipping methods to %s\n", len(rates), path)
}
