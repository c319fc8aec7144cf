package cmd

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"vault/domain"

	"gopkg.in/yaml.v3"
)

func printRecord(record *domain.Record) error {
	fmt.Printf("✅ %v recorded [id: %v]\n", record.Kind, record.ID)
	return printYaml(record)
}

func printYaml(value interface{}) error {
	encoder := yaml.NewEncoder(os.Stdout)
	encoder.SetIndent(2)
	if err := encoder.Encode(value); err != nil {
		return err
	}
	return encoder.Close()
}

// parseAux reads the per-strategy auxiliary payloads, given as hex strings in
// strategy order. An empty string leaves the slot empty.
func parseAux(values []string) ([][]byte, error) {
	if len(values) == 0 {
		return nil, nil
	}
	aux := make([][]byte, len(values))
	for i, value := range values {
		value = strings.TrimPrefix(strings.TrimSpace(value), "0x")
		if value == "" {
			continue
		}
		data, err := hex.DecodeString(value)
		if err != nil {
			return nil, fmt.Errorf("aux #%d: %w", i, err)
		}
		aux[i] = data
	}
	return aux, nil
}
