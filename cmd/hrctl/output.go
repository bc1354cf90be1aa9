package main

import (
	"encoding/json"
	"fmt"
	"strconv"
)

func (c *cli) print(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("hrctl: encode output: %w", err)
	}
	return nil
}

func parseID(raw, name string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("hrctl: %s must be a positive integer, got %q", name, raw)
	}
	return id, nil
}
