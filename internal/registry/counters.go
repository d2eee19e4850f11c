package registry

import (
	"fmt"
	"strconv"
)

// getCount reads a decimal counter, treating a missing key as zero.
func getCount(tx *txn, key string) (uint64, error) {
	raw, ok, err := tx.get(key)
	if err != nil {
		return 0, err
	}
	if !ok || len(raw) == 0 {
		return 0, nil
	}
	n, err := strconv.ParseUint(string(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("counter %s: %w", key, err)
	}
	return n, nil
}

func setCount(tx *txn, key string, n uint64) {
	tx.set(key, []byte(strconv.FormatUint(n, 10)))
}

func incCount(tx *txn, key string) error {
	n, err := getCount(tx, key)
	if err != nil {
		return err
	}
	setCount(tx, key, n+1)
	return nil
}
