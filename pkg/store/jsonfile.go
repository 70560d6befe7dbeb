package store

import (
	"context"
	"encoding/json"
	"os"

	"github.com/voidshard/sfin/pkg/domain"
)

type JSONFile struct {
	filename string
}

func NewJSONFile(filename string) Store {
	return &JSONFile{filename: filename}
}

func (f *JSONFile) Write(_ context.Context, txns []*domain.Transaction) error {
	data, err := json.MarshalIndent(txns, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(f.filename, data, 0644)
}
