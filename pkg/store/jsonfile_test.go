package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voidshard/sfin/pkg/domain"
)

func TestWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.json")
	jf := NewJSONFile(path)

	err := jf.Write(context.Background(), []*domain.Transaction{
		&domain.Transaction{ID: "1", Amount: -2.5},
		&domain.Transaction{ID: "2", Pending: true},
	})
	require.Nil(t, err)

	data, err := os.ReadFile(path)
	require.Nil(t, err)

	txns := []*domain.Transaction{}
	require.Nil(t, json.Unmarshal(data, &txns))

	assert.Len(t, txns, 2)
	assert.Equal(t, "1", txns[0].ID)
	assert.Equal(t, -2.5, txns[0].Amount)
	assert.True(t, txns[1].Pending)
}
