package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/voidshard/sfin/pkg/domain"

	"go.uber.org/zap"
)

type Store interface {
	Write(context.Context, []*domain.Transaction) error
}

// Open returns the store described by out, one of
// [jsonfile:/path/to/file.json] or [es8:http://elasticsearch:9200].
func Open(out string, log *zap.Logger) (Store, error) {
	bits := strings.SplitN(out, ":", 2)
	if len(bits) != 2 || bits[1] == "" {
		return nil, fmt.Errorf("invalid out path %q, expected [jsonfile:/path/to/file.json] or [es8:http://elasticsearch:9200]", out)
	}

	switch bits[0] {
	case "es8":
		return NewElasticsearchV8(log, bits[1]), nil
	case "jsonfile":
		return NewJSONFile(bits[1]), nil
	}

	return nil, fmt.Errorf("unknown store %q", bits[0])
}
