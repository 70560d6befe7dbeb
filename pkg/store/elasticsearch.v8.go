package store

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/voidshard/sfin/pkg/domain"

	"github.com/cenkalti/backoff/v4"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esutil"
	"go.uber.org/zap"
)

// from https://github.com/elastic/go-elasticsearch/blob/master/_examples/bulk/indexer.go

const (
	esIndex = "sfin-transactions"
	esFlush = 2048

	envEsAddr = "ELASTICSEARCH_SERVICE_HOST"
	envEsPort = "ELASTICSEARCH_SERVICE_PORT"
)

type ElasticsearchV8 struct {
	addresses []string
	log       *zap.Logger
}

func NewElasticsearchV8(log *zap.Logger, urls ...string) Store {
	if len(urls) == 0 {
		address := os.Getenv(envEsAddr)
		port := os.Getenv(envEsPort)
		if port == "" {
			port = "9200" // default port
		}
		if address == "" {
			address = "localhost" // default address
		}
		urls = []string{fmt.Sprintf("http://%s:%s", address, port)}
	}

	return &ElasticsearchV8{addresses: urls, log: log}
}

func (e *ElasticsearchV8) Write(ctx context.Context, txns []*domain.Transaction) error {
	retryBackoff := backoff.NewExponentialBackOff()

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: e.addresses,

		// Retry on 429 TooManyRequests statuses
		RetryOnStatus: []int{502, 503, 504, 429},

		RetryBackoff: func(i int) time.Duration {
			if i == 1 {
				retryBackoff.Reset()
			}
			return retryBackoff.NextBackOff()
		},

		MaxRetries: 5,
	})
	if err != nil {
		return err
	}

	bi, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Index:         esIndex,
		FlushBytes:    esFlush,
		Client:        es,
		NumWorkers:    4,
		FlushInterval: 10 * time.Second,
	})
	if err != nil {
		return err
	}

	res, err := es.Indices.Create(esIndex, es.Indices.Create.WithContext(ctx))
	if err != nil {
		e.log.Warn("attempted to make index", zap.String("index", esIndex), zap.Error(err))
	} else {
		res.Body.Close()
	}

	err = e.add(ctx, bi, txns)
	if err != nil {
		// stop the indexer's workers before bailing out
		bi.Close(context.Background())
		return err
	}

	err = bi.Close(ctx)
	if err != nil {
		return err
	}

	biStats := bi.Stats()
	if biStats.NumFailed > 0 {
		e.log.Error("indexed documents with errors", zap.Uint64("indexed", biStats.NumFlushed), zap.Uint64("failed", biStats.NumFailed))
		return fmt.Errorf("failed indexing %d docs", biStats.NumFailed)
	}

	e.log.Info("indexed documents", zap.Uint64("indexed", biStats.NumFlushed))
	return nil
}

func (e *ElasticsearchV8) add(ctx context.Context, bi esutil.BulkIndexer, txns []*domain.Transaction) error {
	for _, t := range txns {
		data, err := t.JSON()
		if err != nil {
			return err
		}

		err = bi.Add(
			ctx,
			esutil.BulkIndexerItem{
				Action: "index",

				// the bridge's transaction id, so re-fetching a month overwrites
				// rather than duplicates
				DocumentID: t.ID,

				Body: bytes.NewReader(data),

				OnFailure: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
					if err != nil {
						e.log.Error("failed to index transaction", zap.String("id", item.DocumentID), zap.Error(err))
					} else {
						e.log.Error(
							"failed to index transaction",
							zap.String("id", item.DocumentID),
							zap.String("type", res.Error.Type),
							zap.String("reason", res.Error.Reason),
						)
					}
				},
			},
		)

		if err != nil {
			return err
		}
	}

	return nil
}
