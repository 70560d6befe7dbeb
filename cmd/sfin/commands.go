package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/voidshard/sfin/pkg/logging"
	"github.com/voidshard/sfin/pkg/provider"
	"github.com/voidshard/sfin/pkg/store"
	"github.com/voidshard/sfin/pkg/vault"

	"go.uber.org/zap"
)

var (
	httpClient           = &http.Client{}
	stdout     io.Writer = os.Stdout
)

const logOutput = "stderr"

// globals holds options common to all commands
type globals struct {
	LogLevel string `name:"log-level" default:"info" env:"SFIN_LOG_LEVEL" help:"One of debug, info, warning, error."`
}

func (g *globals) client(token string) (*provider.SimpleFIN, *zap.Logger, error) {
	// stdout carries command output, logs go to stderr
	log, err := logging.New(g.LogLevel, logOutput)
	if err != nil {
		return nil, nil, err
	}

	opts := []provider.Option{provider.WithHTTPClient(httpClient), provider.WithLogger(log)}
	if token != "" {
		opts = append(opts, provider.WithBootstrapToken(token))
	}

	return provider.NewSimpleFIN(opts...), log, nil
}

type keyFlags struct {
	AccessKey  string `name:"access-key" env:"SFIN_ACCESS_KEY" help:"Access key, scheme//user:pass@host."`
	Keyfile    string `env:"SFIN_KEYFILE" help:"Read the access key from a keyfile written by claim."`
	Passphrase string `env:"SFIN_PASSPHRASE" help:"Passphrase of the keyfile."`
	Token      string `env:"SFIN_TOKEN" help:"Setup token, claimed if no usable access key is given."`
}

// accessKey returns the key given directly, or the one in the keyfile. An
// empty key is fine if there's a token, it will be claimed instead.
func (k *keyFlags) accessKey() (string, error) {
	if k.AccessKey != "" {
		return k.AccessKey, nil
	}
	if k.Keyfile != "" {
		return vault.Read(k.Keyfile, k.Passphrase)
	}
	if k.Token != "" {
		return "", nil
	}
	return "", fmt.Errorf("one of --access-key, --keyfile or --token is required")
}

type rangeFlags struct {
	Start string `help:"First day to fetch (YYYY-MM-DD, local time)."`
	End   string `help:"Day to stop fetching at, exclusive (YYYY-MM-DD, local time)."`
}

func (r *rangeFlags) bounds() (time.Time, time.Time, error) {
	start, err := parseDate(r.Start)
	if err != nil {
		return start, start, fmt.Errorf("invalid --start: %w", err)
	}
	end, err := parseDate(r.End)
	if err != nil {
		return start, end, fmt.Errorf("invalid --end: %w", err)
	}
	return start, end, nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.ParseInLocation("2006-01-02", s, time.Local)
}

type claimCmd struct {
	Token      string `required:"" env:"SFIN_TOKEN" help:"Base64 setup token from the bridge."`
	Keyfile    string `env:"SFIN_KEYFILE" help:"Seal the access key into this file instead of printing it."`
	Passphrase string `env:"SFIN_PASSPHRASE" help:"Passphrase for the keyfile."`
}

func (c *claimCmd) Run(g *globals) error {
	sf, log, err := g.client("")
	if err != nil {
		return err
	}
	defer log.Sync()

	key, err := sf.AccessKey(context.Background(), c.Token)
	if err != nil {
		return err
	}

	if c.Keyfile == "" {
		_, err = fmt.Fprintln(stdout, key)
		return err
	}

	err = vault.Write(c.Keyfile, key, c.Passphrase)
	if err != nil {
		return err
	}
	log.Info("access key sealed", zap.String("keyfile", c.Keyfile))
	return nil
}

type accountsCmd struct {
	Key   keyFlags   `embed:""`
	Range rangeFlags `embed:""`
}

func (c *accountsCmd) Run(g *globals) error {
	key, err := c.Key.accessKey()
	if err != nil {
		return err
	}
	start, end, err := c.Range.bounds()
	if err != nil {
		return err
	}

	sf, log, err := g.client(c.Key.Token)
	if err != nil {
		return err
	}
	defer log.Sync()

	doc, err := sf.Accounts(context.Background(), key, start, end)
	if err != nil {
		return err
	}

	return printJSON(doc)
}

type transactionsCmd struct {
	Key   keyFlags   `embed:""`
	Range rangeFlags `embed:""`
	Out   string     `env:"SFIN_OUT" help:"Write flattened transactions to [jsonfile:/path/file.json es8:http://myelasticsearch:9200] instead of printing the response."`
}

func (c *transactionsCmd) Run(g *globals) error {
	key, err := c.Key.accessKey()
	if err != nil {
		return err
	}
	start, end, err := c.Range.bounds()
	if err != nil {
		return err
	}

	sf, log, err := g.client(c.Key.Token)
	if err != nil {
		return err
	}
	defer log.Sync()

	if c.Out == "" {
		doc, err := sf.Transactions(context.Background(), key, start, end)
		if err != nil {
			return err
		}
		return printJSON(doc)
	}

	storage, err := store.Open(c.Out, log)
	if err != nil {
		return err
	}

	txns, err := sf.Ledger(context.Background(), key, start, end)
	if err != nil {
		return err
	}

	log.Info("writing transactions", zap.String("out", c.Out), zap.Int("count", len(txns)))
	return storage.Write(context.Background(), txns)
}

func printJSON(doc interface{}) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
