package provider

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/voidshard/sfin/pkg/domain"

	"go.uber.org/zap"
)

// https://www.simplefin.org/protocol.html

// check it meets the interface
var _ Provider = &SimpleFIN{}

// Option configures a SimpleFIN client.
type Option func(*SimpleFIN)

// WithHTTPClient sets the client used for all requests. Any timeout is the
// client's business; by default there is none.
func WithHTTPClient(c *http.Client) Option {
	return func(s *SimpleFIN) { s.client = c }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *SimpleFIN) { s.log = l }
}

// WithBootstrapToken lets Resolve claim a fresh access key (once) when the
// one it's handed doesn't parse.
func WithBootstrapToken(token string) Option {
	return func(s *SimpleFIN) { s.token = token }
}

// WithClock overrides time.Now, used for the default transaction range.
func WithClock(now func() time.Time) Option {
	return func(s *SimpleFIN) { s.now = now }
}

func NewSimpleFIN(opts ...Option) *SimpleFIN {
	s := &SimpleFIN{
		client: &http.Client{},
		log:    zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type SimpleFIN struct {
	client *http.Client
	log    *zap.Logger
	token  string
	now    func() time.Time
}

// AccessKey decodes a base64 setup token into a claim URL and exchanges it
// for an access key. Tokens can only be claimed once.
func (s *SimpleFIN) AccessKey(ctx context.Context, base64Token string) (string, error) {
	s.log.Info("requesting access key")

	claim, err := base64.StdEncoding.DecodeString(strings.TrimSpace(base64Token))
	if err != nil {
		s.log.Error("error decoding token", zap.Error(err))
		return "", fmt.Errorf("failed to decode token: %w", err)
	}

	body, err := s.doPost(ctx, string(claim))
	if err != nil {
		s.log.Error("request error", zap.Error(err))
		return "", err
	}

	return string(body), nil
}

// Resolve parses an access key. If that fails and a bootstrap token was
// given, a new key is claimed and parsed, with no further retries.
func (s *SimpleFIN) Resolve(ctx context.Context, accessKey string) (*domain.Credential, error) {
	cred, err := domain.ParseAccessKey(accessKey)
	if err == nil {
		s.log.Debug("parsed access key", zap.String("base_url", cred.BaseURL), zap.String("username", cred.Username))
		return cred, nil
	}
	if s.token == "" {
		s.log.Error("error parsing access key", zap.Error(err))
		return nil, err
	}

	// with a token to claim, an unusable key is expected rather than fatal
	s.log.Warn("unusable access key, claiming a new one", zap.Error(err))
	s.log.Info("retrying to fetch access key")
	fresh, err := s.AccessKey(ctx, s.token)
	if err != nil {
		s.log.Error("error fetching access key on retry", zap.Error(err))
		return nil, err
	}

	cred, err = domain.ParseAccessKey(fresh)
	if err != nil {
		s.log.Error("error parsing access key on retry", zap.Error(err))
		return nil, err
	}
	return cred, nil
}

// Accounts fetches /accounts, optionally bounded by start & end, and returns
// the decoded JSON as is.
func (s *SimpleFIN) Accounts(ctx context.Context, accessKey string, start, end time.Time) (interface{}, error) {
	body, err := s.fetchAccounts(ctx, accessKey, start, end)
	if err != nil {
		return nil, err
	}

	var doc interface{}
	err = json.Unmarshal(body, &doc)
	if err != nil {
		s.log.Error("error decoding accounts", zap.Error(err))
		return nil, fmt.Errorf("failed to decode accounts: %w", err)
	}

	return doc, nil
}

// Transactions is Accounts with the range defaulting to the current month.
func (s *SimpleFIN) Transactions(ctx context.Context, accessKey string, start, end time.Time) (interface{}, error) {
	start, end = s.transactionRange(start, end)
	return s.Accounts(ctx, accessKey, start, end)
}

// Ledger fetches transactions like Transactions and flattens them into one
// list across all accounts.
func (s *SimpleFIN) Ledger(ctx context.Context, accessKey string, start, end time.Time) ([]*domain.Transaction, error) {
	start, end = s.transactionRange(start, end)

	body, err := s.fetchAccounts(ctx, accessKey, start, end)
	if err != nil {
		return nil, err
	}

	set, err := parseSimpleFINAccounts(body)
	if err != nil {
		s.log.Error("error decoding accounts", zap.Error(err))
		return nil, fmt.Errorf("failed to decode accounts: %w", err)
	}

	// the bridge reports per institution problems here, alongside whatever
	// data it did manage to collect
	for _, msg := range set.Errors {
		s.log.Warn("bridge reported error", zap.String("error", msg))
	}

	txns, err := set.transactions()
	if err != nil {
		s.log.Error("error reading transactions", zap.Error(err))
		return nil, err
	}

	s.log.Info("got transactions", zap.Int("accounts", len(set.Accounts)), zap.Int("transactions", len(txns)))
	return txns, nil
}

func (s *SimpleFIN) transactionRange(start, end time.Time) (time.Time, time.Time) {
	s.log.Info("retrieving transactions")
	start, end = monthBounds(s.now(), start, end)
	s.log.Info("transaction range", zap.String("start", date(start)), zap.String("end", date(end)))
	return start, end
}

func (s *SimpleFIN) fetchAccounts(ctx context.Context, accessKey string, start, end time.Time) ([]byte, error) {
	s.log.Info("fetching accounts")

	cred, err := s.Resolve(ctx, accessKey)
	if err != nil {
		return nil, err
	}

	body, err := s.doGet(ctx, cred.BaseURL+"/accounts"+queryString(start, end), cred)
	if err != nil {
		s.log.Error("error fetching accounts", zap.Error(err))
		return nil, err
	}

	return body, nil
}

func (s *SimpleFIN) doGet(ctx context.Context, uri string, cred *domain.Credential) ([]byte, error) {
	return s.doRequest(ctx, http.MethodGet, uri, cred)
}

func (s *SimpleFIN) doPost(ctx context.Context, uri string) ([]byte, error) {
	return s.doRequest(ctx, http.MethodPost, uri, nil)
}

func (s *SimpleFIN) doRequest(ctx context.Context, method, uri string, cred *domain.Credential) ([]byte, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}
	s.log.Debug("request", zap.String("method", method), zap.String("host", u.Host), zap.String("path", u.Path))

	req, err := http.NewRequestWithContext(ctx, method, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.ContentLength = 0

	if cred != nil {
		req.Header.Set("Authorization", "Basic "+cred.BasicAuth())
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", method, err)
	}
	defer resp.Body.Close()

	// read to EOF; bodies can arrive in any number of chunks
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	status := resp.StatusCode
	if status >= 200 && status < 400 {
		return body, nil
	}

	// 403 here means a bad access key or an already claimed token
	return nil, fmt.Errorf("got status code: %d (%s)", status, string(body))
}
