package provider

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/voidshard/sfin/pkg/domain"
)

type accountSet struct {
	Errors   []string    `json:"errors"`
	Accounts []sfAccount `json:"accounts"`
}

type sfAccount struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Currency     string          `json:"currency"`
	Org          sfOrg           `json:"org"`
	Transactions []sfTransaction `json:"transactions"`
}

type sfOrg struct {
	Domain string `json:"domain"`
	Name   string `json:"name"`
}

type sfTransaction struct {
	ID          string `json:"id"`
	Posted      int64  `json:"posted"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	Payee       string `json:"payee"`
	Memo        string `json:"memo"`
	Pending     bool   `json:"pending"`
}

func parseSimpleFINAccounts(data []byte) (*accountSet, error) {
	// we only parse a small subset of the fields
	set := &accountSet{}
	err := json.Unmarshal(data, set)
	return set, err
}

func (s *accountSet) transactions() ([]*domain.Transaction, error) {
	txns := []*domain.Transaction{}
	for _, acc := range s.Accounts {
		bank := acc.Org.Name
		if bank == "" {
			bank = acc.Org.Domain
		}

		for _, t := range acc.Transactions {
			amount, err := strconv.ParseFloat(t.Amount, 64)
			if err != nil {
				return nil, fmt.Errorf("transaction %s has invalid amount %q: %w", t.ID, t.Amount, err)
			}

			txns = append(txns, &domain.Transaction{
				ID:          t.ID,
				Bank:        bank,
				Account:     acc.Name,
				Currency:    acc.Currency,
				Timestamp:   time.Unix(t.Posted, 0).UTC().Format(time.RFC3339),
				Description: t.Description,
				Amount:      amount,
				Payee:       t.Payee,
				Memo:        t.Memo,
				Pending:     t.Pending,
			})
		}
	}

	return txns, nil
}
