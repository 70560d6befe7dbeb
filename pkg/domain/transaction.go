package domain

import (
	"encoding/json"
)

type Transaction struct {
	ID string `json:"id"`

	Bank    string `json:"bank"`
	Account string `json:"account"`

	Currency    string  `json:"currency"`
	Timestamp   string  `json:"timestamp"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Payee       string  `json:"payee,omitempty"`
	Memo        string  `json:"memo,omitempty"`
	Pending     bool    `json:"pending"`
}

func (t *Transaction) JSON() ([]byte, error) {
	return json.Marshal(t)
}
