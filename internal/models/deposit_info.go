package models

import "time"

type DepositInfo struct {
	UPI       string    `json:"upi"`
	Bank      BankInfo  `json:"bank"`
	Crypto    string    `json:"crypto"`
	UpdatedAt time.Time `json:"-"`
}

// DepositInfoUpdate carries only the fields an admin wants to change.
type DepositInfoUpdate struct {
	UPI    string    `json:"upi"`
	Bank   *BankInfo `json:"bank"`
	Crypto string    `json:"crypto"`
}

// Apply copies the non-empty fields of u onto info.
func (u DepositInfoUpdate) Apply(info *DepositInfo) {
	if u.UPI != "" {
		info.UPI = u.UPI
	}
	if u.Bank != nil {
		info.Bank = *u.Bank
	}
	if u.Crypto != "" {
		info.Crypto = u.Crypto
	}
}
