package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Balances and amounts go over the wire as JSON numbers, like the
	// frontend has always received them.
	decimal.MarshalJSONWithoutQuotes = true
}

type User struct {
	ID           string          `json:"id"`
	Phone        string          `json:"phone"`
	PasswordHash string          `json:"-"`
	Name         string          `json:"name"`
	Balance      decimal.Decimal `json:"balance"`
	BankInfo     BankInfo        `json:"bankInfo"`
	CryptoWallet string          `json:"cryptoWallet"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

type BankInfo struct {
	Name string `json:"name"`
	AC   string `json:"ac"`
	IFSC string `json:"ifsc"`
}

type UserRole string

const (
	RoleAdmin UserRole = "admin"
	RoleUser  UserRole = "user"
)

type RegisterRequest struct {
	Phone    string `json:"phone" validate:"required,len=10,numeric"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	Phone    string `json:"phone" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AdminLoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type ProfileRequest struct {
	UserID       string    `json:"userId"`
	BankInfo     *BankInfo `json:"bankInfo,omitempty"`
	CryptoWallet *string   `json:"cryptoWallet,omitempty"`
}

type AuthResponse struct {
	Success bool   `json:"success"`
	User    *User  `json:"user,omitempty"`
	Token   string `json:"token,omitempty"`
}
