package api

import (
	"github.com/trybenetwork/trybe/ledger"
	"github.com/trybenetwork/trybe/presale"
	"github.com/trybenetwork/trybe/prices"
	"github.com/trybenetwork/trybe/registry"
	"github.com/trybenetwork/trybe/staking"
	"github.com/trybenetwork/trybe/trybe"
)

// Assets cross the wire in their canonical string form, e.g.
// "100.0000 TRYBE".

type CreateTokenRequest struct {
	Issuer    string `json:"issuer"`
	MaxSupply string `json:"maxSupply"`
}

type TokenResponse struct {
	Symbol    string `json:"symbol"`
	Supply    string `json:"supply"`
	MaxSupply string `json:"maxSupply"`
	Issuer    string `json:"issuer"`
}

func convertToken(symbol trybe.Symbol, record *ledger.SupplyRecord) *TokenResponse {
	return &TokenResponse{
		Symbol:    symbol.Code,
		Supply:    record.Supply.String(),
		MaxSupply: record.MaxSupply.String(),
		Issuer:    string(record.Issuer),
	}
}

type RegisterAccountRequest struct {
	Name string `json:"name"`
}

type BalanceResponse struct {
	Account string `json:"account"`
	Balance string `json:"balance"`
}

type IssueRequest struct {
	To       string `json:"to"`
	Quantity string `json:"quantity"`
	Memo     string `json:"memo"`
}

type TransferRequest struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Quantity string `json:"quantity"`
	Memo     string `json:"memo"`
}

type StakeRequest struct {
	From                string `json:"from"`
	To                  string `json:"to"`
	Quantity            string `json:"quantity"`
	AttributeToDelegate bool   `json:"attributeToDelegate"`
}

type UnstakeRequest struct {
	Owner    string `json:"owner"`
	Receiver string `json:"receiver"`
	Quantity string `json:"quantity"`
}

type StakeResponse struct {
	Owner     string `json:"owner"`
	Staked    string `json:"staked"`
	Aggregate string `json:"aggregate"`
}

type RefundResponse struct {
	Owner       string `json:"owner"`
	Amount      string `json:"amount"`
	RequestTime uint64 `json:"requestTime"`
}

func convertRefund(owner trybe.Name, record *staking.RefundRecord) *RefundResponse {
	return &RefundResponse{
		Owner:       string(owner),
		Amount:      record.Amount.String(),
		RequestTime: record.RequestTime,
	}
}

type RefundClaimRequest struct {
	Settle bool `json:"settle"`
}

type RegisterFounderRequest struct {
	Founder string `json:"founder"`
}

type SetPricesRequest struct {
	Symbols   []string  `json:"symbols"`
	EOSPrices []float64 `json:"eosPrices"`
	USDPrices []float64 `json:"usdPrices"`
}

type PriceResponse struct {
	Symbol   string  `json:"symbol"`
	EOSPrice float64 `json:"eosPrice"`
	USDPrice float64 `json:"usdPrice"`
}

func convertPrice(record *prices.Record) *PriceResponse {
	return &PriceResponse{
		Symbol:   record.Symbol.Code,
		EOSPrice: record.EOSPrice,
		USDPrice: record.USDPrice,
	}
}

type SetupPresaleRequest struct {
	Cap string `json:"cap"`
}

type DepositRequest struct {
	From     string `json:"from"`
	Quantity string `json:"quantity"`
	Memo     string `json:"memo"`
}

type PurchaseResponse struct {
	Owner        string `json:"owner"`
	EOSAmount    string `json:"eosAmount"`
	TRYBEAmount  string `json:"trybeAmount"`
	PurchaseDate uint64 `json:"purchaseDate"`
}

func convertPurchase(record *presale.PurchaseRecord) *PurchaseResponse {
	return &PurchaseResponse{
		Owner:        string(record.Owner),
		EOSAmount:    record.EOSAmount.String(),
		TRYBEAmount:  record.TRYBEAmount.String(),
		PurchaseDate: record.PurchaseDate,
	}
}

type PresaleStatsResponse struct {
	TotalAvailable string `json:"totalAvailable"`
	TotalSold      string `json:"totalSold"`
	Issuer         string `json:"issuer"`
}

func convertPresaleStats(record *presale.StatsRecord) *PresaleStatsResponse {
	return &PresaleStatsResponse{
		TotalAvailable: record.TotalAvailable.String(),
		TotalSold:      record.TotalSold.String(),
		Issuer:         string(record.Issuer),
	}
}

type SubscribeRequest struct {
	Subscriber string `json:"subscriber"`
	Status     uint8  `json:"status"`
}

type ConfirmRequest struct {
	Status uint8 `json:"status"`
}

type SubscriptionResponse struct {
	Account   string `json:"account"`
	Status    uint8  `json:"status"`
	Accepted  bool   `json:"accepted"`
	StartTime uint64 `json:"startTime"`
}

func convertSubscription(record *registry.SubscriptionRecord) *SubscriptionResponse {
	return &SubscriptionResponse{
		Account:   string(record.Account),
		Status:    record.Status,
		Accepted:  record.Accepted,
		StartTime: record.StartTime,
	}
}
