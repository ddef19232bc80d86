package truelayer

import "encoding/json"

type Account struct {
	AccountID   string `json:"account_id"`
	AccountType string `json:"account_type"`
	DisplayName string `json:"display_name"`
	Currency    string `json:"currency"`
}

type GenericResponse[T any] struct {
	Results []T    `json:"results"`
	Status  string `json:"status"`
}

// RawTransactions keeps every transaction as received, shape coercion
// happens in the normalizer.
type RawTransactions = GenericResponse[json.RawMessage]

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	Scope        string `json:"scope"`
}

type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}
