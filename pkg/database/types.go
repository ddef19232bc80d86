package database

type SourceType string

const (
	SourceBankFeed          = SourceType("bank-feed")
	SourceMarketplaceOrder  = SourceType("marketplace-order")
	SourceMarketplaceReturn = SourceType("marketplace-return")
	SourceBusinessOrder     = SourceType("business-order")
	SourceAppStorePurchase  = SourceType("app-store-purchase")
	SourceReceiptEmail      = SourceType("receipt-email")
)

// EnrichmentSources are the source types that can be linked to a canonical transaction.
var EnrichmentSources = []SourceType{
	SourceMarketplaceOrder,
	SourceMarketplaceReturn,
	SourceBusinessOrder,
	SourceAppStorePurchase,
	SourceReceiptEmail,
}

func (s SourceType) Valid() bool {
	switch s {
	case SourceBankFeed, SourceMarketplaceOrder, SourceMarketplaceReturn,
		SourceBusinessOrder, SourceAppStorePurchase, SourceReceiptEmail:
		return true
	}

	return false
}

type Direction string

const (
	DirectionDebit  = Direction("debit")
	DirectionCredit = Direction("credit")
)

type PreEnrichmentStatus string

const (
	PreEnrichmentNone              = PreEnrichmentStatus("none")
	PreEnrichmentMatched           = PreEnrichmentStatus("matched")
	PreEnrichmentMarketplace       = PreEnrichmentStatus("marketplace")
	PreEnrichmentMarketplaceReturn = PreEnrichmentStatus("marketplace-return")
	PreEnrichmentAppStore          = PreEnrichmentStatus("app-store")
)

// PreEnrichmentFor is the status tag a transaction receives once it holds a
// primary link of the given source type.
func PreEnrichmentFor(source SourceType) PreEnrichmentStatus {
	switch source {
	case SourceMarketplaceOrder:
		return PreEnrichmentMarketplace
	case SourceMarketplaceReturn:
		return PreEnrichmentMarketplaceReturn
	case SourceAppStorePurchase:
		return PreEnrichmentAppStore
	default:
		return PreEnrichmentMatched
	}
}

type ConnectionStatus string

const (
	ConnectionActive                = ConnectionStatus("active")
	ConnectionExpired               = ConnectionStatus("expired")
	ConnectionAuthorizationRequired = ConnectionStatus("authorization_required")
	ConnectionInactive              = ConnectionStatus("inactive")
	ConnectionRevoked               = ConnectionStatus("revoked")
	ConnectionError                 = ConnectionStatus("error")
)

// Usable reports whether a refresh exchange may still be attempted.
func (s ConnectionStatus) Usable() bool {
	switch s {
	case ConnectionActive, ConnectionExpired, ConnectionError:
		return true
	}

	return false
}

type ParsingStatus string

const (
	ParsingPending     = ParsingStatus("pending")
	ParsingParsed      = ParsingStatus("parsed")
	ParsingFailed      = ParsingStatus("failed")
	ParsingUnparseable = ParsingStatus("unparseable")
)

type EnrichmentStatus string

const (
	EnrichmentPending   = EnrichmentStatus("pending")
	EnrichmentDone      = EnrichmentStatus("enriched")
	EnrichmentFailed    = EnrichmentStatus("failed")
	EnrichmentAbandoned = EnrichmentStatus("abandoned")
)

type MatchMethod string

const (
	MatchExactAmount    = MatchMethod("exact_amount")
	MatchTolerantAmount = MatchMethod("tolerant_amount")
	MatchManual         = MatchMethod("manual")
)
