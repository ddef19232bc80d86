package common

import "time"

// TokenSet is the result of an OAuth code or refresh exchange.
type TokenSet struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// Progress is a delta reported by a running batch. Succeeded counts inserted
// rows for ingestion, links for matching and parsed items for enrichment.
type Progress struct {
	Processed  int
	Succeeded  int
	Duplicates int
	Failed     int
}
