package vault

import "time"

type EncryptedTokens struct {
	AccessTokenEnc  string
	RefreshTokenEnc string
	ExpiresAt       time.Time
}

type Option func(v *Vault)

// WithClock replaces time.Now, used by tests to move around the refresh buffer.
func WithClock(clock func() time.Time) Option {
	return func(v *Vault) {
		v.clock = clock
	}
}

func WithRefreshBuffer(buffer time.Duration) Option {
	return func(v *Vault) {
		v.refreshBuffer = buffer
	}
}
