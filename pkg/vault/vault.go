package vault

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	"github.com/skynet2/finance-reconciler/pkg/common"
	"github.com/skynet2/finance-reconciler/pkg/database"
)

const DefaultRefreshBuffer = 5 * time.Minute

type Vault struct {
	repo          Repo
	exchanger     Exchanger
	encryptor     *Encryptor
	refreshBuffer time.Duration
	clock         func() time.Time
	locks         sync.Map
}

func NewVault(
	repo Repo,
	exchanger Exchanger,
	encryptor *Encryptor,
	opts ...Option,
) *Vault {
	v := &Vault{
		repo:          repo,
		exchanger:     exchanger,
		encryptor:     encryptor,
		refreshBuffer: DefaultRefreshBuffer,
		clock:         time.Now,
	}

	for _, opt := range opts {
		opt(v)
	}

	return v
}

// GetValidAccessToken returns a decrypted access token that stays valid for
// at least the refresh buffer, refreshing it first when needed. At most one
// refresh exchange runs per connection at a time.
func (v *Vault) GetValidAccessToken(ctx context.Context, connectionID string) (string, error) {
	conn, err := v.loadUsable(ctx, connectionID)
	if err != nil {
		return "", err
	}

	if !v.needsRefresh(conn) {
		return v.encryptor.DecryptString(conn.AccessTokenEnc)
	}

	mu := v.lockFor(connectionID)
	mu.Lock()
	defer mu.Unlock()

	// somebody else may have refreshed while we were waiting on the lock
	conn, err = v.loadUsable(ctx, connectionID)
	if err != nil {
		return "", err
	}

	if !v.needsRefresh(conn) {
		return v.encryptor.DecryptString(conn.AccessTokenEnc)
	}

	return v.refresh(ctx, conn)
}

func (v *Vault) refresh(ctx context.Context, conn *database.Connection) (string, error) {
	lg := zerolog.Ctx(ctx).With().Str("connection_id", conn.ID).Logger()

	refreshToken, err := v.encryptor.DecryptString(conn.RefreshTokenEnc)
	if err != nil {
		return "", errors.Wrap(err, "can not decrypt refresh token")
	}

	tokens, err := v.exchanger.RefreshToken(ctx, refreshToken)
	if err != nil {
		v.audit(ctx, conn.ID, database.AuditTokenRefreshFailed)

		if errors.Is(err, common.ErrAuthExpired) {
			lg.Warn().Str("event", "token_refresh").Msg("refresh token rejected, re-authorization required")

			if statusErr := v.repo.UpdateStatus(
				ctx,
				conn.ID,
				database.ConnectionAuthorizationRequired,
				common.UserMessage(err),
			); statusErr != nil {
				return "", errors.Join(err, statusErr)
			}

			return "", err
		}

		lg.Err(err).Str("event", "token_refresh").Msg("refresh exchange failed")

		if !errors.Is(err, common.ErrTransientProvider) {
			err = errors.Mark(err, common.ErrTransientProvider)
		}

		return "", err
	}

	if tokens.RefreshToken == "" {
		tokens.RefreshToken = refreshToken
	}

	if tokens.ExpiresAt.IsZero() {
		return "", errors.Wrap(common.ErrTransientProvider, "refresh exchange returned no expiry")
	}

	encrypted, err := v.encrypt(tokens)
	if err != nil {
		return "", err
	}

	saved, err := v.repo.SaveTokens(ctx, conn.ID, conn.TokenVersion, *encrypted)
	if err != nil {
		return "", err
	}

	if !saved {
		// another instance won the compare-and-set, its pair is the current one
		lg.Debug().Msg("token version moved during refresh, using stored token")

		fresh, err := v.repo.GetConnection(ctx, conn.ID)
		if err != nil {
			return "", err
		}

		return v.encryptor.DecryptString(fresh.AccessTokenEnc)
	}

	if conn.ConnectionStatus != database.ConnectionActive {
		if err = v.repo.UpdateStatus(ctx, conn.ID, database.ConnectionActive, ""); err != nil {
			return "", err
		}
	}

	v.audit(ctx, conn.ID, database.AuditTokenRefreshed)

	lg.Info().
		Str("event", "token_refresh").
		Time("token_expires_at", encrypted.ExpiresAt).
		Msg("access token refreshed")

	return tokens.AccessToken, nil
}

// Connect completes an OAuth consent: the authorization code is exchanged for
// a token pair and stored as a new connection.
func (v *Vault) Connect(
	ctx context.Context,
	providerID string,
	code string,
	redirectURI string,
) (*database.ConnectionView, error) {
	if code == "" {
		return nil, errors.New("authorization code is required")
	}

	tokens, err := v.exchanger.ExchangeCode(ctx, code, redirectURI)
	if err != nil {
		return nil, errors.Wrap(err, "can not exchange authorization code")
	}

	return v.StoreAuthorization(ctx, providerID, *tokens)
}

// StoreAuthorization persists the tokens of a freshly completed OAuth consent
// as a new active connection.
func (v *Vault) StoreAuthorization(
	ctx context.Context,
	providerID string,
	tokens common.TokenSet,
) (*database.ConnectionView, error) {
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		return nil, errors.New("authorization must carry both access and refresh tokens")
	}

	encrypted, err := v.encrypt(&tokens)
	if err != nil {
		return nil, err
	}

	conn := &database.Connection{
		ProviderID:       providerID,
		ConnectionStatus: database.ConnectionActive,
		AccessTokenEnc:   encrypted.AccessTokenEnc,
		RefreshTokenEnc:  encrypted.RefreshTokenEnc,
		TokenExpiresAt:   encrypted.ExpiresAt,
		TokenVersion:     1,
	}

	if err = v.repo.CreateConnection(ctx, conn); err != nil {
		return nil, err
	}

	v.audit(ctx, conn.ID, database.AuditConnectionCreated)

	view := conn.View()

	return &view, nil
}

// Disconnect wipes the stored credentials. The row itself stays, dependent
// data is purged elsewhere.
func (v *Vault) Disconnect(ctx context.Context, connectionID string, revoked bool) error {
	mu := v.lockFor(connectionID)
	mu.Lock()
	defer mu.Unlock()

	conn, err := v.repo.GetConnection(ctx, connectionID)
	if err != nil {
		return err
	}

	status := database.ConnectionInactive
	if revoked {
		status = database.ConnectionRevoked
	}

	if _, err = v.repo.SaveTokens(ctx, conn.ID, conn.TokenVersion, EncryptedTokens{}); err != nil {
		return err
	}

	if err = v.repo.UpdateStatus(ctx, conn.ID, status, ""); err != nil {
		return err
	}

	v.audit(ctx, conn.ID, database.AuditConnectionDisconnected)

	return nil
}

func (v *Vault) MarkSynced(ctx context.Context, connectionID string, at time.Time) error {
	return v.repo.MarkSynced(ctx, connectionID, at.UTC())
}

func (v *Vault) GetConnection(ctx context.Context, connectionID string) (*database.ConnectionView, error) {
	conn, err := v.repo.GetConnection(ctx, connectionID)
	if err != nil {
		return nil, err
	}

	view := conn.View()

	return &view, nil
}

func (v *Vault) loadUsable(ctx context.Context, connectionID string) (*database.Connection, error) {
	conn, err := v.repo.GetConnection(ctx, connectionID)
	if err != nil {
		return nil, err
	}

	if !conn.ConnectionStatus.Usable() {
		return nil, errors.Wrapf(common.ErrAuthExpired, "connection %s is %s", conn.ID, conn.ConnectionStatus)
	}

	return conn, nil
}

// needsRefresh compares instants only, both sides are time.Time values so a
// zone mismatch can not change the outcome.
func (v *Vault) needsRefresh(conn *database.Connection) bool {
	deadline := v.clock().Add(v.refreshBuffer)

	return !conn.TokenExpiresAt.After(deadline)
}

func (v *Vault) encrypt(tokens *common.TokenSet) (*EncryptedTokens, error) {
	accessEnc, err := v.encryptor.EncryptString(tokens.AccessToken)
	if err != nil {
		return nil, err
	}

	refreshEnc, err := v.encryptor.EncryptString(tokens.RefreshToken)
	if err != nil {
		return nil, err
	}

	return &EncryptedTokens{
		AccessTokenEnc:  accessEnc,
		RefreshTokenEnc: refreshEnc,
		ExpiresAt:       tokens.ExpiresAt.UTC(),
	}, nil
}

func (v *Vault) audit(ctx context.Context, connectionID string, eventType database.AuditEventType) {
	if err := v.repo.AddAuditEvent(ctx, &database.ConnectionAuditEvent{
		ConnectionID: connectionID,
		EventType:    eventType,
		CreatedAt:    v.clock().UTC(),
	}); err != nil {
		zerolog.Ctx(ctx).Err(err).
			Str("connection_id", connectionID).
			Str("event_type", string(eventType)).
			Msg("can not write audit event")
	}
}

func (v *Vault) lockFor(connectionID string) *sync.Mutex {
	mu, _ := v.locks.LoadOrStore(connectionID, &sync.Mutex{})

	return mu.(*sync.Mutex)
}
