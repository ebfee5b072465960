package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"qbo-backend/internal/connection/domain"
	"qbo-backend/internal/connection/repository"
	"qbo-backend/pkg/config"
	"qbo-backend/pkg/quickbooks"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

type connectionUsecase struct {
	connRepo  repository.ConnectionRepository
	stateRepo repository.OAuthStateRepository
	oauth     *quickbooks.OAuthService
	purger    Purger
	company   CompanyReader
	config    *config.Config
	logger    zerolog.Logger
	now       func() time.Time
}

// NewConnectionUsecase creates the connection usecase.
func NewConnectionUsecase(
	connRepo repository.ConnectionRepository,
	stateRepo repository.OAuthStateRepository,
	oauth *quickbooks.OAuthService,
	purger Purger,
	cfg *config.Config,
	logger zerolog.Logger,
) ConnectionUsecase {
	return &connectionUsecase{
		connRepo:  connRepo,
		stateRepo: stateRepo,
		oauth:     oauth,
		purger:    purger,
		config:    cfg,
		logger:    logger,
		now:       time.Now,
	}
}

func (u *connectionUsecase) SetCompanyReader(reader CompanyReader) {
	u.company = reader
}

func (u *connectionUsecase) ConnectURL() (string, error) {
	now := u.now()
	nonce := uuid.New().String()
	expiresAt := now.Add(u.config.OAuthStateTTL)

	if err := u.stateRepo.DeleteExpired(now); err != nil {
		u.logger.Warn().Err(err).Msg("[Connection] Failed to clean expired states")
	}
	if err := u.stateRepo.Create(&domain.OAuthState{Nonce: nonce, ExpiresAt: expiresAt}); err != nil {
		return "", fmt.Errorf("failed to store oauth state: %w", err)
	}

	claims := jwt.MapClaims{
		"jti": nonce,
		"iat": now.Unix(),
		"exp": expiresAt.Unix(),
	}
	state, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(u.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign oauth state: %w", err)
	}
	return u.oauth.AuthCodeURL(state), nil
}

// verifyState checks the signature and expiry, then consumes the nonce.
func (u *connectionUsecase) verifyState(state string) error {
	token, err := jwt.Parse(state, func(token *jwt.Token) (interface{}, error) {
		return []byte(u.config.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(u.now))
	if err != nil || !token.Valid {
		return ErrInvalidState
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ErrInvalidState
	}
	nonce, _ := claims["jti"].(string)
	if nonce == "" {
		return ErrInvalidState
	}

	consumed, err := u.stateRepo.Consume(nonce, u.now())
	if err != nil {
		return fmt.Errorf("failed to consume oauth state: %w", err)
	}
	if !consumed {
		return ErrInvalidState
	}
	return nil
}

func (u *connectionUsecase) HandleCallback(ctx context.Context, code, realmID, state string) (*domain.Status, error) {
	if code == "" || realmID == "" {
		return nil, errors.New("missing code or realmId")
	}
	if err := u.verifyState(state); err != nil {
		return nil, err
	}

	tok, err := u.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}

	conn := &domain.Connection{RealmID: realmID}
	u.applyToken(conn, tok)
	if err := u.connRepo.Save(conn); err != nil {
		return nil, fmt.Errorf("failed to save connection: %w", err)
	}

	u.logger.Info().Str("realm_id", realmID).Msg("[Connection] QuickBooks connected")
	return statusOf(conn), nil
}

func (u *connectionUsecase) applyToken(conn *domain.Connection, tok *oauth2.Token) {
	conn.AccessToken = tok.AccessToken
	if tok.RefreshToken != "" {
		conn.RefreshToken = tok.RefreshToken
	}
	conn.TokenType = tok.TokenType
	if !tok.Expiry.IsZero() {
		expiry := tok.Expiry
		conn.AccessTokenExpiresAt = &expiry
	}
	if refreshExpiry := quickbooks.RefreshTokenExpiry(tok, u.now()); refreshExpiry != nil {
		conn.RefreshTokenExpiresAt = refreshExpiry
	}
}

func (u *connectionUsecase) Disconnect(purge bool) error {
	if err := u.connRepo.DeleteAll(); err != nil {
		return fmt.Errorf("failed to delete connections: %w", err)
	}
	if purge && u.purger != nil {
		if err := u.purger.Purge(); err != nil {
			return fmt.Errorf("failed to purge data: %w", err)
		}
	}
	u.logger.Info().Bool("purge", purge).Msg("[Connection] QuickBooks disconnected")
	return nil
}

func (u *connectionUsecase) Status() (*domain.Status, error) {
	conn, err := u.connRepo.Latest()
	if err != nil {
		return nil, err
	}
	if conn == nil {
		return &domain.Status{Connected: false}, nil
	}
	return statusOf(conn), nil
}

func statusOf(conn *domain.Connection) *domain.Status {
	updated := conn.UpdatedAt
	return &domain.Status{
		Connected:             true,
		RealmID:               conn.RealmID,
		AccessTokenExpiresAt:  conn.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: conn.RefreshTokenExpiresAt,
		UpdatedAt:             &updated,
	}
}

// Credential returns a bearer credential for the latest connection, refreshing
// and persisting the token pair when the access token is about to expire.
func (u *connectionUsecase) Credential(ctx context.Context) (*quickbooks.Credential, error) {
	conn, err := u.connRepo.Latest()
	if err != nil {
		return nil, fmt.Errorf("failed to load connection: %w", err)
	}
	if conn == nil {
		return nil, ErrNotConnected
	}

	current := &oauth2.Token{
		AccessToken:  conn.AccessToken,
		RefreshToken: conn.RefreshToken,
		TokenType:    conn.TokenType,
	}
	if conn.AccessTokenExpiresAt != nil {
		current.Expiry = *conn.AccessTokenExpiresAt
	}

	ts := u.oauth.TokenSource(ctx, current, func(tok *oauth2.Token) error {
		u.applyToken(conn, tok)
		u.logger.Info().Str("realm_id", conn.RealmID).Msg("[Connection] Access token refreshed")
		return u.connRepo.Save(conn)
	})
	tok, err := ts.Token()
	if err != nil {
		return nil, err
	}
	return &quickbooks.Credential{RealmID: conn.RealmID, AccessToken: tok.AccessToken}, nil
}

func (u *connectionUsecase) CompanyInfo(ctx context.Context) *CompanyInfo {
	if u.company == nil {
		return &CompanyInfo{Connected: false, Error: "company reader not configured"}
	}
	company, err := u.company.CompanyInfo(ctx)
	if err != nil {
		return &CompanyInfo{Connected: false, Error: err.Error()}
	}
	return &CompanyInfo{Connected: true, Company: company}
}
