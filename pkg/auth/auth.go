package auth

import (
	"context"
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	SessionCookie = "session_id"
	realm         = `Basic realm="Login Required"`
)

var (
	ErrUnauthorized   = errors.New("authentication required")
	ErrBadCredentials = errors.New("invalid username or password")
)

type Config struct {
	Username   string `yaml:"username" envconfig:"AUTH_USERNAME" default:"go"`
	Password   string `yaml:"password" envconfig:"AUTH_PASSWORD" json:"-"`
	BcryptCost int    `yaml:"bcryptCost" envconfig:"AUTH_BCRYPT_COST" default:"10"`
	// TokenSecret enables bearer tokens on login when set.
	TokenSecret string        `yaml:"tokenSecret" envconfig:"AUTH_TOKEN_SECRET" json:"-"`
	TokenTTL    time.Duration `yaml:"tokenTTL" envconfig:"AUTH_TOKEN_TTL" default:"1h"`
}

type userKeyType int

const userNameKey userKeyType = 1

func SetAuthContext(ctx context.Context, userName string) context.Context {
	return context.WithValue(ctx, userNameKey, userName)
}

func GetUserName(ctx context.Context) (string, error) {
	userName, ok := ctx.Value(userNameKey).(string)
	if !ok || userName == "" {
		return "", ErrUnauthorized
	}
	return userName, nil
}

// Credentials holds the single operator account. Only the bcrypt hash of the
// password is kept in memory.
type Credentials struct {
	username string
	hash     []byte
}

func NewCredentials(cfg Config) (*Credentials, error) {
	if cfg.Username == "" || cfg.Password == "" {
		return nil, errors.New("auth username and password are required")
	}
	cost := cfg.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), cost)
	if err != nil {
		return nil, errors.Wrap(err, "bcrypt")
	}
	return &Credentials{username: cfg.Username, hash: hash}, nil
}

func (c *Credentials) Check(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(c.username)) == 1
	passOK := bcrypt.CompareHashAndPassword(c.hash, []byte(password)) == nil
	return userOK && passOK
}

// Gate lets a request through when it carries a valid bearer token, a live
// session cookie or valid basic auth credentials. tokens may be nil.
func Gate(creds *Credentials, sessions SessionStore, tokens *Tokens, log *zap.Logger) echo.MiddlewareFunc {
	log = log.Named("auth")
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if raw, ok := bearerToken(req.Header.Get(echo.HeaderAuthorization)); ok && tokens != nil {
				userName, err := tokens.Parse(raw)
				if err != nil {
					c.Response().Header().Set(echo.HeaderWWWAuthenticate, realm)
					return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
				}
				c.SetRequest(req.WithContext(SetAuthContext(req.Context(), userName)))
				return next(c)
			}

			if cookie, err := req.Cookie(SessionCookie); err == nil && cookie.Value != "" {
				userName, err := sessions.Lookup(req.Context(), cookie.Value)
				switch {
				case err == nil:
					c.SetRequest(req.WithContext(SetAuthContext(req.Context(), userName)))
					return next(c)
				case !errors.Is(err, ErrSessionNotFound):
					log.Error("session lookup", zap.Error(err))
					return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
				}
			}

			if username, password, ok := req.BasicAuth(); ok && creds.Check(username, password) {
				c.SetRequest(req.WithContext(SetAuthContext(req.Context(), username)))
				return next(c)
			}

			c.Response().Header().Set(echo.HeaderWWWAuthenticate, realm)
			return echo.NewHTTPError(http.StatusUnauthorized, ErrUnauthorized.Error())
		}
	}
}
