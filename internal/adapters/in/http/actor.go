package http

import (
	"net/http"
	"strings"
	"time"

	"marketplace/internal/core/domain/model/kernel"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const actorContextKey = "marketplace.actor"

// Token claims naming the actor. "shop" is only read for sellers.
const (
	claimSubject = "sub"
	claimRole    = "role"
	claimShop    = "shop"
)

// Authenticate turns the bearer token of every request into a kernel.Actor.
// Tokens are HS256 signed with secret and must carry sub and role claims.
func Authenticate(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(raw) == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}

			actor, err := parseActor(strings.TrimSpace(raw), secret)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token").SetInternal(err)
			}

			c.Set(actorContextKey, actor)
			ctx := zctx.With(c.Request().Context(), zap.Stringer("actor", actor))
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

func parseActor(raw string, secret []byte) (kernel.Actor, error) {
	token, err := jwt.Parse(raw, func(*jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return kernel.Actor{}, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return kernel.Actor{}, errors.New("unexpected claims")
	}

	sub, _ := claims[claimSubject].(string)
	id, err := kernel.UUIDFromString(sub)
	if err != nil {
		return kernel.Actor{}, errors.Wrap(err, "sub claim")
	}

	roleName, _ := claims[claimRole].(string)
	role, err := kernel.ParseRole(roleName)
	if err != nil {
		return kernel.Actor{}, err
	}

	var shopID kernel.UUID
	if role == kernel.Seller {
		shop, _ := claims[claimShop].(string)
		if shopID, err = kernel.UUIDFromString(shop); err != nil {
			return kernel.Actor{}, errors.Wrap(err, "shop claim")
		}
	}

	return kernel.NewActor(role, id, shopID)
}

// ActorFrom returns the actor Authenticate stored on the request.
func ActorFrom(c echo.Context) (kernel.Actor, error) {
	actor, ok := c.Get(actorContextKey).(kernel.Actor)
	if !ok {
		return kernel.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "no actor on request")
	}
	return actor, nil
}

// IssueToken signs a token for actor that Authenticate accepts until ttl has passed.
func IssueToken(secret []byte, actor kernel.Actor, ttl time.Duration) (string, error) {
	if err := actor.Validate(); err != nil {
		return "", err
	}

	now := time.Now()
	claims := jwt.MapClaims{
		claimSubject: actor.ID().String(),
		claimRole:    actor.Role().String(),
		"iat":        now.Unix(),
		"exp":        now.Add(ttl).Unix(),
	}
	if shopID, ok := actor.ShopID(); ok {
		claims[claimShop] = shopID.String()
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
