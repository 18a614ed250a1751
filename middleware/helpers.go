package middleware

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/golang-jwt/jwt/v4"
)

// ContextWithUserID кладёт в контекст claims с идентификатором
// пользователя, как это делает Authenticate.
func ContextWithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, userContextKey, jwt.MapClaims{jwtClaimUserID: float64(userID)})
}

// GetUserIDFromContext достаёт идентификатор принципала из claims.
// Число может приехать как float64 (стандартный json) или строкой.
func GetUserIDFromContext(ctx context.Context) (int, error) {
	claims, ok := ctx.Value(userContextKey).(jwt.MapClaims)
	if !ok {
		return 0, errors.New("user claims not found in context or invalid type")
	}

	userIDClaim, ok := claims[jwtClaimUserID]
	if !ok {
		return 0, fmt.Errorf("missing '%s' claim in token", jwtClaimUserID)
	}

	switch v := userIDClaim.(type) {
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("'%s' claim is not an integer: %f", jwtClaimUserID, v)
		}
		return validUserID(int(v))
	case string:
		userID, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid '%s' claim: %w", jwtClaimUserID, err)
		}
		return validUserID(userID)
	}
	return 0, fmt.Errorf("invalid type for '%s' claim: %T", jwtClaimUserID, userIDClaim)
}

func validUserID(id int) (int, error) {
	if id <= 0 {
		return 0, fmt.Errorf("invalid user ID value in '%s' claim: %d", jwtClaimUserID, id)
	}
	return id, nil
}
