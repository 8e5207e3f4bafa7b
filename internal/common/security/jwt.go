package security

import (
	"errors"
	"time"

	"pointhunt/internal/platform/config"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

var TokenAuth *jwtauth.JWTAuth

func InitJWT() {
	TokenAuth = jwtauth.New("HS256", config.AppConfig.JWTKey, nil)
}

// Principal is the authenticated caller, reconstructed from token claims
// and inspected by value. Operators carry a user id and role; players
// additionally carry the team and game their token is scoped to.
type Principal struct {
	UserID   string
	Role     string
	PlayerID string
	TeamID   string
	GameID   string
}

func (p Principal) IsPlayer() bool   { return p.Role == "player" }
func (p Principal) IsOperator() bool { return p.Role == "operator" || p.Role == "admin" }
func (p Principal) IsAdmin() bool    { return p.Role == "admin" }

func GenerateOperatorToken(userID, role string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"exp":     time.Now().Add(config.AppConfig.JWTExp).Unix(),
		"iat":     time.Now().Unix(),
	}
	_, tokenString, err := TokenAuth.Encode(claims)
	return tokenString, err
}

func GeneratePlayerToken(playerID, teamID, gameID string) (string, error) {
	claims := jwt.MapClaims{
		"player_id": playerID,
		"team_id":   teamID,
		"game_id":   gameID,
		"role":      "player",
		"exp":       time.Now().Add(config.AppConfig.JWTExp).Unix(),
		"iat":       time.Now().Unix(),
	}
	_, tokenString, err := TokenAuth.Encode(claims)
	return tokenString, err
}

func PrincipalFromClaims(claims jwt.MapClaims) (Principal, error) {
	role, ok := claims["role"].(string)
	if !ok {
		return Principal{}, errors.New("role claim is missing or not a string")
	}

	p := Principal{Role: role}
	if role == "player" {
		p.PlayerID, _ = claims["player_id"].(string)
		p.TeamID, _ = claims["team_id"].(string)
		p.GameID, _ = claims["game_id"].(string)
		if p.PlayerID == "" || p.TeamID == "" || p.GameID == "" {
			return Principal{}, errors.New("player token is missing scope claims")
		}
		return p, nil
	}

	p.UserID, _ = claims["user_id"].(string)
	if p.UserID == "" {
		return Principal{}, errors.New("user_id claim is missing or not a string")
	}
	return p, nil
}
