// Package service holds the application use cases. Services own validation,
// authorization and transaction boundaries; repositories own SQL; the event
// broadcaster is handed the transaction so nothing is announced before it is
// durable.
package service

import (
	"context"
	"fmt"

	"pointhunt/internal/common"
	"pointhunt/internal/domain/model"
	"pointhunt/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// ownedGame loads a game and checks the caller created it. Every operator
// mutation goes through this gate.
func ownedGame(ctx context.Context, games repository.GameRepository, gameID, userID string) (*model.Game, error) {
	game, err := games.FindByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game.CreatedByID != userID {
		return nil, fmt.Errorf("game belongs to another operator: %w", common.ErrForbidden)
	}
	return game, nil
}

// newJoinCode derives a shareable code from a name, with a random suffix so
// two games or teams with the same name never collide.
func newJoinCode(name string) string {
	return slug.Make(name) + "-" + uuid.NewString()[:8]
}
