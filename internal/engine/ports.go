package engine

import (
	"context"

	"github.com/hylla/samla/internal/domain"
)

// Gateway is the persistence collaborator the engine saves through.
// Save overwrites any existing save under the player's name; Load
// returns ErrNotFound when no save exists and ErrCorruptSave when the
// stored payload cannot be decoded into a valid player state.
type Gateway interface {
	ListSaves(context.Context) ([]string, error)
	Save(context.Context, *domain.PlayerState) error
	Load(context.Context, string) (*domain.PlayerState, error)
}
