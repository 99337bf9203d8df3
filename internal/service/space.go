package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/and161185/stockroom/internal/errs"
	"github.com/and161185/stockroom/internal/model"
	"github.com/and161185/stockroom/internal/repository"
)

// ChildResolver computes the descendants of a space.
type ChildResolver interface {
	// FindChildrenIDs returns every descendant id of spaceID, without
	// spaceID itself and without duplicates, in no particular order.
	FindChildrenIDs(ctx context.Context, spaceID int64) ([]int64, error)
}

// SpaceResolver resolves descendants with the repository's recursive query.
type SpaceResolver struct {
	spaces repository.SpaceRepository
	log    *zap.Logger
}

// NewSpaceResolver constructs a SpaceResolver.
func NewSpaceResolver(spaces repository.SpaceRepository, log *zap.Logger) *SpaceResolver {
	return &SpaceResolver{spaces: spaces, log: log}
}

// FindChildrenIDs implements ChildResolver. The query already excludes the
// root and stops on cycles; the result is filtered again so callers can
// rely on set semantics whatever the backend returns.
func (r *SpaceResolver) FindChildrenIDs(ctx context.Context, spaceID int64) ([]int64, error) {
	ids, err := r.spaces.FindChildrenIDs(ctx, spaceID)
	if err != nil {
		return nil, storeErr(r.log, "resolve child spaces", err)
	}
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id == spaceID {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, nil
}

// SpaceService manages the space forest.
type SpaceService interface {
	Create(ctx context.Context, name string, parentID *int64, spaceType *string) (model.SpaceInfo, error)
	Get(ctx context.Context, id int64) (model.SpaceInfo, error)
	// Children lists all descendants of a live space.
	Children(ctx context.Context, id int64) ([]int64, error)
	Delete(ctx context.Context, id int64) error
}

type SpaceServiceImpl struct {
	spaces   repository.SpaceRepository
	resolver ChildResolver
	log      *zap.Logger
}

// NewSpaceService constructs SpaceService.
func NewSpaceService(spaces repository.SpaceRepository, resolver ChildResolver, log *zap.Logger) *SpaceServiceImpl {
	return &SpaceServiceImpl{spaces: spaces, resolver: resolver, log: log}
}

// Create inserts a space under an optional live parent.
func (s *SpaceServiceImpl) Create(ctx context.Context, name string, parentID *int64, spaceType *string) (model.SpaceInfo, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.SpaceInfo{}, errs.Validation("", map[string][]string{"name": {"is required"}})
	}
	if parentID != nil {
		if _, err := s.spaces.GetByID(ctx, *parentID); err != nil {
			return model.SpaceInfo{}, lookupErr(s.log, "load parent space", "space", *parentID, err)
		}
	}
	sp, err := s.spaces.Create(ctx, name, parentID, spaceType)
	if err != nil {
		return model.SpaceInfo{}, storeErr(s.log, "create space", err)
	}
	return sp.Info(), nil
}

// Get returns a live space.
func (s *SpaceServiceImpl) Get(ctx context.Context, id int64) (model.SpaceInfo, error) {
	sp, err := s.spaces.GetByID(ctx, id)
	if err != nil {
		return model.SpaceInfo{}, lookupErr(s.log, "load space", "space", id, err)
	}
	return sp.Info(), nil
}

// Children returns the descendant ids of a live space.
func (s *SpaceServiceImpl) Children(ctx context.Context, id int64) ([]int64, error) {
	if _, err := s.spaces.GetByID(ctx, id); err != nil {
		return nil, lookupErr(s.log, "load space", "space", id, err)
	}
	return s.resolver.FindChildrenIDs(ctx, id)
}

// Delete soft-deletes a space. Its descendants stay but are no longer
// reachable from above it.
func (s *SpaceServiceImpl) Delete(ctx context.Context, id int64) error {
	if err := s.spaces.SoftDelete(ctx, id); err != nil {
		return lookupErr(s.log, "delete space", "space", id, err)
	}
	return nil
}
