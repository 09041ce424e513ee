package area

import (
	"context"
	"fmt"
	"sort"

	"floodmap.app/internal/ports"
	"floodmap.app/pkg/errors"
)

type UseCase struct {
	remote  ports.RemoteAoiClient
	cache   ports.AreaCache
	config  ports.ConfigProvider
	logger  ports.Logger
	metrics ports.MetricsCollector
}

type UseCaseDependencies struct {
	Remote  ports.RemoteAoiClient
	Cache   ports.AreaCache
	Config  ports.ConfigProvider
	Logger  ports.Logger
	Metrics ports.MetricsCollector
}

func NewUseCase(deps UseCaseDependencies) (*UseCase, error) {
	if deps.Remote == nil {
		return nil, errors.NewValidationError("remote client is required")
	}
	if deps.Cache == nil {
		return nil, errors.NewValidationError("area cache is required")
	}
	if deps.Config == nil {
		return nil, errors.NewValidationError("config is required")
	}
	if deps.Logger == nil {
		return nil, errors.NewValidationError("logger is required")
	}
	if deps.Metrics == nil {
		return nil, errors.NewValidationError("metrics is required")
	}

	return &UseCase{
		remote:  deps.Remote,
		cache:   deps.Cache,
		config:  deps.Config,
		logger:  deps.Logger,
		metrics: deps.Metrics,
	}, nil
}

// ListAreas returns every AOI visible to the account keyed by id
func (uc *UseCase) ListAreas(ctx context.Context) (map[string]AOI, error) {
	listing, err := uc.listing(ctx)
	if err != nil {
		return nil, fmt.Errorf("list areas: %w", err)
	}

	areas := make(map[string]AOI, len(listing))
	names := make(map[string]int, len(listing))
	for _, data := range listing {
		areas[data.ID] = fromPorts(data)
		names[data.Name]++
	}
	for name, count := range names {
		if count > 1 {
			uc.logger.Warn("Remote listing holds duplicate area names",
				ports.F("name", name),
				ports.F("count", count))
		}
	}
	return areas, nil
}

// SortedAreas returns the listing ordered by name then id
func (uc *UseCase) SortedAreas(ctx context.Context) ([]AOI, error) {
	areas, err := uc.ListAreas(ctx)
	if err != nil {
		return nil, err
	}
	sorted := make([]AOI, 0, len(areas))
	for _, a := range areas {
		sorted = append(sorted, a)
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Name == sorted[j].Name {
			return sorted[i].ID < sorted[j].ID
		}
		return sorted[i].Name < sorted[j].Name
	})
	return sorted, nil
}

// AreaNames maps AOI ids to names
func (uc *UseCase) AreaNames(ctx context.Context) (map[string]string, error) {
	areas, err := uc.ListAreas(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(areas))
	for id, a := range areas {
		names[id] = a.Name
	}
	return names, nil
}

func (uc *UseCase) GetArea(ctx context.Context, id string) (*AOI, error) {
	areas, err := uc.ListAreas(ctx)
	if err != nil {
		return nil, err
	}
	a, ok := areas[id]
	if !ok {
		return nil, errors.NewNotFoundError(fmt.Sprintf("area %s not found", id))
	}
	return &a, nil
}

// FindByName returns the AOI with exactly this name. More than one remote
// AOI with the same name is reported as an upstream inconsistency.
func (uc *UseCase) FindByName(ctx context.Context, name string) (*AOI, error) {
	areas, err := uc.ListAreas(ctx)
	if err != nil {
		return nil, err
	}

	var matches []AOI
	for _, a := range areas {
		if a.Name == name {
			matches = append(matches, a)
		}
	}
	switch len(matches) {
	case 0:
		return nil, errors.NewNotFoundError(fmt.Sprintf("area %q not found", name))
	case 1:
		return &matches[0], nil
	default:
		return nil, errors.NewRemoteAPIError(
			fmt.Sprintf("remote API holds %d areas named %q", len(matches), name), nil)
	}
}

// CreateArea registers a new AOI. A name already present in the current
// listing is rejected without contacting the remote API.
func (uc *UseCase) CreateArea(ctx context.Context, request CreateAreaRequest) (*AOI, error) {
	request.Normalize()
	if err := request.IsValid(); err != nil {
		return nil, errors.NewValidationError("invalid area: " + err.Error())
	}

	areas, err := uc.ListAreas(ctx)
	if err != nil {
		return nil, err
	}
	for _, a := range areas {
		if a.Name == request.Name {
			return nil, errors.NewDuplicateNameError(fmt.Sprintf("an area named %q already exists", request.Name))
		}
	}

	created, err := uc.remote.CreateAOI(ctx, request.Name, request.Polygon)
	if err != nil {
		return nil, fmt.Errorf("create area %q: %w", request.Name, err)
	}
	uc.invalidate(ctx)

	if created == nil || created.ID == "" {
		// Creation responses do not always echo the id; resolve it from a fresh listing.
		return uc.FindByName(ctx, request.Name)
	}

	aoi := fromPorts(*created)
	if aoi.Name == "" {
		aoi.Name = request.Name
	}
	if aoi.Polygon == nil {
		aoi.Polygon = request.Polygon
	}

	uc.logger.Info("Area created",
		ports.F("aoi_id", aoi.ID),
		ports.F("name", aoi.Name))
	return &aoi, nil
}

// DeleteArea removes an AOI remotely. confirmation must equal the area name.
// Materialized products of the area are kept.
func (uc *UseCase) DeleteArea(ctx context.Context, id, confirmation string) error {
	a, err := uc.GetArea(ctx, id)
	if err != nil {
		return err
	}
	if confirmation != a.Name {
		return errors.NewValidationError(fmt.Sprintf("confirmation does not match area name %q", a.Name))
	}

	if err := uc.remote.DeleteAOI(ctx, id); err != nil {
		return fmt.Errorf("delete area %s: %w", id, err)
	}
	uc.invalidate(ctx)

	uc.logger.Info("Area deleted",
		ports.F("aoi_id", id),
		ports.F("name", a.Name))
	return nil
}

// Refresh drops the cached listing
func (uc *UseCase) Refresh(ctx context.Context) {
	uc.invalidate(ctx)
}

func (uc *UseCase) listing(ctx context.Context) ([]ports.AOIData, error) {
	cached, err := uc.cache.Get(ctx)
	if err == nil {
		uc.metrics.RecordCacheHit(ctx)
		return cached, nil
	}
	uc.metrics.RecordCacheMiss(ctx)
	if !errors.IsNotFoundError(err) {
		uc.logger.Warn("Area cache read failed", ports.F("error", err))
	}

	listing, err := uc.remote.ListAOIs(ctx)
	if err != nil {
		return nil, err
	}

	ttl := uc.config.GetAreaConfig().CacheTTL
	if cacheErr := uc.cache.Set(ctx, listing, ttl); cacheErr != nil {
		uc.logger.Warn("Failed to cache area listing", ports.F("error", cacheErr))
	}
	return listing, nil
}

func (uc *UseCase) invalidate(ctx context.Context) {
	if err := uc.cache.Invalidate(ctx); err != nil {
		uc.logger.Error("Failed to evict area listing", ports.F("error", err))
	}
}
