package product

import (
	"context"
	"fmt"
	"sort"
	"time"

	"floodmap.app/internal/ports"
	"floodmap.app/pkg/errors"
	"floodmap.app/pkg/geo"
	"github.com/paulmach/orb/geojson"
	"golang.org/x/sync/errgroup"
)

type UseCase struct {
	remote  ports.RemoteAoiClient
	store   ports.ArtifactStore
	areas   ports.AreaDirectory
	config  ports.ConfigProvider
	logger  ports.Logger
	metrics ports.MetricsCollector
}

type UseCaseDependencies struct {
	Remote  ports.RemoteAoiClient
	Store   ports.ArtifactStore
	Areas   ports.AreaDirectory
	Config  ports.ConfigProvider
	Logger  ports.Logger
	Metrics ports.MetricsCollector
}

func NewUseCase(deps UseCaseDependencies) (*UseCase, error) {
	if deps.Remote == nil {
		return nil, errors.NewValidationError("remote client is required")
	}
	if deps.Store == nil {
		return nil, errors.NewValidationError("artifact store is required")
	}
	if deps.Areas == nil {
		return nil, errors.NewValidationError("area directory is required")
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
		store:   deps.Store,
		areas:   deps.Areas,
		config:  deps.Config,
		logger:  deps.Logger,
		metrics: deps.Metrics,
	}, nil
}

// AvailableProducts lists the products of an AOI in a date range, grouped by
// acquisition time and marked with their materialization state.
func (uc *UseCase) AvailableProducts(ctx context.Context, aoiID string, dates DateRange) ([]GroupSummary, error) {
	aoiID = normalizeID(aoiID)
	if aoiID == "" {
		return nil, errors.NewValidationError("aoi id is required")
	}
	if err := dates.IsValid(); err != nil {
		return nil, errors.NewValidationError("invalid date range: " + err.Error())
	}

	listed, err := uc.remote.ListProducts(ctx, aoiID, dates.From, dates.To)
	if err != nil {
		return nil, fmt.Errorf("list products for aoi %s: %w", aoiID, err)
	}

	grouped := GroupByTime(uc.toProducts(aoiID, listed), uc.groupGap())

	snapshot, err := uc.store.IndexSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("read product index: %w", err)
	}
	index := make(map[string]ports.IndexEntry, len(snapshot))
	for _, entry := range snapshot {
		index[entry.ProductID] = entry
	}

	groups := Partition(grouped)
	summaries := make([]GroupSummary, 0, len(groups))
	for _, group := range groups {
		summary := GroupSummary{AOIID: aoiID, Key: group.Key}
		for _, p := range group.Products {
			member := MemberSummary{ProductID: p.ID, Timestamp: p.Timestamp}
			if entry, ok := index[p.ID]; ok {
				member.Downloaded = true
				member.Artifact = &entry
			}
			summary.Members = append(summary.Members, member)
		}
		summaries = append(summaries, summary)
	}

	uc.logger.Debug("Listed available products",
		ports.F("aoi_id", aoiID),
		ports.F("products", len(grouped)),
		ports.F("groups", len(summaries)))
	return summaries, nil
}

// DownloadGroup materializes every member that is not yet in the index.
// A failing member does not stop its siblings. An authentication failure
// aborts the whole call; the partial result is returned with the error.
func (uc *UseCase) DownloadGroup(ctx context.Context, aoiID string, groupKey time.Time, members []Product) (*DownloadResult, error) {
	aoiID = normalizeID(aoiID)
	if aoiID == "" {
		return nil, errors.NewValidationError("aoi id is required")
	}

	unique := uc.dedupe(aoiID, members)
	result := &DownloadResult{
		AOIID:    aoiID,
		GroupKey: groupKey,
		Members:  make([]MemberResult, len(unique)),
	}
	if len(unique) == 0 {
		return result, nil
	}

	workers := uc.config.GetSyncConfig().DownloadWorkers
	if workers < 1 {
		workers = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, member := range unique {
		i, member := i, member
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				result.Members[i] = MemberResult{
					ProductID: member.ID,
					Outcome:   OutcomeFailed,
					State:     StateDiscovered,
					Err:       err,
				}
				return nil
			}
			res := uc.materialize(gctx, aoiID, member)
			result.Members[i] = res
			if errors.IsAuthError(res.Err) {
				return res.Err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		uc.logger.Error("Group download aborted",
			ports.F("aoi_id", aoiID),
			ports.F("group", groupKey.UTC().Format(GroupKeyLayout)),
			ports.F("error", err))
		return result, fmt.Errorf("download group %s: %w", groupKey.UTC().Format(GroupKeyLayout), err)
	}

	uc.logger.Info("Group download finished",
		ports.F("aoi_id", aoiID),
		ports.F("group", groupKey.UTC().Format(GroupKeyLayout)),
		ports.F("materialized", result.Count(OutcomeMaterialized)),
		ports.F("skipped", result.Count(OutcomeSkipped)),
		ports.F("failed", result.Count(OutcomeFailed)))
	return result, nil
}

// DownloadGroupByKey re-lists and re-groups the products of an AOI and
// downloads the members of the group labelled by key.
func (uc *UseCase) DownloadGroupByKey(ctx context.Context, aoiID string, dates DateRange, key time.Time) (*DownloadResult, error) {
	summaries, err := uc.AvailableProducts(ctx, aoiID, dates)
	if err != nil {
		return nil, err
	}
	for _, summary := range summaries {
		if summary.Key.Equal(key) {
			return uc.DownloadGroup(ctx, aoiID, summary.Key, summary.Products())
		}
	}
	return nil, errors.NewNotFoundError(fmt.Sprintf("no product group %s for aoi %s",
		key.UTC().Format(GroupKeyLayout), aoiID))
}

// GetGeometry returns a stored geometry of a materialized product
func (uc *UseCase) GetGeometry(ctx context.Context, productID string, kind ports.GeometryKind) (*geojson.FeatureCollection, error) {
	productID = normalizeID(productID)
	if productID == "" {
		return nil, errors.NewValidationError("product id is required")
	}
	if !kind.IsValid() {
		return nil, errors.NewValidationError(fmt.Sprintf("unknown geometry kind %q", kind))
	}

	data, err := uc.store.Get(ctx, productID, kind)
	if err != nil {
		return nil, fmt.Errorf("get %s geometry of product %s: %w", kind, productID, err)
	}
	fc, err := geo.ParseFeatureCollection(data)
	if err != nil {
		return nil, errors.NewStorageError(fmt.Sprintf("stored %s geometry of product %s is corrupt", kind, productID), err)
	}
	return fc, nil
}

// CatalogCoverage reports how many products are materialized per AOI and
// which index entries belong to AOIs that no longer exist remotely. It never
// modifies the index.
func (uc *UseCase) CatalogCoverage(ctx context.Context) (*CoverageReport, error) {
	names, err := uc.areas.AreaNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("list areas: %w", err)
	}
	snapshot, err := uc.store.IndexSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("read product index: %w", err)
	}

	coverage := make(map[string]*AreaCoverage, len(names))
	for id, name := range names {
		coverage[id] = &AreaCoverage{AOIID: id, Name: name}
	}

	report := &CoverageReport{}
	for _, entry := range snapshot {
		c, ok := coverage[entry.AOIID]
		if !ok {
			report.Orphaned = append(report.Orphaned, entry)
			continue
		}
		c.Materialized++
		if entry.Timestamp.After(c.Latest) {
			c.Latest = entry.Timestamp
		}
	}

	for _, c := range coverage {
		report.Areas = append(report.Areas, *c)
	}
	sort.Slice(report.Areas, func(i, j int) bool {
		if report.Areas[i].Name == report.Areas[j].Name {
			return report.Areas[i].AOIID < report.Areas[j].AOIID
		}
		return report.Areas[i].Name < report.Areas[j].Name
	})
	sort.Slice(report.Orphaned, func(i, j int) bool {
		return report.Orphaned[i].ProductID < report.Orphaned[j].ProductID
	})

	if len(report.Orphaned) > 0 {
		uc.logger.Warn("Index holds products of unknown areas", ports.F("orphaned", len(report.Orphaned)))
	}
	return report, nil
}

func (uc *UseCase) materialize(ctx context.Context, aoiID string, p Product) MemberResult {
	res := MemberResult{ProductID: p.ID, State: StateDiscovered}

	has, err := uc.store.Has(ctx, p.ID)
	if err != nil {
		return uc.fail(ctx, res, fmt.Errorf("check index: %w", err))
	}
	if has {
		res.Outcome = OutcomeSkipped
		res.State = StateMaterialized
		uc.metrics.RecordMaterialization(ctx, string(OutcomeSkipped))
		return res
	}

	res.State = StateDownloading
	link, err := uc.remote.GetDownloadLink(ctx, p.ID)
	if err != nil {
		return uc.fail(ctx, res, fmt.Errorf("get download link: %w", err))
	}
	archive, err := uc.remote.DownloadArchive(ctx, link)
	if err != nil {
		return uc.fail(ctx, res, fmt.Errorf("download archive: %w", err))
	}
	geometries, err := ExtractGeometries(archive)
	if err != nil {
		return uc.fail(ctx, res, fmt.Errorf("extract geometries: %w", err))
	}

	entry, err := uc.store.Put(ctx, ports.Artifact{
		ProductID: p.ID,
		AOIID:     aoiID,
		Timestamp: p.Timestamp,
		Flood:     geometries.Flood,
		Footprint: geometries.Footprint,
	})
	if err != nil {
		return uc.fail(ctx, res, fmt.Errorf("store artifact: %w", err))
	}

	res.Outcome = OutcomeMaterialized
	res.State = StateMaterialized
	res.Entry = entry
	uc.metrics.RecordMaterialization(ctx, string(OutcomeMaterialized))
	uc.logger.Debug("Product materialized",
		ports.F("aoi_id", aoiID),
		ports.F("product_id", p.ID),
		ports.F("flood_file", geometries.FloodFile),
		ports.F("footprint_file", geometries.FootprintFile))
	return res
}

func (uc *UseCase) fail(ctx context.Context, res MemberResult, err error) MemberResult {
	res.Outcome = OutcomeFailed
	res.State = StateFailed
	res.Err = err
	uc.metrics.RecordMaterialization(ctx, string(OutcomeFailed))
	uc.logger.Warn("Product materialization failed",
		ports.F("product_id", res.ProductID),
		ports.F("error_type", errors.TypeOf(err).String()),
		ports.F("error", err))
	return res
}

func (uc *UseCase) groupGap() time.Duration {
	gap := uc.config.GetSyncConfig().GroupGap
	if gap <= 0 {
		return DefaultGroupGap
	}
	return gap
}

func (uc *UseCase) toProducts(aoiID string, listed []ports.ProductData) []Product {
	seen := make(map[string]bool, len(listed))
	products := make([]Product, 0, len(listed))
	for _, data := range listed {
		if data.ID == "" || seen[data.ID] {
			uc.logger.Warn("Dropping listed product with empty or repeated id",
				ports.F("aoi_id", aoiID),
				ports.F("product_id", data.ID),
				ports.F("product_time", data.Timestamp))
			continue
		}
		seen[data.ID] = true
		owner := data.AOIID
		if owner == "" {
			owner = aoiID
		}
		products = append(products, Product{ID: data.ID, AOIID: owner, Timestamp: data.Timestamp})
	}
	return products
}

func (uc *UseCase) dedupe(aoiID string, members []Product) []Product {
	seen := make(map[string]bool, len(members))
	unique := make([]Product, 0, len(members))
	for _, m := range members {
		id := normalizeID(m.ID)
		if id == "" || seen[id] {
			uc.logger.Warn("Dropping group member with empty or repeated id",
				ports.F("aoi_id", aoiID),
				ports.F("product_id", m.ID))
			continue
		}
		seen[id] = true
		m.ID = id
		unique = append(unique, m)
	}
	return unique
}
