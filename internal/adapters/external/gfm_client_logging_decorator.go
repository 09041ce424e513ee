package external

import (
	"context"
	"time"

	"floodmap.app/internal/ports"
	"floodmap.app/pkg/errors"
	"github.com/paulmach/orb"
)

// RemoteClientLoggingDecorator decorates a RemoteAoiClient with structured
// logging and call metrics. Tokens and download links are never logged.
type RemoteClientLoggingDecorator struct {
	client  ports.RemoteAoiClient
	logger  ports.Logger
	metrics ports.MetricsCollector
}

// NewRemoteClientLoggingDecorator creates a new logging decorator for the remote client
func NewRemoteClientLoggingDecorator(client ports.RemoteAoiClient, logger ports.Logger, metrics ports.MetricsCollector) ports.RemoteAoiClient {
	return &RemoteClientLoggingDecorator{
		client:  client,
		logger:  logger,
		metrics: metrics,
	}
}

func (d *RemoteClientLoggingDecorator) observe(ctx context.Context, operation string, start time.Time, err error, fields ...ports.Field) {
	duration := time.Since(start)
	d.metrics.RecordRemoteCall(ctx, operation, err == nil, duration)

	fields = append(fields,
		ports.F("operation", operation),
		ports.F("duration_ms", duration.Milliseconds()))
	if err != nil {
		fields = append(fields,
			ports.F("error_type", errors.TypeOf(err).String()),
			ports.F("error", err.Error()))
		d.logger.Error("GFM request failed", fields...)
		return
	}
	d.logger.Info("GFM request completed", fields...)
}

func (d *RemoteClientLoggingDecorator) Login(ctx context.Context) (ports.Session, error) {
	start := time.Now()
	session, err := d.client.Login(ctx)
	d.observe(ctx, "login", start, err)
	return session, err
}

func (d *RemoteClientLoggingDecorator) ListAOIs(ctx context.Context) ([]ports.AOIData, error) {
	start := time.Now()
	aois, err := d.client.ListAOIs(ctx)
	d.observe(ctx, "list_aois", start, err, ports.F("count", len(aois)))
	return aois, err
}

func (d *RemoteClientLoggingDecorator) CreateAOI(ctx context.Context, name string, polygon orb.Polygon) (*ports.AOIData, error) {
	start := time.Now()
	created, err := d.client.CreateAOI(ctx, name, polygon)
	d.observe(ctx, "create_aoi", start, err, ports.F("name", name))
	return created, err
}

func (d *RemoteClientLoggingDecorator) DeleteAOI(ctx context.Context, aoiID string) error {
	start := time.Now()
	err := d.client.DeleteAOI(ctx, aoiID)
	d.observe(ctx, "delete_aoi", start, err, ports.F("aoi_id", aoiID))
	return err
}

func (d *RemoteClientLoggingDecorator) ListProducts(ctx context.Context, aoiID string, from, to time.Time) ([]ports.ProductData, error) {
	start := time.Now()
	products, err := d.client.ListProducts(ctx, aoiID, from, to)
	d.observe(ctx, "list_products", start, err,
		ports.F("aoi_id", aoiID),
		ports.F("from", from.Format("2006-01-02")),
		ports.F("to", to.Format("2006-01-02")),
		ports.F("count", len(products)))
	return products, err
}

func (d *RemoteClientLoggingDecorator) GetDownloadLink(ctx context.Context, productID string) (string, error) {
	start := time.Now()
	link, err := d.client.GetDownloadLink(ctx, productID)
	d.observe(ctx, "download_link", start, err, ports.F("product_id", productID))
	return link, err
}

func (d *RemoteClientLoggingDecorator) DownloadArchive(ctx context.Context, link string) ([]byte, error) {
	start := time.Now()
	data, err := d.client.DownloadArchive(ctx, link)
	d.observe(ctx, "download_archive", start, err, ports.F("bytes", len(data)))
	return data, err
}
