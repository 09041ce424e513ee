package external

import (
	"context"
	"fmt"
	"testing"
	"time"

	"floodmap.app/internal/mocks"
	"floodmap.app/internal/ports"
	"floodmap.app/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRemoteClientLoggingDecorator_Success(t *testing.T) {
	remote := new(mocks.RemoteAoiClient)
	remote.On("ListProducts", mock.Anything, "aoi-1", mock.Anything, mock.Anything).
		Return([]ports.ProductData{{ID: "p1"}, {ID: "p2"}}, nil)
	metrics := mocks.NewStrictMetricsCollector()
	metrics.On("RecordRemoteCall", mock.Anything, "list_products", true, mock.Anything).Once()
	testLogger := &testLogger{}

	decorator := NewRemoteClientLoggingDecorator(remote, testLogger, metrics)
	from := time.Date(2024, 10, 28, 0, 0, 0, 0, time.UTC)
	products, err := decorator.ListProducts(context.Background(), "aoi-1", from, from.AddDate(0, 0, 7))

	require.NoError(t, err)
	assert.Len(t, products, 2)
	require.Len(t, testLogger.entries, 1)
	entry := testLogger.entries[0]
	assert.Equal(t, "INFO", entry.level)
	assert.Equal(t, "GFM request completed", entry.message)
	assert.Equal(t, "list_products", entry.fields["operation"])
	assert.Equal(t, "aoi-1", entry.fields["aoi_id"])
	assert.Equal(t, "2024-10-28", entry.fields["from"])
	assert.Equal(t, 2, entry.fields["count"])
	assert.Contains(t, entry.fields, "duration_ms")
	remote.AssertExpectations(t)
	metrics.AssertExpectations(t)
}

func TestRemoteClientLoggingDecorator_Failure(t *testing.T) {
	remote := new(mocks.RemoteAoiClient)
	remote.On("GetDownloadLink", mock.Anything, "p1").
		Return("", errors.NewTransientNetworkError("GET /download/product/p1 returned status 503", nil))
	metrics := mocks.NewStrictMetricsCollector()
	metrics.On("RecordRemoteCall", mock.Anything, "download_link", false, mock.Anything).Once()
	testLogger := &testLogger{}

	decorator := NewRemoteClientLoggingDecorator(remote, testLogger, metrics)
	_, err := decorator.GetDownloadLink(context.Background(), "p1")

	assert.True(t, errors.IsTransientNetworkError(err))
	require.Len(t, testLogger.entries, 1)
	entry := testLogger.entries[0]
	assert.Equal(t, "ERROR", entry.level)
	assert.Equal(t, "TRANSIENT_NETWORK_ERROR", entry.fields["error_type"])
	assert.Equal(t, "p1", entry.fields["product_id"])
	metrics.AssertExpectations(t)
}

func TestRemoteClientLoggingDecorator_NeverLogsSecrets(t *testing.T) {
	remote := new(mocks.RemoteAoiClient)
	remote.On("Login", mock.Anything).
		Return(ports.Session{UserID: "user-1", Token: "secret-token"}, nil)
	remote.On("GetDownloadLink", mock.Anything, "p1").Return("https://bucket/p1.zip?signature=abc", nil)
	remote.On("DownloadArchive", mock.Anything, "https://bucket/p1.zip?signature=abc").Return([]byte("zip"), nil)
	testLogger := &testLogger{}

	decorator := NewRemoteClientLoggingDecorator(remote, testLogger, &mocks.MetricsCollector{})
	ctx := context.Background()
	_, err := decorator.Login(ctx)
	require.NoError(t, err)
	link, err := decorator.GetDownloadLink(ctx, "p1")
	require.NoError(t, err)
	_, err = decorator.DownloadArchive(ctx, link)
	require.NoError(t, err)

	for _, entry := range testLogger.entries {
		for _, value := range entry.fields {
			text := fmt.Sprint(value)
			assert.NotContains(t, text, "secret-token")
			assert.NotContains(t, text, "signature")
		}
	}
}

type logEntry struct {
	level   string
	message string
	fields  map[string]interface{}
}

type testLogger struct {
	entries []logEntry
}

func (l *testLogger) Debug(msg string, fields ...ports.Field) {
	l.addEntry("DEBUG", msg, fields...)
}

func (l *testLogger) Info(msg string, fields ...ports.Field) {
	l.addEntry("INFO", msg, fields...)
}

func (l *testLogger) Warn(msg string, fields ...ports.Field) {
	l.addEntry("WARN", msg, fields...)
}

func (l *testLogger) Error(msg string, fields ...ports.Field) {
	l.addEntry("ERROR", msg, fields...)
}

func (l *testLogger) addEntry(level, message string, fields ...ports.Field) {
	fieldMap := make(map[string]interface{})
	for _, field := range fields {
		fieldMap[field.Key] = field.Value
	}

	l.entries = append(l.entries, logEntry{
		level:   level,
		message: message,
		fields:  fieldMap,
	})
}
