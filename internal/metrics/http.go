package metrics

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// unknownLabel stands in for a route or tenant that could not be resolved.
const unknownLabel = "unknown"

// TenantResolver extracts the tenant of a handled request. It runs after the handler chain,
// so it sees whatever the authentication middleware stored.
type TenantResolver func(c *gin.Context) string

type httpInstruments struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
	inFlight metric.Int64UpDownCounter
}

func newHTTPInstruments(meter metric.Meter, namespace string) (*httpInstruments, error) {
	requests, err := meter.Int64Counter(
		fmt.Sprintf("%s_http_requests_total", namespace),
		metric.WithDescription("Total number of HTTP requests by route, status and tenant"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(
		fmt.Sprintf("%s_http_request_duration_seconds", namespace),
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	inFlight, err := meter.Int64UpDownCounter(
		fmt.Sprintf("%s_http_requests_in_flight", namespace),
		metric.WithDescription("HTTP requests currently being served"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	return &httpInstruments{requests: requests, duration: duration, inFlight: inFlight}, nil
}

// HTTPMetricsMiddleware records request count, latency and in-flight requests. Requests are
// labelled by route pattern rather than raw path, and by tenant when tenantOf is set.
// When the instruments cannot be created the middleware is a pass-through.
func HTTPMetricsMiddleware(
	meterProvider metric.MeterProvider,
	namespace string,
	tenantOf TenantResolver,
) gin.HandlerFunc {
	instruments, err := newHTTPInstruments(meterProvider.Meter(namespace), namespace)
	if err != nil {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		start := time.Now()

		instruments.inFlight.Add(ctx, 1)
		defer instruments.inFlight.Add(ctx, -1)

		c.Next()

		attrs := metric.WithAttributes(
			attribute.String("method", c.Request.Method),
			attribute.String("path", routeLabel(c.FullPath())),
			attribute.String("status_code", strconv.Itoa(c.Writer.Status())),
			attribute.String("tenant", tenantLabel(c, tenantOf)),
		)
		instruments.requests.Add(ctx, 1, attrs)
		instruments.duration.Record(ctx, time.Since(start).Seconds(), attrs)
	}
}

// routeLabel keeps metric cardinality bounded by the router's patterns.
func routeLabel(fullPath string) string {
	if fullPath == "" {
		return unknownLabel
	}
	return fullPath
}

func tenantLabel(c *gin.Context, tenantOf TenantResolver) string {
	if tenantOf == nil {
		return unknownLabel
	}
	if tenant := tenantOf(c); tenant != "" {
		return tenant
	}
	return unknownLabel
}
