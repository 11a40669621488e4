package telemetry

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

// TraceIDHeader carries the trace id back to the client
const TraceIDHeader = "X-Trace-ID"

// Span attributes shared by the HTTP layer and the services
const (
	AttrEventID       = attribute.Key("venue.event_id")
	AttrReservationID = attribute.Key("venue.reservation_id")
	AttrLocalityID    = attribute.Key("venue.locality_id")
	AttrRoomID        = attribute.Key("venue.room_id")
	AttrOrganizerID   = attribute.Key("venue.organizer_id")
	AttrUserID        = attribute.Key("venue.user_id")
	AttrRequestID     = attribute.Key("venue.request_id")
)

// resourceKeys resolves the :id parameter by the collection it follows
var resourceKeys = map[string]attribute.Key{
	"events":       AttrEventID,
	"reservations": AttrReservationID,
	"localities":   AttrLocalityID,
	"rooms":        AttrRoomID,
}

// namedParams are route parameters whose name already says what they are
var namedParams = map[string]attribute.Key{
	"eventId":     AttrEventID,
	"organizerId": AttrOrganizerID,
}

// untracedPaths are the health endpoints polled by the orchestrator
var untracedPaths = map[string]bool{
	"/health": true,
	"/ready":  true,
}

// TracingMiddleware opens a server span per request, tagged with the ids in
// the matched route and, once the auth middleware has run, the caller.
func TracingMiddleware(serviceName string) gin.HandlerFunc {
	tracer := otel.Tracer(serviceName + "/http")
	propagator := otel.GetTextMapPropagator()

	return func(c *gin.Context) {
		route := c.FullPath()
		if untracedPaths[route] {
			c.Next()
			return
		}
		if route == "" {
			route = "unmatched"
		}

		ctx := propagator.Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		attrs := []attribute.KeyValue{
			semconv.HTTPMethod(c.Request.Method),
			semconv.HTTPRoute(route),
			semconv.UserAgentOriginal(c.Request.UserAgent()),
			attribute.String("http.client_ip", c.ClientIP()),
		}
		if requestID := c.GetString("request_id"); requestID != "" {
			attrs = append(attrs, AttrRequestID.String(requestID))
		}
		attrs = append(attrs, routeAttributes(route, c.Params)...)

		ctx, span := tracer.Start(ctx, c.Request.Method+" "+route,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attrs...),
		)
		defer span.End()

		if sc := span.SpanContext(); sc.HasTraceID() {
			c.Header(TraceIDHeader, sc.TraceID().String())
		}
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if userID := c.GetString("user_id"); userID != "" {
			span.SetAttributes(AttrUserID.String(userID))
		}
		status := c.Writer.Status()
		span.SetAttributes(semconv.HTTPStatusCode(status))
		if len(c.Errors) > 0 {
			span.RecordError(c.Errors.Last())
		}
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}

// routeAttributes turns the path parameters of route into span attributes.
// A bare :id takes its meaning from the segment before it.
func routeAttributes(route string, params gin.Params) []attribute.KeyValue {
	if len(params) == 0 {
		return nil
	}

	var attrs []attribute.KeyValue
	segments := strings.Split(strings.Trim(route, "/"), "/")
	for i, seg := range segments {
		if !strings.HasPrefix(seg, ":") {
			continue
		}
		name := seg[1:]
		value := params.ByName(name)
		if value == "" {
			continue
		}

		key, ok := namedParams[name]
		if !ok && name == "id" && i > 0 {
			key, ok = resourceKeys[segments[i-1]]
		}
		if ok {
			attrs = append(attrs, key.String(value))
		}
	}
	return attrs
}
