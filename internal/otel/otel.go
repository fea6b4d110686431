package otel

import (
	"context"
	"sync"

	eventbus "github.com/hanpama/mongograph/internal/eventbus"
	events "github.com/hanpama/mongograph/internal/events"
	reqid "github.com/hanpama/mongograph/internal/reqid"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Setup configures OpenTelemetry and attaches eventbus subscribers.
// If endpoint is empty, no telemetry is configured.
func Setup(endpoint, service string) (func(context.Context) error, error) {
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}
	exp, err := otlptracegrpc.New(context.Background(),
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(service),
		)),
	)
	otel.SetTracerProvider(tp)

	unsubscribe := Register(otel.Tracer("mongograph"))

	return func(ctx context.Context) error {
		unsubscribe()
		return tp.Shutdown(ctx)
	}, nil
}

// Register subscribes a span recorder backed by tracer to the global bus.
func Register(tracer trace.Tracer) (unsubscribe func()) {
	s := &subscriber{tracer: tracer}
	return s.register()
}

type subscriber struct {
	tracer       trace.Tracer
	augmentSpans sync.Map // call -> trace.Span
	resolveSpans sync.Map // call -> trace.Span
	storeSpans   sync.Map // store call -> trace.Span
}

// callID returns the call ID carried by ctx, falling back to the request ID.
func callID(ctx context.Context) string {
	if id, ok := reqid.CallFromContext(ctx); ok {
		return id
	}
	rid, _ := reqid.FromContext(ctx)
	return rid
}

func (s *subscriber) register() func() {
	var unsubs []func()
	unsubs = append(unsubs, eventbus.Subscribe(func(ctx context.Context, e events.AugmentStart) {
		_, span := s.tracer.Start(ctx, "mongograph.augment")
		span.SetAttributes(attribute.Int("graphql.schema.types", e.Types))
		s.augmentSpans.Store(callID(ctx), span)
	}))

	unsubs = append(unsubs, eventbus.Subscribe(func(ctx context.Context, e events.AugmentFinish) {
		v, ok := s.augmentSpans.LoadAndDelete(callID(ctx))
		if !ok {
			return
		}
		span := v.(trace.Span)
		span.SetAttributes(
			attribute.Int("mongograph.entities", e.Entities),
			attribute.Int("mongograph.operations", e.Operations),
		)
		endSpan(span, e.Err)
	}))

	unsubs = append(unsubs, eventbus.Subscribe(func(ctx context.Context, e events.ResolveStart) {
		rid, _ := reqid.FromContext(ctx)
		_, span := s.tracer.Start(ctx, "graphql.resolve")
		span.SetAttributes(
			attribute.String("graphql.field.parent", e.ObjectType),
			attribute.String("graphql.field.name", e.Field),
			attribute.String("mongograph.entity", e.Entity),
			attribute.String("request.id", rid),
		)
		s.resolveSpans.Store(callID(ctx), span)
	}))

	unsubs = append(unsubs, eventbus.Subscribe(func(ctx context.Context, e events.ResolveFinish) {
		v, ok := s.resolveSpans.LoadAndDelete(callID(ctx))
		if !ok {
			return
		}
		endSpan(v.(trace.Span), e.Err)
	}))

	unsubs = append(unsubs, eventbus.Subscribe(func(ctx context.Context, e events.StoreStart) {
		parent := ctx
		if v, ok := s.resolveSpans.Load(callID(ctx)); ok {
			parent = trace.ContextWithSpan(ctx, v.(trace.Span))
		}
		_, span := s.tracer.Start(parent, "mongodb."+e.Method)
		span.SetAttributes(
			semconv.DBSystemMongoDB,
			semconv.DBMongoDBCollectionKey.String(e.Collection),
			semconv.DBOperationKey.String(e.Method),
		)
		s.storeSpans.Store(e.Call, span)
	}))

	unsubs = append(unsubs, eventbus.Subscribe(func(ctx context.Context, e events.StoreFinish) {
		v, ok := s.storeSpans.LoadAndDelete(e.Call)
		if !ok {
			return
		}
		span := v.(trace.Span)
		span.SetAttributes(attribute.Int64("db.documents", e.Documents))
		endSpan(span, e.Err)
	}))

	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
