/*
Package tracing provides lightweight request tracing.

Spans carry a trace ID and a parent span ID through context.Context and are
logged through zap by a buffered background collector. Trace context crosses
process boundaries in the X-Trace-ID and X-Span-ID headers.

	tracer := tracing.New("htmlmanager", logger)
	defer tracer.Close()
	router.Use(tracing.HTTPMiddleware(tracer))

	span, ctx := tracer.StartSpan(ctx, "render_page")
	defer func() {
		span.Finish()
		tracer.Submit(span)
	}()
*/
package tracing
