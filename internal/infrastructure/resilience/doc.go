/*
Package resilience provides a circuit breaker for remote module fetches.

# Usage

	breaker := resilience.New("cdn", resilience.Settings{
		FailureThreshold: 5,
		Cooldown:         30 * time.Second,
		OnStateChange: func(name string, from, to resilience.State) {
			logger.Warn("Circuit breaker state change",
				zap.String("breaker", name),
				zap.Stringer("from", from),
				zap.Stringer("to", to))
		},
	})

	err := breaker.Do(ctx, func(ctx context.Context) error {
		return fetch(ctx)
	})

# States

	Closed --[threshold failures]-> Open --[cooldown]-> Half-Open --[trial ok]-> Closed
	                                                        |
	                                                 [trial fails]
	                                                        v
	                                                      Open
*/
package resilience
