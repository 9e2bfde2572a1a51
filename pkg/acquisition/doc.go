/*
Package acquisition obtains articles that have not been distributed before.

The Service draws random articles from a ports.ArticleSource and checks each candidate
against a ports.HistoryStore. A duplicate triggers an immediate fresh draw (no backoff);
a transport failure ends the operation. The retry loop is local to each call, so the
Service is safe for concurrent use without locking.

	svc := acquisition.New(source, history, acquisition.WithLogger(logger))
	article, err := svc.FetchRandom(ctx, traceID)
	if errors.Is(err, domain.ErrExhaustedRetries) {
		// every draw was already distributed
	}
	// ... render and deliver ...
	svc.RecordDistributed(ctx, article.ID, article.Title, traceID)

The Service only reads history. Recording is the caller's decision, made after the
article was actually delivered.
*/
package acquisition
