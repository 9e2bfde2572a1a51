/*
Package wikipedia implements ports.ArticleSource on top of the Wikimedia REST API.

Two endpoints are used:

	GET {base}/page/random/summary
	GET {base}/page/summary/{title}

Every request carries an identifying User-Agent (application name, version and a contact
address, as required by the Wikimedia API etiquette) and Accept: application/json.
The client performs no retries: deduplication retries are the acquisition service's job,
and transport failures are reported immediately.
*/
package wikipedia
