package capture

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	elasticsearch "github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// BulkSink ships one batch of serialized JSON documents to an indexer
// endpoint. A nil error means the endpoint answered HTTP 200 with no
// per-item errors flag set.
type BulkSink interface {
	BulkInsert(docs []string, index string) error
	Endpoint() string
	Close()
}

const bulkTimeout = 30 * time.Second

// ESClient is the BulkSink backed by one Elasticsearch host.
type ESClient struct {
	es       *elasticsearch.Client
	endpoint string
}

// NewESClient opens a long-lived client against one host:port and verifies
// reachability with a ping.
func NewESClient(host, protocol, username, password string) (*ESClient, error) {
	endpoint := fmt.Sprintf("%s://%s", protocol, host)
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{endpoint},
		Username:  username,
		Password:  password,
	})
	if err != nil {
		return nil, fmt.Errorf("creating client for %s: %w", endpoint, err)
	}

	res, err := es.Ping()
	if err != nil {
		return nil, fmt.Errorf("pinging %s: %w", endpoint, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("pinging %s: %s", endpoint, res.Status())
	}
	return &ESClient{es: es, endpoint: endpoint}, nil
}

func (c *ESClient) Endpoint() string { return c.endpoint }

// BulkInsert submits docs against index using the bulk API. The request is
// one attempt with no retry; the caller decides whether to try another
// endpoint.
func (c *ESClient) BulkInsert(docs []string, index string) error {
	var body strings.Builder
	for _, doc := range docs {
		body.WriteString(`{"index":{}}`)
		body.WriteByte('\n')
		body.WriteString(doc)
		body.WriteByte('\n')
	}

	ctx, cancel := context.WithTimeout(context.Background(), bulkTimeout)
	defer cancel()

	req := esapi.BulkRequest{
		Index: index,
		Body:  strings.NewReader(body.String()),
	}
	res, err := req.Do(ctx, c.es)
	if err != nil {
		return fmt.Errorf("bulk request to %s: %w", c.endpoint, err)
	}
	defer res.Body.Close()

	if res.StatusCode != 200 {
		return fmt.Errorf("bulk request to %s: status %d", c.endpoint, res.StatusCode)
	}
	var parsed struct {
		Errors bool `json:"errors"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return fmt.Errorf("decoding bulk response from %s: %w", c.endpoint, err)
	}
	if parsed.Errors {
		return fmt.Errorf("bulk request to %s: response has item errors", c.endpoint)
	}
	return nil
}

// Close releases the underlying transport. The default transport keeps no
// persistent state worth tearing down, so this is a no-op kept for the
// BulkSink contract.
func (c *ESClient) Close() {}
