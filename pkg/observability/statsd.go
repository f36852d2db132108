package observability

import (
	"fmt"

	"github.com/cactus/go-statsd-client/v5/statsd"
)

// DefaultNamespace prefixes every statsd metric name.
const DefaultNamespace = "piarka_token_service"

// NewStatsdClient creates an unbuffered UDP statsd client. Sends are
// connectionless line-protocol datagrams ("<namespace>.<metric>:<value>|c");
// delivery is not guaranteed and is never awaited.
func NewStatsdClient(addr, namespace string) (statsd.Statter, error) {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	client, err := statsd.NewClientWithConfig(&statsd.ClientConfig{
		Address: addr,
		Prefix:  namespace,
	})
	if err != nil {
		return nil, fmt.Errorf("creating statsd client: %w", err)
	}

	return client, nil
}
