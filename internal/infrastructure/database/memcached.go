package database

import (
	"fmt"
	"strings"

	"github.com/bradfitz/gomemcache/memcache"
)

// NewMemcached accepts a comma separated server list.
func NewMemcached(servers string) (*memcache.Client, error) {
	var addrs []string
	for _, s := range strings.Split(servers, ",") {
		if s = strings.TrimSpace(s); s != "" {
			addrs = append(addrs, s)
		}
	}
	if len(addrs) == 0 {
		return nil, fmt.Errorf("no memcached servers configured")
	}

	client := memcache.New(addrs...)
	if err := client.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect memcached %s: %v", servers, err)
	}
	return client, nil
}
