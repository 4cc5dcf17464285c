package querysvc

import (
	"fmt"
	"sort"
	"strings"
)

// regionEndpoints maps region tags to query service endpoints.
var regionEndpoints = map[string]string{
	"us": "https://api.newrelic.com/graphql",
	"eu": "https://api.eu.newrelic.com/graphql",
}

// DefaultRegion is used when no region is configured.
const DefaultRegion = "us"

// Endpoint returns the query service URL for region.
func Endpoint(region string) (string, error) {
	r := strings.ToLower(strings.TrimSpace(region))
	if r == "" {
		r = DefaultRegion
	}
	endpoint, ok := regionEndpoints[r]
	if !ok {
		return "", fmt.Errorf("unknown region %q (valid: %s)", region, strings.Join(Regions(), ", "))
	}
	return endpoint, nil
}

// Regions lists the known region tags in sorted order.
func Regions() []string {
	out := make([]string, 0, len(regionEndpoints))
	for r := range regionEndpoints {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}
