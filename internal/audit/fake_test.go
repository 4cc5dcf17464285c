package audit

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"

	"github.com/StacySimmons/logging-hosts/internal/querysvc"
)

// fakeExecutor answers queries from handler and records every request.
type fakeExecutor struct {
	mu       sync.Mutex
	requests []querysvc.Request
	handler  func(req querysvc.Request) (any, error)
}

func (f *fakeExecutor) Execute(ctx context.Context, req querysvc.Request, out any) error {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	data, err := f.handler(req)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func (f *fakeExecutor) requestsFor(op string) []querysvc.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []querysvc.Request
	for _, r := range f.requests {
		if r.Op == op {
			out = append(out, r)
		}
	}
	return out
}

func transientErr(op string) error {
	return &querysvc.Failure{Kind: querysvc.KindTransient, Op: op, Attempts: 2}
}

func fatalTrustErr(op string) error {
	return &querysvc.Failure{Kind: querysvc.KindFatalTrust, Op: op, Attempts: 1}
}

func accountsPage(ids ...int) any {
	accounts := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		accounts = append(accounts, map[string]any{"id": id, "name": "acct-" + strconv.Itoa(id)})
	}
	return map[string]any{"actor": map[string]any{"accounts": accounts}}
}

type testEntity struct {
	guid, name string
	account    int
}

func entityPage(count int, next *string, entities ...testEntity) any {
	list := make([]map[string]any, 0, len(entities))
	for _, e := range entities {
		list = append(list, map[string]any{"guid": e.guid, "name": e.name, "accountId": e.account})
	}
	return map[string]any{"actor": map[string]any{"entitySearch": map[string]any{
		"count": count,
		"results": map[string]any{
			"nextCursor": next,
			"entities":   list,
		},
	}}}
}

func logPage(hostnames ...string) any {
	rows := make([]map[string]any, 0, len(hostnames))
	for _, h := range hostnames {
		rows = append(rows, map[string]any{"hostname": h, "count": 1})
	}
	return map[string]any{"actor": map[string]any{"account": map[string]any{"nrql": map[string]any{"results": rows}}}}
}

func strPtr(s string) *string { return &s }

func cursorOf(req querysvc.Request) string {
	c, _ := req.Variables["cursor"].(string)
	return c
}

func inventoryAccountOf(req querysvc.Request) int {
	qb, _ := req.Variables["queryBuilder"].(map[string]any)
	tags, _ := qb["tags"].([]map[string]string)
	if len(tags) == 0 {
		return 0
	}
	id, _ := strconv.Atoi(tags[0]["value"])
	return id
}

func nrqlOf(req querysvc.Request) string {
	s, _ := req.Variables["nrql"].(string)
	return s
}

func hostnames(hosts []HostRecord) []string {
	out := make([]string, 0, len(hosts))
	for _, h := range hosts {
		out = append(out, h.Hostname)
	}
	return out
}

func names(names ...string) []HostRecord {
	out := make([]HostRecord, 0, len(names))
	for _, n := range names {
		out = append(out, HostRecord{Hostname: n})
	}
	return out
}
