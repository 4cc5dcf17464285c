package audit

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Query documents. Values are always passed as variables; nothing is
// spliced into these strings.
const (
	accountsQuery = `query Accounts {
  actor {
    accounts {
      id
      name
    }
  }
}`

	inventoryHostsQuery = `query InventoryHosts($queryBuilder: EntitySearchQueryBuilder, $cursor: String) {
  actor {
    entitySearch(queryBuilder: $queryBuilder) {
      count
      results(cursor: $cursor) {
        nextCursor
        entities {
          guid
          name
          accountId
        }
      }
    }
  }
}`

	logHostsQuery = `query LogHosts($accountId: Int!, $nrql: Nrql!) {
  actor {
    account(id: $accountId) {
      nrql(query: $nrql, timeout: 120) {
        results
      }
    }
  }
}`
)

const (
	opAccounts       = "accounts"
	opInventoryHosts = "inventory_hosts"
	opLogHosts       = "log_hosts"
)

type accountsResponse struct {
	Actor struct {
		Accounts []Account `json:"accounts"`
	} `json:"actor"`
}

type entity struct {
	GUID      string `json:"guid"`
	Name      string `json:"name"`
	AccountID int    `json:"accountId"`
}

type entitySearchResponse struct {
	Actor struct {
		EntitySearch struct {
			Count   int `json:"count"`
			Results struct {
				NextCursor *string  `json:"nextCursor"`
				Entities   []entity `json:"entities"`
			} `json:"results"`
		} `json:"entitySearch"`
	} `json:"actor"`
}

type logHostsResponse struct {
	Actor struct {
		Account struct {
			NRQL struct {
				Results []logHostRow `json:"results"`
			} `json:"nrql"`
		} `json:"account"`
	} `json:"actor"`
}

// logHostRow is one faceted row. Depending on the query the hostname is
// reported under its attribute name or under "facet".
type logHostRow struct {
	Hostname string          `json:"hostname"`
	Facet    json.RawMessage `json:"facet"`
}

func (r logHostRow) name() string {
	if r.Hostname != "" {
		return r.Hostname
	}
	var s string
	if err := json.Unmarshal(r.Facet, &s); err == nil {
		return s
	}
	return ""
}

// inventoryVariables builds the entity search variables for one account.
func inventoryVariables(accountID int, cursor string) map[string]any {
	vars := map[string]any{
		"queryBuilder": map[string]any{
			"domain": "INFRA",
			"type":   "HOST",
			"tags": []map[string]string{
				{"key": "accountId", "value": strconv.Itoa(accountID)},
			},
		},
	}
	if cursor != "" {
		vars["cursor"] = cursor
	}
	return vars
}

// logHostsNRQL renders the aggregate query for one page of log hosts.
//
// ORDER BY hostname ASC must stay: watermark pagination relies on the
// backend returning the smallest hostnames above the watermark, sorted
// byte-wise like Go string comparison.
func logHostsNRQL(window LogWindow, after string, limit int) string {
	var b strings.Builder
	b.WriteString("SELECT count(*) FROM Log WHERE hostname IS NOT NULL")
	if after != "" {
		b.WriteString(" AND hostname > ")
		b.WriteString(quoteNRQL(after))
	}
	fmt.Fprintf(&b, " FACET hostname ORDER BY hostname ASC LIMIT %d %s", limit, window.TimeClause())
	return b.String()
}

// quoteNRQL renders s as a single-quoted NRQL string literal.
func quoteNRQL(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(s) + "'"
}
