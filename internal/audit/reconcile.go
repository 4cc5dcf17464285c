package audit

import "sort"

// Reconcile computes the four host sets from the inventory and the Day1
// and Day2 log hosts. It is a pure function of its inputs: permuting an
// input does not change the output.
func Reconcile(inventory, day1, day2 []HostRecord) Result {
	return Result{
		InventoryOnly: Difference(inventory, day1),
		LogsOnly:      Difference(day1, inventory),
		NewlyMissing:  Difference(day2, day1),
		NewlyAppeared: Difference(day1, day2),
	}
}

// Difference returns the records of left whose hostname does not occur in
// right. Identical records are reported once; the output is sorted by
// hostname, account and host ID.
func Difference(left, right []HostRecord) []HostRecord {
	index := make(map[string]struct{}, len(right))
	for _, r := range right {
		index[r.Hostname] = struct{}{}
	}

	out := make([]HostRecord, 0)
	emitted := make(map[HostRecord]struct{})
	for _, r := range left {
		if _, ok := index[r.Hostname]; ok {
			continue
		}
		if _, ok := emitted[r]; ok {
			continue
		}
		emitted[r] = struct{}{}
		out = append(out, r)
	}

	sortHosts(out)
	return out
}

func sortHosts(hosts []HostRecord) {
	sort.Slice(hosts, func(i, j int) bool {
		a, b := hosts[i], hosts[j]
		if a.Hostname != b.Hostname {
			return a.Hostname < b.Hostname
		}
		if a.AccountID != b.AccountID {
			return a.AccountID < b.AccountID
		}
		return a.HostID < b.HostID
	})
}
