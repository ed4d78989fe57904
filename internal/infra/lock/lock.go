// Package lock は在庫品ごとのロック。
// 同じ品物への在庫調整を直列化し、別の品物は並行に進める。
package lock

import "sort"

const keyPrefix = "inn:good:"

// 重複を除いて並べ替える。常に同じ順で取るのでデッドロックしない。
func normalize(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
