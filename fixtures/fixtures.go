// Package fixtures generates sample document collections for
// exercising docql's query and aggregation surface without a real
// database, mirroring marco.go's uuid.New()-per-document identity
// convention.
package fixtures

import (
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Orders returns a small fixed order collection: customer, status,
// total, and a tags array, spanning enough variety to exercise
// $match, $group, $unwind, and the sort/limit/skip cursor chain.
func Orders() []bson.M {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := []struct {
		customer string
		status   string
		total    float64
		tags     []string
		daysAgo  int
	}{
		{"alice", "paid", 120.50, []string{"retail", "priority"}, 1},
		{"alice", "pending", 45.00, []string{"retail"}, 3},
		{"bob", "paid", 300.00, []string{"wholesale"}, 2},
		{"bob", "refunded", 75.25, []string{"wholesale", "priority"}, 10},
		{"carol", "paid", 15.00, []string{"retail"}, 5},
		{"carol", "paid", 220.00, []string{"retail", "gift"}, 0},
	}

	out := make([]bson.M, len(rows))
	for i, r := range rows {
		tags := make(bson.A, len(r.tags))
		for j, t := range r.tags {
			tags[j] = t
		}
		out[i] = bson.M{
			"_id":      uuid.New().String(),
			"customer": r.customer,
			"status":   r.status,
			"total":    r.total,
			"tags":     tags,
			"placedAt": base.AddDate(0, 0, -r.daysAgo),
		}
	}
	return out
}

// Readings returns a numeric time series suited to exercising the
// arithmetic and accumulator operators ($avg, $stdDevPop, $bucket).
func Readings(n int, sensor string) []bson.M {
	out := make([]bson.M, n)
	t := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		out[i] = bson.M{
			"_id":      uuid.New().String(),
			"sensor":   sensor,
			"value":    10 + float64(i%7)*2.5,
			"recorded": t.Add(time.Duration(i) * time.Minute),
		}
	}
	return out
}
