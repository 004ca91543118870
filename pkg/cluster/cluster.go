// Package cluster buckets stores into a fixed set of named clusters and
// splits an aggregate demand total across them using weighted shares.
package cluster

import (
	"github.com/retailcast/demand-forecast/pkg/constants"
	"github.com/retailcast/demand-forecast/pkg/validation"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Store is one retail location with the categorical segment used for
// bucketing and the historical volume used for weighting.
type Store struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Segment        string  `json:"segment"`
	AvgWeeklyUnits float64 `json:"avgWeeklyUnits"`
	ClusterID      string  `json:"clusterId,omitempty"`
}

// Definition declares one cluster in the fixed enumerated set: its identifier,
// the store segments that map into it, and the share used when no volume data
// exists anywhere.
type Definition struct {
	ID            string   `json:"id"`
	Segments      []string `json:"segments"`
	FallbackShare float64  `json:"fallbackShare"`
}

// ClusterShare is one cluster's slice of the allocated total.
type ClusterShare struct {
	ClusterID            string  `json:"clusterId"`
	AllocationPercentage float64 `json:"allocationPercentage"`
	UnitCount            int     `json:"unitCount"`
	MemberCount          int     `json:"memberCount"`
}

// Allocator performs the rule-based bucketing and share allocation.
type Allocator struct {
	logger *zap.Logger
}

// NewAllocator creates an allocator. If logger is nil, it will use a no-op
// logger to prevent panics.
func NewAllocator(logger *zap.Logger) *Allocator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Allocator{logger: logger}
}

// AssignClusters maps every store onto exactly one cluster from the fixed
// definition set, keyed on the store's segment. Stores whose segment matches
// no definition land in the last definition, which acts as the catch-all.
// clusterCount must match the definition set.
func (al *Allocator) AssignClusters(stores []Store, defs []Definition, clusterCount int) ([]Store, error) {
	if len(defs) == 0 {
		return nil, validation.NewInvalidArgumentError("defs", "at least one cluster definition is required")
	}
	if clusterCount != len(defs) {
		return nil, validation.NewInvalidArgumentError("clusterCount",
			"expected %d to match the definition set, got %d", len(defs), clusterCount)
	}

	bySegment := make(map[string]string)
	for _, def := range defs {
		for _, segment := range def.Segments {
			bySegment[segment] = def.ID
		}
	}
	catchAll := defs[len(defs)-1].ID

	assigned := make([]Store, len(stores))
	copy(assigned, stores)
	for i := range assigned {
		id, ok := bySegment[assigned[i].Segment]
		if !ok {
			id = catchAll
			al.logger.Debug("store segment matched no cluster, using catch-all",
				zap.String("op", "cluster.Allocator.AssignClusters"),
				zap.String("store", assigned[i].ID),
				zap.String("segment", assigned[i].Segment),
				zap.String("cluster", id),
			)
		}
		assigned[i].ClusterID = id
	}
	return assigned, nil
}

// Allocate splits totalDemand across the defined clusters. Shares are
// proportional to each cluster's summed average weekly volume; when no store
// anywhere carries volume data, the definitions' fallback shares apply.
// Exactly one ClusterShare is emitted per definition, including empty
// clusters. Unit counts are floored per cluster and any rounding difference,
// positive or negative, is settled on the largest-share cluster, so the
// counts always sum exactly to totalDemand.
func (al *Allocator) Allocate(stores []Store, defs []Definition, totalDemand int) ([]ClusterShare, error) {
	if len(defs) == 0 {
		return nil, validation.NewInvalidArgumentError("defs", "at least one cluster definition is required")
	}
	if totalDemand < 0 {
		return nil, validation.NewInvalidArgumentError("totalDemand",
			"must be non-negative, got %d", totalDemand)
	}

	weights := make(map[string]decimal.Decimal, len(defs))
	members := make(map[string]int, len(defs))
	for _, def := range defs {
		weights[def.ID] = decimal.Zero
	}
	totalWeight := decimal.Zero
	for _, store := range stores {
		if _, ok := weights[store.ClusterID]; !ok {
			return nil, validation.NewInvalidArgumentError("stores",
				"store %s is assigned to unknown cluster %q", store.ID, store.ClusterID)
		}
		w := decimal.NewFromFloat(store.AvgWeeklyUnits)
		weights[store.ClusterID] = weights[store.ClusterID].Add(w)
		totalWeight = totalWeight.Add(w)
		members[store.ClusterID]++
	}

	shares := make([]decimal.Decimal, len(defs))
	if totalWeight.IsPositive() {
		for i, def := range defs {
			shares[i] = weights[def.ID].Div(totalWeight).Round(constants.SharePrecision)
		}
	} else {
		al.logger.Debug("no volume data present, using fallback share table",
			zap.String("op", "cluster.Allocator.Allocate"),
		)
		for i, def := range defs {
			shares[i] = decimal.NewFromFloat(def.FallbackShare)
		}
	}

	total := decimal.NewFromInt(int64(totalDemand))
	result := make([]ClusterShare, len(defs))
	allocated := 0
	largest := 0
	for i, def := range defs {
		units := int(total.Mul(shares[i]).IntPart())
		pct, _ := shares[i].Float64()
		result[i] = ClusterShare{
			ClusterID:            def.ID,
			AllocationPercentage: pct,
			UnitCount:            units,
			MemberCount:          members[def.ID],
		}
		allocated += units
		if shares[i].GreaterThan(shares[largest]) {
			largest = i
		}
	}

	// Flooring leaves units unassigned, and rounded shares can sum slightly
	// above 1.0 and overshoot. Reconcile either way on the largest cluster so
	// the counts sum exactly to totalDemand.
	if remainder := totalDemand - allocated; remainder != 0 {
		result[largest].UnitCount += remainder
	}

	return result, nil
}
