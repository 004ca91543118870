package cluster

import (
	"errors"
	"math"
	"testing"

	"github.com/retailcast/demand-forecast/pkg/constants"
	"github.com/retailcast/demand-forecast/pkg/validation"
)

func referenceDefs() []Definition {
	return []Definition{
		{ID: "flagship", Segments: []string{"flagship", "mall"}, FallbackShare: 0.40},
		{ID: "standard", Segments: []string{"standard", "street"}, FallbackShare: 0.35},
		{ID: "outlet", Segments: []string{"outlet", "clearance"}, FallbackShare: 0.25},
	}
}

func tenStores(avgWeeklyUnits float64) []Store {
	segments := []string{
		"flagship", "flagship", "flagship",
		"standard", "standard", "standard",
		"outlet", "outlet", "outlet", "outlet",
	}
	stores := make([]Store, len(segments))
	for i, segment := range segments {
		stores[i] = Store{
			ID:             string(rune('A' + i)),
			Segment:        segment,
			AvgWeeklyUnits: avgWeeklyUnits,
		}
	}
	return stores
}

func TestAssignClusters(t *testing.T) {
	al := NewAllocator(nil)
	assigned, err := al.AssignClusters(tenStores(100), referenceDefs(), 3)
	if err != nil {
		t.Fatalf("AssignClusters() error = %v", err)
	}

	counts := make(map[string]int)
	for _, store := range assigned {
		counts[store.ClusterID]++
	}
	if counts["flagship"] != 3 || counts["standard"] != 3 || counts["outlet"] != 4 {
		t.Errorf("cluster membership = %v, expected 3/3/4", counts)
	}
}

func TestAssignClustersDoesNotMutateInput(t *testing.T) {
	al := NewAllocator(nil)
	stores := tenStores(100)
	if _, err := al.AssignClusters(stores, referenceDefs(), 3); err != nil {
		t.Fatalf("AssignClusters() error = %v", err)
	}
	for _, store := range stores {
		if store.ClusterID != "" {
			t.Fatal("AssignClusters mutated its input slice")
		}
	}
}

func TestAssignClustersUnknownSegmentUsesCatchAll(t *testing.T) {
	al := NewAllocator(nil)
	stores := []Store{{ID: "X", Segment: "popup"}}
	assigned, err := al.AssignClusters(stores, referenceDefs(), 3)
	if err != nil {
		t.Fatalf("AssignClusters() error = %v", err)
	}
	if assigned[0].ClusterID != "outlet" {
		t.Errorf("unknown segment assigned to %q, expected catch-all %q", assigned[0].ClusterID, "outlet")
	}
}

func TestAssignClustersCountMismatch(t *testing.T) {
	al := NewAllocator(nil)
	_, err := al.AssignClusters(tenStores(100), referenceDefs(), 4)
	var argErr *validation.InvalidArgumentError
	if !errors.As(err, &argErr) {
		t.Errorf("AssignClusters() error = %v, expected *validation.InvalidArgumentError", err)
	}
}

func TestAllocateFallbackShares(t *testing.T) {
	// 10 stores split 3/3/4 but with no volume data anywhere: the fallback
	// table 0.40/0.35/0.25 applies and 1000 units split 400/350/250.
	al := NewAllocator(nil)
	assigned, err := al.AssignClusters(tenStores(0), referenceDefs(), 3)
	if err != nil {
		t.Fatalf("AssignClusters() error = %v", err)
	}

	shares, err := al.Allocate(assigned, referenceDefs(), 1000)
	if err != nil {
		t.Fatalf("Allocate() error = %v", err)
	}

	expected := map[string]int{"flagship": 400, "standard": 350, "outlet": 250}
	total := 0
	for _, share := range shares {
		if share.UnitCount != expected[share.ClusterID] {
			t.Errorf("cluster %s got %d units, expected %d", share.ClusterID, share.UnitCount, expected[share.ClusterID])
		}
		total += share.UnitCount
	}
	if total != 1000 {
		t.Errorf("unit counts sum to %d, expected exactly 1000", total)
	}
}

func TestAllocateProportionalToVolume(t *testing.T) {
	al := NewAllocator(nil)
	stores := []Store{
		{ID: "A", Segment: "flagship", AvgWeeklyUnits: 600, ClusterID: "flagship"},
		{ID: "B", Segment: "standard", AvgWeeklyUnits: 300, ClusterID: "standard"},
		{ID: "C", Segment: "outlet", AvgWeeklyUnits: 100, ClusterID: "outlet"},
	}

	shares, err := al.Allocate(stores, referenceDefs(), 1000)
	if err != nil {
		t.Fatalf("Allocate() error = %v", err)
	}

	expected := map[string]float64{"flagship": 0.6, "standard": 0.3, "outlet": 0.1}
	for _, share := range shares {
		if math.Abs(share.AllocationPercentage-expected[share.ClusterID]) > constants.ShareTolerance {
			t.Errorf("cluster %s share = %v, expected %v", share.ClusterID, share.AllocationPercentage, expected[share.ClusterID])
		}
		if share.MemberCount != 1 {
			t.Errorf("cluster %s member count = %d, expected 1", share.ClusterID, share.MemberCount)
		}
	}
}

func TestAllocateEmptyClusterStillEmitted(t *testing.T) {
	al := NewAllocator(nil)
	stores := []Store{
		{ID: "A", Segment: "flagship", AvgWeeklyUnits: 500, ClusterID: "flagship"},
		{ID: "B", Segment: "standard", AvgWeeklyUnits: 500, ClusterID: "standard"},
	}

	shares, err := al.Allocate(stores, referenceDefs(), 1000)
	if err != nil {
		t.Fatalf("Allocate() error = %v", err)
	}
	if len(shares) != 3 {
		t.Fatalf("Allocate() emitted %d shares, expected one per definition (3)", len(shares))
	}

	var outlet *ClusterShare
	for i := range shares {
		if shares[i].ClusterID == "outlet" {
			outlet = &shares[i]
		}
	}
	if outlet == nil {
		t.Fatal("empty outlet cluster missing from shares")
	}
	if outlet.AllocationPercentage != 0 || outlet.UnitCount != 0 || outlet.MemberCount != 0 {
		t.Errorf("empty cluster share = %+v, expected zeros", *outlet)
	}
}

func TestAllocateSharesSumToOne(t *testing.T) {
	al := NewAllocator(nil)
	stores := []Store{
		{ID: "A", Segment: "flagship", AvgWeeklyUnits: 333, ClusterID: "flagship"},
		{ID: "B", Segment: "standard", AvgWeeklyUnits: 333, ClusterID: "standard"},
		{ID: "C", Segment: "outlet", AvgWeeklyUnits: 334, ClusterID: "outlet"},
	}

	shares, err := al.Allocate(stores, referenceDefs(), 999)
	if err != nil {
		t.Fatalf("Allocate() error = %v", err)
	}

	sum := 0.0
	for _, share := range shares {
		sum += share.AllocationPercentage
	}
	if math.Abs(sum-1.0) > 1e-4 {
		t.Errorf("shares sum to %v, expected 1.0 within tolerance", sum)
	}
}

func TestAllocateRemainderGoesToLargestCluster(t *testing.T) {
	// Thirds of 1000 floor to 333 each; the single leftover unit lands on the
	// largest-share cluster so the counts still sum to the total.
	al := NewAllocator(nil)
	stores := []Store{
		{ID: "A", Segment: "flagship", AvgWeeklyUnits: 400, ClusterID: "flagship"},
		{ID: "B", Segment: "standard", AvgWeeklyUnits: 300, ClusterID: "standard"},
		{ID: "C", Segment: "outlet", AvgWeeklyUnits: 300, ClusterID: "outlet"},
	}

	shares, err := al.Allocate(stores, referenceDefs(), 999)
	if err != nil {
		t.Fatalf("Allocate() error = %v", err)
	}

	total := 0
	byID := make(map[string]ClusterShare)
	for _, share := range shares {
		total += share.UnitCount
		byID[share.ClusterID] = share
	}
	if total != 999 {
		t.Errorf("unit counts sum to %d, expected exactly 999", total)
	}
	if byID["flagship"].UnitCount <= byID["standard"].UnitCount {
		t.Errorf("remainder should favor the largest cluster: %+v", byID)
	}
}

func TestAllocateRoundedSharesOvershoot(t *testing.T) {
	// Weights 4999995/5000005 of 10,000,000 round to shares 0.5 and 0.500001,
	// which sum above 1.0. The over-allocated units must come back off the
	// largest cluster so the counts still sum exactly to the total.
	al := NewAllocator(nil)
	defs := []Definition{
		{ID: "north", Segments: []string{"north"}, FallbackShare: 0.5},
		{ID: "south", Segments: []string{"south"}, FallbackShare: 0.5},
	}
	stores := []Store{
		{ID: "A", Segment: "north", AvgWeeklyUnits: 4999995, ClusterID: "north"},
		{ID: "B", Segment: "south", AvgWeeklyUnits: 5000005, ClusterID: "south"},
	}

	shares, err := al.Allocate(stores, defs, 10000000)
	if err != nil {
		t.Fatalf("Allocate() error = %v", err)
	}

	total := 0
	for _, share := range shares {
		if share.UnitCount != 5000000 {
			t.Errorf("cluster %s got %d units, expected 5000000", share.ClusterID, share.UnitCount)
		}
		total += share.UnitCount
	}
	if total != 10000000 {
		t.Errorf("unit counts sum to %d, expected exactly 10000000", total)
	}
}

func TestAllocateArgumentErrors(t *testing.T) {
	al := NewAllocator(nil)

	tests := []struct {
		name   string
		stores []Store
		defs   []Definition
		total  int
	}{
		{"No definitions", nil, nil, 100},
		{"Negative total", nil, referenceDefs(), -1},
		{
			name:   "Unknown cluster assignment",
			stores: []Store{{ID: "A", ClusterID: "warehouse"}},
			defs:   referenceDefs(),
			total:  100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := al.Allocate(tt.stores, tt.defs, tt.total)
			var argErr *validation.InvalidArgumentError
			if !errors.As(err, &argErr) {
				t.Errorf("Allocate() error = %v, expected *validation.InvalidArgumentError", err)
			}
		})
	}
}

func TestAllocateZeroTotal(t *testing.T) {
	al := NewAllocator(nil)
	shares, err := al.Allocate(tenStoresAssigned(), referenceDefs(), 0)
	if err != nil {
		t.Fatalf("Allocate() error = %v", err)
	}
	for _, share := range shares {
		if share.UnitCount != 0 {
			t.Errorf("cluster %s got %d units from a zero total", share.ClusterID, share.UnitCount)
		}
	}
}

func tenStoresAssigned() []Store {
	al := NewAllocator(nil)
	assigned, err := al.AssignClusters(tenStores(100), referenceDefs(), 3)
	if err != nil {
		panic(err)
	}
	return assigned
}
