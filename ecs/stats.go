package ecs

import (
	"reflect"
	"sort"
)

// StorageStats is a snapshot of what a Storage currently holds.
type StorageStats struct {
	TotalEntityCount   int
	ComponentTypeCount int
	SingletonCount     int
	ComponentBreakdown []ComponentStats
	SingletonTypes     []reflect.Type
}

// ComponentStats counts the live entities carrying one component type.
type ComponentStats struct {
	Type        reflect.Type
	EntityCount int
}

// CollectStats gathers entity, component and singleton counts. Component
// entries with no entities are left out; entries are sorted by type name.
func (s *Storage) CollectStats() *StorageStats {
	stats := &StorageStats{
		TotalEntityCount: s.Len(),
		SingletonCount:   len(s.singletons),
	}

	for t, st := range s.stores {
		if st.Len() == 0 {
			continue
		}
		stats.ComponentBreakdown = append(stats.ComponentBreakdown, ComponentStats{
			Type:        t,
			EntityCount: st.Len(),
		})
	}
	sort.Slice(stats.ComponentBreakdown, func(i, j int) bool {
		return stats.ComponentBreakdown[i].Type.String() < stats.ComponentBreakdown[j].Type.String()
	})
	stats.ComponentTypeCount = len(stats.ComponentBreakdown)

	for t := range s.singletons {
		stats.SingletonTypes = append(stats.SingletonTypes, t)
	}
	sort.Sort(byTypeName(stats.SingletonTypes))

	return stats
}
