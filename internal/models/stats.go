package models

// AssetStats holds grouped asset counts for dashboards. A value with no
// assets has no entry.
type AssetStats struct {
	ByStatus        map[string]int `json:"byStatus"`
	ByEquipmentType map[string]int `json:"byEquipmentType"`
	ByArea          map[string]int `json:"byArea"`
	ByLocation      map[string]int `json:"byLocation"`
	Total           int            `json:"total"`
}

// NewAssetStats returns empty stats ready for Add.
func NewAssetStats() AssetStats {
	return AssetStats{
		ByStatus:        map[string]int{},
		ByEquipmentType: map[string]int{},
		ByArea:          map[string]int{},
		ByLocation:      map[string]int{},
	}
}

// Add folds n assets sharing the given dimension values into the stats.
func (s *AssetStats) Add(status, equipmentType, area, location string, n int) {
	if n <= 0 {
		return
	}
	s.ByStatus[status] += n
	s.ByEquipmentType[equipmentType] += n
	s.ByArea[area] += n
	s.ByLocation[location] += n
	s.Total += n
}

// AddAsset folds one asset into the stats.
func (s *AssetStats) AddAsset(a Asset) {
	s.Add(string(a.Status), string(a.EquipmentType), a.Area, string(a.Location), 1)
}
