package kmtree

import (
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
)

// LevelCluster is one level-L cluster with its member set.
type LevelCluster struct {
	// Label is the dense 0-based slot of the cluster on the chosen level.
	Label int

	// Members holds the dataset rows labeled with Label.
	Members *roaring.Bitmap
}

// LevelClusters groups the level-L labels into per-cluster membership
// bitmaps, sorted by label. Empty slots are omitted. The second return
// value is the maximum level of the tree.
func (t *KMTree) LevelClusters(levelL int) ([]LevelCluster, int, error) {
	labels, maxLevel, err := t.LevelLabels(levelL)
	if err != nil {
		return nil, maxLevel, err
	}

	byLabel := make(map[int]*roaring.Bitmap)
	for id, label := range labels {
		bm, ok := byLabel[label]
		if !ok {
			bm = roaring.New()
			byLabel[label] = bm
		}
		bm.Add(uint32(id))
	}

	clusters := make([]LevelCluster, 0, len(byLabel))
	for label, bm := range byLabel {
		clusters = append(clusters, LevelCluster{Label: label, Members: bm})
	}
	sort.Slice(clusters, func(i, j int) bool {
		return clusters[i].Label < clusters[j].Label
	})

	return clusters, maxLevel, nil
}
