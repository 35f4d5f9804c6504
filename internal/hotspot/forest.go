package hotspot

import (
	"errors"
	"math"
	"math/rand"
	"sort"

	"github.com/goccy/go-json"
)

const (
	forestTreeCount     = 100
	forestSubsampleSize = 256
	forestSeed          = 42
)

// ErrNotFitted is returned when scoring is attempted on an unfitted forest.
var ErrNotFitted = errors.New("hotspot: isolation forest is not fitted")

// eulerGamma is the Euler-Mascheroni constant, used in the average path
// length normalizer.
const eulerGamma = 0.5772156649015329

// IsolationForest detects outliers by isolating points with random axis
// splits: anomalous points need fewer splits to isolate. Scores follow the
// usual convention of being negative, with values closer to -1 indicating
// stronger anomalies.
//
// Fitting is deterministic: the sampler is seeded with a fixed value so the
// same training set always yields the same forest.
type IsolationForest struct {
	Trees         []*forestNode `json:"trees"`
	SubsampleSize int           `json:"subsample_size"`
	Contamination float64       `json:"contamination"`

	// Offset is the score threshold separating outliers from inliers,
	// the contamination quantile of the training scores.
	Offset float64 `json:"offset"`

	// TrainingSize is the number of points the forest was fitted on.
	TrainingSize int `json:"training_size"`

	Fitted bool `json:"fitted"`
}

// forestNode is one node of an isolation tree. Leaves carry the size of the
// unsplit sample that reached them.
type forestNode struct {
	SplitAttr  int         `json:"split_attr"`
	SplitValue float64     `json:"split_value"`
	Left       *forestNode `json:"left,omitempty"`
	Right      *forestNode `json:"right,omitempty"`
	Size       int         `json:"size"`
}

// NewIsolationForest creates an unfitted forest with the given contamination
// fraction. Until Fit is called the forest cannot score points.
func NewIsolationForest(contamination float64) *IsolationForest {
	return &IsolationForest{Contamination: contamination}
}

// Fit trains the forest on the given feature matrix and derives the outlier
// threshold from the contamination fraction.
func (f *IsolationForest) Fit(x [][]float64) {
	n := len(x)
	if n == 0 {
		return
	}

	sample := forestSubsampleSize
	if sample > n {
		sample = n
	}
	heightLimit := int(math.Ceil(math.Log2(float64(sample) + 1)))

	rng := rand.New(rand.NewSource(forestSeed))
	f.SubsampleSize = sample
	f.TrainingSize = n
	f.Trees = make([]*forestNode, 0, forestTreeCount)
	for t := 0; t < forestTreeCount; t++ {
		idx := rng.Perm(n)[:sample]
		subset := make([][]float64, sample)
		for i, j := range idx {
			subset[i] = x[j]
		}
		f.Trees = append(f.Trees, buildTree(subset, 0, heightLimit, rng))
	}
	f.Fitted = true

	// Threshold at the contamination quantile of the training scores: the
	// lowest-scoring fraction of the training set is declared outlying.
	scores := make([]float64, n)
	for i, point := range x {
		scores[i], _ = f.Score(point)
	}
	sort.Float64s(scores)
	cut := int(math.Floor(f.Contamination * float64(n)))
	if cut >= n {
		cut = n - 1
	}
	f.Offset = scores[cut]
}

func buildTree(x [][]float64, depth, heightLimit int, rng *rand.Rand) *forestNode {
	if depth >= heightLimit || len(x) <= 1 {
		return &forestNode{SplitAttr: -1, Size: len(x)}
	}

	// Collect attributes that still vary within this partition.
	dims := len(x[0])
	splittable := make([]int, 0, dims)
	for d := 0; d < dims; d++ {
		lo, hi := minMax(x, d)
		if hi > lo {
			splittable = append(splittable, d)
		}
	}
	if len(splittable) == 0 {
		return &forestNode{SplitAttr: -1, Size: len(x)}
	}

	attr := splittable[rng.Intn(len(splittable))]
	lo, hi := minMax(x, attr)
	split := lo + rng.Float64()*(hi-lo)

	var left, right [][]float64
	for _, row := range x {
		if row[attr] < split {
			left = append(left, row)
		} else {
			right = append(right, row)
		}
	}

	return &forestNode{
		SplitAttr:  attr,
		SplitValue: split,
		Left:       buildTree(left, depth+1, heightLimit, rng),
		Right:      buildTree(right, depth+1, heightLimit, rng),
		Size:       len(x),
	}
}

func minMax(x [][]float64, attr int) (float64, float64) {
	lo, hi := x[0][attr], x[0][attr]
	for _, row := range x[1:] {
		v := row[attr]
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

// Score returns the anomaly score of one point in (-1, 0); lower means more
// anomalous. Returns ErrNotFitted when the forest has not been trained.
func (f *IsolationForest) Score(point []float64) (float64, error) {
	if !f.Fitted || len(f.Trees) == 0 {
		return 0, ErrNotFitted
	}

	total := 0.0
	for _, tree := range f.Trees {
		total += pathLength(tree, point, 0)
	}
	avgPath := total / float64(len(f.Trees))

	return -math.Pow(2, -avgPath/averagePathLength(f.SubsampleSize)), nil
}

// IsOutlier reports whether the point's score falls below the contamination
// threshold established during fitting.
func (f *IsolationForest) IsOutlier(point []float64) (bool, float64, error) {
	score, err := f.Score(point)
	if err != nil {
		return false, 0, err
	}
	return score < f.Offset, score, nil
}

func pathLength(node *forestNode, point []float64, depth int) float64 {
	if node.SplitAttr < 0 {
		return float64(depth) + averagePathLength(node.Size)
	}
	if point[node.SplitAttr] < node.SplitValue {
		return pathLength(node.Left, point, depth+1)
	}
	return pathLength(node.Right, point, depth+1)
}

// averagePathLength is c(n), the expected path length of an unsuccessful
// search in a binary search tree over n points.
func averagePathLength(n int) float64 {
	switch {
	case n <= 1:
		return 0
	case n == 2:
		return 1
	default:
		fn := float64(n)
		return 2*(math.Log(fn-1)+eulerGamma) - 2*(fn-1)/fn
	}
}

// MarshalBinary encodes the forest for the model blob store.
func (f *IsolationForest) MarshalBinary() ([]byte, error) {
	return json.Marshal(f)
}

// UnmarshalBinary decodes a forest previously written by MarshalBinary.
func (f *IsolationForest) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, f)
}
