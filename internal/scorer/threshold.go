package scorer

import (
	"math"
	"sort"

	"github.com/rotisserie/eris"
)

// FitThreshold returns the threshold t maximizing the accuracy of the
// decision score >= t against labels. Candidates are every distinct score
// plus +Inf, which predicts every sample negative. Ties go to the higher
// threshold.
func FitThreshold(scores []float64, labels []bool) (float64, error) {
	if err := checkSample(scores, labels); err != nil {
		return 0, err
	}

	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	// Start at +Inf: every sample predicted negative.
	correct := 0
	for _, l := range labels {
		if !l {
			correct++
		}
	}
	best, bestThr := correct, math.Inf(1)

	for i := 0; i < len(order); {
		s := scores[order[i]]
		// Lowering the threshold to s flips every sample scoring s to positive.
		for ; i < len(order) && scores[order[i]] == s; i++ {
			if labels[order[i]] {
				correct++
			} else {
				correct--
			}
		}
		if correct > best {
			best, bestThr = correct, s
		}
	}
	return bestThr, nil
}

// Accuracy returns the fraction of samples where score >= t agrees with the label.
func Accuracy(scores []float64, labels []bool, t float64) (float64, error) {
	if err := checkSample(scores, labels); err != nil {
		return 0, err
	}
	correct := 0
	for i, s := range scores {
		if (s >= t) == labels[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(scores)), nil
}

func checkSample(scores []float64, labels []bool) error {
	if len(scores) != len(labels) {
		return eris.Errorf("scorer: %d scores but %d labels", len(scores), len(labels))
	}
	if len(scores) == 0 {
		return ErrNoPredictions
	}
	for i, s := range scores {
		if math.IsNaN(s) {
			return eris.Errorf("scorer: sample %d has NaN score", i)
		}
	}
	return nil
}
