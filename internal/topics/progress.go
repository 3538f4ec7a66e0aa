package topics

import "github.com/tgienger/perplex/internal/models"

// Progress counts closed topics against all topics of a meeting.
type Progress struct {
	Done  int
	Total int
}

// ProgressOf computes the progress of list.
func ProgressOf(list []models.Topic) Progress {
	p := Progress{Total: len(list)}
	for _, t := range list {
		if t.Closed() {
			p.Done++
		}
	}
	return p
}

// Ratio is Done/Total, or 0 for an empty meeting.
func (p Progress) Ratio() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Done) / float64(p.Total)
}
