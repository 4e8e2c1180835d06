package subject

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

// Performance bands derived from a subject's average percentage.
const (
	BandExcellent        = "Excellent"
	BandGood             = "Good"
	BandNeedsImprovement = "Needs Improvement"
)

type (
	// SubjectStats aggregates a subject's recorded marks.
	SubjectStats struct {
		Subject    Subject `json:"subject"`
		Marks      []Mark  `json:"marks"`
		AveragePct float64 `json:"average_pct"`
		Band       string  `json:"band"`
	}

	// ExamTypeStats aggregates marks sharing an exam type across subjects.
	ExamTypeStats struct {
		ExamType   string  `json:"exam_type"`
		Count      int     `json:"count"`
		AveragePct float64 `json:"average_pct"`
	}

	// Overview wraps per-subject stats with the owner's overall average
	// across every recorded mark.
	Overview struct {
		Subjects   []SubjectStats  `json:"subjects"`
		ExamTypes  []ExamTypeStats `json:"exam_types"`
		OverallPct float64         `json:"overall_pct"`
		Band       string          `json:"band"`
	}
)

// examTypeOrder fixes the display order of exam type aggregates.
var examTypeOrder = []string{
	ExamQuarterly, ExamHalfYearly, ExamAnnually,
	ExamMidTerm, ExamUnitTest, ExamRevisionTest,
}

// PerformanceBand classifies an average percentage.
func PerformanceBand(pct float64) string {
	switch {
	case pct >= 80:
		return BandExcellent
	case pct >= 60:
		return BandGood
	}
	return BandNeedsImprovement
}

// ExamLabel is the display form of a mark's exam, e.g. "Unit Test 2".
func ExamLabel(m Mark) string {
	if single, _ := IsSingleInstanceExam(m.ExamType); single || m.ExamNumber == 0 {
		return m.ExamType
	}
	return fmt.Sprintf("%s %d", m.ExamType, m.ExamNumber)
}

// Overview returns per-subject aggregates plus the overall average.
func (svc *Service) Overview(ctx context.Context, ownerID string) (Overview, error) {
	stats, err := svc.Stats(ctx, ownerID)
	if err != nil {
		return Overview{}, err
	}

	ov := Overview{Subjects: stats, ExamTypes: make([]ExamTypeStats, 0)}
	var total float64
	var count int
	byExam := make(map[string]*ExamTypeStats)
	for _, st := range stats {
		for _, m := range st.Marks {
			pct := m.Percentage(st.Subject.MaxMarks)
			total += pct
			count++

			et, ok := byExam[m.ExamType]
			if !ok {
				et = &ExamTypeStats{ExamType: m.ExamType}
				byExam[m.ExamType] = et
			}
			et.Count++
			et.AveragePct += pct
		}
	}
	if count > 0 {
		ov.OverallPct = total / float64(count)
	}
	ov.Band = PerformanceBand(ov.OverallPct)

	for _, examType := range examTypeOrder {
		if et, ok := byExam[examType]; ok {
			et.AveragePct /= float64(et.Count)
			ov.ExamTypes = append(ov.ExamTypes, *et)
		}
	}
	return ov, nil
}

// Stats returns per-subject aggregates for all of the owner's subjects.
// Subjects without marks have a zero average and the lowest band.
func (svc *Service) Stats(ctx context.Context, ownerID string) ([]SubjectStats, error) {
	subs, err := svc.repo.QuerySubjects(ctx, ownerID)
	if err != nil {
		return nil, errors.Wrap(err, "querying subjects")
	}
	marks, err := svc.repo.QueryAllMarks(ctx, ownerID)
	if err != nil {
		return nil, errors.Wrap(err, "querying marks")
	}

	bySubject := make(map[string][]Mark, len(subs))
	for _, m := range marks {
		bySubject[m.SubjectID] = append(bySubject[m.SubjectID], m)
	}

	stats := make([]SubjectStats, 0, len(subs))
	for _, sub := range subs {
		st := SubjectStats{Subject: sub, Marks: bySubject[sub.ID]}
		if len(st.Marks) > 0 {
			var total float64
			for _, m := range st.Marks {
				total += m.Percentage(sub.MaxMarks)
			}
			st.AveragePct = total / float64(len(st.Marks))
		}
		st.Band = PerformanceBand(st.AveragePct)
		stats = append(stats, st)
	}
	return stats, nil
}
