package subject

import (
	"time"

	"github.com/studyhubapp/studyhub/core"
)

// Exam types that may be recorded at most once per subject.
const (
	ExamQuarterly  = "Quarterly"
	ExamHalfYearly = "Half Yearly"
	ExamAnnually   = "Annually"
)

// Exam types that repeat and carry an exam number.
const (
	ExamMidTerm      = "Mid-Term"
	ExamUnitTest     = "Unit Test"
	ExamRevisionTest = "Revision Test"
)

// singleInstanceExams maps each known exam type to whether it is one-shot.
var singleInstanceExams = map[string]bool{
	ExamQuarterly:    true,
	ExamHalfYearly:   true,
	ExamAnnually:     true,
	ExamMidTerm:      false,
	ExamUnitTest:     false,
	ExamRevisionTest: false,
}

// IsSingleInstanceExam reports whether examType admits only one mark per
// subject. The second return is false for unknown types.
func IsSingleInstanceExam(examType string) (single, known bool) {
	single, known = singleInstanceExams[examType]
	return
}

type (
	Subject struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		Code      string    `json:"code"`
		MaxMarks  float64   `json:"max_marks"`
		OwnerID   string    `json:"-"`
		CreatedAt time.Time `json:"created_at"`
	}

	NewSubject struct {
		Name     string  `json:"name" validate:"required"`
		Code     string  `json:"code" validate:"required,alphanum_"`
		MaxMarks float64 `json:"max_marks" validate:"required,gt=0"`
	}

	Mark struct {
		ID         string    `json:"id"`
		SubjectID  string    `json:"subject_id"`
		ExamType   string    `json:"exam_type"`
		ExamNumber int       `json:"exam_number,omitempty"`
		ExamDate   string    `json:"exam_date"`
		Value      float64   `json:"value"`
		OwnerID    string    `json:"-"`
		CreatedAt  time.Time `json:"created_at"`
	}

	NewMark struct {
		SubjectID  string  `json:"subject_id" validate:"required"`
		ExamType   string  `json:"exam_type" validate:"required"`
		ExamNumber int     `json:"exam_number" validate:"omitempty,gte=1"`
		ExamDate   string  `json:"exam_date" validate:"required,dateonly"`
		Value      float64 `json:"value" validate:"gte=0"`
	}
)

func (ns *NewSubject) Validate(ownerID string, svc *Service) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Code = core.CleanString(ns.Code)
	if err := core.Validate.Struct(ns); err != nil {
		return err
	}
	return svc.checkSubjectUniqueness(ownerID, ns.Name, ns.Code)
}

// Percentage of a mark against the subject's maximum.
func (m *Mark) Percentage(maxMarks float64) float64 {
	if maxMarks <= 0 {
		return 0
	}
	return m.Value / maxMarks * 100
}
