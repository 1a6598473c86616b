package model

// GradeLevel is a school grade drawn from the fixed ordered catalog.
// Primary school covers Standard 1-6, secondary school Form 1-5.
type GradeLevel string

const (
	GradeStandard1 GradeLevel = "standard-1"
	GradeStandard2 GradeLevel = "standard-2"
	GradeStandard3 GradeLevel = "standard-3"
	GradeStandard4 GradeLevel = "standard-4"
	GradeStandard5 GradeLevel = "standard-5"
	GradeStandard6 GradeLevel = "standard-6"
	GradeForm1     GradeLevel = "form-1"
	GradeForm2     GradeLevel = "form-2"
	GradeForm3     GradeLevel = "form-3"
	GradeForm4     GradeLevel = "form-4"
	GradeForm5     GradeLevel = "form-5"
)

// gradeStages groups the catalog by school stage, in ascending order.
// Exam content never crosses a stage boundary.
var gradeStages = [][]GradeLevel{
	{GradeStandard1, GradeStandard2, GradeStandard3, GradeStandard4, GradeStandard5, GradeStandard6},
	{GradeForm1, GradeForm2, GradeForm3, GradeForm4, GradeForm5},
}

// levelLookback is how many preceding grades of the same stage a student's
// exams may recycle questions from.
const levelLookback = 2

// IsValidGrade reports whether level is part of the catalog.
func IsValidGrade(level GradeLevel) bool {
	for _, stage := range gradeStages {
		for _, g := range stage {
			if g == level {
				return true
			}
		}
	}
	return false
}

// AllowedSourceLevels resolves a student's grade to the set of grades their
// exam questions may be drawn from: the grade itself plus up to two preceding
// grades in the same school stage. The first grade of a stage draws only from
// itself.
func AllowedSourceLevels(level GradeLevel) []GradeLevel {
	for _, stage := range gradeStages {
		for i, g := range stage {
			if g != level {
				continue
			}
			start := i - levelLookback
			if start < 0 {
				start = 0
			}
			allowed := make([]GradeLevel, 0, i-start+1)
			allowed = append(allowed, stage[start:i+1]...)
			return allowed
		}
	}
	return nil
}
