// Package features converts raw candidate records into the fixed-length
// numeric vectors consumed by the clustering strategies.
//
// Encoding, per field:
//   - years_experience: numeric, missing values imputed with the population mean
//   - education_level: ordinal rank (none=0 .. doctorate=4), unknown maps to 0
//   - desired_salary: numeric, missing values imputed with the population mean
//   - skill_count: number of listed skills
//   - primary_skill: one-hot over the top OneHotMax most frequent values,
//     everything else bucketed as "other"
//   - location and the full skills set are excluded from the distance space;
//     the summarizer reports them instead
//
// Every column is standardized to zero mean and unit variance. The fitted
// Scaler is returned so a later incremental assignment can map new candidates
// into the same space; without it every run is a full re-fit.
package features

import (
	"fmt"
	"math"
	"sort"

	commonerrors "talentads-workers/internal/common/errors"
	"talentads-workers/internal/models"
)

const otherBucket = "other"

type Options struct {
	OneHotMax     int // cap on one-hot primary_skill columns
	MinCandidates int // floor on complete records
	RequestedK    int // requested cluster count; requires 2*k complete records
}

// Matrix is the standardized feature matrix plus the parameters used to
// build it. Rows are in input candidate order, one row per candidate.
type Matrix struct {
	Rows   [][]float64
	Names  []string
	Scaler *Scaler
}

// Scaler holds per-column standardization parameters fitted on one run.
type Scaler struct {
	Means []float64
	Stds  []float64
}

// Transform standardizes a raw vector in place using the fitted parameters.
// Zero-variance columns stay at zero.
func (s *Scaler) Transform(vec []float64) {
	for i := range vec {
		if s.Stds[i] == 0 {
			vec[i] = 0
			continue
		}
		vec[i] = (vec[i] - s.Means[i]) / s.Stds[i]
	}
}

// complete reports whether a candidate carries enough profile signal to
// anchor a vector; fully blank records are only imputation noise.
func complete(c *models.Candidate) bool {
	return c.YearsExperience != nil || c.EducationLevel != "" || c.PrimarySkill != ""
}

// Build constructs the standardized feature matrix for the candidate set.
// It fails with INSUFFICIENT_DATA when fewer than
// max(MinCandidates, 2*RequestedK) candidates have complete records.
func Build(candidates []models.Candidate, opts Options) (*Matrix, error) {
	if opts.OneHotMax <= 0 {
		opts.OneHotMax = 8
	}

	completeCount := 0
	for i := range candidates {
		if complete(&candidates[i]) {
			completeCount++
		}
	}

	required := opts.MinCandidates
	if 2*opts.RequestedK > required {
		required = 2 * opts.RequestedK
	}
	if completeCount < required {
		return nil, commonerrors.NewInsufficientDataError(completeCount, required)
	}

	expMean := meanExperience(candidates)
	salaryMean := meanSalary(candidates)
	topSkills := topPrimarySkills(candidates, opts.OneHotMax)

	names := []string{"years_experience", "education_rank", "desired_salary", "skill_count"}
	for _, s := range topSkills {
		names = append(names, "primary_skill="+s)
	}
	names = append(names, "primary_skill="+otherBucket)

	skillIndex := make(map[string]int, len(topSkills))
	for i, s := range topSkills {
		skillIndex[s] = 4 + i
	}
	otherCol := len(names) - 1

	rows := make([][]float64, len(candidates))
	for i := range candidates {
		c := &candidates[i]
		row := make([]float64, len(names))

		if c.YearsExperience != nil {
			row[0] = *c.YearsExperience
		} else {
			row[0] = expMean
		}
		row[1] = float64(models.EducationRank(c.EducationLevel))
		if c.DesiredSalary != nil {
			row[2] = float64(*c.DesiredSalary)
		} else {
			row[2] = salaryMean
		}
		row[3] = float64(len(c.Skills))

		if c.PrimarySkill != "" {
			if col, ok := skillIndex[c.PrimarySkill]; ok {
				row[col] = 1
			} else {
				row[otherCol] = 1
			}
		}

		rows[i] = row
	}

	scaler := fitScaler(rows)
	for _, row := range rows {
		scaler.Transform(row)
	}

	return &Matrix{Rows: rows, Names: names, Scaler: scaler}, nil
}

func meanExperience(candidates []models.Candidate) float64 {
	sum, n := 0.0, 0
	for i := range candidates {
		if candidates[i].YearsExperience != nil {
			sum += *candidates[i].YearsExperience
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func meanSalary(candidates []models.Candidate) float64 {
	sum, n := 0.0, 0
	for i := range candidates {
		if candidates[i].DesiredSalary != nil {
			sum += float64(*candidates[i].DesiredSalary)
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// topPrimarySkills returns the most frequent primary skills, frequency
// descending with alphabetical tie-break so column order is reproducible.
func topPrimarySkills(candidates []models.Candidate, max int) []string {
	counts := make(map[string]int)
	for i := range candidates {
		if s := candidates[i].PrimarySkill; s != "" {
			counts[s]++
		}
	}

	skills := make([]string, 0, len(counts))
	for s := range counts {
		skills = append(skills, s)
	}
	sort.Slice(skills, func(i, j int) bool {
		if counts[skills[i]] != counts[skills[j]] {
			return counts[skills[i]] > counts[skills[j]]
		}
		return skills[i] < skills[j]
	})

	if len(skills) > max {
		skills = skills[:max]
	}
	return skills
}

func fitScaler(rows [][]float64) *Scaler {
	if len(rows) == 0 {
		return &Scaler{}
	}
	cols := len(rows[0])
	means := make([]float64, cols)
	stds := make([]float64, cols)

	for _, row := range rows {
		for j, v := range row {
			means[j] += v
		}
	}
	n := float64(len(rows))
	for j := range means {
		means[j] /= n
	}

	for _, row := range rows {
		for j, v := range row {
			d := v - means[j]
			stds[j] += d * d
		}
	}
	for j := range stds {
		stds[j] = math.Sqrt(stds[j] / n)
	}

	return &Scaler{Means: means, Stds: stds}
}

// VectorFor builds and standardizes the vector of a single new candidate
// against a previously fitted matrix.
func (m *Matrix) VectorFor(c models.Candidate) ([]float64, error) {
	if len(m.Names) == 0 || m.Scaler == nil {
		return nil, fmt.Errorf("matrix has no fitted scaler")
	}

	row := make([]float64, len(m.Names))
	if c.YearsExperience != nil {
		row[0] = *c.YearsExperience
	} else {
		row[0] = m.Scaler.Means[0]
	}
	row[1] = float64(models.EducationRank(c.EducationLevel))
	if c.DesiredSalary != nil {
		row[2] = float64(*c.DesiredSalary)
	} else {
		row[2] = m.Scaler.Means[2]
	}
	row[3] = float64(len(c.Skills))

	if c.PrimarySkill != "" {
		matched := false
		for j, name := range m.Names {
			if name == "primary_skill="+c.PrimarySkill {
				row[j] = 1
				matched = true
				break
			}
		}
		if !matched {
			row[len(row)-1] = 1
		}
	}

	m.Scaler.Transform(row)
	return row, nil
}
