package dataset

import (
    "encoding/csv"
    "math/rand"
    "os"
    "path/filepath"
    "strconv"
)

var exitClasses = []string{"Unknown/Other", "Permanent Exit", "Emergency Shelter", "Temporary Exit", "Transitional Housing"}
var incomeSources = []string{"Employment", "Benefits", "None", "Informal"}
var householdTypes = []string{"Single", "Couple", "Family", "Single Parent"}

// GenerateSyntheticExits writes a synthetic five-class case-exit dataset to
// outPath. The target is the last column, exit_status. A handful of cells are
// left blank so the imputation path gets exercised on realistic input.
func GenerateSyntheticExits(n int, seed int64, outPath string) error {
    if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
        return err
    }
    f, err := os.Create(outPath)
    if err != nil {
        return err
    }
    defer f.Close()

    w := csv.NewWriter(f)
    defer w.Flush()

    header := []string{"case_id", "age", "income", "household_size", "household_type", "income_source", "days_enrolled", "prior_stays", "exit_status"}
    if err := w.Write(header); err != nil {
        return err
    }

    rng := rand.New(rand.NewSource(seed))
    for i := 0; i < n; i++ {
        caseID := "C" + strconv.Itoa(100000+i)
        age := 18 + rng.Intn(62)
        income := rng.Float64() * 4200
        hhSize := 1 + rng.Intn(6)
        hhType := householdTypes[rng.Intn(len(householdTypes))]
        src := incomeSources[rng.Intn(len(incomeSources))]
        days := 7 + rng.Intn(700)
        stays := rng.Intn(5)

        // The class depends on income and enrollment length so trained
        // models have signal to pick up.
        var cls string
        switch {
        case income > 2500 && stays == 0:
            cls = pickWeighted(rng, []string{"Permanent Exit", "Temporary Exit"}, 0.8)
        case income > 1200:
            cls = pickWeighted(rng, []string{"Temporary Exit", "Transitional Housing"}, 0.6)
        case days > 400:
            cls = pickWeighted(rng, []string{"Transitional Housing", "Emergency Shelter"}, 0.6)
        case stays >= 2:
            cls = pickWeighted(rng, []string{"Emergency Shelter", "Unknown/Other"}, 0.7)
        default:
            cls = exitClasses[rng.Intn(len(exitClasses))]
        }

        incomeCell := strconv.FormatFloat(income, 'f', 2, 64)
        if rng.Float64() < 0.03 {
            incomeCell = ""
        }
        ageCell := strconv.Itoa(age)
        if rng.Float64() < 0.01 {
            ageCell = ""
        }

        rec := []string{
            caseID,
            ageCell,
            incomeCell,
            strconv.Itoa(hhSize),
            hhType,
            src,
            strconv.Itoa(days),
            strconv.Itoa(stays),
            cls,
        }
        if err := w.Write(rec); err != nil {
            return err
        }
    }
    return nil
}

func pickWeighted(rng *rand.Rand, pair []string, p float64) string {
    if rng.Float64() < p {
        return pair[0]
    }
    return pair[1]
}
