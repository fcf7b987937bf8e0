package refdata

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// Source CSV filenames, as published in the Kaggle symptom/disease set.
const (
	datasetCSV     = "dataset.csv"
	severityCSV    = "Symptom-severity.csv"
	descriptionCSV = "symptom_Description.csv"
	precautionCSV  = "symptom_precaution.csv"
	dietCSV        = "Personalized_Diet_Recommendations.csv"
)

const schema = `
CREATE TABLE severity (symptom TEXT PRIMARY KEY, weight INTEGER NOT NULL);
CREATE TABLE description (disease TEXT PRIMARY KEY, description TEXT NOT NULL);
CREATE TABLE precaution (disease TEXT NOT NULL, position INTEGER NOT NULL, precaution TEXT NOT NULL);
CREATE TABLE diet (chronic_condition TEXT, meal_plan TEXT NOT NULL, calories INTEGER, protein_g REAL, carbs_g REAL, fats_g REAL);
CREATE TABLE association (disease TEXT NOT NULL, symptom TEXT NOT NULL, cases INTEGER NOT NULL);
CREATE INDEX idx_association_disease ON association(disease);
`

// ImportCSVDir builds a SQLite data pack from the source CSV tables.
// An existing pack at dbPath is replaced.
func ImportCSVDir(csvDir, dbPath string) error {
	os.Remove(dbPath)

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return fmt.Errorf("could not create data pack: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("could not create schema: %w", err)
	}

	steps := []struct {
		file string
		fn   func(*sql.Tx, [][]string) error
	}{
		{severityCSV, importSeverity},
		{descriptionCSV, importDescriptions},
		{precautionCSV, importPrecautions},
		{dietCSV, importDiets},
		{datasetCSV, importAssociations},
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, step := range steps {
		records, err := readCSV(filepath.Join(csvDir, step.file))
		if err != nil {
			return fmt.Errorf("%s: %w", step.file, err)
		}
		if err := step.fn(tx, records); err != nil {
			return fmt.Errorf("%s: %w", step.file, err)
		}
	}

	return tx.Commit()
}

// readCSV reads a full CSV file including its header row.
func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("no data rows")
	}
	return records, nil
}

// columnIndex finds a header column by name, case-insensitively.
func columnIndex(header []string, name string) (int, bool) {
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i, true
		}
	}
	return 0, false
}

func importSeverity(tx *sql.Tx, records [][]string) error {
	for _, row := range records[1:] {
		if len(row) < 2 {
			continue
		}
		weight, err := strconv.Atoi(strings.TrimSpace(row[1]))
		if err != nil {
			continue
		}
		if _, err := tx.Exec("INSERT OR REPLACE INTO severity (symptom, weight) VALUES (?, ?)",
			strings.TrimSpace(row[0]), weight); err != nil {
			return err
		}
	}
	return nil
}

func importDescriptions(tx *sql.Tx, records [][]string) error {
	for _, row := range records[1:] {
		if len(row) < 2 {
			continue
		}
		if _, err := tx.Exec("INSERT OR REPLACE INTO description (disease, description) VALUES (?, ?)",
			strings.TrimSpace(row[0]), strings.TrimSpace(row[1])); err != nil {
			return err
		}
	}
	return nil
}

func importPrecautions(tx *sql.Tx, records [][]string) error {
	for _, row := range records[1:] {
		if len(row) < 2 {
			continue
		}
		disease := strings.TrimSpace(row[0])
		// Up to four precaution columns follow the disease.
		for pos, cell := range row[1:] {
			if pos >= 4 {
				break
			}
			if cell = strings.TrimSpace(cell); cell == "" {
				continue
			}
			if _, err := tx.Exec("INSERT INTO precaution (disease, position, precaution) VALUES (?, ?, ?)",
				disease, pos+1, cell); err != nil {
				return err
			}
		}
	}
	return nil
}

func importDiets(tx *sql.Tx, records [][]string) error {
	header := records[0]
	chronicCol, _ := columnIndex(header, "Chronic_Disease")
	mealCol, ok := columnIndex(header, "Recommended_Meal_Plan")
	if !ok {
		return fmt.Errorf("missing Recommended_Meal_Plan column")
	}
	caloriesCol, _ := columnIndex(header, "Recommended_Calories")
	proteinCol, _ := columnIndex(header, "Recommended_Protein")
	carbsCol, _ := columnIndex(header, "Recommended_Carbs")
	fatsCol, _ := columnIndex(header, "Recommended_Fats")

	cell := func(row []string, i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	for _, row := range records[1:] {
		meal := cell(row, mealCol)
		if meal == "" {
			continue
		}
		calories, _ := strconv.Atoi(cell(row, caloriesCol))
		protein, _ := strconv.ParseFloat(cell(row, proteinCol), 64)
		carbs, _ := strconv.ParseFloat(cell(row, carbsCol), 64)
		fats, _ := strconv.ParseFloat(cell(row, fatsCol), 64)

		if _, err := tx.Exec(
			"INSERT INTO diet (chronic_condition, meal_plan, calories, protein_g, carbs_g, fats_g) VALUES (?, ?, ?, ?, ?, ?)",
			cell(row, chronicCol), meal, calories, protein, carbs, fats); err != nil {
			return err
		}
	}
	return nil
}

// importAssociations aggregates the disease/symptom dataset into
// per-pair case counts. Symptom cells may hold comma-joined lists.
func importAssociations(tx *sql.Tx, records [][]string) error {
	counts := make(map[string]map[string]int)

	for _, row := range records[1:] {
		if len(row) < 2 {
			continue
		}
		disease := strings.TrimSpace(row[0])
		if disease == "" {
			continue
		}
		if counts[disease] == nil {
			counts[disease] = make(map[string]int)
		}
		for _, cell := range row[1:] {
			for _, symptom := range strings.Split(cell, ",") {
				if symptom = strings.TrimSpace(symptom); symptom != "" {
					counts[disease][symptom]++
				}
			}
		}
	}

	for disease, symptoms := range counts {
		for symptom, cases := range symptoms {
			if _, err := tx.Exec("INSERT INTO association (disease, symptom, cases) VALUES (?, ?, ?)",
				disease, symptom, cases); err != nil {
				return err
			}
		}
	}
	return nil
}
