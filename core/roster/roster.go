// Package roster reads the student and team spreadsheets teachers upload (.csv, .xls, .xlsx).
package roster

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/extrame/xls"
	"github.com/pkg/errors"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/xuri/excelize/v2"

	"github.com/SaramshGautam/collaBoard/core"
)

// Columns
const (
	ColFirstName = "firstname"
	ColLastName  = "lastname"
	ColEmail     = "email"
	ColLSUID     = "lsu_id"
	ColTeamName  = "teamname"
)

var (
	Extensions = []string{".csv", ".xls", ".xlsx"}

	StudentColumns = []string{ColFirstName, ColLastName, ColEmail, ColLSUID}
	TeamColumns    = []string{ColFirstName, ColLastName, ColEmail, ColLSUID, ColTeamName}

	ErrInvalidFileType = core.NewValidationError(
		errors.New("Invalid file type. Please upload a .csv, .xls or .xlsx file."),
		core.FieldError{Field: "file", Error: "only .csv, .xls and .xlsx files are allowed"},
	)

	// headers at least this similar to a column name are taken for it ("lastnmae", "e-mail"...)
	headerMinRatio = .85
	maxRows        = 5000
)

// Entry is one row of a roster or team file.
type Entry struct {
	Row       int // spreadsheet row number, header is row 1
	FirstName string
	LastName  string
	Email     string
	LSUID     string
	Team      string
}

// FullName returns "Last, First", the way names are displayed in teams.
func (e Entry) FullName() string {
	return e.LastName + ", " + e.FirstName
}

// CheckExtension rejects any file that is not a spreadsheet. It never reads the file.
func CheckExtension(filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range Extensions {
		if ext == allowed {
			return nil
		}
	}
	return ErrInvalidFileType
}

// ReadStudents parses a classroom roster.
func ReadStudents(filename string, r io.Reader) ([]Entry, error) {
	return read(filename, r, StudentColumns)
}

// ReadTeams parses a team import file: a roster with an extra team name column.
func ReadTeams(filename string, r io.Reader) ([]Entry, error) {
	entries, err := read(filename, r, TeamColumns)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.Team == "" {
			return nil, core.NewValidationError(fmt.Errorf("Row %d: team name is missing.", e.Row))
		}
	}
	return entries, nil
}

func read(filename string, r io.Reader, columns []string) ([]Entry, error) {
	if err := CheckExtension(filename); err != nil {
		return nil, err
	}

	var records [][]string
	var err error
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		records, err = readCSV(r)
	case ".xlsx":
		records, err = readXLSX(r)
	case ".xls":
		records, err = readXLS(r)
	}
	if err != nil {
		return nil, core.NewValidationError(errors.Wrap(err, "Could not read the uploaded file"))
	}
	if len(records) == 0 {
		return nil, core.NewValidationError(errors.New("The uploaded file is empty."))
	}
	if len(records) > maxRows+1 {
		return nil, core.NewValidationError(fmt.Errorf("The uploaded file has more than %d rows.", maxRows))
	}

	index, err := mapHeader(records[0], columns)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(records)-1)
	for i, rec := range records[1:] {
		if blank(rec) {
			continue
		}
		cell := func(col string) string {
			j, ok := index[col]
			if !ok || j >= len(rec) {
				return ""
			}
			return core.CleanString(rec[j])
		}
		e := Entry{
			Row:       i + 2,
			FirstName: cell(ColFirstName),
			LastName:  cell(ColLastName),
			Email:     core.CleanString(cell(ColEmail), true /* lower */),
			LSUID:     cell(ColLSUID),
			Team:      cell(ColTeamName),
		}
		if e.FirstName == "" || e.LastName == "" || e.Email == "" {
			return nil, core.NewValidationError(
				fmt.Errorf("Row %d: firstname, lastname and email are required.", e.Row),
			)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// NormalizeHeader turns "First Name", "FirstName" or " first-name " into "first_name".
func NormalizeHeader(h string) string {
	h = strings.TrimPrefix(strings.TrimSpace(h), "\ufeff")
	h = strings.NewReplacer(" ", "_", "-", "_", ".", "_").Replace(h)
	h = snakeCase(h)
	for strings.Contains(h, "__") {
		h = strings.ReplaceAll(h, "__", "_")
	}
	return strings.Trim(h, "_")
}

// snakeCase splits camel case words ("FirstName" -> "first_name") and lowercases the rest.
// Runs of capitals stay together: "LSUID" -> "lsuid".
func snakeCase(h string) string {
	runes := []rune(h)
	var b strings.Builder
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			if unicode.IsLower(prev) || unicode.IsDigit(prev) {
				b.WriteRune('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

func squash(h string) string {
	return strings.ReplaceAll(h, "_", "")
}

func similarity(a, b string) float64 {
	m := difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, ""))
	return m.Ratio()
}

// mapHeader finds the index of every required column.
func mapHeader(header []string, columns []string) (map[string]int, error) {
	normalized := make([]string, len(header))
	for i, h := range header {
		normalized[i] = squash(NormalizeHeader(h))
	}

	index := make(map[string]int, len(columns))
	missing := make([]string, 0)
	for _, col := range columns {
		want := squash(col)
		found := -1
		for i, h := range normalized {
			if h == want {
				found = i
				break
			}
		}
		if found < 0 {
			best := headerMinRatio
			for i, h := range normalized {
				if h == "" {
					continue
				}
				if ratio := similarity(h, want); ratio >= best {
					best, found = ratio, i
				}
			}
		}
		if found < 0 {
			missing = append(missing, col)
			continue
		}
		index[col] = found
	}

	if len(missing) > 0 {
		return nil, core.NewValidationError(
			fmt.Errorf("Missing required columns: %s", strings.Join(missing, ", ")),
		)
	}
	return index, nil
}

func blank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func readCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	return cr.ReadAll()
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	return f.GetRows(sheets[0])
}

func readXLS(r io.Reader) ([][]string, error) {
	// the xls reader needs to seek
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	wb, err := xls.OpenReader(bytes.NewReader(content), "utf-8")
	if err != nil {
		return nil, err
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, nil
	}

	records := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			records = append(records, nil)
			continue
		}
		rec := make([]string, 0, row.LastCol())
		for j := 0; j < row.LastCol(); j++ {
			rec = append(rec, row.Col(j))
		}
		records = append(records, rec)
	}
	// leading empty rows are not a header
	for len(records) > 0 && blank(records[0]) {
		records = records[1:]
	}
	return records, nil
}

// File is an uploaded spreadsheet.
type File struct {
	Name string
	Open func() (io.ReadCloser, error)
}

// Students checks the extension, then parses the file as a roster.
func (f File) Students() ([]Entry, error) {
	return f.read(ReadStudents)
}

// Teams checks the extension, then parses the file as a team import.
func (f File) Teams() ([]Entry, error) {
	return f.read(ReadTeams)
}

func (f File) read(parse func(string, io.Reader) ([]Entry, error)) ([]Entry, error) {
	if err := CheckExtension(f.Name); err != nil {
		return nil, err
	}
	rc, err := f.Open()
	if err != nil {
		return nil, errors.Wrap(err, "opening uploaded file")
	}
	defer func() { _ = rc.Close() }()
	return parse(f.Name, rc)
}
