package properties

import (
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func ptr[T any](v T) *T { return &v }

func fullProperty() Property {
	return Property{
		PropertyTitle:       "Lake House",
		PropertyType:        "Resedentil",
		PropertyDescription: "Two storey",
		BuilderName:         "Lodha",
		PropertyID:          "LH-7",
		ParentProperty:      "Lake Estate",
		Status:              "available",
		Label:               "new",
		Material:            "brick",
		Location:            "Pune",
		PinCode:             "411001",
		BuiltDimentions:     "40x60",
		Rooms:               ptr(6),
		Bedsroom:            ptr(3),
		Kitchen:             ptr(1),
		BHK:                 ptr(3),
		YearBuilt:           ptr(2019),
		TotalhomeArea:       ptr(2400.5),
		OpenArea:            ptr(300.0),
		Price:               ptr(9500000.0),
		Area:                ptr(2700.0),
		Amenities:           []string{"pool", "gym"},
		FeatureImage:        "1700000000000.png",
	}
}

// rowScanner fills scan destinations from a row keyed by column name, in the
// order the projection lists its columns.
type rowScanner struct {
	columns []string
	row     map[string]any
}

func (s rowScanner) Scan(dest ...any) error {
	if len(dest) != len(s.columns) {
		return fmt.Errorf("scan: %d destinations for %d columns", len(dest), len(s.columns))
	}
	for i, d := range dest {
		v, ok := s.row[s.columns[i]]
		if !ok {
			return fmt.Errorf("scan: no value for column %s", s.columns[i])
		}
		target := reflect.ValueOf(d).Elem()
		value := reflect.ValueOf(v)
		if !value.Type().AssignableTo(target.Type()) {
			if !value.Type().ConvertibleTo(target.Type()) {
				return fmt.Errorf("scan: column %s: %s into %s", s.columns[i], value.Type(), target.Type())
			}
			value = value.Convert(target.Type())
		}
		target.Set(value)
	}
	return nil
}

func projectedColumns() []string {
	cols := make([]string, 0, len(projection.ColumnList()))
	for _, c := range projection.ColumnList() {
		cols = append(cols, strings.TrimPrefix(c, projection.Alias()+"."))
	}
	return cols
}

func TestWriteArgsMatchColumns(t *testing.T) {
	args, err := writeArgs(uuid.New(), fullProperty())
	if err != nil {
		t.Fatalf("writeArgs() error = %v", err)
	}

	if len(args) != len(writeColumns)+1 {
		t.Fatalf("writeArgs() = %d args, want id + %d columns", len(args), len(writeColumns))
	}

	projected := make(map[string]bool)
	for _, c := range projectedColumns() {
		projected[c] = true
	}
	for _, c := range writeColumns {
		if !projected[c] {
			t.Errorf("write column %s is not projected", c)
		}
	}
	if n := len(projectedColumns()); n != len(writeColumns)+3 {
		t.Errorf("projection = %d columns, want id + writes + created_at + updated_at", n)
	}
}

func TestScanPropertyFollowsProjection(t *testing.T) {
	id := uuid.New()
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	updated := created.Add(time.Hour)

	want := fullProperty()
	want.ID = id
	want.CreatedAt = created
	want.UpdatedAt = updated

	args, err := writeArgs(id, want)
	if err != nil {
		t.Fatalf("writeArgs() error = %v", err)
	}

	row := map[string]any{
		"id":         args[0],
		"created_at": created,
		"updated_at": updated,
	}
	for i, c := range writeColumns {
		row[c] = args[i+1]
	}

	got, err := scanProperty(rowScanner{columns: projectedColumns(), row: row})
	if err != nil {
		t.Fatalf("scanProperty() error = %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("scanProperty() =\n%+v\nwant\n%+v", got, want)
	}
}

func TestWriteArgsEncodesAmenities(t *testing.T) {
	tests := []struct {
		name      string
		amenities []string
		want      string
	}{
		{"nil", nil, "[]"},
		{"tags", []string{"pool", "gym"}, `["pool","gym"]`},
	}

	idx := -1
	for i, c := range writeColumns {
		if c == "amenities" {
			idx = i + 1
		}
	}
	if idx < 0 {
		t.Fatal("amenities is not a write column")
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := fullProperty()
			p.Amenities = tt.amenities

			args, err := writeArgs(uuid.New(), p)
			if err != nil {
				t.Fatalf("writeArgs() error = %v", err)
			}
			if args[idx] != tt.want {
				t.Errorf("amenities arg = %v, want %s", args[idx], tt.want)
			}
		})
	}
}

func TestScanPropertyEmptyAmenities(t *testing.T) {
	args, err := writeArgs(uuid.New(), Property{})
	if err != nil {
		t.Fatalf("writeArgs() error = %v", err)
	}

	row := map[string]any{
		"id":         args[0],
		"created_at": time.Now(),
		"updated_at": time.Now(),
	}
	for i, c := range writeColumns {
		row[c] = args[i+1]
	}
	row["amenities"] = []byte(nil)

	got, err := scanProperty(rowScanner{columns: projectedColumns(), row: row})
	if err != nil {
		t.Fatalf("scanProperty() error = %v", err)
	}
	if got.Amenities == nil || len(got.Amenities) != 0 {
		t.Errorf("Amenities = %#v, want empty slice", got.Amenities)
	}
}
