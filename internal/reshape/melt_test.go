package reshape

import (
	"errors"
	"testing"

	"dochicar/internal/clean"
	"dochicar/internal/source"
)

func regSpec() Spec {
	return Spec{
		Renames: map[string]string{
			"성별":    "gender",
			"연령/시도": "age_group",
		},
		IDColumns:   []string{"gender", "age_group"},
		ForwardFill: map[string]bool{"gender": true},
		Synonyms: map[string]func(string) string{
			"gender": clean.Gender,
		},
		Exclude: map[string]map[string]bool{
			"gender":    {"합계": true, "계": true},
			"age_group": {"계": true, "합계": true},
		},
		ExcludeColumns: map[string]bool{"총계": true},
	}
}

func TestMelt(t *testing.T) {
	t.Parallel()

	table := &source.RawTable{
		Header: []string{"성별", "연령/시도", "서울", "부산", "총계"},
		Rows: [][]string{
			{"남자", "20대", "120", "80", "200"},
			{"", "30대", "70", "N/A", "70"},
			{"", "계", "500", "300", "800"},
			{"여자", "20대", "110", "90", "200"},
		},
	}

	rows, err := Melt(table, regSpec())
	if err != nil {
		t.Fatalf("Melt: %v", err)
	}

	// Row 1 melts to two regions, row 2 to one (N/A dropped), row 3 is the
	// age aggregate and never melts, row 4 melts to two. The grand-total
	// column never melts.
	if len(rows) != 5 {
		t.Fatalf("got %d rows: %+v", len(rows), rows)
	}

	want := []Row{
		{Column: "서울", IDs: map[string]string{"gender": "남성", "age_group": "20대"}, Count: 120},
		{Column: "부산", IDs: map[string]string{"gender": "남성", "age_group": "20대"}, Count: 80},
		{Column: "서울", IDs: map[string]string{"gender": "남성", "age_group": "30대"}, Count: 70},
		{Column: "서울", IDs: map[string]string{"gender": "여성", "age_group": "20대"}, Count: 110},
		{Column: "부산", IDs: map[string]string{"gender": "여성", "age_group": "20대"}, Count: 90},
	}
	for i, w := range want {
		got := rows[i]
		if got.Column != w.Column || got.Count != w.Count ||
			got.IDs["gender"] != w.IDs["gender"] || got.IDs["age_group"] != w.IDs["age_group"] {
			t.Errorf("row %d = %+v, want %+v", i, got, w)
		}
	}
}

func TestMeltExcludesAggregateGender(t *testing.T) {
	t.Parallel()

	table := &source.RawTable{
		Header: []string{"성별", "연령/시도", "서울"},
		Rows: [][]string{
			{"전체", "20대", "999"},
			{"남자", "20대", "120"},
		},
	}

	rows, err := Melt(table, regSpec())
	if err != nil {
		t.Fatalf("Melt: %v", err)
	}
	// "전체" folds to the aggregate label and is excluded.
	if len(rows) != 1 || rows[0].Count != 120 {
		t.Fatalf("rows = %+v", rows)
	}
}

func TestMeltSchemaMismatch(t *testing.T) {
	t.Parallel()

	table := &source.RawTable{
		Header: []string{"지역", "서울"},
		Rows:   [][]string{{"x", "1"}},
	}

	_, err := Melt(table, regSpec())
	var sme *SchemaMismatchError
	if !errors.As(err, &sme) {
		t.Fatalf("expected *SchemaMismatchError, got %v", err)
	}
	if len(sme.Missing) != 2 || sme.Missing[0] != "age_group" || sme.Missing[1] != "gender" {
		t.Fatalf("missing = %v", sme.Missing)
	}
}

func TestMeltForwardFillSurvivesExcludedRow(t *testing.T) {
	t.Parallel()

	table := &source.RawTable{
		Header: []string{"성별", "연령/시도", "서울"},
		Rows: [][]string{
			{"남자", "20대", "1"},
			{"", "계", "99"},
			{"", "30대", "2"},
		},
	}

	rows, err := Melt(table, regSpec())
	if err != nil {
		t.Fatalf("Melt: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %+v", rows)
	}
	if rows[1].IDs["gender"] != "남성" || rows[1].IDs["age_group"] != "30대" {
		t.Fatalf("row 1 = %+v", rows[1])
	}
}
