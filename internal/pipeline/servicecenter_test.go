package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"dochicar/internal/schema"
)

const serviceCenterCSV = "자동차정비업체명,소재지도로명주소,소재지지번주소,위도,경도,전화번호,사업등록일자\n" +
	"강남정비공업사,서울 강남구 테헤란로 1,역삼동 1,37.5,127.0,02) 123-4567,20200115\n" +
	"강남정비공업사,서울 강남구 테헤란로 1,역삼동 1,37.5,127.0,02) 999-9999,20200115\n" +
	",서울 어딘가,어딘가 2,37.5,127.0,02-000-0000,20200101\n" +
	"부산정비,부산 해운대구 2,,52.5,13.4,051-111-2222,2023년 3월\n"

func writeTempFile(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func columnIndex(t *testing.T, tbl schema.Table, name string) int {
	t.Helper()
	for i, c := range tbl.ColumnNames() {
		if c == name {
			return i
		}
	}
	t.Fatalf("no column %s in %s", name, tbl.Name)
	return -1
}

func TestLoadServiceCenters(t *testing.T) {
	t.Parallel()

	path := writeTempFile(t, "centers.csv", serviceCenterCSV)
	repo := newFakeRepo()

	res, err := LoadServiceCenters(context.Background(), repo, path, Options{})
	if err != nil {
		t.Fatalf("LoadServiceCenters: %v", err)
	}

	// Four source rows; the nameless one is dropped, the duplicate key is
	// deduped first-wins.
	if res.Read != 4 || res.Cleaned != 3 || res.Kept != 2 || res.Written != 2 {
		t.Fatalf("result = %+v", res)
	}

	rows := repo.rows["service_center"]
	if len(rows) != 2 {
		t.Fatalf("got %d rows", len(rows))
	}

	iName := columnIndex(t, schema.ServiceCenter, "name_ko")
	iLat := columnIndex(t, schema.ServiceCenter, "lat")
	iLon := columnIndex(t, schema.ServiceCenter, "lon")
	iPhone := columnIndex(t, schema.ServiceCenter, "phone")
	iJibun := columnIndex(t, schema.ServiceCenter, "addr_jibun")
	iRegDate := columnIndex(t, schema.ServiceCenter, "biz_reg_date")

	gangnam := rows[0]
	if gangnam[iName] != "강남정비공업사" {
		t.Errorf("name = %v", gangnam[iName])
	}
	// First occurrence of the duplicate key wins.
	if gangnam[iPhone] != "02123-4567" {
		t.Errorf("phone = %v", gangnam[iPhone])
	}
	if gangnam[iLat] != 37.5 || gangnam[iLon] != 127.0 {
		t.Errorf("coords = %v, %v", gangnam[iLat], gangnam[iLon])
	}
	reg, ok := gangnam[iRegDate].(time.Time)
	if !ok || reg.Format("2006-01-02") != "2020-01-15" {
		t.Errorf("biz_reg_date = %v", gangnam[iRegDate])
	}

	busan := rows[1]
	if busan[iName] != "부산정비" {
		t.Errorf("name = %v", busan[iName])
	}
	// Out-of-box coordinates degrade to null; the row survives.
	if busan[iLat] != nil || busan[iLon] != nil {
		t.Errorf("coords = %v, %v", busan[iLat], busan[iLon])
	}
	// Missing key components store empty strings, not nulls.
	if busan[iJibun] != "" {
		t.Errorf("addr_jibun = %v", busan[iJibun])
	}
	reg, ok = busan[iRegDate].(time.Time)
	if !ok || reg.Format("2006-01-02") != "2023-03-01" {
		t.Errorf("biz_reg_date = %v", busan[iRegDate])
	}
}

func TestLoadServiceCentersFromJSON(t *testing.T) {
	t.Parallel()

	data := `[{"사업장명": "강남정비공업사", "도로명주소": "서울 강남구 테헤란로 1", "위도": 37.5, "경도": 127.0}]`
	path := writeTempFile(t, "centers.json", data)
	repo := newFakeRepo()

	res, err := LoadServiceCenters(context.Background(), repo, path, Options{})
	if err != nil {
		t.Fatalf("LoadServiceCenters: %v", err)
	}
	if res.Written != 1 {
		t.Fatalf("result = %+v", res)
	}
	row := repo.rows["service_center"][0]
	if row[columnIndex(t, schema.ServiceCenter, "lat")] != 37.5 {
		t.Fatalf("row = %v", row)
	}
}

func TestLoadServiceCentersMissingFile(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	_, err := LoadServiceCenters(context.Background(), repo, filepath.Join(t.TempDir(), "nope.csv"), Options{})
	if err == nil {
		t.Fatal("expected error")
	}
	if len(repo.ensured) != 0 {
		t.Fatal("nothing should be written on a read failure")
	}
}
