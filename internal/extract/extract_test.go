package extract_test

import (
	"errors"
	"testing"
	"time"

	"rollcall/internal/extract"
	"rollcall/internal/services"
)

const sampleLog = "이름\t배우자\t날짜\t회차\t거주지역\t선호\t비고\t작성자\t제출시각\n" +
	"김민지\t\t2026-03-01\t1\t마포\t오전\t첫 방문\t간사\t2026-03-01T11:30:00Z\n" +
	"김민지\t\t2026-03-08\t2\t\t\t\t간사\t2026-03-08T11:32:00Z\n" +
	"박준호\t이서연\t2026-03-08\t1\t성동\t\t\t간사\t2026-03-08T11:35:00Z\n" +
	"\t\t\t\t\t\t\t\t\n" +
	"김민지\t\t\t0\t\t\t[배치완료: 2조] 배치 확정\t간사\t2026-04-05T13:00:00Z\n"

func TestExtractParsesKoreanHeaders(t *testing.T) {
	records, err := extract.Extract(sampleLog)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("expected 4 records (blank row skipped), got %d", len(records))
	}

	first := records[0]
	if first.Name != "김민지" || first.Round != 1 || first.Residence != "마포" {
		t.Fatalf("unexpected first record: %+v", first)
	}
	if first.SubmittedAt.IsZero() {
		t.Fatal("expected parsed submission timestamp")
	}
	if !first.SubmittedAt.Equal(time.Date(2026, 3, 1, 11, 30, 0, 0, time.UTC)) {
		t.Fatalf("unexpected timestamp: %s", first.SubmittedAt)
	}

	admin := records[3]
	if !admin.Administrative() {
		t.Fatalf("round 0 row must be administrative: %+v", admin)
	}
	if admin.Notes != "[배치완료: 2조] 배치 확정" {
		t.Fatalf("unexpected notes: %q", admin.Notes)
	}
}

func TestExtractAcceptsEnglishHeaders(t *testing.T) {
	raw := "name\tround\tnotes\nKim\t3\tcame late\n"
	records, err := extract.Extract(raw)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(records) != 1 || records[0].Name != "Kim" || records[0].Round != 3 {
		t.Fatalf("unexpected records: %+v", records)
	}
}

func TestExtractRejectsMissingColumns(t *testing.T) {
	_, err := extract.Extract("이름\t비고\n김민지\t메모\n")
	if !errors.Is(err, services.ErrExtraction) {
		t.Fatalf("expected extraction error for missing round column, got %v", err)
	}

	_, err = extract.Extract("회차\t비고\n1\t메모\n")
	if !errors.Is(err, services.ErrExtraction) {
		t.Fatalf("expected extraction error for missing name column, got %v", err)
	}
}

func TestExtractRejectsNonIntegerRound(t *testing.T) {
	_, err := extract.Extract("name\tround\nKim\tthree\n")
	if !errors.Is(err, services.ErrExtraction) {
		t.Fatalf("expected extraction error, got %v", err)
	}
}

func TestExtractRejectsEmptyLog(t *testing.T) {
	_, err := extract.Extract("\n\n")
	if !errors.Is(err, services.ErrExtraction) {
		t.Fatalf("expected extraction error for empty log, got %v", err)
	}
}

func TestExtractEmptyRoundIsAdministrative(t *testing.T) {
	records, err := extract.Extract("name\tround\tnotes\nKim\t\tresidence updated\n")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(records) != 1 || records[0].Round != 0 {
		t.Fatalf("empty round should map to administrative row: %+v", records)
	}
}

func TestExtractLenientTimestamp(t *testing.T) {
	records, err := extract.Extract("name\tround\tsubmitted_at\nKim\t1\tnot-a-time\n")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if !records[0].SubmittedAt.IsZero() {
		t.Fatalf("unparseable timestamp should be zero, got %s", records[0].SubmittedAt)
	}
}
