package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/keyroom-chat/keyroom/internal/models"
)

func roundTrip(t *testing.T, log models.SessionLog) models.SessionLog {
	t.Helper()
	data, err := EncodeLog(log)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeLog(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return got
}

func TestCodecRoundTripEmpty(t *testing.T) {
	got := roundTrip(t, models.SessionLog{})
	if len(got.Records) != 0 {
		t.Fatalf("expected empty log, got %d records", len(got.Records))
	}
}

func TestCodecRoundTripSingle(t *testing.T) {
	log := models.SessionLog{Records: []models.EncryptedRecord{
		{Blob: "YWJjZGVm", Timestamp: "2026-01-02 15:04:05"},
	}}

	got := roundTrip(t, log)
	if len(got.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got.Records))
	}
	if got.Records[0] != log.Records[0] {
		t.Fatalf("record changed in round trip: %+v != %+v", got.Records[0], log.Records[0])
	}
}

func TestCodecRoundTripLarge(t *testing.T) {
	var log models.SessionLog
	for i := 0; i < 1000; i++ {
		log.Records = append(log.Records, models.EncryptedRecord{
			Blob:      fmt.Sprintf("blob-%04d", i),
			Timestamp: fmt.Sprintf("2026-01-02 15:04:%02d", i%60),
		})
	}

	got := roundTrip(t, log)
	if len(got.Records) != 1000 {
		t.Fatalf("expected 1000 records, got %d", len(got.Records))
	}
	for i := range log.Records {
		if got.Records[i] != log.Records[i] {
			t.Fatalf("record %d changed in round trip", i)
		}
	}
}

func TestCodecEmptyLogEncoding(t *testing.T) {
	data, err := EncodeLog(models.SessionLog{})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"messages":[]}` {
		t.Fatalf("unexpected empty log encoding: %s", data)
	}
}

func TestDecodeCorruptLog(t *testing.T) {
	for _, data := range []string{"", "not json", `{"messages":`, `[1,2,3]`} {
		_, err := DecodeLog([]byte(data))
		if err == nil {
			t.Fatalf("expected error for %q", data)
		}
		if !errors.Is(err, ErrCorruptLog) {
			t.Fatalf("expected ErrCorruptLog for %q, got %v", data, err)
		}
	}
}
