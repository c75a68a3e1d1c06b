package audit

import "testing"

func TestMarshalSnapshots(t *testing.T) {
	before, after, err := Marshal(nil, map[string]string{"period": "2024-03"})
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}
	if before != nil {
		t.Fatalf("expected empty before snapshot, got %s", before)
	}
	if string(after) != `{"period":"2024-03"}` {
		t.Fatalf("unexpected after snapshot %s", after)
	}
}

func TestMarshalRejectsUnencodable(t *testing.T) {
	if _, _, err := Marshal(make(chan int), nil); err == nil {
		t.Fatal("expected marshal error")
	}
}
