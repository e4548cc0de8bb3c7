package model

import (
	"encoding/json"
	"testing"
)

func TestFlexIDUnmarshal(t *testing.T) {
	cases := []struct {
		raw   string
		want  int64
		valid bool
	}{
		{`123`, 123, true},
		{`"456"`, 456, true},
		{`123.0`, 123, true},
		{`null`, 0, false},
		{`""`, 0, false},
		{`"not-a-number"`, 0, false},
	}
	for _, c := range cases {
		var f FlexID
		if err := json.Unmarshal([]byte(c.raw), &f); err != nil {
			t.Fatalf("unmarshal %s: %v", c.raw, err)
		}
		if f.Int64() != c.want || f.Valid() != c.valid {
			t.Errorf("unmarshal %s = %d (valid=%v), want %d (valid=%v)", c.raw, f.Int64(), f.Valid(), c.want, c.valid)
		}
	}
}

func TestTowerIsActive(t *testing.T) {
	active := true
	inactive := false
	if !(Tower{}).IsActive() {
		t.Error("missing active flag should default to true")
	}
	if !(Tower{Active: &active}).IsActive() {
		t.Error("active tower reported inactive")
	}
	if (Tower{Active: &inactive}).IsActive() {
		t.Error("inactive tower reported active")
	}
}

func TestEmpireDecodeMixedIDs(t *testing.T) {
	raw := `[{"entityId": 42, "name": "A"}, {"entityId": "99", "name": "B"}]`
	var empires []Empire
	if err := json.Unmarshal([]byte(raw), &empires); err != nil {
		t.Fatalf("failed to decode empires: %v", err)
	}
	if empires[0].EntityID.Int64() != 42 || empires[1].EntityID.Int64() != 99 {
		t.Errorf("unexpected ids: %d, %d", empires[0].EntityID.Int64(), empires[1].EntityID.Int64())
	}
}
