package domain

import (
	"encoding/json"
	"math"
	"testing"
)

func TestQuantity_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		in   string
		want Quantity
	}{
		{`"1000"`, "1000"},
		{`""`, "0"},
		{`null`, "0"},
		{`115792089237316195423570985008687907853269984665640564039457584007913129639935`, "115792089237316195423570985008687907853269984665640564039457584007913129639935"},
		{`1e3`, "1000"},
		{`true`, "0"},
		{`{"a":1}`, "0"},
	}
	for _, tt := range tests {
		var q Quantity
		if err := json.Unmarshal([]byte(tt.in), &q); err != nil {
			t.Fatalf("Unmarshal(%s) failed: %v", tt.in, err)
		}
		if q != tt.want {
			t.Errorf("Unmarshal(%s) = %q, want %q", tt.in, q, tt.want)
		}
	}
}

func TestQuantity_NestedRecord(t *testing.T) {
	data := `{"tx_hash":"0x1","value":5000000000000000000000,"gas_price":null,"log_events":[]}`
	var tx RawTransaction
	if err := json.Unmarshal([]byte(data), &tx); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if tx.Value != "5000000000000000000000" {
		t.Errorf("Value = %q", tx.Value)
	}
	if tx.GasPrice != ZeroQuantity {
		t.Errorf("GasPrice = %q, want 0", tx.GasPrice)
	}
}

func TestQuantity_IsZero(t *testing.T) {
	for _, q := range []Quantity{"", "0", "00", "0.0"} {
		if !q.IsZero() {
			t.Errorf("%q should be zero", q)
		}
	}
	for _, q := range []Quantity{"1", "abc"} {
		if q.IsZero() {
			t.Errorf("%q should not be zero", q)
		}
	}
}

func TestQuantity_Float(t *testing.T) {
	if got := Quantity("1.5").Float(); got != 1.5 {
		t.Errorf("Float() = %v, want 1.5", got)
	}
	if got := Quantity("lots").Float(); !math.IsNaN(got) {
		t.Errorf("Float() = %v, want NaN", got)
	}
}

func TestDecodedParam_Text(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{`"0xAbC"`, "0xAbC"},
		{`12345678901234567890123`, "12345678901234567890123"},
		{`null`, ""},
		{`true`, ""},
		{`["x"]`, ""},
		{``, ""},
	}
	for _, tt := range tests {
		p := DecodedParam{Value: json.RawMessage(tt.raw)}
		if got := p.Text(); got != tt.want {
			t.Errorf("Text(%s) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestRawTransaction_Normalize(t *testing.T) {
	tx := RawTransaction{}
	if !tx.IsSuccessful() {
		t.Error("missing success flag should read as true")
	}
	tx.Normalize()
	if tx.Value != ZeroQuantity {
		t.Errorf("Value = %q, want 0", tx.Value)
	}
	if tx.Successful == nil || !*tx.Successful {
		t.Error("Normalize should set Successful to true")
	}

	failed := false
	tx = RawTransaction{Value: "7", Successful: &failed}
	tx.Normalize()
	if tx.Value != "7" || *tx.Successful {
		t.Error("Normalize must keep present fields")
	}
}

func TestRawTransaction_SignedAt(t *testing.T) {
	tx := RawTransaction{BlockSignedAt: "2024-01-01T00:00:00Z"}
	ts, ok := tx.SignedAt()
	if !ok || ts.UnixMilli() != 1704067200000 {
		t.Errorf("SignedAt() = %v, %v", ts, ok)
	}

	tx.BlockSignedAt = "yesterday"
	if _, ok := tx.SignedAt(); ok {
		t.Error("malformed timestamp should not parse")
	}
}

func TestIsErrorMarker(t *testing.T) {
	tests := []struct {
		payload string
		want    bool
	}{
		{`{"error":"Volume analysis failed"}`, true},
		{``, true},
		{`{"transactionValue":"1"}`, false},
		{`[1,2]`, false},
	}
	for _, tt := range tests {
		if got := IsErrorMarker(json.RawMessage(tt.payload)); got != tt.want {
			t.Errorf("IsErrorMarker(%s) = %v, want %v", tt.payload, got, tt.want)
		}
	}
}

func TestCollectionResult_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(FailedCollection("provider down"))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `{"success":false,"error":"provider down"}` {
		t.Errorf("failure body = %s", data)
	}

	data, err = json.Marshal(CollectionResult{Success: true})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	want := `{"success":true,"trades":[],"profile":null,"scamAnalysis":null,"summary":null}`
	if string(data) != want {
		t.Errorf("success body = %s, want %s", data, want)
	}

	var back CollectionResult
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !back.Success || back.Trades == nil || len(back.Trades) != 0 {
		t.Errorf("round trip = %+v", back)
	}
}

func TestTrade_Since(t *testing.T) {
	a := Trade{Timestamp: 1000}
	b := Trade{Timestamp: 4000}
	if d, ok := b.Since(a); !ok || d != 3000 {
		t.Errorf("Since() = %d, %v", d, ok)
	}
	if d, ok := a.Since(b); !ok || d != -3000 {
		t.Errorf("Since() = %d, %v", d, ok)
	}

	undated := Trade{NoTimestamp: true}
	if _, ok := undated.Since(a); ok {
		t.Error("undated trade should not yield an interval")
	}
	if _, ok := b.Since(undated); ok {
		t.Error("undated predecessor should not yield an interval")
	}
}
