package nt

import "testing"

func TestDecodeValue(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    Value
		wantErr bool
	}{
		{name: "boolean", payload: `true`, want: BooleanValue(true)},
		{name: "double", payload: `4.5`, want: DoubleValue(4.5)},
		{name: "string", payload: `"auto"`, want: StringValue("auto")},
		{name: "pose", payload: `[1.0, 2.0, 30]`, want: DoubleArrayValue([]float64{1, 2, 30})},
		{name: "bools", payload: `[true,false]`, want: BooleanArrayValue([]bool{true, false})},
		{name: "strings", payload: `["a","b"]`, want: StringArrayValue([]string{"a", "b"})},
		{name: "empty array", payload: `[]`, want: DoubleArrayValue(nil)},
		{name: "mixed array", payload: `[1, true]`, wantErr: true},
		{name: "object", payload: `{"x":1}`, wantErr: true},
		{name: "null", payload: `null`, wantErr: true},
		{name: "garbage", payload: `{{`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeValue([]byte(tt.payload))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("DecodeValue(%s) = %v, want error", tt.payload, got.Kind())
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeValue(%s): %v", tt.payload, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("DecodeValue(%s) kind = %s, want %s", tt.payload, got.Kind(), tt.want.Kind())
			}
		})
	}
}

func TestEncodeValue(t *testing.T) {
	data, err := EncodeValue(DoubleArrayValue([]float64{1, 2.5, -30}))
	if err != nil {
		t.Fatalf("EncodeValue: %v", err)
	}
	if string(data) != "[1,2.5,-30]" {
		t.Errorf("EncodeValue = %s", data)
	}

	data, err = EncodeValue(DoubleArrayValue(nil))
	if err != nil {
		t.Fatalf("EncodeValue empty: %v", err)
	}
	if string(data) != "[]" {
		t.Errorf("EncodeValue empty = %s, want []", data)
	}

	if _, err := EncodeValue(Value{}); err == nil {
		t.Error("EncodeValue of unassigned value should fail")
	}
}

func TestDoubleArrayIsCopied(t *testing.T) {
	v := DoubleArrayValue([]float64{1, 2, 3})
	got, _ := v.DoubleArray()
	got[0] = 99
	again, _ := v.DoubleArray()
	if again[0] != 1 {
		t.Errorf("cached array mutated through accessor: %v", again)
	}
}
