package nt

import "testing"

func TestJoinPath(t *testing.T) {
	tests := []struct {
		parts []string
		want  string
	}{
		{[]string{"SmartDashboard", "Field"}, "/SmartDashboard/Field"},
		{[]string{"/components/", "/indexer", "has_trapped_cargo"}, "/components/indexer/has_trapped_cargo"},
		{[]string{"", "/"}, "/"},
		{nil, "/"},
	}
	for _, tt := range tests {
		if got := JoinPath(tt.parts...); got != tt.want {
			t.Errorf("JoinPath(%q) = %q, want %q", tt.parts, got, tt.want)
		}
	}
}

func TestTableDefaults(t *testing.T) {
	client := NewClient(NewMemoryBackend(), nil)
	cache := client.Cache()
	cache.Set("/SmartDashboard/Field/estimator_pose", DoubleArrayValue([]float64{1, 2, 30}))
	cache.Set("/components/indexer/has_trapped_cargo", BooleanValue(true))
	cache.Set("/components/indexer/has_cargo_in_tunnel", StringValue("yes"))
	cache.Set("/SmartDashboard/mode", StringValue("auto"))
	cache.Set("/SmartDashboard/voltage", DoubleValue(12.4))

	field := client.GetTable("SmartDashboard").SubTable("Field")
	if field.Path() != "/SmartDashboard/Field" {
		t.Fatalf("Path = %q", field.Path())
	}
	pose, ok := field.GetNumberArray("estimator_pose")
	if !ok || len(pose) != 3 || pose[2] != 30 {
		t.Errorf("GetNumberArray = %v, %v", pose, ok)
	}
	if _, ok := field.GetNumberArray("effective_goal"); ok {
		t.Error("missing array reported present")
	}

	indexer := client.GetTable("/components").SubTable("indexer")
	if !indexer.GetBoolean("has_trapped_cargo", false) {
		t.Error("has_trapped_cargo = false, want true")
	}
	if indexer.GetBoolean("has_cargo_in_chimney", false) {
		t.Error("absent boolean should use default")
	}
	if indexer.GetBoolean("has_cargo_in_tunnel", false) {
		t.Error("mistyped boolean should use default")
	}

	dashboard := client.GetTable("SmartDashboard")
	if got := dashboard.GetString("mode", ""); got != "auto" {
		t.Errorf("GetString = %q", got)
	}
	if got := dashboard.GetNumber("voltage", 0); got != 12.4 {
		t.Errorf("GetNumber = %v", got)
	}
	if got := dashboard.GetNumber("missing", -1); got != -1 {
		t.Errorf("GetNumber default = %v", got)
	}
}

func TestNilTableReads(t *testing.T) {
	var table *Table
	if table.GetBoolean("x", true) != true {
		t.Error("nil table should return default")
	}
}
