package cases

import (
	"os"
	"path/filepath"
	"testing"
)

func demoCase(id string) Case {
	return Case{
		CaseID: id,
		Title:  "Akut Pulpitis",
		Patient: Patient{
			Age:            34,
			ChiefComplaint: "Şiddetli diş ağrısı",
		},
		InitialState: map[string]any{"revealed_findings": []any{}},
		Rules: map[string]Rule{
			"order_radiograph": {
				Score:        10,
				Outcome:      "Doğru adım",
				StateUpdates: map[string]any{"radiograph_taken": true},
			},
		},
	}
}

func TestRegistryReplaceVersionGating(t *testing.T) {
	r := NewRegistry()

	r.Replace(2, []Case{demoCase("pulpitis_01")})
	if _, ok := r.Get("pulpitis_01"); !ok {
		t.Fatal("expected pulpitis_01 after initial snapshot")
	}

	// A stale snapshot must not clobber the newer one.
	r.Replace(1, []Case{demoCase("stale_case")})
	if _, ok := r.Get("stale_case"); ok {
		t.Error("stale snapshot was accepted")
	}
	if _, ok := r.Get("pulpitis_01"); !ok {
		t.Error("current snapshot was lost")
	}

	// Unversioned snapshots are ignored once versioned.
	r.Replace(0, []Case{demoCase("unversioned")})
	if _, ok := r.Get("unversioned"); ok {
		t.Error("unversioned snapshot was accepted over a versioned one")
	}

	r.Replace(3, []Case{demoCase("newer")})
	if _, ok := r.Get("newer"); !ok {
		t.Error("newer snapshot was rejected")
	}
	if got := r.CatalogVersion(); got != 3 {
		t.Errorf("CatalogVersion() = %d, want 3", got)
	}
}

func TestRegistryRuleLookup(t *testing.T) {
	r := NewRegistry()
	r.Put(demoCase("pulpitis_01"))

	rule, ok := r.Rule("pulpitis_01", "order_radiograph")
	if !ok {
		t.Fatal("expected rule for order_radiograph")
	}
	if rule.Score != 10 || rule.Outcome != "Doğru adım" {
		t.Errorf("rule = %+v", rule)
	}

	if _, ok := r.Rule("pulpitis_01", "unknown_action"); ok {
		t.Error("unexpected rule for unknown action")
	}
	if _, ok := r.Rule("missing_case", "order_radiograph"); ok {
		t.Error("unexpected rule for missing case")
	}
}

func TestRegistryGetReturnsCopies(t *testing.T) {
	r := NewRegistry()
	r.Put(demoCase("pulpitis_01"))

	c, _ := r.Get("pulpitis_01")
	c.InitialState["mutated"] = true
	delete(c.Rules, "order_radiograph")

	again, _ := r.Get("pulpitis_01")
	if _, ok := again.InitialState["mutated"]; ok {
		t.Error("InitialState copy leaked back into the registry")
	}
	if _, ok := again.Rules["order_radiograph"]; !ok {
		t.Error("Rules copy leaked back into the registry")
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	good := `{
		"case_id": "behcet_01",
		"title": "Behçet Hastalığı",
		"patient": {"age": 28, "chief_complaint": "Tekrarlayan aftlar"},
		"rules": {"perform_pathergy_test": {"score": 15, "outcome": "Kritik tanı adımı"}}
	}`
	if err := os.WriteFile(filepath.Join(dir, "behcet.json"), []byte(good), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644); err != nil {
		t.Fatal(err)
	}

	catalog, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir() error = %v", err)
	}
	if len(catalog) != 1 {
		t.Fatalf("len(catalog) = %d, want 1", len(catalog))
	}
	if catalog[0].CaseID != "behcet_01" || catalog[0].Patient.Age != 28 {
		t.Errorf("catalog[0] = %+v", catalog[0])
	}
}

func TestLoadDirMissingCaseID(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.json"), []byte(`{"title":"no id"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadDir(dir); err == nil {
		t.Fatal("LoadDir() expected error for missing case_id")
	}
}
