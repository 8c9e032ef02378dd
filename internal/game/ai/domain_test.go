package ai_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"pgregory.net/rapid"

	"github.com/cory-johannsen/arcanum/internal/game/ai"
)

func minimalDomain() *ai.Domain {
	return &ai.Domain{
		ID:    "test",
		Tasks: []*ai.Task{{ID: "behave"}},
		Methods: []*ai.Method{{
			TaskID:   "behave",
			ID:       "m1",
			Subtasks: []string{"op1"},
		}},
		Operators: []*ai.Operator{{ID: "op1", Action: "attack", Target: "player"}},
	}
}

func TestDomain_Validate_RejectsEmpty(t *testing.T) {
	d := &ai.Domain{}
	if err := d.Validate(); err == nil {
		t.Fatal("expected error for empty Domain")
	}
}

func TestDomain_Validate_AcceptsMinimal(t *testing.T) {
	if err := minimalDomain().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDomain_Validate_RejectsMissingRoot(t *testing.T) {
	d := minimalDomain()
	d.Tasks = []*ai.Task{{ID: "root"}}
	d.Methods[0].TaskID = "root"
	if err := d.Validate(); err == nil {
		t.Fatal("expected error for missing behave task")
	}
}

func TestDomain_Validate_RejectsUnknownAction(t *testing.T) {
	d := minimalDomain()
	d.Operators[0].Action = "flee"
	if err := d.Validate(); err == nil {
		t.Fatal("expected error for unknown action")
	}
}

func TestDomain_Validate_RejectsDanglingSubtask(t *testing.T) {
	d := minimalDomain()
	d.Methods[0].Subtasks = []string{"nowhere"}
	if err := d.Validate(); err == nil {
		t.Fatal("expected error for dangling subtask")
	}
}

func TestDomain_Validate_RejectsDuplicateOperator(t *testing.T) {
	d := minimalDomain()
	d.Operators = append(d.Operators, &ai.Operator{ID: "op1", Action: "defend"})
	if err := d.Validate(); err == nil {
		t.Fatal("expected error for duplicate operator")
	}
}

func TestDomain_OperatorByID(t *testing.T) {
	d := minimalDomain()
	op, ok := d.OperatorByID("op1")
	if !ok || op.Action != ai.ActionAttack {
		t.Fatal("expected to find operator")
	}
	if _, ok := d.OperatorByID("missing"); ok {
		t.Fatal("expected not found")
	}
}

func TestDomain_MethodsForTask_ReturnsOrdered(t *testing.T) {
	d := &ai.Domain{
		Methods: []*ai.Method{
			{TaskID: "fight", ID: "m1", Subtasks: []string{"op1"}},
			{TaskID: "fight", ID: "m2", Subtasks: []string{"op2"}},
			{TaskID: "other", ID: "m3", Subtasks: []string{"op3"}},
		},
	}
	methods := d.MethodsForTask("fight")
	if len(methods) != 2 {
		t.Fatalf("expected 2 methods, got %d", len(methods))
	}
	if methods[0].ID != "m1" || methods[1].ID != "m2" {
		t.Fatalf("expected [m1, m2], got [%s, %s]", methods[0].ID, methods[1].ID)
	}
}

func TestDomain_ScriptScope(t *testing.T) {
	d := minimalDomain()
	if d.ScriptScope() != "test" {
		t.Fatalf("expected domain ID as scope, got %q", d.ScriptScope())
	}
	d.Scope = "undead"
	if d.ScriptScope() != "undead" {
		t.Fatalf("expected explicit scope, got %q", d.ScriptScope())
	}
}

func TestDefaultDomain_Valid(t *testing.T) {
	if err := ai.DefaultDomain().Validate(); err != nil {
		t.Fatalf("default domain invalid: %v", err)
	}
}

const validDomainYAML = `
domain:
  id: test_domain
  description: Test
  tasks:
    - id: behave
      description: root
  methods:
    - task: behave
      id: hit
      precondition: ""
      subtasks: [strike]
  operators:
    - id: strike
      action: attack
      target: player
`

func TestLoadDomains_LoadsYAML(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "test.yaml"), []byte(validDomainYAML), 0644); err != nil {
		t.Fatal(err)
	}
	domains, err := ai.LoadDomains(dir)
	if err != nil {
		t.Fatalf("LoadDomains: %v", err)
	}
	if len(domains) != 1 || domains[0].ID != "test_domain" {
		t.Fatalf("unexpected domains: %+v", domains)
	}
}

func TestLoadDomains_RejectsUnknownField(t *testing.T) {
	dir := t.TempDir()
	bad := validDomainYAML + "  bogus: 1\n"
	if err := os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte(bad), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ai.LoadDomains(dir); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestLoadDomains_MissingDomainKey(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "x.yaml"), []byte("other: 1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ai.LoadDomains(dir); err == nil {
		t.Fatal("expected error for missing domain key")
	}
}

func TestLoadDomains_ShippedContent(t *testing.T) {
	domains, err := ai.LoadDomains("../../../content/ai")
	if err != nil {
		t.Fatalf("LoadDomains: %v", err)
	}
	if len(domains) == 0 {
		t.Fatal("expected shipped domains")
	}
}

func TestProperty_Domain_ValidateRejectsDuplicateTaskIDs(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		id := rapid.StringMatching(`[a-z]{1,8}`).Draw(rt, "id")
		d := &ai.Domain{
			ID:    fmt.Sprintf("d_%s", id),
			Tasks: []*ai.Task{{ID: "behave"}, {ID: id}, {ID: id}},
		}
		if err := d.Validate(); err == nil {
			rt.Fatalf("expected duplicate task error for %q", id)
		}
	})
}
