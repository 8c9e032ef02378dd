// Package ai implements the Hierarchical Task Network (HTN) planner that
// chooses an enemy's action on its turn.
//
// HTN planning decomposes abstract tasks into primitive operators via ordered
// methods. Method preconditions are built-in predicates over the WorldState
// or, failing that, Lua hooks; operators map to enemy actions.
package ai

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Enemy actions an operator may produce.
const (
	ActionAttack  = "attack"
	ActionSpecial = "special"
	ActionDefend  = "defend"
)

// ValidAction reports whether a is one of the enemy actions.
func ValidAction(a string) bool {
	switch a {
	case ActionAttack, ActionSpecial, ActionDefend:
		return true
	}
	return false
}

// RootTask is the task every plan starts from.
const RootTask = "behave"

// Task is an abstract goal that can be decomposed by methods.
//
// Precondition: ID must be non-empty.
type Task struct {
	ID          string `yaml:"id"`
	Description string `yaml:"description"`
}

// Method decomposes a task into an ordered list of subtasks or operator IDs.
//
// Precondition: TaskID, ID, and Subtasks must be non-empty.
type Method struct {
	TaskID string `yaml:"task"`
	ID     string `yaml:"id"`
	// Precondition names a built-in predicate or a Lua function; empty means
	// always applicable. A leading "!" negates it.
	Precondition string   `yaml:"precondition"`
	Subtasks     []string `yaml:"subtasks"`
}

// Operator is a primitive enemy action.
//
// Precondition: ID must be non-empty and Action must satisfy ValidAction.
type Operator struct {
	ID     string `yaml:"id"`
	Action string `yaml:"action"` // "attack", "special", "defend"
	Target string `yaml:"target"` // "player", "self", or "weakest_ally"
}

// Domain holds a full HTN domain.
//
// Invariant: all Task, Method, and Operator IDs are unique within their slice.
type Domain struct {
	ID          string `yaml:"id"`
	Description string `yaml:"description"`
	// Scope selects the script VM consulted for Lua preconditions; empty
	// means the domain ID.
	Scope     string      `yaml:"scope"`
	Tasks     []*Task     `yaml:"tasks"`
	Methods   []*Method   `yaml:"methods"`
	Operators []*Operator `yaml:"operators"`
}

// ScriptScope returns the scripting scope for Lua preconditions.
func (d *Domain) ScriptScope() string {
	if d.Scope != "" {
		return d.Scope
	}
	return d.ID
}

// Validate checks all required fields and cross-field constraints.
//
// Postcondition: nil return guarantees a non-empty ID, a root task, non-empty
// method subtasks, valid operator actions, no duplicate IDs within any slice,
// and that every cross-reference resolves.
func (d *Domain) Validate() error {
	if d.ID == "" {
		return errors.New("ai.Domain: ID must not be empty")
	}
	if len(d.Tasks) == 0 {
		return fmt.Errorf("ai.Domain %q: must have at least one task", d.ID)
	}

	taskIDs := make(map[string]struct{}, len(d.Tasks))
	for _, t := range d.Tasks {
		if t.ID == "" {
			return fmt.Errorf("ai.Domain %q: task has empty ID", d.ID)
		}
		if _, dup := taskIDs[t.ID]; dup {
			return fmt.Errorf("ai.Domain %q: duplicate task ID %q", d.ID, t.ID)
		}
		taskIDs[t.ID] = struct{}{}
	}
	if _, ok := taskIDs[RootTask]; !ok {
		return fmt.Errorf("ai.Domain %q: missing root task %q", d.ID, RootTask)
	}

	operatorIDs := make(map[string]struct{}, len(d.Operators))
	for _, op := range d.Operators {
		if op.ID == "" {
			return fmt.Errorf("ai.Domain %q: operator missing ID", d.ID)
		}
		if !ValidAction(op.Action) {
			return fmt.Errorf("ai.Domain %q operator %q: unknown action %q", d.ID, op.ID, op.Action)
		}
		if _, dup := operatorIDs[op.ID]; dup {
			return fmt.Errorf("ai.Domain %q: duplicate operator ID %q", d.ID, op.ID)
		}
		if _, clash := taskIDs[op.ID]; clash {
			return fmt.Errorf("ai.Domain %q: ID %q is both a task and an operator", d.ID, op.ID)
		}
		operatorIDs[op.ID] = struct{}{}
	}

	methodIDs := make(map[string]struct{}, len(d.Methods))
	for _, m := range d.Methods {
		if m.TaskID == "" || m.ID == "" {
			return fmt.Errorf("ai.Domain %q: method missing TaskID or ID", d.ID)
		}
		if len(m.Subtasks) == 0 {
			return fmt.Errorf("ai.Domain %q method %q: subtasks must not be empty", d.ID, m.ID)
		}
		if _, dup := methodIDs[m.ID]; dup {
			return fmt.Errorf("ai.Domain %q: duplicate method ID %q", d.ID, m.ID)
		}
		methodIDs[m.ID] = struct{}{}
		if _, ok := taskIDs[m.TaskID]; !ok {
			return fmt.Errorf("ai.Domain %q method %q: TaskID %q references unknown task", d.ID, m.ID, m.TaskID)
		}
		for _, sub := range m.Subtasks {
			_, isTask := taskIDs[sub]
			_, isOp := operatorIDs[sub]
			if !isTask && !isOp {
				return fmt.Errorf("ai.Domain %q method %q: subtask %q is neither a task nor an operator", d.ID, m.ID, sub)
			}
		}
	}
	return nil
}

// OperatorByID returns the operator with the given ID, or false if not found.
func (d *Domain) OperatorByID(id string) (*Operator, bool) {
	for _, op := range d.Operators {
		if op.ID == id {
			return op, true
		}
	}
	return nil, false
}

// MethodsForTask returns all methods that decompose taskID, in declaration order.
func (d *Domain) MethodsForTask(taskID string) []*Method {
	var out []*Method
	for _, m := range d.Methods {
		if m.TaskID == taskID {
			out = append(out, m)
		}
	}
	return out
}

// DefaultDomain is used for enemies with no AI domain: use the special
// ability when it is ready, otherwise attack.
func DefaultDomain() *Domain {
	return &Domain{
		ID:          "default",
		Description: "special when ready, otherwise attack",
		Tasks:       []*Task{{ID: RootTask}},
		Methods: []*Method{
			{TaskID: RootTask, ID: "use_special", Precondition: "special_ready", Subtasks: []string{"op_special"}},
			{TaskID: RootTask, ID: "attack", Subtasks: []string{"op_attack"}},
		},
		Operators: []*Operator{
			{ID: "op_special", Action: ActionSpecial, Target: "player"},
			{ID: "op_attack", Action: ActionAttack, Target: "player"},
		},
	}
}

type yamlDomainFile struct {
	Domain *Domain `yaml:"domain"`
}

// LoadDomains reads all *.yaml files from dir in name order.
//
// Precondition: dir must be a readable directory.
// Postcondition: returns error if any file fails to parse or validate; unknown
// YAML fields are rejected.
func LoadDomains(dir string) ([]*Domain, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("ai.LoadDomains: reading %q: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".yaml") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var domains []*Domain
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("ai.LoadDomains: reading %s: %w", name, err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		var f yamlDomainFile
		if err := dec.Decode(&f); err != nil {
			return nil, fmt.Errorf("ai.LoadDomains: parsing %s: %w", name, err)
		}
		if f.Domain == nil {
			return nil, fmt.Errorf("ai.LoadDomains: %s missing top-level 'domain' key", name)
		}
		if err := f.Domain.Validate(); err != nil {
			return nil, fmt.Errorf("ai.LoadDomains: %s: %w", name, err)
		}
		domains = append(domains, f.Domain)
	}
	return domains, nil
}
