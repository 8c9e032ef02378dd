package scripting

import (
	"fmt"
	"sort"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// RegisterModules registers the engine.log and engine.dice Lua tables into L.
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: engine global is defined in L.
func (m *Manager) RegisterModules(L *lua.LState) {
	engine := L.NewTable()

	log := L.NewTable()
	for name, fn := range map[string]func(string, ...zap.Field){
		"debug": m.logger.Debug,
		"info":  m.logger.Info,
		"warn":  m.logger.Warn,
		"error": m.logger.Error,
	} {
		fn := fn
		L.SetField(log, name, L.NewFunction(func(L *lua.LState) int {
			fn("lua: " + L.CheckString(1))
			return 0
		}))
	}
	L.SetField(engine, "log", log)

	d := L.NewTable()
	// engine.dice.roll(sides [, modifier]) returns {total=, roll=, modifier=}.
	L.SetField(d, "roll", L.NewFunction(func(L *lua.LState) int {
		sides := L.CheckInt(1)
		if sides < 1 {
			L.ArgError(1, "sides must be >= 1")
			return 0
		}
		mod := L.OptInt(2, 0)
		res := m.roller.Roll(sides, mod)
		t := L.NewTable()
		L.SetField(t, "total", lua.LNumber(res.Total()))
		L.SetField(t, "roll", lua.LNumber(res.Dice[0]))
		L.SetField(t, "modifier", lua.LNumber(res.Modifier))
		L.Push(t)
		return 1
	}))
	// engine.dice.percent() returns a value in [0, 100).
	L.SetField(d, "percent", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(m.roller.Percent()))
		return 1
	}))
	L.SetField(engine, "dice", d)

	L.SetGlobal("engine", engine)
}

// ToLValue converts a Go value to a Lua value owned by L. Supported inputs
// are nil, lua.LValue, string, bool, the integer and float kinds,
// map[string]any, []any and []string; nested values convert recursively.
func ToLValue(L *lua.LState, v any) (lua.LValue, error) {
	switch x := v.(type) {
	case nil:
		return lua.LNil, nil
	case lua.LValue:
		return x, nil
	case string:
		return lua.LString(x), nil
	case bool:
		return lua.LBool(x), nil
	case int:
		return lua.LNumber(x), nil
	case int64:
		return lua.LNumber(x), nil
	case float64:
		return lua.LNumber(x), nil
	case map[string]any:
		t := L.NewTable()
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			lv, err := ToLValue(L, x[k])
			if err != nil {
				return lua.LNil, fmt.Errorf("field %q: %w", k, err)
			}
			t.RawSetString(k, lv)
		}
		return t, nil
	case []any:
		t := L.NewTable()
		for i, e := range x {
			lv, err := ToLValue(L, e)
			if err != nil {
				return lua.LNil, fmt.Errorf("index %d: %w", i, err)
			}
			t.Append(lv)
		}
		return t, nil
	case []string:
		t := L.NewTable()
		for _, s := range x {
			t.Append(lua.LString(s))
		}
		return t, nil
	default:
		return lua.LNil, fmt.Errorf("unsupported type %T", v)
	}
}

// TableString returns the string field key of a table value, or "".
func TableString(v lua.LValue, key string) string {
	t, ok := v.(*lua.LTable)
	if !ok {
		return ""
	}
	if s, ok := t.RawGetString(key).(lua.LString); ok {
		return string(s)
	}
	return ""
}

// TableInt returns the numeric field key of a table value truncated to int, or 0.
func TableInt(v lua.LValue, key string) int {
	t, ok := v.(*lua.LTable)
	if !ok {
		return 0
	}
	if n, ok := t.RawGetString(key).(lua.LNumber); ok {
		return int(n)
	}
	return 0
}

// Truthy reports Lua truthiness: everything except nil and false.
func Truthy(v lua.LValue) bool {
	return lua.LVAsBool(v)
}
