package scripting_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/arcanum/internal/game/dice"
	"github.com/cory-johannsen/arcanum/internal/scripting"
)

func newTestManager(t testing.TB) (*scripting.Manager, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)
	roller := dice.NewLoggedRoller(dice.NewSeededSource(1), logger)
	mgr := scripting.NewManager(roller, logger)
	t.Cleanup(mgr.Close)
	return mgr, logs
}

func writeTempLua(t testing.TB, filename, src string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, filename), []byte(src), 0644))
	return dir
}

func hasLevel(logs *observer.ObservedLogs, lvl zapcore.Level) bool {
	return logs.FilterLevelExact(lvl).Len() > 0
}

func TestManager_LoadScope_CallsHook(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "hooks.lua", `
		function test_hook(a, b)
			return a + b
		end
	`)
	require.NoError(t, mgr.LoadScope("brute", dir, 0))
	ret, err := mgr.CallHook("brute", "test_hook", 3, 4)
	require.NoError(t, err)
	assert.Equal(t, lua.LNumber(7), ret)
	assert.True(t, mgr.HasHook("brute", "test_hook"))
	assert.False(t, mgr.HasHook("brute", "nope"))
}

func TestManager_CallHook_TableArgument(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "hooks.lua", `
		function describe(s)
			return s.name .. ":" .. s.hp .. ":" .. tostring(s.flags.stunned) .. ":" .. #s.tags
		end
	`)
	require.NoError(t, mgr.LoadScope("s", dir, 0))
	ret, err := mgr.CallHook("s", "describe", map[string]any{
		"name":  "Ghoul",
		"hp":    12,
		"flags": map[string]any{"stunned": true},
		"tags":  []string{"undead", "slow"},
	})
	require.NoError(t, err)
	assert.Equal(t, lua.LString("Ghoul:12:true:2"), ret)
}

func TestManager_CallHook_UnsupportedArg_ReturnsError(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "hooks.lua", `function f(x) return x end`)
	require.NoError(t, mgr.LoadScope("s", dir, 0))
	_, err := mgr.CallHook("s", "f", struct{}{})
	assert.Error(t, err)
}

func TestManager_CallHook_MissingHook_NoOp(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "empty.lua", `-- no functions`)
	require.NoError(t, mgr.LoadScope("s", dir, 0))
	ret, err := mgr.CallHook("s", "nonexistent_hook")
	require.NoError(t, err)
	assert.Equal(t, lua.LNil, ret)
}

func TestManager_CallHook_UnknownScope_LogsInfoReturnsNil(t *testing.T) {
	mgr, logs := newTestManager(t)
	ret, err := mgr.CallHook("no_such_scope", "some_hook")
	require.NoError(t, err)
	assert.Equal(t, lua.LNil, ret)
	assert.True(t, hasLevel(logs, zapcore.InfoLevel), "expected Info log for missing scope")
}

func TestManager_CallHook_RuntimeError_WarnLogNoPanic(t *testing.T) {
	mgr, logs := newTestManager(t)
	dir := writeTempLua(t, "bad.lua", `
		function bad_hook()
			error("intentional error")
		end
	`)
	require.NoError(t, mgr.LoadScope("s", dir, 0))
	ret, err := mgr.CallHook("s", "bad_hook")
	require.NoError(t, err)
	assert.Equal(t, lua.LNil, ret)
	assert.True(t, hasLevel(logs, zapcore.WarnLevel), "expected Warn log for Lua runtime error")
}

func TestManager_CallHook_BudgetIsPerCall(t *testing.T) {
	mgr, logs := newTestManager(t)
	dir := writeTempLua(t, "loop.lua", `
		function spin(n)
			local x = 0
			for i = 1, n do x = x + 1 end
			return x
		end
	`)
	require.NoError(t, mgr.LoadScope("s", dir, 500))
	for i := 0; i < 10; i++ {
		ret, err := mgr.CallHook("s", "spin", 20)
		require.NoError(t, err)
		assert.Equal(t, lua.LNumber(20), ret, "call %d", i)
	}
	ret, err := mgr.CallHook("s", "spin", 100000)
	require.NoError(t, err)
	assert.Equal(t, lua.LNil, ret)
	assert.True(t, hasLevel(logs, zapcore.WarnLevel))
}

func TestManager_LoadGlobal_CallHookFallback(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "global.lua", `
		function global_hook()
			return 42
		end
	`)
	require.NoError(t, mgr.LoadGlobal(dir, 0))
	ret, err := mgr.CallHook("unknown", "global_hook")
	require.NoError(t, err)
	assert.Equal(t, lua.LNumber(42), ret)
}

func TestManager_LoadScope_InvalidLua_ReturnsError(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "bad.lua", `this is not valid lua @@@@`)
	assert.Error(t, mgr.LoadScope("bad", dir, 0))
}

func TestManager_LoadScope_MissingDir_ReturnsError(t *testing.T) {
	mgr, _ := newTestManager(t)
	assert.Error(t, mgr.LoadScope("x", "/nonexistent/scripts", 0))
}

func TestManager_LoadScope_MultipleFiles_OrderedByName(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.lua"), []byte(`base_val = 10`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.lua"), []byte(`
		function get_val() return base_val end
	`), 0644))
	require.NoError(t, mgr.LoadScope("ordered", dir, 0))
	ret, err := mgr.CallHook("ordered", "get_val")
	require.NoError(t, err)
	assert.Equal(t, lua.LNumber(10), ret)
}

func TestManager_ConcurrentSameScope(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "hooks.lua", `
		function concurrent_hook(a, b)
			return a + b
		end
	`)
	require.NoError(t, mgr.LoadScope("conc", dir, 0))

	const goroutines = 10
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < 5; j++ {
				ret, err := mgr.CallHook("conc", "concurrent_hook", 1, 2)
				assert.NoError(t, err)
				assert.Equal(t, lua.LNumber(3), ret)
			}
		}()
	}
	wg.Wait()
}

func TestNewManager_PanicsOnNil(t *testing.T) {
	roller := dice.NewLoggedRoller(dice.NewSeededSource(1), zap.NewNop())
	assert.Panics(t, func() { scripting.NewManager(nil, zap.NewNop()) })
	assert.Panics(t, func() { scripting.NewManager(roller, nil) })
}

func TestManager_Close_ReleasesScopes(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "init.lua", `function get_x() return 1 end`)
	require.NoError(t, mgr.LoadScope("closing", dir, 0))
	mgr.Close()
	ret, err := mgr.CallHook("closing", "get_x")
	assert.NoError(t, err)
	assert.Equal(t, lua.LNil, ret)
}

func TestProperty_CallHookMissingScopeNeverPanics(t *testing.T) {
	mgr, _ := newTestManager(t)
	rapid.Check(t, func(rt *rapid.T) {
		scope := rapid.StringMatching(`[a-z]{1,10}`).Draw(rt, "scope")
		hook := rapid.StringMatching(`[a-z]{1,10}`).Draw(rt, "hook")
		ret, err := mgr.CallHook(scope, hook)
		assert.NoError(rt, err)
		assert.Equal(rt, lua.LNil, ret)
	})
}
