package input

import (
	"fmt"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"go.uber.org/zap"

	"github.com/milk9111/dashmotor/prefabs"
)

// The script must define sample(frame) returning a map with any of
// move_x, jump and dash. An optional top-level title names the script.
const scriptDispatch = `
if __phase == "sample" {
	__out = sample(__frame)
}
`

// Script replays input produced by a tengo script, one call per frame.
type Script struct {
	name     string
	title    string
	compiled *tengo.Compiled
	frame    int
	log      *zap.Logger
	failed   bool
}

// NewScript loads a script from prefabs/scripts.
func NewScript(name string, log *zap.Logger) (*Script, error) {
	src, err := prefabs.LoadScript(name)
	if err != nil {
		return nil, fmt.Errorf("input: load script %s: %w", name, err)
	}
	return CompileScript(name, src, log)
}

// dispatchVars are the globals the dispatch footer reads and writes.
var dispatchVars = []scriptVar{
	{name: "__phase", value: ""},
	{name: "__frame", value: 0},
	{name: "__out", value: nil},
}

type scriptVar struct {
	name  string
	value interface{}
}

func addScriptVars(script *tengo.Script, vars []scriptVar) error {
	for _, v := range vars {
		if err := script.Add(v.name, v.value); err != nil {
			return fmt.Errorf("add %s: %w", v.name, err)
		}
	}
	return nil
}

// CompileScript compiles src and checks that it defines sample.
func CompileScript(name string, src []byte, log *zap.Logger) (*Script, error) {
	if log == nil {
		log = zap.NewNop()
	}

	script := tengo.NewScript([]byte(string(src) + "\n" + scriptDispatch))
	if err := addScriptVars(script, dispatchVars); err != nil {
		return nil, fmt.Errorf("input: script %s: %w", name, err)
	}
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("input: compile script %s: %w", name, err)
	}
	if !compiled.IsDefined("sample") {
		return nil, fmt.Errorf("input: script %s does not define sample", name)
	}
	if err := compiled.Run(); err != nil {
		return nil, fmt.Errorf("input: run script %s: %w", name, err)
	}

	s := &Script{name: name, compiled: compiled, log: log}
	if compiled.IsDefined("title") {
		s.title = strings.TrimSpace(compiled.Get("title").String())
	}
	return s, nil
}

func (s *Script) Name() string {
	return s.name
}

// Title is the script's self-description, if it has one.
func (s *Script) Title() string {
	return s.title
}

// Poll runs sample for the next frame. A script error is logged once and
// yields empty input from then on.
func (s *Script) Poll() Frame {
	if s == nil || s.failed {
		return Frame{}
	}
	frame := s.frame
	s.frame++

	if err := s.run(frame); err != nil {
		s.failed = true
		s.log.Error("input script failed", zap.String("script", s.name), zap.Int("frame", frame), zap.Error(err))
		return Frame{}
	}

	out := s.compiled.Get("__out")
	if out.IsUndefined() {
		return Frame{}
	}
	return frameFromMap(out.Map())
}

func (s *Script) run(frame int) error {
	if err := s.compiled.Set("__phase", "sample"); err != nil {
		return err
	}
	if err := s.compiled.Set("__frame", frame); err != nil {
		return err
	}
	return s.compiled.Run()
}

func frameFromMap(m map[string]interface{}) Frame {
	var f Frame
	switch v := m["move_x"].(type) {
	case float64:
		f.MoveX = v
	case int64:
		f.MoveX = float64(v)
	case int:
		f.MoveX = float64(v)
	}
	f.Jump, _ = m["jump"].(bool)
	f.Dash, _ = m["dash"].(bool)
	return f
}
