package printer

import (
	"errors"

	"github.com/xyproto/vt"

	"github.com/andrakis/SchemingSharply/types"
)

// PrintStr renders a value the way the REPL shows it. With readable set,
// strings keep their quotes and closures print as their source form.
func PrintStr(v *types.Value, readable bool) string {
	return v.Render(readable)
}

// Printer formats results and errors for a terminal.
type Printer struct {
	Color    bool
	Readable bool
}

func (p *Printer) Result(v *types.Value) string {
	s := PrintStr(v, p.Readable)
	if !p.Color {
		return s
	}
	switch v.Tag {
	case types.Integer, types.Float:
		return vt.Cyan.Get(s)
	case types.String:
		return vt.LightGreen.Get(s)
	case types.Lambda, types.Macro, types.Proc, types.ProcEnv, types.EnvRef:
		return vt.Magenta.Get(s)
	}
	if v.Tag == types.Symbol && (types.Equal(v, types.Nil) || types.Equal(v, types.False)) {
		return vt.LightGray.Get(s)
	}
	return vt.Blue.Get(s)
}

func (p *Printer) Error(err error) string {
	s := err.Error()
	var rt *types.Error
	if !errors.As(err, &rt) {
		s = "error: " + s
	}
	if !p.Color {
		return s
	}
	return vt.LightRed.Get(s)
}
