package command

import (
	"strings"

	"github.com/Lin-Jiong-HDU/nlsh/internal/intent"
)

// Template is the per-dialect command for one intent. Requires lists the
// entity fields that must be present and non-empty for the row to match.
type Template struct {
	Windows  string
	Linux    string
	Requires []intent.Field
}

// For returns the template string for a dialect.
func (t Template) For(d Dialect) string {
	if d == Windows {
		return t.Windows
	}
	return t.Linux
}

var (
	needName     = []intent.Field{intent.FieldName}
	needTransfer = []intent.Field{intent.FieldSource, intent.FieldDestination}
)

var staticTable = map[intent.Intent]Template{
	intent.ListFiles:  {Windows: "dir", Linux: "ls"},
	intent.CurrentDir: {Windows: "cd", Linux: "pwd"},
	intent.GoBack:     {Windows: "cd ..", Linux: "cd .."},
	intent.GoHome:     {Windows: "cd %USERPROFILE%", Linux: "cd ~"},
	intent.SystemInfo: {Windows: "systeminfo", Linux: "uname -a"},
	intent.WhoAmI:     {Windows: "whoami", Linux: "whoami"},

	intent.GoTo:         {Windows: "cd {name}", Linux: "cd {name}", Requires: needName},
	intent.CreateFolder: {Windows: "mkdir {name}", Linux: "mkdir {name}", Requires: needName},
	intent.DeleteFolder: {Windows: "rmdir /s /q {name}", Linux: "rm -rf {name}", Requires: needName},
	intent.CreateFile:   {Windows: "type nul > {name}", Linux: "touch {name}", Requires: needName},
	intent.DeleteFile:   {Windows: "del {name}", Linux: "rm {name}", Requires: needName},
	intent.CatFile:      {Windows: "type {name}", Linux: "cat {name}", Requires: needName},

	intent.RenameFile: {Windows: "ren {source} {destination}", Linux: "mv {source} {destination}", Requires: needTransfer},
	intent.MoveFile:   {Windows: "move {source} {destination}", Linux: "mv {source} {destination}", Requires: needTransfer},
	intent.CopyFile:   {Windows: "copy {source} {destination}", Linux: "cp {source} {destination}", Requires: needTransfer},

	intent.UpgradePip:     {Windows: "python -m pip install --upgrade pip", Linux: "python3 -m pip install --upgrade pip"},
	intent.UpgradePackage: {Windows: "pip install --upgrade {name}", Linux: "pip install --upgrade {name}", Requires: needName},

	intent.CheckRAM:      {Windows: "wmic OS get FreePhysicalMemory,TotalVisibleMemorySize /Value", Linux: "free -h"},
	intent.CheckCPU:      {Windows: "wmic cpu get loadpercentage", Linux: "top -bn1 | grep 'Cpu(s)'"},
	intent.CheckDisk:     {Windows: "wmic logicaldisk get size,freespace,caption", Linux: "df -h"},
	intent.CheckIP:       {Windows: "ipconfig", Linux: "hostname -I"},
	intent.CheckInternet: {Windows: "ping 8.8.8.8 -n 1", Linux: "ping -c 1 8.8.8.8"},
	intent.ListProcesses: {Windows: "tasklist", Linux: "ps aux"},
	intent.KillProcess:   {Windows: "taskkill /IM {name} /F", Linux: "pkill -f {name}", Requires: needName},
	intent.ClearScreen:   {Windows: "cls", Linux: "clear"},
}

// Table returns a copy of the static command table.
func Table() map[intent.Intent]Template {
	out := make(map[intent.Intent]Template, len(staticTable))
	for k, v := range staticTable {
		v.Requires = append([]intent.Field(nil), v.Requires...)
		out[k] = v
	}
	return out
}

// Render looks up the static row for in and substitutes entities into it.
// It reports false when there is no row or a required field is absent or empty.
func Render(in intent.Intent, d Dialect, e intent.EntitySet) (string, bool) {
	t, ok := staticTable[in]
	if !ok {
		return "", false
	}
	return Expand(t.For(d), t.Requires, e)
}

// Expand substitutes {name}, {source} and {destination} in tmpl. Values are
// inserted raw; quoting is whatever the user typed.
func Expand(tmpl string, requires []intent.Field, e intent.EntitySet) (string, bool) {
	if tmpl == "" {
		return "", false
	}
	for _, f := range requires {
		if !e.Has(f) {
			return "", false
		}
	}

	var pairs []string
	for _, f := range []intent.Field{intent.FieldName, intent.FieldSource, intent.FieldDestination} {
		v, _ := e.Get(f)
		pairs = append(pairs, "{"+string(f)+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl), true
}
