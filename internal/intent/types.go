package intent

import "strings"

// Intent is a symbolic classification of what the user asked for.
// The vocabulary is open: plugins may introduce new tags at startup.
type Intent string

// Built-in intents
const (
	Unknown  Intent = "UNKNOWN"
	Rollback Intent = "ROLLBACK"

	CreateFolder Intent = "CREATE_FOLDER"
	DeleteFolder Intent = "DELETE_FOLDER"
	CreateFile   Intent = "CREATE_FILE"
	DeleteFile   Intent = "DELETE_FILE"
	RenameFile   Intent = "RENAME_FILE"
	MoveFile     Intent = "MOVE_FILE"
	CopyFile     Intent = "COPY_FILE"
	CatFile      Intent = "CAT_FILE"

	ListFiles  Intent = "LIST_FILES"
	CurrentDir Intent = "CURRENT_DIR"
	GoBack     Intent = "GO_BACK"
	GoHome     Intent = "GO_HOME"
	GoTo       Intent = "GO_TO"

	WhoAmI         Intent = "WHOAMI"
	SystemInfo     Intent = "SYSTEM_INFO"
	UpgradePip     Intent = "UPGRADE_PIP"
	UpgradePackage Intent = "UPGRADE_PACKAGE"

	CheckRAM      Intent = "CHECK_RAM"
	CheckCPU      Intent = "CHECK_CPU"
	CheckDisk     Intent = "CHECK_DISK"
	CheckIP       Intent = "CHECK_IP"
	CheckInternet Intent = "CHECK_INTERNET"
	ListProcesses Intent = "LIST_PROCESSES"
	KillProcess   Intent = "KILL_PROCESS"
	ClearScreen   Intent = "CLEAR_SCREEN"
)

// Parse normalizes a tag coming from untrusted input (backend replies,
// plugin manifests). Empty input yields Unknown.
func Parse(s string) Intent {
	s = strings.TrimSpace(s)
	if s == "" {
		return Unknown
	}
	s = strings.ToUpper(s)
	s = strings.Join(strings.Fields(s), "_")
	return Intent(s)
}

// Destructive reports whether the intent goes through the safety gate.
func (i Intent) Destructive() bool {
	switch i {
	case DeleteFile, DeleteFolder, KillProcess:
		return true
	}
	return false
}

// String returns the tag.
func (i Intent) String() string {
	return string(i)
}

// Field names one of the three entity slots.
type Field string

const (
	FieldName        Field = "name"
	FieldSource      Field = "source"
	FieldDestination Field = "destination"
)

// EntitySet holds the structured arguments of a request.
// A nil field is absent, which is distinct from a present empty string.
type EntitySet struct {
	Name        *string `json:"name,omitempty"`
	Source      *string `json:"source,omitempty"`
	Destination *string `json:"destination,omitempty"`
}

// Str returns a pointer to s, for building entity sets.
func Str(s string) *string {
	return &s
}

// Get returns the value of a field and whether it is present.
func (e EntitySet) Get(f Field) (string, bool) {
	var p *string
	switch f {
	case FieldName:
		p = e.Name
	case FieldSource:
		p = e.Source
	case FieldDestination:
		p = e.Destination
	}
	if p == nil {
		return "", false
	}
	return *p, true
}

// Has reports whether the field is present and non-empty.
func (e EntitySet) Has(f Field) bool {
	v, ok := e.Get(f)
	return ok && v != ""
}

// Map returns the present fields keyed by field name.
func (e EntitySet) Map() map[string]string {
	m := make(map[string]string, 3)
	for _, f := range []Field{FieldName, FieldSource, FieldDestination} {
		if v, ok := e.Get(f); ok {
			m[string(f)] = v
		}
	}
	return m
}

// FromMap builds an entity set from a string map. Keys that are missing
// stay absent.
func FromMap(m map[string]string) EntitySet {
	var e EntitySet
	if v, ok := m[string(FieldName)]; ok {
		e.Name = Str(v)
	}
	if v, ok := m[string(FieldSource)]; ok {
		e.Source = Str(v)
	}
	if v, ok := m[string(FieldDestination)]; ok {
		e.Destination = Str(v)
	}
	return e
}
