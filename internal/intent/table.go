package intent

// PhraseSet is the ordered list of trigger phrases for one intent.
type PhraseSet struct {
	Intent  Intent
	Phrases []string
}

// Table is an ordered phrase table. Order is significant: the first
// substring hit wins, so overlapping phrases resolve by declaration order.
type Table []PhraseSet

// Intents returns the intents of the table in first-seen order.
func (t Table) Intents() []Intent {
	seen := make(map[Intent]bool, len(t))
	out := make([]Intent, 0, len(t))
	for _, ps := range t {
		if seen[ps.Intent] {
			continue
		}
		seen[ps.Intent] = true
		out = append(out, ps.Intent)
	}
	return out
}

// Clone returns a deep copy of the table.
func (t Table) Clone() Table {
	out := make(Table, len(t))
	for i, ps := range t {
		out[i] = PhraseSet{
			Intent:  ps.Intent,
			Phrases: append([]string(nil), ps.Phrases...),
		}
	}
	return out
}

// baseTable is the built-in phrase table. Phrases are lower case.
// Entries that share words are ordered so the more specific intent is
// declared first (DELETE_FOLDER before the bare "delete" of DELETE_FILE,
// LIST_FILES before CAT_FILE's "show file").
var baseTable = Table{
	{Rollback, []string{"undo", "rollback", "roll back", "restore last", "revert last"}},
	{CreateFolder, []string{"create folder", "make folder", "new folder", "create directory", "make directory", "mkdir"}},
	{DeleteFolder, []string{"delete folder", "remove folder", "erase folder", "delete directory", "remove directory", "rmdir"}},
	{CreateFile, []string{"create file", "make file", "new file", "generate file", "touch"}},
	{DeleteFile, []string{"delete file", "remove file", "erase file", "delete", "remove"}},
	{RenameFile, []string{"rename"}},
	{MoveFile, []string{"move"}},
	{CopyFile, []string{"copy", "duplicate"}},
	{ListProcesses, []string{"list processes", "show processes", "running processes", "task list"}},
	{ListFiles, []string{"list files", "show files", "list directory", "what files", "list folder"}},
	{CatFile, []string{"read file", "show file", "open file", "show contents", "print file", "cat "}},
	{CurrentDir, []string{"where am i", "current directory", "current folder", "working directory", "pwd"}},
	{GoBack, []string{"go back", "go up", "parent directory", "previous folder", "step back"}},
	{GoHome, []string{"go home", "home directory", "home folder"}},
	{GoTo, []string{"go to", "open folder", "change directory", "navigate to", "enter folder", "cd into"}},
	{WhoAmI, []string{"who am i", "whoami", "current user"}},
	{SystemInfo, []string{"system info", "system information", "os info", "about this computer"}},
	{UpgradePip, []string{"upgrade pip", "update pip"}},
	{UpgradePackage, []string{"upgrade", "update package", "install update"}},
	{CheckRAM, []string{"check ram", "ram usage", "memory usage", "check memory", "free memory"}},
	{CheckCPU, []string{"check cpu", "cpu usage", "cpu load", "processor usage"}},
	{CheckDisk, []string{"check disk", "disk usage", "disk space", "storage space"}},
	{CheckIP, []string{"ip address", "my ip", "check ip"}},
	{CheckInternet, []string{"check internet", "internet connection", "am i online", "ping"}},
	{KillProcess, []string{"kill", "terminate", "end task", "stop program", "stop process"}},
	{ClearScreen, []string{"clear screen", "clear terminal", "clean screen"}},
}

// BaseTable returns a copy of the built-in phrase table.
func BaseTable() Table {
	return baseTable.Clone()
}

// Vocabulary returns the closed set of built-in intents offered to the
// generative backend, in declaration order.
func Vocabulary() []Intent {
	return baseTable.Intents()
}
