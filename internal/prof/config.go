package prof

// Config names the profile files of a run. Empty paths disable a profile.
type Config struct {
	CPU  string `help:"Write a CPU profile to this file (needs -tags profile)" env:"NIBBLEMOUSE_PROF_CPU"`
	Heap string `help:"Write a heap profile to this file on exit (needs -tags profile)" env:"NIBBLEMOUSE_PROF_HEAP"`
}

// Enabled reports whether any profile is requested.
func (c Config) Enabled() bool {
	return c.CPU != "" || c.Heap != ""
}
