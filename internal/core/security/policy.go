package security

// Policy defines the security configuration.
type Policy struct {
	// ProtectedPaths are extra paths that destructive intents may never
	// target, in addition to the built-in denylist.
	ProtectedPaths []string `mapstructure:"protected_paths"`
}

// DefaultPolicy returns the default policy: built-in denylist only.
func DefaultPolicy() *Policy {
	return &Policy{
		ProtectedPaths: []string{},
	}
}
