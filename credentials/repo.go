package credentials

// Repo is durable storage for the credential pair. It holds no validation
// logic. Load reports absence for an empty, unreadable, or undecryptable
// store; storage failure is never fatal to the session, it only degrades to
// unauthenticated.
type Repo interface {
	Load() (Credential, bool)
	Save(Credential) error
	Clear() error
}
