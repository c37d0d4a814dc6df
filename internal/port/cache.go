package port

// DocCache stores generated responses keyed by a request fingerprint.
type DocCache interface {
	Get(key string) (string, bool, error)

	Put(key string, value string) error

	Clear() error
}
