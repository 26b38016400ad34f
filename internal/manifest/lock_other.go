//go:build !unix

package manifest

// Lock is a no-op on platforms without flock.
type Lock struct{}

// AcquireLock returns a no-op lock.
func AcquireLock(string) (*Lock, error) {
	return &Lock{}, nil
}

// Release does nothing.
func (l *Lock) Release() error {
	return nil
}
