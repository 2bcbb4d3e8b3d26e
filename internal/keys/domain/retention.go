package domain

// RetentionPolicy controls what happens to key material when a customer key
// is revoked.
type RetentionPolicy string

const (
	// RetentionTombstone keeps the encrypted key material and marks the row revoked.
	RetentionTombstone RetentionPolicy = "tombstone"

	// RetentionErase overwrites the encrypted key material on revocation,
	// leaving only the tombstone metadata.
	RetentionErase RetentionPolicy = "erase"
)

// Valid reports whether the policy is one of the supported values.
func (p RetentionPolicy) Valid() bool {
	return p == RetentionTombstone || p == RetentionErase
}
