package core

// BlobStore is the durable key→blob boundary the session store persists
// through. Implementations must be safe for concurrent use. The core assumes
// nothing about the storage technology beyond these operations.
type BlobStore interface {
	// SaveBlob writes the bytes under the key, overwriting any prior value.
	SaveBlob(key string, data []byte) error

	// LoadBlob returns the stored bytes and whether the key exists. A
	// missing key is not an error.
	LoadBlob(key string) ([]byte, bool, error)

	// DeleteBlob removes the key. Deleting a missing key is a no-op.
	DeleteBlob(key string) error
}

// ProfileKey returns the durable record key for a user's profile blob.
func ProfileKey(userID string) string { return userID + ":profile" }

// HistoryKey returns the durable record key for a user's history blob.
func HistoryKey(userID string) string { return userID + ":history" }
