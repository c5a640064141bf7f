package models

// TimestampLayout is the wall-clock format recorded with every message.
const TimestampLayout = "2006-01-02 15:04:05"

// Message is one decrypted chat entry as served to clients.
type Message struct {
	Text      string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// EncryptedRecord is the at-rest form of a message: the encoded
// IV-plus-ciphertext blob and the timestamp assigned when it was appended.
type EncryptedRecord struct {
	Blob      string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// SessionLog is the ordered, append-only record sequence for one session.
// A log exists iff the session key is valid.
type SessionLog struct {
	Records []EncryptedRecord `json:"messages"`
}
