package constants

// EmailStatus is the canonical processing status for inbound emails.
type EmailStatus string

// Stable values (store these exact strings in DB).
const (
	EmailStatusNew              EmailStatus = "new"               // not yet processed (or last attempt failed)
	EmailStatusProcessed        EmailStatus = "processed"         // terminal: at least zero new work orders created
	EmailStatusSkippedDuplicate EmailStatus = "skipped_duplicate" // terminal: every candidate already existed
)
