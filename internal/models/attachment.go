package models

// AttachmentMetadata describes a file referenced by a message, resolved
// from the attachment endpoint's response headers without transferring
// the body. Deleted is set when the remote reports the file gone; such
// entries still render in transcripts but are never downloaded.
type AttachmentMetadata struct {
	URL                string
	ContentDisposition string
	ContentLength      int64
	ContentType        string
	Filename           string
	Deleted            bool
}
