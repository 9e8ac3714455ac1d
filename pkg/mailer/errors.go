package mailer

import "errors"

var (
	// ErrMalformedMessage indicates the rendered text violates the header/body contract:
	// missing blank-line separator, a bad header line, missing or invalid From/To,
	// or an unsupported Content-Type.
	ErrMalformedMessage = errors.New("malformed message")

	// ErrUnknownAttachment indicates an attachment of a kind the assembler does not know.
	// It points to a defect in whatever recorded the attachment.
	ErrUnknownAttachment = errors.New("unknown attachment kind")

	// ErrAttachmentRead indicates a file attachment could not be read.
	ErrAttachmentRead = errors.New("failed to read attachment")

	// ErrInvalidBase64 indicates base64 attachment content could not be decoded.
	ErrInvalidBase64 = errors.New("invalid base64 attachment content")

	// ErrMarkdown indicates markdown conversion failed.
	ErrMarkdown = errors.New("failed to convert markdown")
)
