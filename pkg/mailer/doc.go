// Package mailer turns rendered template output into deliverable messages.
//
// A template renders to a header block, a blank line and a body:
//
//	From: Events <events@example.com>
//	To: alice@example.com
//	Subject: Your ticket
//	Content-Type: text/html
//
//	<p>See you there.</p>
//
// ParseMessage splits that text; Assembler validates the addressing headers,
// selects the body type, passes other headers through and loads the
// attachments a template registered on its Collector.
//
// # Attachments
//
// Templates register attachments while rendering through a Collector:
//
//	{{attachFile "ticket.pdf"}}
//	{{attachFile "s3://tickets/42.pdf" "ticket.pdf" "application/pdf"}}
//	{{attachData .Record.notes "notes.txt"}}
//	{{attachB64 .Record.logo "logo.png" "image/png"}}
//
// File sources are read at assembly time. Sources with a registered prefix
// (see WithOpener) are read through that opener, anything else from the
// local filesystem. A missing MIME type is detected from the content and
// the filename.
//
// # Transports
//
// Sender is implemented by the smtp and resend subpackages.
//
//	email, err := mailer.NewAssembler(mailer.WithWrap()).Assemble(ctx, rendered, c.Specs())
//	if err != nil {
//		return err // wraps ErrMalformedMessage for template mistakes
//	}
//	err = smtp.New(smtp.Config{Host: "mail.example.com", Port: 587}).Send(ctx, email)
package mailer
