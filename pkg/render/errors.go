package render

import "errors"

var (
	// ErrTemplateNotFound indicates the template file was not found.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrTemplateParse indicates the template file is not a valid template.
	ErrTemplateParse = errors.New("failed to parse template")

	// ErrTemplateRender indicates template evaluation failed for one message.
	ErrTemplateRender = errors.New("failed to render template")

	// ErrTemplateFail is raised by the "fail" template function.
	ErrTemplateFail = errors.New("template raised an error")
)
