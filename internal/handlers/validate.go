package handlers

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/xeipuuv/gojsonschema"
)

// maxTemplateNameLen limits library background names.
const maxTemplateNameLen = 200

// designSchema describes the body of a cover design save. Style values are
// only shape-checked here; the canvas store normalises them afterwards.
const designSchema = `{
	"type": "object",
	"required": ["elements"],
	"properties": {
		"selectedTemplate": {"type": "string", "maxLength": 64},
		"customBackgroundImage": {"type": "string", "maxLength": 8000000},
		"elements": {
			"type": "array",
			"maxItems": 200,
			"items": {
				"type": "object",
				"required": ["type", "variable"],
				"properties": {
					"id": {"type": "string", "maxLength": 64},
					"type": {"enum": ["text", "image"]},
					"variable": {"type": "string", "maxLength": 200},
					"x": {"type": "number"},
					"y": {"type": "number"},
					"width": {"type": "number"},
					"height": {"type": "number"},
					"fontSize": {"type": "integer"},
					"fontFamily": {"type": "string", "maxLength": 100},
					"fontWeight": {"type": "string", "maxLength": 16},
					"fontStyle": {"type": "string", "maxLength": 16},
					"textDecoration": {"type": "string", "maxLength": 16},
					"color": {"type": "string", "maxLength": 32},
					"textAlign": {"type": "string", "maxLength": 16},
					"backgroundColor": {"type": "string", "maxLength": 32}
				}
			}
		}
	}
}`

var designValidator = mustSchema(designSchema)

func mustSchema(src string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("handlers: invalid schema: %v", err))
	}
	return s
}

// validateTemplateName checks the name of a library background.
func validateTemplateName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Template name is required."
	}
	if utf8.RuneCountInString(name) > maxTemplateNameLen {
		return "Template name is too long (max 200 characters)."
	}
	return ""
}

// validateDesignBody checks a raw design save against designSchema and
// returns the first problem found.
func validateDesignBody(body []byte) string {
	result, err := designValidator.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return "Request body is not valid JSON."
	}
	if !result.Valid() {
		errs := result.Errors()
		return fmt.Sprintf("Invalid design: %s: %s", errs[0].Field(), errs[0].Description())
	}
	return ""
}
