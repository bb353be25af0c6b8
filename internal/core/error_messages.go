package core

// error_messages.go maps technical errors to messages the menu team can act on.
//
// Codes are grouped by category and quoted by users when asking for help:
//
//	JSON001-JSON004  source documents that cannot be decoded
//	FILE001-FILE003  upload problems (size, missing file, download format)
//	CNV001-CNV005    conversion problems (layout, capacity, expired results)
//	DB001            storage unreachable
//	RATE001          request throttling
//	ERR000           anything else; check the server log for the original error
//
// Patterns are matched case-insensitively with strings.Contains and the first
// match wins, so specific patterns precede general ones.

import (
	"fmt"
	"strings"
)

// UserMessage is a user-facing description of a failure.
type UserMessage struct {
	Message string `json:"message"`
	Action  string `json:"action"`
	Code    string `json:"code"`
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// Source documents
	{
		pattern: "product export: empty document",
		msg: UserMessage{
			Message: "The product export is empty",
			Action:  "Export the menu again and upload the complete file",
			Code:    "JSON003",
		},
	},
	{
		pattern: "image export: empty document",
		msg: UserMessage{
			Message: "The image export is empty",
			Action:  "Export the pictures again and upload the complete file",
			Code:    "JSON004",
		},
	},
	{
		pattern: "product export",
		msg: UserMessage{
			Message: "The product export is not valid JSON",
			Action:  "Upload the JSON file exported from the back office without editing it",
			Code:    "JSON001",
		},
	},
	{
		pattern: "image export",
		msg: UserMessage{
			Message: "The image export is not valid JSON",
			Action:  "Upload the pictures JSON file exported from the back office",
			Code:    "JSON002",
		},
	},

	// Uploads
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Check that you selected the menu export and not an archive",
			Code:    "FILE001",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "A required file was not selected",
			Action:  "Select both the product export and the image export",
			Code:    "FILE002",
		},
	},
	{
		pattern: "unsupported format",
		msg: UserMessage{
			Message: "This download format is not available",
			Action:  "Download as tsv or xlsx",
			Code:    "FILE003",
		},
	},

	// Conversion
	{
		pattern: "unknown layout",
		msg: UserMessage{
			Message: "The requested template layout does not exist",
			Action:  "Choose one of the listed layouts",
			Code:    "CNV001",
		},
	},
	{
		pattern: "too many conversions",
		msg: UserMessage{
			Message: "The converter is busy with other menus",
			Action:  "Please wait a moment and try again",
			Code:    "CNV002",
		},
	},
	{
		pattern: "conversion not found",
		msg: UserMessage{
			Message: "This conversion is no longer available",
			Action:  "Convert the menu again to download the template",
			Code:    "CNV003",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "The conversion was cancelled",
			Action:  "Please try again",
			Code:    "CNV004",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "The conversion took too long",
			Action:  "Please try again in a few moments",
			Code:    "CNV005",
		},
	},

	// Storage
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to reach the result store",
			Action:  "Please try again in a few moments",
			Code:    "DB001",
		},
	},

	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts err to a user message. A nil error maps to the zero
// message; unknown errors map to ERR000.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}
	return defaultMessage
}

// FormatUserError renders err as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
