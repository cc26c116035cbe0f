// File: utils/constants.go
package utils

// SessionHeader carries the conversation key on HTTP requests.
const SessionHeader = "X-Session-ID"

// GenericFailureMessage is what the user hears when a command cannot be understood or processed.
const GenericFailureMessage = "Something went wrong, please try again."
