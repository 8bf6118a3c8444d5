package errors

// Error codes for the Move front-end
// These codes are used in error messages and documentation
// to provide consistent error identification across the toolchain.
//
// Error code ranges:
// E0100-E0199: Source normalization and syntax errors
// E0200-E0299: Semantic errors
// E0300-E0399: Translation errors
// E0800-E0899: Warning codes

const (
	// E0100: Block comment opened but never closed
	ErrorUnterminatedComment = "E0100"

	// E0101: Character outside the accepted source alphabet
	ErrorInvalidCharacter = "E0101"

	// E0102: Address literal that fails a dialect's grammar or checksum
	ErrorMalformedAddress = "E0102"

	// E0110: Parser found a token it did not expect
	ErrorUnexpectedToken = "E0110"

	// E0111: Unterminated byte string literal
	ErrorUnterminatedString = "E0111"

	// E0200: Module declared twice under the same address
	ErrorDuplicateModule = "E0200"

	// E0201: Use declaration names a module that is not defined
	ErrorUnboundModule = "E0201"

	// E0202: Function declared twice in one unit
	ErrorDuplicateFunction = "E0202"

	// E0300: Script without any function to execute
	ErrorEmptyScript = "E0300"

	// W0001: Module declares no functions
	WarningEmptyModule = "W0001"
)

// GetErrorDescription returns a human-readable description of the error code
func GetErrorDescription(code string) string {
	switch code {
	case ErrorUnterminatedComment:
		return "Block comment is not closed before the end of the file"
	case ErrorInvalidCharacter:
		return "Source contains a character outside the accepted alphabet"
	case ErrorMalformedAddress:
		return "Address literal does not decode under the active dialect"
	case ErrorUnexpectedToken:
		return "Token does not fit the expected syntax"
	case ErrorUnterminatedString:
		return "Byte string literal is not closed"
	case ErrorDuplicateModule:
		return "Module is declared more than once under the same address"
	case ErrorUnboundModule:
		return "Module referenced by a use declaration is not defined"
	case ErrorDuplicateFunction:
		return "Function is declared more than once in the same unit"
	case ErrorEmptyScript:
		return "Script does not declare a function"
	case WarningEmptyModule:
		return "Module declares no functions"
	default:
		return "Unknown error code"
	}
}

// IsWarning returns true if the error code represents a warning rather than an error
func IsWarning(code string) bool {
	return code != "" && (code >= "E0800" && code < "E0900" || code[0] == 'W')
}

// GetErrorCategory returns the category of the error based on its code
func GetErrorCategory(code string) string {
	switch {
	case code >= "E0100" && code < "E0200":
		return "Syntax"
	case code >= "E0200" && code < "E0300":
		return "Semantic"
	case code >= "E0300" && code < "E0400":
		return "Translation"
	case IsWarning(code):
		return "Warning"
	default:
		return "Unknown"
	}
}
