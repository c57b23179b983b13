// Package transpiler implements the Expression Rewriter (C7), SQL Statement
// Rewriter (C8), Procedural Rewriter (C9), and the top-level driver (C10).
// Grounded throughout on the teacher's transpiler/{transpiler,expressions,
// dml}.go: the transpileStatement dispatch switch, the transpileExpression
// type-switch, the transpileFunctionCall rewrite table, and the
// transpileTryCatch defer/recover shape for guaranteed context release.
package transpiler

import (
	"fmt"

	"github.com/Sayiza/orapgsync-sub008/ast"
)

// ErrorKind enumerates the five error categories of the error handling
// design: ParseError is not produced by this package (parsing is out of
// scope) but is included so callers that do own a parser can report through
// the same taxonomy.
type ErrorKind string

const (
	ErrorKindParseError           ErrorKind = "ParseError"
	ErrorKindUnsupportedConstruct ErrorKind = "UnsupportedConstruct"
	ErrorKindMetadataMiss         ErrorKind = "MetadataMiss"
	ErrorKindSemanticViolation    ErrorKind = "SemanticViolation"
	ErrorKindTransformationBug    ErrorKind = "TransformationBug"
)

// TranspileError is the error type every fatal condition in this package is
// wrapped in before crossing TransformSQL/TransformRoutine's boundary.
type TranspileError struct {
	Kind     ErrorKind
	Message  string
	Hint     string
	Position ast.Position
}

func (e *TranspileError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Hint)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func unsupported(node ast.Node, construct, hint string) *TranspileError {
	return &TranspileError{
		Kind:     ErrorKindUnsupportedConstruct,
		Message:  fmt.Sprintf("%s is not supported", construct),
		Hint:     hint,
		Position: node.Pos(),
	}
}

func semanticViolation(node ast.Node, message string) *TranspileError {
	return &TranspileError{Kind: ErrorKindSemanticViolation, Message: message, Position: node.Pos()}
}

func transformationBug(node ast.Node, message string) *TranspileError {
	return &TranspileError{Kind: ErrorKindTransformationBug, Message: message, Position: node.Pos()}
}
